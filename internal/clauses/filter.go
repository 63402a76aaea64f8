package clauses

import (
	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

// Filter decides, per builder category, whether the builder could emit a
// clause whose head unifies with a goal. It only compares head shapes:
// predicate, trait, and the constructor of the goal's self type. A false
// answer must be certain; a true answer only costs work.
type Filter struct {
	db programdb.Database
}

// NewFilter returns a filter over db.
func NewFilter(db programdb.Database) *Filter {
	return &Filter{db: db}
}

// ProgramClausesThatCouldMatch returns the categories worth running for
// goal, in dispatch order.
func (f *Filter) ProgramClausesThatCouldMatch(goal ir.DomainGoal) []Category {
	var out []Category
	for _, c := range AllCategories {
		if f.CouldMatch(c, goal) {
			out = append(out, c)
		}
	}
	return out
}

// CouldMatch reports whether builder category cat could produce a clause
// for goal.
func (f *Filter) CouldMatch(cat Category, goal ir.DomainGoal) bool {
	switch cat {
	case CategoryEnv:
		return true

	case CategoryImpl:
		ref, ok := implementedRef(goal)
		return ok && hasPositiveImplMatching(f.db, ref)

	case CategoryTraitWF:
		switch goal.(type) {
		case ir.WellFormedTrait, ir.FromEnvTrait:
			return f.knownTrait(goal)
		}
		_, ok := implementedRef(goal)
		return ok && f.knownTrait(goal)

	case CategoryAdtWF:
		switch g := goal.(type) {
		case ir.WellFormedTy:
			if _, ok := adtOf(g.Ty); ok {
				return true
			}
			return isWildcard(g.Ty) && len(f.db.Adts()) > 0
		case ir.FromEnvTrait:
			return adtsHaveBounds(f.db)
		}
		return false

	case CategoryProjection:
		h, ok := goal.(ir.Holds)
		if !ok {
			return false
		}
		_, isAlias := h.Clause.(ir.AliasEq)
		return isAlias && f.knownTrait(goal)

	case CategoryAssocNormalize:
		n, ok := goal.(ir.Normalize)
		if !ok {
			return false
		}
		for _, impl := range f.db.ImplsForTrait(n.Alias.Trait) {
			if impl.Polarity == programdb.Positive {
				if _, ok := impl.AssocValue(n.Alias.Assoc); ok {
					return true
				}
			}
		}
		return false

	case CategoryAutoTraitDefault:
		ref, ok := implementedRef(goal)
		if !ok || !f.isAuto(ref.Trait) {
			return false
		}
		self := ref.SelfType()
		_, isAdt := adtOf(self)
		return isAdt || isWildcard(self)

	case CategoryBuiltinSized, CategoryBuiltinCopyClone, CategoryBuiltinTuple, CategoryBuiltinAuto:
		ref, ok := implementedRef(goal)
		if !ok {
			return false
		}
		if c, ok := builtinCategory(f.db, ref.Trait); !ok || c != cat {
			return false
		}
		switch self := ref.SelfType().(type) {
		case ir.FnPtr:
			return fnPtrRule(cat) == ruleFact
		case ir.Apply:
			if self.Name.Kind == ir.KindAdt {
				return cat == CategoryBuiltinSized
			}
			switch shapeRuleFor(cat, self.Name) {
			case ruleFact, ruleComponents, ruleLastComponent:
				return true
			}
		}
		return false

	case CategoryBuiltinFn:
		id, ok := goalTrait(goal)
		if !ok {
			return false
		}
		switch goal.(type) {
		case ir.Normalize:
			if datum, ok := f.db.TraitDatum(id); !ok || datum.WellKnown != programdb.WellKnownFnOnce {
				return false
			}
		case ir.Holds:
			if _, ok := implementedRef(goal); !ok {
				return false
			}
			if c, ok := builtinCategory(f.db, id); !ok || c != CategoryBuiltinFn {
				return false
			}
		default:
			return false
		}
		switch self := goalSelfTy(goal).(type) {
		case ir.FnPtr:
			return true
		case ir.Apply:
			return shapeRuleFor(CategoryBuiltinFn, self.Name) == ruleSignature
		}
		return false

	case CategoryBuiltinUnsize:
		ref, ok := implementedRef(goal)
		if !ok || len(ref.Args) != 2 {
			return false
		}
		if c, ok := builtinCategory(f.db, ref.Trait); !ok || c != CategoryBuiltinUnsize {
			return false
		}
		if _, ok := ref.Args[1].(ir.Dyn); ok {
			return true
		}
		return MatchKind(ref.SelfType(), ir.KindArray)

	case CategoryDyn:
		switch goal.(type) {
		case ir.Holds:
			if _, ok := implementedRef(goal); !ok {
				return false
			}
		case ir.Normalize, ir.WellFormedTy:
		default:
			return false
		}
		_, ok := goalSelfTy(goal).(ir.Dyn)
		return ok
	}
	return false
}

// Flounders reports whether goal asks for every type satisfying a trait
// whose clauses are generated per type constructor: a builtin or auto trait
// with a self type that is still a variable or projection. Those clause
// families are unbounded (tuples of every arity, arrays of every length),
// so no finite clause set is complete and the solver must wait until the
// self type is known.
func (f *Filter) Flounders(goal ir.DomainGoal) bool {
	switch g := goal.(type) {
	case ir.Holds:
		ref, ok := implementedRef(goal)
		if !ok {
			return false
		}
		cat, ok := builtinCategory(f.db, ref.Trait)
		if !ok {
			return false
		}
		if isWildcard(ref.SelfType()) {
			return true
		}
		if cat == CategoryBuiltinUnsize && len(ref.Args) == 2 {
			target, ok := ref.Args[1].(ir.Ty)
			return ok && isWildcard(target)
		}
		return false

	case ir.Normalize:
		datum, ok := f.db.TraitDatum(g.Alias.Trait)
		return ok && datum.WellKnown == programdb.WellKnownFnOnce && isWildcard(g.Alias.SelfType())
	}
	return false
}

func (f *Filter) knownTrait(goal ir.DomainGoal) bool {
	id, ok := goalTrait(goal)
	if !ok {
		return false
	}
	_, ok = f.db.TraitDatum(id)
	return ok
}

func (f *Filter) isAuto(id ir.TraitID) bool {
	t, ok := f.db.TraitDatum(id)
	return ok && t.Flags.Auto
}
