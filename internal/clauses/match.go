package clauses

import "clausegen/internal/ir"

// Shape predicates. All of them are total: a malformed or unexpected term
// simply does not match.

// MatchTypeName reports whether ty is an application of name.
func MatchTypeName(ty ir.Ty, name ir.TypeName) bool {
	app, ok := ty.(ir.Apply)
	return ok && app.Name == name
}

// MatchKind reports whether ty is an application of any constructor of
// kind: any tuple arity, any array length, any scalar.
func MatchKind(ty ir.Ty, kind ir.TypeKind) bool {
	app, ok := ty.(ir.Apply)
	return ok && app.Name.Kind == kind
}

// MatchAdt reports whether ty is the struct or enum id, with any arguments.
func MatchAdt(ty ir.Ty, id ir.AdtID) bool {
	return MatchTypeName(ty, ir.AdtTy(id).Name)
}

// MatchAlias reports whether p projects associated type assoc of trait.
func MatchAlias(p ir.Projection, trait ir.TraitID, assoc ir.AssocTypeID) bool {
	return p.Trait == trait && p.Assoc == assoc
}

// adtOf returns the ADT id at the head of ty, if any.
func adtOf(ty ir.Ty) (ir.AdtID, bool) {
	if !MatchKind(ty, ir.KindAdt) {
		return "", false
	}
	return ty.(ir.Apply).Name.Adt, true
}

// CouldMatchTy over-approximates unifiability of a and b: variables and
// projections match anything, constructors must agree recursively.
func CouldMatchTy(a, b ir.Ty) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isWildcard(a) || isWildcard(b) {
		return true
	}
	switch x := a.(type) {
	case ir.Placeholder:
		y, ok := b.(ir.Placeholder)
		return ok && x.Name == y.Name
	case ir.SelfTy:
		_, ok := b.(ir.SelfTy)
		return ok
	case ir.Apply:
		y, ok := b.(ir.Apply)
		return ok && x.Name == y.Name && CouldMatchArgs(x.Args, y.Args)
	case ir.FnPtr:
		y, ok := b.(ir.FnPtr)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !CouldMatchTy(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return CouldMatchTy(x.Return, y.Return)
	case ir.Dyn:
		y, ok := b.(ir.Dyn)
		if !ok || len(x.Bounds) != len(y.Bounds) {
			return false
		}
		for i := range x.Bounds {
			if !couldMatchWhereClause(x.Bounds[i], y.Bounds[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func isWildcard(ty ir.Ty) bool {
	switch ty.(type) {
	case ir.BoundVar, ir.InferVar, ir.Projection:
		return true
	}
	return false
}

// CouldMatchArgs compares argument lists pairwise. Lifetimes always match.
func CouldMatchArgs(a, b []ir.Arg) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, xTy := a[i].(ir.Ty)
		y, yTy := b[i].(ir.Ty)
		if xTy != yTy {
			return false
		}
		if xTy && !CouldMatchTy(x, y) {
			return false
		}
	}
	return true
}

func couldMatchTraitRef(a, b ir.TraitRef) bool {
	return a.Trait == b.Trait && CouldMatchArgs(a.Args, b.Args)
}

func couldMatchProjection(a, b ir.Projection) bool {
	return a.Trait == b.Trait && a.Assoc == b.Assoc && CouldMatchArgs(a.Args, b.Args)
}

func couldMatchWhereClause(a, b ir.WhereClause) bool {
	switch x := a.(type) {
	case ir.Implemented:
		y, ok := b.(ir.Implemented)
		return ok && couldMatchTraitRef(x.TraitRef, y.TraitRef)
	case ir.AliasEq:
		y, ok := b.(ir.AliasEq)
		return ok && couldMatchProjection(x.Alias, y.Alias) && CouldMatchTy(x.Ty, y.Ty)
	}
	return false
}

// CouldMatchGoal reports whether a clause with the given head could be used
// to prove goal. No unification is performed.
func CouldMatchGoal(head, goal ir.DomainGoal) bool {
	switch h := head.(type) {
	case ir.Holds:
		g, ok := goal.(ir.Holds)
		return ok && couldMatchWhereClause(h.Clause, g.Clause)
	case ir.Normalize:
		g, ok := goal.(ir.Normalize)
		return ok && couldMatchProjection(h.Alias, g.Alias) && CouldMatchTy(h.Ty, g.Ty)
	case ir.WellFormedTy:
		g, ok := goal.(ir.WellFormedTy)
		return ok && CouldMatchTy(h.Ty, g.Ty)
	case ir.WellFormedTrait:
		g, ok := goal.(ir.WellFormedTrait)
		return ok && couldMatchTraitRef(h.TraitRef, g.TraitRef)
	case ir.FromEnvTy:
		g, ok := goal.(ir.FromEnvTy)
		return ok && CouldMatchTy(h.Ty, g.Ty)
	case ir.FromEnvTrait:
		g, ok := goal.(ir.FromEnvTrait)
		return ok && couldMatchTraitRef(h.TraitRef, g.TraitRef)
	}
	return false
}

// goalTrait returns the trait a goal is about, if it names one.
func goalTrait(goal ir.DomainGoal) (ir.TraitID, bool) {
	switch g := goal.(type) {
	case ir.Holds:
		switch wc := g.Clause.(type) {
		case ir.Implemented:
			return wc.TraitRef.Trait, true
		case ir.AliasEq:
			return wc.Alias.Trait, true
		}
	case ir.Normalize:
		return g.Alias.Trait, true
	case ir.WellFormedTrait:
		return g.TraitRef.Trait, true
	case ir.FromEnvTrait:
		return g.TraitRef.Trait, true
	}
	return "", false
}

// goalSelfTy returns the type a goal is about: the self type of a trait
// goal, the projected type of an alias goal, or the type of a WF goal.
func goalSelfTy(goal ir.DomainGoal) ir.Ty {
	switch g := goal.(type) {
	case ir.Holds:
		switch wc := g.Clause.(type) {
		case ir.Implemented:
			return wc.TraitRef.SelfType()
		case ir.AliasEq:
			return wc.Alias.SelfType()
		}
	case ir.Normalize:
		return g.Alias.SelfType()
	case ir.WellFormedTy:
		return g.Ty
	case ir.WellFormedTrait:
		return g.TraitRef.SelfType()
	case ir.FromEnvTy:
		return g.Ty
	case ir.FromEnvTrait:
		return g.TraitRef.SelfType()
	}
	return nil
}

// implementedRef returns the trait ref of an Implemented goal.
func implementedRef(goal ir.DomainGoal) (ir.TraitRef, bool) {
	h, ok := goal.(ir.Holds)
	if !ok {
		return ir.TraitRef{}, false
	}
	impl, ok := h.Clause.(ir.Implemented)
	if !ok {
		return ir.TraitRef{}, false
	}
	return impl.TraitRef, true
}
