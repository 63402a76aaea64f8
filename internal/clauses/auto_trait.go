package clauses

import (
	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

// hasExplicitImpl reports whether the ADT id has an impl of auto, positive
// or negative. Such ADTs get no structural default.
func hasExplicitImpl(db programdb.Database, auto ir.TraitID, id ir.AdtID) bool {
	for _, impl := range db.ImplsForTrait(auto) {
		if MatchAdt(impl.TraitRef.SelfType(), id) {
			return true
		}
	}
	return false
}

// autoTraitDefaults emits, for each ADT without an explicit impl of auto,
//
//	forall<P> { Implemented(Adt<P>: Auto) :- Implemented(F1: Auto), .., Implemented(Fn: Auto) }
//
// with one condition per field of every variant, in declaration order.
// An empty only selects every ADT. Traits not declared auto get nothing.
func (b *clauseBuilder) autoTraitDefaults(auto ir.TraitID, only ir.AdtID) {
	b.category = CategoryAutoTraitDefault
	if datum, ok := b.db.TraitDatum(auto); !ok || !datum.Flags.Auto {
		return
	}
	for _, id := range b.db.Adts() {
		if (only != "" && id != only) || hasExplicitImpl(b.db, auto, id) {
			continue
		}
		adt, _ := b.db.AdtDatum(id)
		b.push(adt.Binders, implementedBy(adt.SelfTy(0), auto), implementedAll(auto, adt.FieldTypes())...)
	}
}

// implementedAll folds a type sequence into a clause body: one Implemented
// condition per type, in order, duplicates kept.
func implementedAll(trait ir.TraitID, tys []ir.Ty) []ir.DomainGoal {
	conds := make([]ir.DomainGoal, 0, len(tys))
	for _, ty := range tys {
		conds = append(conds, implementedBy(ty, trait))
	}
	return conds
}

// AutoTraitDefaults returns the structural default clauses of auto for
// every ADT, independent of any goal.
func AutoTraitDefaults(db programdb.Database, auto ir.TraitID) []ir.ProgramClause {
	b := newClauseBuilder(db)
	b.autoTraitDefaults(auto, "")
	return b.program()
}
