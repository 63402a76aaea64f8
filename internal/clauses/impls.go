package clauses

import (
	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

// implClauses emits `Implemented(T: Tr<P>) :- C1, .., Cn` for every
// positive impl of trait. Negative impls contribute nothing here; their
// only effect is suppressing auto-trait defaults.
func (b *clauseBuilder) implClauses(trait ir.TraitID) {
	b.category = CategoryImpl
	for _, impl := range b.db.ImplsForTrait(trait) {
		if impl.Polarity != programdb.Positive {
			continue
		}
		b.push(impl.Binders, ir.ImplementedGoal(impl.TraitRef), holds(impl.WhereClauses)...)
	}
}

// hasPositiveImplMatching reports whether some positive impl of ref's trait
// has a trait ref that could match ref.
func hasPositiveImplMatching(db programdb.Database, ref ir.TraitRef) bool {
	for _, impl := range db.ImplsForTrait(ref.Trait) {
		if impl.Polarity == programdb.Positive && couldMatchTraitRef(impl.TraitRef, ref) {
			return true
		}
	}
	return false
}
