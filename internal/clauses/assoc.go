package clauses

import (
	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

// assocNormalizeClauses emits, for each positive impl of trait binding an
// associated type, `Normalize(<T as Tr<P>>::A -> V) :- C1, .., Cn` under
// the impl's binders. An empty assoc selects every binding. Impls that do
// not bind the associated type yield nothing.
func (b *clauseBuilder) assocNormalizeClauses(trait ir.TraitID, assoc ir.AssocTypeID) {
	b.category = CategoryAssocNormalize
	for _, impl := range b.db.ImplsForTrait(trait) {
		if impl.Polarity != programdb.Positive {
			continue
		}
		for _, v := range impl.AssocValues {
			alias := ir.Projection{Trait: trait, Assoc: v.Assoc, Args: impl.TraitRef.Args}
			if assoc != "" && !MatchAlias(alias, trait, assoc) {
				continue
			}
			b.push(impl.Binders, ir.Normalize{Alias: alias, Ty: v.Ty}, holds(impl.WhereClauses)...)
		}
	}
}

// projectionClause emits the rule relating the alias-equality predicate to
// normalization:
//
//	forall<P, U> { AliasEq(<Self as Tr<P>>::A = U) :- Normalize(<Self as Tr<P>>::A -> U) }
func (b *clauseBuilder) projectionClause(trait *programdb.TraitDatum, assoc ir.AssocTypeID) {
	b.category = CategoryProjection
	alias := ir.Projection{Trait: trait.ID, Assoc: assoc, Args: ir.BoundArgs(trait.Binders, 0)}
	target := ir.BoundVar{Index: len(trait.Binders)}
	binders := append(append([]ir.VarKind(nil), trait.Binders...), ir.KindType)
	b.push(binders,
		ir.Holds{Clause: ir.AliasEq{Alias: alias, Ty: target}},
		ir.Normalize{Alias: alias, Ty: target})
}

// NormalizationClauses returns the normalization clauses of every impl of
// trait, independent of any goal.
func NormalizationClauses(db programdb.Database, trait ir.TraitID) []ir.ProgramClause {
	b := newClauseBuilder(db)
	b.assocNormalizeClauses(trait, "")
	return b.program()
}
