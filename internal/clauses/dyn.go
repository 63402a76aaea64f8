package clauses

import "clausegen/internal/ir"

// dynClauses emits what a trait object implements. The dyn type comes from
// the goal, so it is generalized first: the clauses quantify over its
// inference variables instead of mentioning them, and the same object shape
// always yields the same clauses up to renaming.
//
//	Implemented(dyn B: S)              for each trait bound and its supertraits
//	Normalize(<dyn B as I>::A -> V)    for each associated type binding
//	WellFormed(dyn B) :- WellFormed(dyn B: I)...
func (b *clauseBuilder) dynClauses(d ir.Dyn) {
	b.category = CategoryDyn
	g := NewGeneralizer(0)
	self := g.Ty(d)
	binders := g.Binders()
	open := ir.SelfReplacer(self)

	var bounds []ir.WhereClause
	var wf []ir.DomainGoal
	for _, wc := range self.(ir.Dyn).Bounds {
		switch w := wc.(type) {
		case ir.Implemented:
			ref := open.FoldTraitRef(w.TraitRef)
			bounds = append(bounds, ir.Implemented{TraitRef: ref})
			wf = append(wf, ir.WellFormedTrait{TraitRef: ref})
		case ir.AliasEq:
			b.push(binders, ir.Normalize{Alias: open.FoldProjection(w.Alias), Ty: open.FoldTy(w.Ty)})
		}
	}

	for _, wc := range Elaborate(b.db, ir.Environment{Clauses: bounds}).Clauses {
		b.push(binders, ir.Holds{Clause: wc})
	}
	b.push(binders, ir.WellFormedTy{Ty: self}, wf...)
}

// DynClauses returns the clauses describing the trait object d.
func (s *Synthesizer) DynClauses(d ir.Dyn) []ir.ProgramClause {
	b := newClauseBuilder(s.db)
	b.dynClauses(d)
	return b.program()
}
