package clauses

import (
	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

// traitClauses emits the well-formedness rule of a trait and the rule that
// lets an assumed bound discharge an Implemented goal:
//
//	WellFormed(Self: Tr<P>) :- Implemented(Self: Tr<P>), WellFormed(wc)...
//	Implemented(Self: Tr<P>) :- FromEnv(Self: Tr<P>)
func (b *clauseBuilder) traitClauses(trait *programdb.TraitDatum) {
	b.category = CategoryTraitWF
	self := trait.SelfRef(0)

	conds := []ir.DomainGoal{ir.ImplementedGoal(self)}
	for _, wc := range trait.WhereClauses {
		switch w := wc.(type) {
		case ir.Implemented:
			conds = append(conds, ir.WellFormedTrait{TraitRef: w.TraitRef})
		case ir.AliasEq:
			conds = append(conds, ir.Holds{Clause: w})
		}
	}
	b.push(trait.Binders, ir.WellFormedTrait{TraitRef: self}, conds...)
	b.push(trait.Binders, ir.ImplementedGoal(self), ir.FromEnvTrait{TraitRef: self})
}

// impliedBoundClauses emits `FromEnv(wc) :- FromEnv(Self: Tr<P>)` for every
// trait bound of the trait's where-clauses.
func (b *clauseBuilder) impliedBoundClauses(trait *programdb.TraitDatum) {
	b.category = CategoryTraitWF
	self := trait.SelfRef(0)
	for _, wc := range trait.WhereClauses {
		if w, ok := wc.(ir.Implemented); ok {
			b.push(trait.Binders, ir.FromEnvTrait{TraitRef: w.TraitRef}, ir.FromEnvTrait{TraitRef: self})
		}
	}
}

// traitRules emits the trait-level rules relevant to goal: those of the
// goal's trait, and for FromEnv goals the implied bounds of every trait
// that could imply it.
func (b *clauseBuilder) traitRules(goal ir.DomainGoal) {
	id, ok := goalTrait(goal)
	if !ok {
		return
	}
	if trait, ok := b.db.TraitDatum(id); ok {
		b.traitClauses(trait)
	}
	if _, ok := goal.(ir.FromEnvTrait); !ok {
		return
	}
	for _, other := range b.db.Traits() {
		trait, _ := b.db.TraitDatum(other)
		for _, wc := range trait.WhereClauses {
			if w, ok := wc.(ir.Implemented); ok && w.TraitRef.Trait == id {
				b.impliedBoundClauses(trait)
				break
			}
		}
	}
}

// adtClauses emits the well-formedness rule of a struct or enum and its
// implied bounds:
//
//	WellFormed(Adt<P>) :- wc...
//	FromEnv(wc) :- FromEnv(Adt<P>)
func (b *clauseBuilder) adtClauses(adt *programdb.AdtDatum) {
	b.category = CategoryAdtWF
	self := adt.SelfTy(0)
	b.push(adt.Binders, ir.WellFormedTy{Ty: self}, holds(adt.WhereClauses)...)
	for _, wc := range adt.WhereClauses {
		if w, ok := wc.(ir.Implemented); ok {
			b.push(adt.Binders, ir.FromEnvTrait{TraitRef: w.TraitRef}, ir.FromEnvTy{Ty: self})
		}
	}
}

// adtRules emits ADT rules for goal: the rules of the ADT a WF goal names,
// or of every ADT when the goal's type is not yet known or the goal asks
// for an implied bound.
func (b *clauseBuilder) adtRules(goal ir.DomainGoal) {
	if wf, ok := goal.(ir.WellFormedTy); ok {
		if id, ok := adtOf(wf.Ty); ok {
			if adt, ok := b.db.AdtDatum(id); ok {
				b.adtClauses(adt)
			}
			return
		}
	}
	for _, id := range b.db.Adts() {
		adt, _ := b.db.AdtDatum(id)
		b.adtClauses(adt)
	}
}

// adtsHaveBounds reports whether any ADT declares a trait bound, i.e.
// whether adtClauses can produce a FromEnv head at all.
func adtsHaveBounds(db programdb.Database) bool {
	for _, id := range db.Adts() {
		adt, _ := db.AdtDatum(id)
		for _, wc := range adt.WhereClauses {
			if _, ok := wc.(ir.Implemented); ok {
				return true
			}
		}
	}
	return false
}
