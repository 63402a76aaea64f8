package clauses

import (
	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

// Elaborate closes env under supertrait implication: if `T: Tr` is assumed
// and Tr declares `Self: Sup`, then `T: Sup` is assumed too. The original
// assumptions come first, followed by the implied ones in breadth-first
// order. The supertrait graph is acyclic, but the visited set makes the
// loop terminate regardless.
func Elaborate(db programdb.Database, env ir.Environment) ir.Environment {
	seen := make(map[string]bool, len(env.Clauses))
	var out []ir.WhereClause
	add := func(wc ir.WhereClause) {
		key := wc.String()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, wc)
	}
	for _, wc := range env.Clauses {
		add(wc)
	}

	for i := 0; i < len(out); i++ {
		impl, ok := out[i].(ir.Implemented)
		if !ok {
			continue
		}
		for _, sup := range supertraitsOf(db, impl.TraitRef) {
			add(ir.Implemented{TraitRef: sup})
		}
	}
	return ir.Environment{Clauses: out}
}

// supertraitsOf instantiates the direct supertraits of ref's trait with
// ref's arguments.
func supertraitsOf(db programdb.Database, ref ir.TraitRef) []ir.TraitRef {
	trait, ok := db.TraitDatum(ref.Trait)
	if !ok || len(ref.Args) != len(trait.Binders) {
		return nil
	}
	subst := ir.Substituter(ref.Args)
	var out []ir.TraitRef
	for _, sup := range trait.Supertraits() {
		out = append(out, subst.FoldTraitRef(sup))
	}
	return out
}

// envClauses re-expresses an elaborated environment as facts: every
// assumption holds, and every assumed trait bound is also FromEnv.
func (b *clauseBuilder) envClauses(env ir.Environment) {
	b.category = CategoryEnv
	for _, wc := range env.Clauses {
		b.push(nil, ir.Holds{Clause: wc})
		if impl, ok := wc.(ir.Implemented); ok {
			b.push(nil, ir.FromEnvTrait{TraitRef: impl.TraitRef})
		}
	}
}
