package clauses

import "clausegen/internal/ir"

// Generalizer replaces the inference variables of goal-supplied terms with
// fresh clause binders. Each Generalizer is its own allocator: binders are
// numbered from offset in order of first occurrence, and two Generalizers
// never share state, so concurrent synthesis calls cannot observe each
// other's variables.
type Generalizer struct {
	offset    int
	binders   []ir.VarKind
	subst     []ir.Arg
	types     map[int]int
	lifetimes map[int]int
}

// NewGeneralizer returns an allocator whose first binder has index offset.
func NewGeneralizer(offset int) *Generalizer {
	return &Generalizer{
		offset:    offset,
		types:     make(map[int]int),
		lifetimes: make(map[int]int),
	}
}

func (g *Generalizer) fresh(kind ir.VarKind, orig ir.Arg) int {
	idx := g.offset + len(g.binders)
	g.binders = append(g.binders, kind)
	g.subst = append(g.subst, orig)
	return idx
}

func (g *Generalizer) folder() ir.Folder {
	return ir.Folder{
		Ty: func(ty ir.Ty) (ir.Ty, bool) {
			v, ok := ty.(ir.InferVar)
			if !ok {
				return nil, false
			}
			idx, seen := g.types[v.ID]
			if !seen {
				idx = g.fresh(ir.KindType, v)
				g.types[v.ID] = idx
			}
			return ir.BoundVar{Index: idx}, true
		},
		Lifetime: func(lt ir.Lifetime) ir.Lifetime {
			if lt.Kind != ir.LifetimeInfer {
				return lt
			}
			idx, seen := g.lifetimes[lt.Index]
			if !seen {
				idx = g.fresh(ir.KindLifetime, lt)
				g.lifetimes[lt.Index] = idx
			}
			return ir.BoundLifetime(idx)
		},
	}
}

// Ty generalizes ty. Repeated calls share the same variable mapping, so
// several terms from one goal can be generalized consistently.
func (g *Generalizer) Ty(ty ir.Ty) ir.Ty {
	return g.folder().FoldTy(ty)
}

// TraitRef generalizes every argument of ref.
func (g *Generalizer) TraitRef(ref ir.TraitRef) ir.TraitRef {
	return g.folder().FoldTraitRef(ref)
}

// Binders returns the kinds of the binders allocated so far.
func (g *Generalizer) Binders() []ir.VarKind {
	return append([]ir.VarKind(nil), g.binders...)
}

// Substitution returns, at position i, the inference variable replaced by
// binder offset+i. With offset 0 it is exactly the substitution that undoes
// the generalization.
func (g *Generalizer) Substitution() []ir.Arg {
	return append([]ir.Arg(nil), g.subst...)
}

// Generalize is the one-shot form: ty with its inference variables bound
// from index 0, the binder kinds, and the substitution undoing it.
func Generalize(ty ir.Ty) (ir.Ty, []ir.VarKind, []ir.Arg) {
	g := NewGeneralizer(0)
	out := g.Ty(ty)
	return out, g.Binders(), g.Substitution()
}
