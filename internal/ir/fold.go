package ir

// Folder rewrites terms bottom-up. Ty is consulted before descending: when it
// returns ok, the replacement is used as is. Lifetime, when set, rewrites
// every lifetime.
type Folder struct {
	Ty       func(Ty) (Ty, bool)
	Lifetime func(Lifetime) Lifetime
}

func (f Folder) FoldTy(ty Ty) Ty {
	if ty == nil {
		return nil
	}
	if f.Ty != nil {
		if out, ok := f.Ty(ty); ok {
			return out
		}
	}
	switch t := ty.(type) {
	case Apply:
		return Apply{Name: t.Name, Args: f.FoldArgs(t.Args)}
	case FnPtr:
		params := make([]Ty, len(t.Params))
		for i, p := range t.Params {
			params[i] = f.FoldTy(p)
		}
		return FnPtr{Params: params, Return: f.FoldTy(t.Return)}
	case Dyn:
		bounds := make([]WhereClause, len(t.Bounds))
		for i, b := range t.Bounds {
			bounds[i] = f.FoldWhereClause(b)
		}
		return Dyn{Bounds: bounds, Lifetime: f.FoldLifetime(t.Lifetime)}
	case Projection:
		return f.FoldProjection(t)
	default:
		return ty
	}
}

func (f Folder) FoldLifetime(lt Lifetime) Lifetime {
	if f.Lifetime == nil {
		return lt
	}
	return f.Lifetime(lt)
}

func (f Folder) FoldArg(arg Arg) Arg {
	switch a := arg.(type) {
	case Lifetime:
		return f.FoldLifetime(a)
	case Ty:
		return f.FoldTy(a)
	}
	return arg
}

func (f Folder) FoldArgs(args []Arg) []Arg {
	if args == nil {
		return nil
	}
	out := make([]Arg, len(args))
	for i, a := range args {
		out[i] = f.FoldArg(a)
	}
	return out
}

func (f Folder) FoldTraitRef(t TraitRef) TraitRef {
	return TraitRef{Trait: t.Trait, Args: f.FoldArgs(t.Args)}
}

func (f Folder) FoldProjection(p Projection) Projection {
	return Projection{Trait: p.Trait, Assoc: p.Assoc, Args: f.FoldArgs(p.Args)}
}

func (f Folder) FoldWhereClause(wc WhereClause) WhereClause {
	switch w := wc.(type) {
	case Implemented:
		return Implemented{TraitRef: f.FoldTraitRef(w.TraitRef)}
	case AliasEq:
		return AliasEq{Alias: f.FoldProjection(w.Alias), Ty: f.FoldTy(w.Ty)}
	}
	return wc
}

func (f Folder) FoldGoal(g DomainGoal) DomainGoal {
	switch d := g.(type) {
	case Holds:
		return Holds{Clause: f.FoldWhereClause(d.Clause)}
	case Normalize:
		return Normalize{Alias: f.FoldProjection(d.Alias), Ty: f.FoldTy(d.Ty)}
	case WellFormedTy:
		return WellFormedTy{Ty: f.FoldTy(d.Ty)}
	case WellFormedTrait:
		return WellFormedTrait{TraitRef: f.FoldTraitRef(d.TraitRef)}
	case FromEnvTy:
		return FromEnvTy{Ty: f.FoldTy(d.Ty)}
	case FromEnvTrait:
		return FromEnvTrait{TraitRef: f.FoldTraitRef(d.TraitRef)}
	}
	return g
}

func (f Folder) FoldClause(c ProgramClause) ProgramClause {
	conds := make([]DomainGoal, len(c.Conditions))
	for i, g := range c.Conditions {
		conds[i] = f.FoldGoal(g)
	}
	binders := append([]VarKind(nil), c.Binders...)
	return ProgramClause{Binders: binders, Head: f.FoldGoal(c.Head), Conditions: conds}
}

// Substituter replaces BoundVar i (and bound lifetime i) with args[i].
// Indices outside args are left alone.
func Substituter(args []Arg) Folder {
	return Folder{
		Ty: func(ty Ty) (Ty, bool) {
			bv, ok := ty.(BoundVar)
			if !ok || bv.Index >= len(args) {
				return nil, false
			}
			if rep, ok := args[bv.Index].(Ty); ok {
				return rep, true
			}
			return nil, false
		},
		Lifetime: func(lt Lifetime) Lifetime {
			if lt.Kind != LifetimeBound || lt.Index >= len(args) {
				return lt
			}
			if rep, ok := args[lt.Index].(Lifetime); ok {
				return rep
			}
			return lt
		},
	}
}

// Shifter moves every bound variable index up by n.
func Shifter(n int) Folder {
	return Folder{
		Ty: func(ty Ty) (Ty, bool) {
			if bv, ok := ty.(BoundVar); ok {
				return BoundVar{Index: bv.Index + n}, true
			}
			return nil, false
		},
		Lifetime: func(lt Lifetime) Lifetime {
			if lt.Kind == LifetimeBound {
				return BoundLifetime(lt.Index + n)
			}
			return lt
		},
	}
}

// SelfReplacer substitutes SelfTy, used to open Dyn bounds. Nested Dyn
// types bind their own Self and are left untouched.
func SelfReplacer(self Ty) Folder {
	return Folder{
		Ty: func(ty Ty) (Ty, bool) {
			switch ty.(type) {
			case SelfTy:
				return self, true
			case Dyn:
				return ty, true
			}
			return nil, false
		},
	}
}

// BoundArgs returns BoundVar/bound lifetime args for the given binder kinds
// starting at offset: the identity substitution of an item's parameters.
func BoundArgs(kinds []VarKind, offset int) []Arg {
	args := make([]Arg, len(kinds))
	for i, k := range kinds {
		if k == KindLifetime {
			args[i] = BoundLifetime(offset + i)
		} else {
			args[i] = BoundVar{Index: offset + i}
		}
	}
	return args
}

// HasInferVars reports whether the term contains inference types or
// lifetimes.
func HasInferVars(ty Ty) bool {
	found := false
	Folder{
		Ty: func(t Ty) (Ty, bool) {
			if _, ok := t.(InferVar); ok {
				found = true
				return t, true
			}
			return nil, false
		},
		Lifetime: func(lt Lifetime) Lifetime {
			if lt.Kind == LifetimeInfer {
				found = true
			}
			return lt
		},
	}.FoldTy(ty)
	return found
}
