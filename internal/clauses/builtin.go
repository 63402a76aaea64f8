package clauses

import (
	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

// Builtin rules are generated per goal from the head constructor of the
// goal's self type. The clause is generic over that constructor's
// arguments, so it never mentions the goal's own variables.

// shapeRule says how a type constructor satisfies a builtin trait.
type shapeRule int

const (
	ruleUnknown shapeRule = iota
	// the constructor never implements the trait
	ruleAbsent
	// implemented unconditionally
	ruleFact
	// implemented when every type component is
	ruleComponents
	// implemented when the last type component is (Sized)
	ruleLastComponent
	// implemented according to the callable's signature (Fn traits)
	ruleSignature
	// decided by another builder: user impls, auto-trait defaults or the
	// dyn builder
	ruleDelegated
)

// builtinShapeCategories are the categories driven by shapeRuleFor.
var builtinShapeCategories = []Category{
	CategoryBuiltinSized,
	CategoryBuiltinCopyClone,
	CategoryBuiltinFn,
	CategoryBuiltinTuple,
	CategoryBuiltinAuto,
}

// shapeRuleFor is the builtin table: one entry per (category, constructor).
func shapeRuleFor(cat Category, name ir.TypeName) shapeRule {
	switch cat {
	case CategoryBuiltinSized:
		switch name.Kind {
		case ir.KindStr, ir.KindSlice:
			return ruleAbsent
		case ir.KindTuple, ir.KindAdt:
			return ruleLastComponent
		case ir.KindScalar, ir.KindArray, ir.KindRef, ir.KindRawPtr, ir.KindFnDef, ir.KindClosure, ir.KindNever:
			return ruleFact
		}
	case CategoryBuiltinCopyClone:
		switch name.Kind {
		case ir.KindAdt:
			return ruleDelegated
		case ir.KindStr, ir.KindSlice:
			return ruleAbsent
		case ir.KindRef:
			if name.Mut == ir.Mut {
				return ruleAbsent
			}
			return ruleFact
		case ir.KindScalar, ir.KindRawPtr, ir.KindFnDef, ir.KindNever:
			return ruleFact
		case ir.KindTuple, ir.KindArray, ir.KindClosure:
			return ruleComponents
		}
	case CategoryBuiltinFn:
		switch name.Kind {
		case ir.KindAdt:
			return ruleDelegated
		case ir.KindFnDef, ir.KindClosure:
			return ruleSignature
		case ir.KindScalar, ir.KindStr, ir.KindTuple, ir.KindArray, ir.KindSlice, ir.KindRef, ir.KindRawPtr, ir.KindNever:
			return ruleAbsent
		}
	case CategoryBuiltinTuple:
		switch name.Kind {
		case ir.KindTuple:
			return ruleFact
		case ir.KindAdt, ir.KindScalar, ir.KindStr, ir.KindArray, ir.KindSlice, ir.KindRef, ir.KindRawPtr, ir.KindFnDef, ir.KindClosure, ir.KindNever:
			return ruleAbsent
		}
	case CategoryBuiltinAuto:
		switch name.Kind {
		case ir.KindAdt:
			return ruleDelegated
		case ir.KindScalar, ir.KindStr, ir.KindFnDef, ir.KindNever:
			return ruleFact
		case ir.KindTuple, ir.KindArray, ir.KindSlice, ir.KindRef, ir.KindRawPtr, ir.KindClosure:
			return ruleComponents
		}
	}
	return ruleUnknown
}

// fnPtrRule covers function pointers, which are not an Apply constructor.
func fnPtrRule(cat Category) shapeRule {
	switch cat {
	case CategoryBuiltinSized, CategoryBuiltinCopyClone, CategoryBuiltinAuto:
		return ruleFact
	case CategoryBuiltinFn:
		return ruleSignature
	case CategoryBuiltinTuple:
		return ruleAbsent
	}
	return ruleUnknown
}

// builtinCategory maps a trait to the builtin category that handles it.
func builtinCategory(db programdb.Database, trait ir.TraitID) (Category, bool) {
	datum, ok := db.TraitDatum(trait)
	if !ok {
		return 0, false
	}
	switch datum.WellKnown {
	case programdb.WellKnownSized:
		return CategoryBuiltinSized, true
	case programdb.WellKnownCopy, programdb.WellKnownClone:
		return CategoryBuiltinCopyClone, true
	case programdb.WellKnownFnOnce, programdb.WellKnownFnMut, programdb.WellKnownFn:
		return CategoryBuiltinFn, true
	case programdb.WellKnownUnsize:
		return CategoryBuiltinUnsize, true
	case programdb.WellKnownTuple:
		return CategoryBuiltinTuple, true
	}
	if datum.Flags.Auto {
		return CategoryBuiltinAuto, true
	}
	return 0, false
}

// genericApply replaces every argument of app with a fresh binder of the
// same kind.
func genericApply(app ir.Apply) (ir.Apply, []ir.VarKind) {
	kinds := make([]ir.VarKind, len(app.Args))
	for i, a := range app.Args {
		if _, ok := a.(ir.Lifetime); ok {
			kinds[i] = ir.KindLifetime
		}
	}
	return ir.Apply{Name: app.Name, Args: ir.BoundArgs(kinds, 0)}, kinds
}

// genericFnPtr replaces every parameter and the return type with binders.
func genericFnPtr(fn ir.FnPtr) (ir.FnPtr, []ir.VarKind) {
	params := make([]ir.Ty, len(fn.Params))
	kinds := make([]ir.VarKind, len(fn.Params)+1)
	for i := range fn.Params {
		params[i] = ir.BoundVar{Index: i}
	}
	return ir.FnPtr{Params: params, Return: ir.BoundVar{Index: len(fn.Params)}}, kinds
}

// shapeClauses emits the builtin clause for trait over the constructor of
// self. Variables, placeholders, projections and dyn types get nothing, as
// does a trait that cat does not handle.
func (b *clauseBuilder) shapeClauses(cat Category, trait ir.TraitID, self ir.Ty) {
	b.category = cat
	if c, ok := builtinCategory(b.db, trait); !ok || c != cat {
		return
	}
	switch t := self.(type) {
	case ir.FnPtr:
		if fnPtrRule(cat) == ruleFact {
			generic, kinds := genericFnPtr(t)
			b.push(kinds, implementedBy(generic, trait))
		}
	case ir.Apply:
		if t.Name.Kind == ir.KindAdt {
			if cat == CategoryBuiltinSized {
				b.adtSized(trait, t.Name.Adt)
			}
			return
		}
		generic, kinds := genericApply(t)
		head := implementedBy(generic, trait)
		switch shapeRuleFor(cat, t.Name) {
		case ruleFact:
			b.push(kinds, head)
		case ruleComponents:
			b.push(kinds, head, implementedAll(trait, b.components(generic))...)
		case ruleLastComponent:
			comps := generic.TyArgs()
			if len(comps) == 0 {
				b.push(kinds, head)
				return
			}
			b.push(kinds, head, implementedBy(comps[len(comps)-1], trait))
		}
	}
}

// components returns the types a structural rule recurses into: the type
// arguments, or the captured upvars of a closure.
func (b *clauseBuilder) components(generic ir.Apply) []ir.Ty {
	if MatchKind(generic, ir.KindClosure) {
		if c, ok := b.db.ClosureDatum(generic.Name.Closure); ok {
			return c.Upvars
		}
		return nil
	}
	return generic.TyArgs()
}

// adtSized emits `Adt<P>: Sized :- LastField: Sized` for structs. Enums
// and field-less structs are always sized.
func (b *clauseBuilder) adtSized(sized ir.TraitID, id ir.AdtID) {
	adt, ok := b.db.AdtDatum(id)
	if !ok {
		return
	}
	head := implementedBy(adt.SelfTy(0), sized)
	if adt.Kind == programdb.Struct && len(adt.Variants) == 1 {
		if fields := adt.Variants[0].Fields; len(fields) > 0 {
			b.push(adt.Binders, head, implementedBy(fields[len(fields)-1].Ty, sized))
			return
		}
	}
	b.push(adt.Binders, head)
}

// signature is the callable view of a fn def, fn pointer or closure,
// generic over binders.
type signature struct {
	self    ir.Ty
	binders []ir.VarKind
	params  []ir.Ty
	ret     ir.Ty
	kind    programdb.ClosureKind
}

func (b *clauseBuilder) signatureOf(self ir.Ty) (signature, bool) {
	switch t := self.(type) {
	case ir.FnPtr:
		generic, kinds := genericFnPtr(t)
		return signature{self: generic, binders: kinds, params: generic.Params, ret: generic.Return, kind: programdb.ClosureFn}, true
	case ir.Apply:
		switch t.Name.Kind {
		case ir.KindFnDef:
			fn, ok := b.db.FnDefDatum(t.Name.FnDef)
			if !ok {
				return signature{}, false
			}
			generic := ir.FnDefTy(fn.ID, ir.BoundArgs(fn.Binders, 0)...)
			return signature{self: generic, binders: fn.Binders, params: fn.Params, ret: fn.Return, kind: programdb.ClosureFn}, true
		case ir.KindClosure:
			c, ok := b.db.ClosureDatum(t.Name.Closure)
			if !ok {
				return signature{}, false
			}
			return signature{self: t, params: c.Params, ret: c.Return, kind: c.Kind}, true
		}
	}
	return signature{}, false
}

// implementsFnTrait reports whether a callable of kind implements the fn
// trait wk: Fn closures implement all three, FnMut closures FnMut and
// FnOnce, FnOnce closures only FnOnce.
func implementsFnTrait(kind programdb.ClosureKind, wk programdb.WellKnown) bool {
	switch wk {
	case programdb.WellKnownFnOnce:
		return true
	case programdb.WellKnownFnMut:
		return kind == programdb.ClosureFn || kind == programdb.ClosureFnMut
	case programdb.WellKnownFn:
		return kind == programdb.ClosureFn
	}
	return false
}

// fnClauses emits `F: FnX<(Args..)>` for callables, and for FnOnce the
// normalization of its Output to the return type.
func (b *clauseBuilder) fnClauses(goal ir.DomainGoal) {
	b.category = CategoryBuiltinFn
	id, ok := goalTrait(goal)
	if !ok {
		return
	}
	trait, ok := b.db.TraitDatum(id)
	if !ok {
		return
	}
	sig, ok := b.signatureOf(goalSelfTy(goal))
	if !ok {
		return
	}
	args := ir.TupleTy(sig.params...)

	switch g := goal.(type) {
	case ir.Holds:
		if implementsFnTrait(sig.kind, trait.WellKnown) {
			b.push(sig.binders, implementedBy(sig.self, trait.ID, args))
		}
	case ir.Normalize:
		if trait.WellKnown != programdb.WellKnownFnOnce {
			return
		}
		alias := ir.Projection{Trait: trait.ID, Assoc: g.Alias.Assoc, Args: []ir.Arg{sig.self, args}}
		b.push(sig.binders, ir.Normalize{Alias: alias, Ty: sig.ret})
	}
}

// unsizeClauses emits the unsizing coercions for `S: Unsize<T>`:
//
//	[X; N]: Unsize<[X]>
//	S: Unsize<dyn B + 'a> :- S: B.., S: Sized
//	dyn A + B: Unsize<dyn A> :- dyn A + B: A (upcast)
//
// The dyn target, and a dyn source, are generalized first.
func (b *clauseBuilder) unsizeClauses(ref ir.TraitRef) {
	b.category = CategoryBuiltinUnsize
	if c, ok := builtinCategory(b.db, ref.Trait); !ok || c != CategoryBuiltinUnsize || len(ref.Args) != 2 {
		return
	}
	src := ref.SelfType()
	target, ok := ref.Args[1].(ir.Ty)
	if !ok || src == nil {
		return
	}

	if MatchKind(src, ir.KindArray) {
		elem := ir.BoundVar{Index: 0}
		n := src.(ir.Apply).Name.Len
		b.push([]ir.VarKind{ir.KindType},
			implementedBy(ir.ArrayTy(elem, n), ref.Trait, ir.SliceTy(elem)))
	}

	dyn, ok := target.(ir.Dyn)
	if !ok {
		return
	}
	g := NewGeneralizer(0)
	if srcDyn, ok := src.(ir.Dyn); ok {
		from := g.Ty(srcDyn)
		to := g.Ty(dyn).(ir.Dyn)
		b.push(g.Binders(), implementedBy(from, ref.Trait, to), openBounds(to, from)...)
		return
	}
	// the source binds ^0, ahead of the generalized target's binders
	to := ir.Shifter(1).FoldTy(g.Ty(dyn)).(ir.Dyn)
	binders := append([]ir.VarKind{ir.KindType}, g.Binders()...)
	from := ir.BoundVar{Index: 0}
	conds := openBounds(to, from)
	if sized, ok := b.db.WellKnownTrait(programdb.WellKnownSized); ok {
		conds = append(conds, implementedBy(from, sized))
	}
	b.push(binders, implementedBy(from, ref.Trait, to), conds...)
}

// openBounds instantiates the bounds of a dyn type with self as Self.
func openBounds(d ir.Dyn, self ir.Ty) []ir.DomainGoal {
	open := ir.SelfReplacer(self)
	conds := make([]ir.DomainGoal, 0, len(d.Bounds))
	for _, wc := range d.Bounds {
		conds = append(conds, ir.Holds{Clause: open.FoldWhereClause(wc)})
	}
	return conds
}
