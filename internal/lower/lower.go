// Package lower resolves a declarative program source into the read-only
// program database: it parses every type, where-clause and goal written in
// surface syntax, resolves names against the declared items, inserts the
// implicit Self parameter of traits and checks generic arities.
package lower

import (
	"errors"
	"strconv"
	"strings"

	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

// NamedGoal is a lowered query from the source's goals section.
type NamedGoal struct {
	Name string
	Goal ir.DomainGoal
	Env  ir.Environment
}

// Lowered is the result of lowering a Source.
type Lowered struct {
	Program *programdb.Program
	Goals   []NamedGoal

	names *lowerer
}

type itemKind int

const (
	itemTrait itemKind = iota
	itemAdt
	itemFn
	itemClosure
)

type itemInfo struct {
	kind    itemKind
	binders []ir.VarKind              // traits include Self at 0
	assoc   map[string]ir.AssocTypeID // traits only
}

type lowerer struct {
	items map[string]*itemInfo
}

// scope maps generic parameter names to binder indices. Goal scopes have no
// parameters; unknown lifetimes there become placeholders.
type scope struct {
	params map[string]int
	kinds  []ir.VarKind
	goal   bool
}

func newScope(params []string, withSelf bool) (*scope, error) {
	s := &scope{params: make(map[string]int)}
	if withSelf {
		s.params["Self"] = 0
		s.kinds = append(s.kinds, ir.KindType)
	}
	for _, p := range params {
		kind := ir.KindType
		name := p
		if strings.HasPrefix(p, "'") {
			kind = ir.KindLifetime
			name = p[1:]
		}
		if name == "" {
			return nil, &Error{Kind: ErrSyntax, Detail: "empty generic parameter name"}
		}
		if _, dup := s.params[name]; dup {
			return nil, &Error{Kind: ErrDuplicateItem, Name: p, Detail: "generic parameter declared twice"}
		}
		s.params[name] = len(s.kinds)
		s.kinds = append(s.kinds, kind)
	}
	return s, nil
}

func goalScope() *scope {
	return &scope{params: map[string]int{}, goal: true}
}

// Lower resolves src into a Program and its named goals.
func Lower(src *programdb.Source) (*Lowered, error) {
	l := &lowerer{items: make(map[string]*itemInfo)}
	if err := l.collect(src); err != nil {
		return nil, err
	}

	prog := programdb.NewProgram()
	for _, d := range src.Traits {
		t, err := l.lowerTrait(d)
		if err != nil {
			return nil, withItem(err, "trait "+d.Name)
		}
		prog.AddTrait(t)
	}
	for _, d := range src.Structs {
		variants := []programdb.Variant{{Name: d.Name}}
		a, err := l.lowerAdt(d.Name, programdb.Struct, d.Params, d.Where, variants, [][]programdb.FieldDecl{d.Fields})
		if err != nil {
			return nil, withItem(err, "struct "+d.Name)
		}
		prog.AddAdt(a)
	}
	for _, d := range src.Enums {
		variants := make([]programdb.Variant, len(d.Variants))
		fields := make([][]programdb.FieldDecl, len(d.Variants))
		for i, v := range d.Variants {
			variants[i] = programdb.Variant{Name: v.Name}
			fields[i] = v.Fields
		}
		a, err := l.lowerAdt(d.Name, programdb.Enum, d.Params, d.Where, variants, fields)
		if err != nil {
			return nil, withItem(err, "enum "+d.Name)
		}
		prog.AddAdt(a)
	}
	for _, d := range src.Impls {
		i, err := l.lowerImpl(d)
		if err != nil {
			return nil, withItem(err, "impl "+d.Trait+" for "+d.For)
		}
		prog.AddImpl(i)
	}
	for _, d := range src.Fns {
		f, err := l.lowerFn(d)
		if err != nil {
			return nil, withItem(err, "fn "+d.Name)
		}
		prog.AddFnDef(f)
	}
	for _, d := range src.Closures {
		c, err := l.lowerClosure(d)
		if err != nil {
			return nil, withItem(err, "closure "+d.Name)
		}
		prog.AddClosure(c)
	}

	out := &Lowered{Program: prog, names: l}
	for _, g := range src.Goals {
		goal, env, err := out.LowerGoal(g.Goal, g.Env)
		if err != nil {
			return nil, withItem(err, "goal "+g.Name)
		}
		out.Goals = append(out.Goals, NamedGoal{Name: g.Name, Goal: goal, Env: env})
	}
	return out, nil
}

// LowerGoal resolves a goal and its environment against the lowered program.
// Types in goals may use inference variables (?0) and placeholders (!T).
func (lw *Lowered) LowerGoal(goal string, env []string) (ir.DomainGoal, ir.Environment, error) {
	sc := goalScope()
	environment, err := lw.lowerEnv(sc, env)
	if err != nil {
		return nil, ir.Environment{}, err
	}

	p, err := newParser(goal)
	if err != nil {
		return nil, ir.Environment{}, err
	}
	g, err := p.parseGoal()
	if err != nil {
		return nil, ir.Environment{}, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, ir.Environment{}, err
	}
	lowered, err := lw.names.lowerGoal(sc, g)
	if err != nil {
		return nil, ir.Environment{}, err
	}
	return lowered, environment, nil
}

// LowerEnv resolves where-clauses written in goal syntax into an
// environment.
func (lw *Lowered) LowerEnv(env []string) (ir.Environment, error) {
	return lw.lowerEnv(goalScope(), env)
}

func (lw *Lowered) lowerEnv(sc *scope, env []string) (ir.Environment, error) {
	var clauses []ir.WhereClause
	for _, e := range env {
		wcs, err := lw.names.lowerWhereString(sc, e)
		if err != nil {
			return ir.Environment{}, err
		}
		clauses = append(clauses, wcs...)
	}
	return ir.NewEnvironment(clauses...), nil
}

// LookupGoal returns the lowered goal called name.
func (lw *Lowered) LookupGoal(name string) (NamedGoal, bool) {
	for _, g := range lw.Goals {
		if g.Name == name {
			return g, true
		}
	}
	return NamedGoal{}, false
}

func withItem(err error, item string) error {
	var le *Error
	if errors.As(err, &le) && le.Item == "" {
		le.Item = item
	}
	return err
}

// collect registers every item name and its generic parameter kinds so
// bodies may refer to items declared later.
func (l *lowerer) collect(src *programdb.Source) error {
	register := func(name string, info *itemInfo) error {
		if _, ok := ir.LookupScalar(name); ok || name == "str" || name == "Self" {
			return &Error{Kind: ErrDuplicateItem, Name: name, Detail: "name is reserved"}
		}
		if _, dup := l.items[name]; dup {
			return &Error{Kind: ErrDuplicateItem, Name: name}
		}
		l.items[name] = info
		return nil
	}
	kindsOf := func(params []string, withSelf bool) ([]ir.VarKind, error) {
		sc, err := newScope(params, withSelf)
		if err != nil {
			return nil, err
		}
		return sc.kinds, nil
	}

	for _, d := range src.Traits {
		kinds, err := kindsOf(d.Params, true)
		if err != nil {
			return withItem(err, "trait "+d.Name)
		}
		info := &itemInfo{kind: itemTrait, binders: kinds, assoc: make(map[string]ir.AssocTypeID)}
		for _, a := range d.AssocTypes {
			if _, dup := info.assoc[a]; dup {
				return &Error{Kind: ErrDuplicateItem, Item: "trait " + d.Name, Name: a}
			}
			info.assoc[a] = ir.AssocTypeID(d.Name + "::" + a)
		}
		if err := register(d.Name, info); err != nil {
			return err
		}
	}
	for _, d := range src.Structs {
		kinds, err := kindsOf(d.Params, false)
		if err != nil {
			return withItem(err, "struct "+d.Name)
		}
		if err := register(d.Name, &itemInfo{kind: itemAdt, binders: kinds}); err != nil {
			return err
		}
	}
	for _, d := range src.Enums {
		kinds, err := kindsOf(d.Params, false)
		if err != nil {
			return withItem(err, "enum "+d.Name)
		}
		if err := register(d.Name, &itemInfo{kind: itemAdt, binders: kinds}); err != nil {
			return err
		}
	}
	for _, d := range src.Fns {
		kinds, err := kindsOf(d.Params, false)
		if err != nil {
			return withItem(err, "fn "+d.Name)
		}
		if err := register(d.Name, &itemInfo{kind: itemFn, binders: kinds}); err != nil {
			return err
		}
	}
	for _, d := range src.Closures {
		if err := register(d.Name, &itemInfo{kind: itemClosure}); err != nil {
			return err
		}
	}
	return nil
}

func (l *lowerer) lowerTrait(d programdb.TraitDecl) (*programdb.TraitDatum, error) {
	sc, err := newScope(d.Params, true)
	if err != nil {
		return nil, err
	}
	wcs, err := l.lowerWhereStrings(sc, d.Where)
	if err != nil {
		return nil, err
	}
	wk, ok := programdb.ParseWellKnown(d.WellKnown)
	if !ok {
		return nil, &Error{Kind: ErrInvalidWellKnown, Name: d.WellKnown}
	}
	info := l.items[d.Name]
	assoc := make([]ir.AssocTypeID, len(d.AssocTypes))
	for i, a := range d.AssocTypes {
		assoc[i] = info.assoc[a]
	}
	return &programdb.TraitDatum{
		ID:           ir.TraitID(d.Name),
		Binders:      sc.kinds,
		WhereClauses: wcs,
		AssocTypes:   assoc,
		Flags:        programdb.TraitFlags{Auto: d.Auto, Marker: d.Marker},
		WellKnown:    wk,
	}, nil
}

func (l *lowerer) lowerAdt(name string, kind programdb.AdtKind, params, where []string, variants []programdb.Variant, fields [][]programdb.FieldDecl) (*programdb.AdtDatum, error) {
	sc, err := newScope(params, false)
	if err != nil {
		return nil, err
	}
	wcs, err := l.lowerWhereStrings(sc, where)
	if err != nil {
		return nil, err
	}
	for i := range variants {
		for _, f := range fields[i] {
			ty, err := l.lowerTyString(sc, f.Type)
			if err != nil {
				return nil, err
			}
			variants[i].Fields = append(variants[i].Fields, programdb.Field{Name: f.Name, Ty: ty})
		}
	}
	return &programdb.AdtDatum{
		ID:           ir.AdtID(name),
		Kind:         kind,
		Binders:      sc.kinds,
		WhereClauses: wcs,
		Variants:     variants,
	}, nil
}

func (l *lowerer) lowerImpl(d programdb.ImplDecl) (*programdb.ImplDatum, error) {
	sc, err := newScope(d.Params, false)
	if err != nil {
		return nil, err
	}
	self, err := l.lowerTyString(sc, d.For)
	if err != nil {
		return nil, err
	}
	p, err := newParser(d.Trait)
	if err != nil {
		return nil, err
	}
	refExpr, err := p.parseTraitRef()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	if len(refExpr.bindings) > 0 {
		return nil, &Error{Kind: ErrSyntax, Detail: "associated type bindings belong in the assoc section"}
	}
	ref, _, err := l.lowerTraitRef(sc, self, refExpr)
	if err != nil {
		return nil, err
	}
	wcs, err := l.lowerWhereStrings(sc, d.Where)
	if err != nil {
		return nil, err
	}

	polarity := programdb.Positive
	if d.Negative {
		polarity = programdb.Negative
	}
	info := l.items[refExpr.name]
	impl := &programdb.ImplDatum{
		Binders:      sc.kinds,
		TraitRef:     ref,
		WhereClauses: wcs,
		Polarity:     polarity,
	}
	for _, a := range d.Assoc {
		id, ok := info.assoc[a.Name]
		if !ok {
			return nil, &Error{Kind: ErrUnknownAssocType, Name: a.Name, Detail: "not declared in trait " + refExpr.name}
		}
		ty, err := l.lowerTyString(sc, a.Type)
		if err != nil {
			return nil, err
		}
		impl.AssocValues = append(impl.AssocValues, programdb.AssocValue{Assoc: id, Ty: ty})
	}
	return impl, nil
}

func (l *lowerer) lowerFn(d programdb.FnDecl) (*programdb.FnDefDatum, error) {
	sc, err := newScope(d.Params, false)
	if err != nil {
		return nil, err
	}
	params, err := l.lowerTyStrings(sc, d.Args)
	if err != nil {
		return nil, err
	}
	ret, err := l.lowerReturn(sc, d.Return)
	if err != nil {
		return nil, err
	}
	wcs, err := l.lowerWhereStrings(sc, d.Where)
	if err != nil {
		return nil, err
	}
	return &programdb.FnDefDatum{
		ID:           ir.FnDefID(d.Name),
		Binders:      sc.kinds,
		Params:       params,
		Return:       ret,
		WhereClauses: wcs,
	}, nil
}

var closureKinds = map[string]programdb.ClosureKind{
	"":        programdb.ClosureFn,
	"fn":      programdb.ClosureFn,
	"fn_mut":  programdb.ClosureFnMut,
	"fn_once": programdb.ClosureFnOnce,
}

func (l *lowerer) lowerClosure(d programdb.ClosureDecl) (*programdb.ClosureDatum, error) {
	kind, ok := closureKinds[d.Kind]
	if !ok {
		return nil, &Error{Kind: ErrInvalidClosureKind, Name: d.Kind}
	}
	sc, _ := newScope(nil, false)
	params, err := l.lowerTyStrings(sc, d.Args)
	if err != nil {
		return nil, err
	}
	ret, err := l.lowerReturn(sc, d.Return)
	if err != nil {
		return nil, err
	}
	upvars, err := l.lowerTyStrings(sc, d.Upvars)
	if err != nil {
		return nil, err
	}
	return &programdb.ClosureDatum{
		ID:     ir.ClosureID(d.Name),
		Kind:   kind,
		Params: params,
		Return: ret,
		Upvars: upvars,
	}, nil
}

func (l *lowerer) lowerReturn(sc *scope, ret string) (ir.Ty, error) {
	if strings.TrimSpace(ret) == "" {
		return ir.TupleTy(), nil
	}
	return l.lowerTyString(sc, ret)
}

func (l *lowerer) lowerTyString(sc *scope, s string) (ir.Ty, error) {
	p, err := newParser(s)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseTy()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return l.lowerTy(sc, expr)
}

func (l *lowerer) lowerTyStrings(sc *scope, list []string) ([]ir.Ty, error) {
	out := make([]ir.Ty, 0, len(list))
	for _, s := range list {
		ty, err := l.lowerTyString(sc, s)
		if err != nil {
			return nil, err
		}
		out = append(out, ty)
	}
	return out, nil
}

func (l *lowerer) lowerWhereString(sc *scope, s string) ([]ir.WhereClause, error) {
	p, err := newParser(s)
	if err != nil {
		return nil, err
	}
	w, err := p.parseWhere()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return l.lowerWhere(sc, w)
}

func (l *lowerer) lowerWhereStrings(sc *scope, list []string) ([]ir.WhereClause, error) {
	var out []ir.WhereClause
	for _, s := range list {
		wcs, err := l.lowerWhereString(sc, s)
		if err != nil {
			return nil, err
		}
		out = append(out, wcs...)
	}
	return out, nil
}

// lowerWhere expands `T: Tr<Item = U>` into Implemented(T: Tr) followed by
// AliasEq(<T as Tr>::Item = U).
func (l *lowerer) lowerWhere(sc *scope, w whereExpr) ([]ir.WhereClause, error) {
	if w.proj != nil {
		proj, err := l.lowerProjection(sc, *w.proj)
		if err != nil {
			return nil, err
		}
		ty, err := l.lowerTy(sc, w.ty)
		if err != nil {
			return nil, err
		}
		return []ir.WhereClause{ir.AliasEq{Alias: proj, Ty: ty}}, nil
	}
	self, err := l.lowerTy(sc, w.self)
	if err != nil {
		return nil, err
	}
	ref, aliases, err := l.lowerTraitRef(sc, self, *w.trait)
	if err != nil {
		return nil, err
	}
	return append([]ir.WhereClause{ir.Implemented{TraitRef: ref}}, aliases...), nil
}

func (l *lowerer) lowerGoal(sc *scope, g goalExpr) (ir.DomainGoal, error) {
	switch g.kind {
	case goalImplemented, goalAliasEq:
		wcs, err := l.lowerWhere(sc, *g.where)
		if err != nil {
			return nil, err
		}
		if len(wcs) != 1 {
			return nil, &Error{Kind: ErrSyntax, Detail: "associated type bindings are not allowed in a goal"}
		}
		return ir.Holds{Clause: wcs[0]}, nil
	case goalNormalize:
		proj, err := l.lowerProjection(sc, *g.proj)
		if err != nil {
			return nil, err
		}
		ty, err := l.lowerTy(sc, g.ty)
		if err != nil {
			return nil, err
		}
		return ir.Normalize{Alias: proj, Ty: ty}, nil
	case goalWellFormed, goalFromEnv:
		if g.where != nil {
			self, err := l.lowerTy(sc, g.where.self)
			if err != nil {
				return nil, err
			}
			ref, aliases, err := l.lowerTraitRef(sc, self, *g.where.trait)
			if err != nil {
				return nil, err
			}
			if len(aliases) > 0 {
				return nil, &Error{Kind: ErrSyntax, Detail: "associated type bindings are not allowed in a goal"}
			}
			if g.kind == goalWellFormed {
				return ir.WellFormedTrait{TraitRef: ref}, nil
			}
			return ir.FromEnvTrait{TraitRef: ref}, nil
		}
		ty, err := l.lowerTy(sc, g.ty)
		if err != nil {
			return nil, err
		}
		if g.kind == goalWellFormed {
			return ir.WellFormedTy{Ty: ty}, nil
		}
		return ir.FromEnvTy{Ty: ty}, nil
	}
	return nil, &Error{Kind: ErrSyntax, Detail: "unknown goal form"}
}

func (l *lowerer) trait(name string) (*itemInfo, error) {
	info, ok := l.items[name]
	if !ok {
		return nil, &Error{Kind: ErrInvalidTypeName, Name: name}
	}
	if info.kind != itemTrait {
		return nil, &Error{Kind: ErrNotTrait, Name: name}
	}
	return info, nil
}

// lowerTraitRef resolves `Trait<Args, Name = Ty>` applied to self. Bindings
// come back as AliasEq clauses over the same trait ref.
func (l *lowerer) lowerTraitRef(sc *scope, self ir.Ty, ref traitRefExpr) (ir.TraitRef, []ir.WhereClause, error) {
	info, err := l.trait(ref.name)
	if err != nil {
		return ir.TraitRef{}, nil, err
	}
	args, err := l.lowerArgs(sc, ref.name, info.binders[1:], ref.args)
	if err != nil {
		return ir.TraitRef{}, nil, err
	}
	tr := ir.TraitRef{Trait: ir.TraitID(ref.name), Args: append([]ir.Arg{self}, args...)}

	var aliases []ir.WhereClause
	for _, b := range ref.bindings {
		id, ok := info.assoc[b.name]
		if !ok {
			return ir.TraitRef{}, nil, &Error{Kind: ErrUnknownAssocType, Name: b.name, Detail: "not declared in trait " + ref.name}
		}
		ty, err := l.lowerTy(sc, b.ty)
		if err != nil {
			return ir.TraitRef{}, nil, err
		}
		aliases = append(aliases, ir.AliasEq{
			Alias: ir.Projection{Trait: tr.Trait, Assoc: id, Args: tr.Args},
			Ty:    ty,
		})
	}
	return tr, aliases, nil
}

func (l *lowerer) lowerProjection(sc *scope, p projTy) (ir.Projection, error) {
	if len(p.trait.bindings) > 0 {
		return ir.Projection{}, &Error{Kind: ErrSyntax, Detail: "associated type bindings are not allowed in a projection"}
	}
	self, err := l.lowerTy(sc, p.self)
	if err != nil {
		return ir.Projection{}, err
	}
	ref, _, err := l.lowerTraitRef(sc, self, p.trait)
	if err != nil {
		return ir.Projection{}, err
	}
	id, ok := l.items[p.trait.name].assoc[p.name]
	if !ok {
		return ir.Projection{}, &Error{Kind: ErrUnknownAssocType, Name: p.name, Detail: "not declared in trait " + p.trait.name}
	}
	return ir.Projection{Trait: ref.Trait, Assoc: id, Args: ref.Args}, nil
}

// lowerArgs checks args against the expected binder kinds of item name.
func (l *lowerer) lowerArgs(sc *scope, name string, kinds []ir.VarKind, args []argExpr) ([]ir.Arg, error) {
	if len(args) != len(kinds) {
		return nil, &Error{
			Kind:   ErrIncorrectParamCount,
			Name:   name,
			Detail: "expected " + plural(len(kinds)) + ", found " + plural(len(args)),
		}
	}
	out := make([]ir.Arg, len(args))
	for i, a := range args {
		switch {
		case a.lifetime != nil:
			if kinds[i] != ir.KindLifetime {
				return nil, &Error{Kind: ErrInvalidLifetime, Name: name, Detail: "lifetime given for a type parameter"}
			}
			lt, err := l.lowerLifetime(sc, *a.lifetime)
			if err != nil {
				return nil, err
			}
			out[i] = lt
		default:
			if kinds[i] != ir.KindType {
				return nil, &Error{Kind: ErrInvalidLifetime, Name: name, Detail: "type given for a lifetime parameter"}
			}
			ty, err := l.lowerTy(sc, a.ty)
			if err != nil {
				return nil, err
			}
			out[i] = ty
		}
	}
	return out, nil
}

func plural(n int) string {
	if n == 1 {
		return "1 parameter"
	}
	return strconv.Itoa(n) + " parameters"
}

func (l *lowerer) lowerLifetime(sc *scope, lt lifetimeExpr) (ir.Lifetime, error) {
	if lt.infer {
		return ir.InferLifetime(lt.id), nil
	}
	if lt.name == "static" {
		return ir.Static, nil
	}
	if idx, ok := sc.params[lt.name]; ok && sc.kinds[idx] == ir.KindLifetime {
		return ir.BoundLifetime(idx), nil
	}
	if sc.goal {
		return ir.PlaceholderLifetime(lt.name), nil
	}
	return ir.Lifetime{}, &Error{Kind: ErrInvalidLifetime, Name: "'" + lt.name, Detail: "not declared"}
}

func (l *lowerer) lowerOptLifetime(sc *scope, lt *lifetimeExpr) (ir.Lifetime, error) {
	if lt == nil {
		return ir.Lifetime{}, nil
	}
	return l.lowerLifetime(sc, *lt)
}

func (l *lowerer) lowerTy(sc *scope, expr tyExpr) (ir.Ty, error) {
	switch e := expr.(type) {
	case nameTy:
		return l.lowerName(sc, e)
	case inferTy:
		return ir.InferVar{ID: e.id}, nil
	case placeholderTy:
		return ir.Placeholder{Name: e.name}, nil
	case neverTy:
		return ir.NeverTy(), nil
	case tupleTy:
		elems := make([]ir.Ty, len(e.elems))
		for i, el := range e.elems {
			ty, err := l.lowerTy(sc, el)
			if err != nil {
				return nil, err
			}
			elems[i] = ty
		}
		return ir.TupleTy(elems...), nil
	case arrayTy:
		elem, err := l.lowerTy(sc, e.elem)
		if err != nil {
			return nil, err
		}
		return ir.ArrayTy(elem, e.len), nil
	case sliceTy:
		elem, err := l.lowerTy(sc, e.elem)
		if err != nil {
			return nil, err
		}
		return ir.SliceTy(elem), nil
	case refTy:
		lt, err := l.lowerOptLifetime(sc, e.lifetime)
		if err != nil {
			return nil, err
		}
		referent, err := l.lowerTy(sc, e.referent)
		if err != nil {
			return nil, err
		}
		m := ir.Not
		if e.mut {
			m = ir.Mut
		}
		return ir.RefTy(m, lt, referent), nil
	case ptrTy:
		pointee, err := l.lowerTy(sc, e.pointee)
		if err != nil {
			return nil, err
		}
		m := ir.Not
		if e.mut {
			m = ir.Mut
		}
		return ir.RawPtrTy(m, pointee), nil
	case fnTy:
		params := make([]ir.Ty, len(e.params))
		for i, p := range e.params {
			ty, err := l.lowerTy(sc, p)
			if err != nil {
				return nil, err
			}
			params[i] = ty
		}
		var ret ir.Ty = ir.TupleTy()
		if e.ret != nil {
			r, err := l.lowerTy(sc, e.ret)
			if err != nil {
				return nil, err
			}
			ret = r
		}
		return ir.FnPtr{Params: params, Return: ret}, nil
	case dynTy:
		var bounds []ir.WhereClause
		for _, b := range e.bounds {
			ref, aliases, err := l.lowerTraitRef(sc, ir.SelfTy{}, b)
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, ir.Implemented{TraitRef: ref})
			bounds = append(bounds, aliases...)
		}
		lt, err := l.lowerOptLifetime(sc, e.lifetime)
		if err != nil {
			return nil, err
		}
		return ir.Dyn{Bounds: bounds, Lifetime: lt}, nil
	case projTy:
		return l.lowerProjection(sc, e)
	}
	return nil, &Error{Kind: ErrSyntax, Detail: "unsupported type expression"}
}

func (l *lowerer) lowerName(sc *scope, e nameTy) (ir.Ty, error) {
	if idx, ok := sc.params[e.name]; ok {
		if sc.kinds[idx] != ir.KindType {
			return nil, &Error{Kind: ErrInvalidLifetime, Name: e.name, Detail: "lifetime parameter used as a type"}
		}
		if len(e.args) > 0 {
			return nil, &Error{Kind: ErrCannotApplyTypeParameter, Name: e.name}
		}
		return ir.BoundVar{Index: idx}, nil
	}
	if s, ok := ir.LookupScalar(e.name); ok {
		if len(e.args) > 0 {
			return nil, &Error{Kind: ErrIncorrectParamCount, Name: e.name, Detail: "primitive types take no parameters"}
		}
		return ir.ScalarTy(s), nil
	}
	if e.name == "str" {
		if len(e.args) > 0 {
			return nil, &Error{Kind: ErrIncorrectParamCount, Name: e.name, Detail: "primitive types take no parameters"}
		}
		return ir.StrTy(), nil
	}

	info, ok := l.items[e.name]
	if !ok {
		return nil, &Error{Kind: ErrInvalidTypeName, Name: e.name}
	}
	switch info.kind {
	case itemAdt:
		args, err := l.lowerArgs(sc, e.name, info.binders, e.args)
		if err != nil {
			return nil, err
		}
		return ir.AdtTy(ir.AdtID(e.name), args...), nil
	case itemFn:
		args, err := l.lowerArgs(sc, e.name, info.binders, e.args)
		if err != nil {
			return nil, err
		}
		return ir.FnDefTy(ir.FnDefID(e.name), args...), nil
	case itemClosure:
		if len(e.args) > 0 {
			return nil, &Error{Kind: ErrIncorrectParamCount, Name: e.name, Detail: "closure types take no parameters"}
		}
		return ir.ClosureTy(ir.ClosureID(e.name)), nil
	}
	return nil, &Error{Kind: ErrInvalidTypeName, Name: e.name, Detail: "trait used as a type"}
}
