// Package programdb holds the read-only program database the clause builders
// query: traits, impls, ADTs, associated types, fn items and closures.
//
// A Program is built once by the lowering pass and never mutated afterwards,
// so it may be shared by concurrent synthesis calls without locking.
package programdb

import (
	"sort"

	"clausegen/internal/ir"
)

// Database is the query interface the clause builders depend on.
type Database interface {
	TraitDatum(id ir.TraitID) (*TraitDatum, bool)
	Traits() []ir.TraitID
	ImplsForTrait(id ir.TraitID) []*ImplDatum
	AdtDatum(id ir.AdtID) (*AdtDatum, bool)
	Adts() []ir.AdtID
	AssocTypeDatum(id ir.AssocTypeID) (*AssocTypeDatum, bool)
	FnDefDatum(id ir.FnDefID) (*FnDefDatum, bool)
	ClosureDatum(id ir.ClosureID) (*ClosureDatum, bool)
	WellKnownTrait(kind WellKnown) (ir.TraitID, bool)
	AutoTraits() []ir.TraitID
}

// WellKnown identifies traits whose semantics the type system defines.
type WellKnown int

const (
	WellKnownNone WellKnown = iota
	WellKnownSized
	WellKnownCopy
	WellKnownClone
	WellKnownFnOnce
	WellKnownFnMut
	WellKnownFn
	WellKnownUnsize
	WellKnownTuple
)

var wellKnownNames = map[string]WellKnown{
	"sized":   WellKnownSized,
	"copy":    WellKnownCopy,
	"clone":   WellKnownClone,
	"fn_once": WellKnownFnOnce,
	"fn_mut":  WellKnownFnMut,
	"fn":      WellKnownFn,
	"unsize":  WellKnownUnsize,
	"tuple":   WellKnownTuple,
}

// ParseWellKnown maps a declaration tag such as "copy" to its WellKnown value.
func ParseWellKnown(s string) (WellKnown, bool) {
	if s == "" {
		return WellKnownNone, true
	}
	w, ok := wellKnownNames[s]
	return w, ok
}

func (w WellKnown) String() string {
	for name, v := range wellKnownNames {
		if v == w {
			return name
		}
	}
	return "none"
}

// TraitFlags carries declaration attributes of a trait.
type TraitFlags struct {
	Auto   bool
	Marker bool
}

// TraitDatum describes a trait. Binders[0] is Self; where-clauses and
// associated types are expressed over Binders.
type TraitDatum struct {
	ID           ir.TraitID
	Binders      []ir.VarKind
	WhereClauses []ir.WhereClause
	AssocTypes   []ir.AssocTypeID
	Flags        TraitFlags
	WellKnown    WellKnown
}

// Supertraits returns the trait's where-clauses of the form `Self: Sup<..>`.
func (t *TraitDatum) Supertraits() []ir.TraitRef {
	var out []ir.TraitRef
	for _, wc := range t.WhereClauses {
		impl, ok := wc.(ir.Implemented)
		if !ok {
			continue
		}
		if self, ok := impl.TraitRef.SelfType().(ir.BoundVar); ok && self.Index == 0 {
			out = append(out, impl.TraitRef)
		}
	}
	return out
}

// SelfRef returns the identity trait ref `^0: Trait<^1, ..>` over the
// trait's own binders shifted by offset.
func (t *TraitDatum) SelfRef(offset int) ir.TraitRef {
	return ir.TraitRef{Trait: t.ID, Args: ir.BoundArgs(t.Binders, offset)}
}

// AssocTypeDatum describes an associated type declared in a trait.
type AssocTypeDatum struct {
	ID    ir.AssocTypeID
	Trait ir.TraitID
	Name  string
}

// Polarity distinguishes `impl Tr for T` from `impl !Tr for T`.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

// AssocValue binds an associated type inside an impl.
type AssocValue struct {
	Assoc ir.AssocTypeID
	Ty    ir.Ty
}

// ImplDatum describes an impl. TraitRef, where-clauses and associated values
// are expressed over Binders.
type ImplDatum struct {
	ID           ir.ImplID
	Binders      []ir.VarKind
	TraitRef     ir.TraitRef
	WhereClauses []ir.WhereClause
	Polarity     Polarity
	AssocValues  []AssocValue
}

// AssocValue returns the binding for id, if the impl provides one.
func (i *ImplDatum) AssocValue(id ir.AssocTypeID) (ir.Ty, bool) {
	for _, v := range i.AssocValues {
		if v.Assoc == id {
			return v.Ty, true
		}
	}
	return nil, false
}

// AdtKind distinguishes structs from enums.
type AdtKind int

const (
	Struct AdtKind = iota
	Enum
)

// Field is a named field of a variant.
type Field struct {
	Name string
	Ty   ir.Ty
}

// Variant is one constructor of an ADT; structs have exactly one.
type Variant struct {
	Name   string
	Fields []Field
}

// AdtDatum describes a struct or enum.
type AdtDatum struct {
	ID           ir.AdtID
	Kind         AdtKind
	Binders      []ir.VarKind
	WhereClauses []ir.WhereClause
	Variants     []Variant
}

// FieldTypes returns every field type of every variant, in declaration order.
func (a *AdtDatum) FieldTypes() []ir.Ty {
	var out []ir.Ty
	for _, v := range a.Variants {
		for _, f := range v.Fields {
			out = append(out, f.Ty)
		}
	}
	return out
}

// SelfTy returns `Adt<^offset, ..>`.
func (a *AdtDatum) SelfTy(offset int) ir.Apply {
	return ir.AdtTy(a.ID, ir.BoundArgs(a.Binders, offset)...)
}

// FnDefDatum describes a fn item.
type FnDefDatum struct {
	ID           ir.FnDefID
	Binders      []ir.VarKind
	Params       []ir.Ty
	Return       ir.Ty
	WhereClauses []ir.WhereClause
}

// ClosureKind is the most permissive Fn trait a closure implements.
type ClosureKind int

const (
	ClosureFn ClosureKind = iota
	ClosureFnMut
	ClosureFnOnce
)

// ClosureDatum describes a closure's signature and captured upvars.
type ClosureDatum struct {
	ID     ir.ClosureID
	Kind   ClosureKind
	Params []ir.Ty
	Return ir.Ty
	Upvars []ir.Ty
}

// Program is the in-memory Database produced by lowering.
type Program struct {
	traits     map[ir.TraitID]*TraitDatum
	traitOrder []ir.TraitID
	impls      map[ir.TraitID][]*ImplDatum
	adts       map[ir.AdtID]*AdtDatum
	adtOrder   []ir.AdtID
	assocTypes map[ir.AssocTypeID]*AssocTypeDatum
	fnDefs     map[ir.FnDefID]*FnDefDatum
	closures   map[ir.ClosureID]*ClosureDatum
	wellKnown  map[WellKnown]ir.TraitID
	nextImpl   ir.ImplID
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{
		traits:     make(map[ir.TraitID]*TraitDatum),
		impls:      make(map[ir.TraitID][]*ImplDatum),
		adts:       make(map[ir.AdtID]*AdtDatum),
		assocTypes: make(map[ir.AssocTypeID]*AssocTypeDatum),
		fnDefs:     make(map[ir.FnDefID]*FnDefDatum),
		closures:   make(map[ir.ClosureID]*ClosureDatum),
		wellKnown:  make(map[WellKnown]ir.TraitID),
	}
}

// AddTrait registers a trait and its associated types.
func (p *Program) AddTrait(t *TraitDatum) {
	if _, ok := p.traits[t.ID]; !ok {
		p.traitOrder = append(p.traitOrder, t.ID)
	}
	p.traits[t.ID] = t
	for _, id := range t.AssocTypes {
		p.assocTypes[id] = &AssocTypeDatum{ID: id, Trait: t.ID, Name: ir.AssocName(id)}
	}
	if t.WellKnown != WellKnownNone {
		p.wellKnown[t.WellKnown] = t.ID
	}
}

// AddImpl registers an impl and assigns its id.
func (p *Program) AddImpl(i *ImplDatum) ir.ImplID {
	i.ID = p.nextImpl
	p.nextImpl++
	p.impls[i.TraitRef.Trait] = append(p.impls[i.TraitRef.Trait], i)
	return i.ID
}

// AddAdt registers a struct or enum.
func (p *Program) AddAdt(a *AdtDatum) {
	if _, ok := p.adts[a.ID]; !ok {
		p.adtOrder = append(p.adtOrder, a.ID)
	}
	p.adts[a.ID] = a
}

// AddFnDef registers a fn item.
func (p *Program) AddFnDef(f *FnDefDatum) { p.fnDefs[f.ID] = f }

// AddClosure registers a closure.
func (p *Program) AddClosure(c *ClosureDatum) { p.closures[c.ID] = c }

func (p *Program) TraitDatum(id ir.TraitID) (*TraitDatum, bool) {
	t, ok := p.traits[id]
	return t, ok
}

func (p *Program) Traits() []ir.TraitID {
	return append([]ir.TraitID(nil), p.traitOrder...)
}

func (p *Program) ImplsForTrait(id ir.TraitID) []*ImplDatum {
	return p.impls[id]
}

func (p *Program) AdtDatum(id ir.AdtID) (*AdtDatum, bool) {
	a, ok := p.adts[id]
	return a, ok
}

func (p *Program) Adts() []ir.AdtID {
	return append([]ir.AdtID(nil), p.adtOrder...)
}

func (p *Program) AssocTypeDatum(id ir.AssocTypeID) (*AssocTypeDatum, bool) {
	a, ok := p.assocTypes[id]
	return a, ok
}

func (p *Program) FnDefDatum(id ir.FnDefID) (*FnDefDatum, bool) {
	f, ok := p.fnDefs[id]
	return f, ok
}

func (p *Program) ClosureDatum(id ir.ClosureID) (*ClosureDatum, bool) {
	c, ok := p.closures[id]
	return c, ok
}

func (p *Program) WellKnownTrait(kind WellKnown) (ir.TraitID, bool) {
	id, ok := p.wellKnown[kind]
	return id, ok
}

func (p *Program) AutoTraits() []ir.TraitID {
	var out []ir.TraitID
	for _, id := range p.traitOrder {
		if p.traits[id].Flags.Auto {
			out = append(out, id)
		}
	}
	return out
}

// Stats summarizes the program for logging.
type Stats struct {
	Traits   int
	Impls    int
	Adts     int
	FnDefs   int
	Closures int
}

func (p *Program) Stats() Stats {
	impls := 0
	for _, list := range p.impls {
		impls += len(list)
	}
	return Stats{
		Traits:   len(p.traits),
		Impls:    impls,
		Adts:     len(p.adts),
		FnDefs:   len(p.fnDefs),
		Closures: len(p.closures),
	}
}

// SortedFnDefs returns fn ids in lexical order.
func (p *Program) SortedFnDefs() []ir.FnDefID {
	out := make([]ir.FnDefID, 0, len(p.fnDefs))
	for id := range p.fnDefs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
