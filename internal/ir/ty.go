// Package ir defines the clause vocabulary shared by the lowering pass, the
// clause builders and the Datalog exporter: type terms, lifetimes, trait
// references, projections, where-clauses, domain goals and program clauses.
//
// All values are immutable once built. Folds (Substitute, Shift) always
// return fresh values and never alias the input's slices.
package ir

// Item identifiers. Lowering guarantees they are unique per program.
type (
	TraitID     string
	AdtID       string
	AssocTypeID string // "Trait::Name"
	FnDefID     string
	ClosureID   string
	ImplID      int
)

// Arg is a generic argument: either a Ty or a Lifetime.
type Arg interface {
	isArg()
	String() string
}

// Ty is a type term.
type Ty interface {
	Arg
	isTy()
}

// VarKind is the kind of a clause binder.
type VarKind int

const (
	KindType VarKind = iota
	KindLifetime
)

func (k VarKind) String() string {
	if k == KindLifetime {
		return "lifetime"
	}
	return "type"
}

// BoundVar is a variable bound by the enclosing clause or item binders.
type BoundVar struct {
	Index int
}

// InferVar is a free variable supplied by the goal (an inference variable of
// the solver). Builders generalize it away; it reaches a clause set only
// through the caller's environment.
type InferVar struct {
	ID int
}

// Placeholder is a rigid, universally quantified type of the goal, e.g. a
// generic parameter in scope at the goal site.
type Placeholder struct {
	Name string
}

// SelfTy stands for the erased type inside Dyn bounds.
type SelfTy struct{}

// TypeKind enumerates the type constructors.
type TypeKind int

const (
	KindAdt TypeKind = iota
	KindScalar
	KindStr
	KindTuple
	KindArray
	KindSlice
	KindRef
	KindRawPtr
	KindFnDef
	KindClosure
	KindNever
)

// AllTypeKinds lists every constructor; builtin tables are checked against it.
var AllTypeKinds = []TypeKind{
	KindAdt, KindScalar, KindStr, KindTuple, KindArray, KindSlice,
	KindRef, KindRawPtr, KindFnDef, KindClosure, KindNever,
}

func (k TypeKind) String() string {
	switch k {
	case KindAdt:
		return "adt"
	case KindScalar:
		return "scalar"
	case KindStr:
		return "str"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindRef:
		return "ref"
	case KindRawPtr:
		return "raw_ptr"
	case KindFnDef:
		return "fn_def"
	case KindClosure:
		return "closure"
	case KindNever:
		return "never"
	}
	return "unknown"
}

// Scalar is a primitive scalar type.
type Scalar string

const (
	Bool  Scalar = "bool"
	Char  Scalar = "char"
	I8    Scalar = "i8"
	I16   Scalar = "i16"
	I32   Scalar = "i32"
	I64   Scalar = "i64"
	I128  Scalar = "i128"
	Isize Scalar = "isize"
	U8    Scalar = "u8"
	U16   Scalar = "u16"
	U32   Scalar = "u32"
	U64   Scalar = "u64"
	U128  Scalar = "u128"
	Usize Scalar = "usize"
	F32   Scalar = "f32"
	F64   Scalar = "f64"
)

var scalars = map[string]Scalar{
	"bool": Bool, "char": Char,
	"i8": I8, "i16": I16, "i32": I32, "i64": I64, "i128": I128, "isize": Isize,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64, "u128": U128, "usize": Usize,
	"f32": F32, "f64": F64,
}

// LookupScalar resolves a primitive type name.
func LookupScalar(name string) (Scalar, bool) {
	s, ok := scalars[name]
	return s, ok
}

// Mutability of references and raw pointers.
type Mutability int

const (
	Not Mutability = iota
	Mut
)

// TypeName is the head constructor of an Apply type. It is comparable, so
// two heads match exactly when they are ==.
type TypeName struct {
	Kind    TypeKind
	Adt     AdtID
	Scalar  Scalar
	FnDef   FnDefID
	Closure ClosureID
	Mut     Mutability
	Arity   int // tuples
	Len     int // arrays
}

// Apply is a constructor applied to generic arguments.
//
//	Adt:     Args are the ADT parameters
//	Tuple:   Args are the elements
//	Array:   Args[0] is the element type
//	Slice:   Args[0] is the element type
//	Ref:     Args[0] is the lifetime, Args[1] the referent
//	RawPtr:  Args[0] is the pointee
//	FnDef:   Args are the fn's generic parameters
//	Closure: no Args
type Apply struct {
	Name TypeName
	Args []Arg
}

// FnPtr is a function pointer type.
type FnPtr struct {
	Params []Ty
	Return Ty
}

// Dyn is an existential trait object. Bounds are where-clauses over SelfTy;
// the first Implemented bound is the principal trait.
type Dyn struct {
	Bounds   []WhereClause
	Lifetime Lifetime
}

// Projection is an associated type projection <Args[0] as Trait<Args[1:]>>::Assoc.
type Projection struct {
	Trait TraitID
	Assoc AssocTypeID
	Args  []Arg
}

// SelfType returns the projected type.
func (p Projection) SelfType() Ty {
	if len(p.Args) == 0 {
		return nil
	}
	ty, _ := p.Args[0].(Ty)
	return ty
}

// TraitRef returns the trait reference the projection is resolved through.
func (p Projection) TraitRef() TraitRef {
	return TraitRef{Trait: p.Trait, Args: p.Args}
}

// LifetimeKind enumerates lifetime forms.
type LifetimeKind int

const (
	LifetimeErased LifetimeKind = iota
	LifetimeStatic
	LifetimeBound
	LifetimeInfer
	LifetimePlaceholder
)

// Lifetime is a region term.
type Lifetime struct {
	Kind  LifetimeKind
	Index int    // bound index or inference id
	Name  string // placeholder name
}

// Static is the 'static lifetime.
var Static = Lifetime{Kind: LifetimeStatic}

func (BoundVar) isArg()    {}
func (InferVar) isArg()    {}
func (Placeholder) isArg() {}
func (SelfTy) isArg()      {}
func (Apply) isArg()       {}
func (FnPtr) isArg()       {}
func (Dyn) isArg()         {}
func (Projection) isArg()  {}
func (Lifetime) isArg()    {}

func (BoundVar) isTy()    {}
func (InferVar) isTy()    {}
func (Placeholder) isTy() {}
func (SelfTy) isTy()      {}
func (Apply) isTy()       {}
func (FnPtr) isTy()       {}
func (Dyn) isTy()         {}
func (Projection) isTy()  {}

// Constructors for the common shapes.

func AdtTy(id AdtID, args ...Arg) Apply {
	return Apply{Name: TypeName{Kind: KindAdt, Adt: id}, Args: args}
}

func ScalarTy(s Scalar) Apply {
	return Apply{Name: TypeName{Kind: KindScalar, Scalar: s}}
}

func StrTy() Apply { return Apply{Name: TypeName{Kind: KindStr}} }

func NeverTy() Apply { return Apply{Name: TypeName{Kind: KindNever}} }

func TupleTy(elems ...Ty) Apply {
	args := make([]Arg, len(elems))
	for i, e := range elems {
		args[i] = e
	}
	return Apply{Name: TypeName{Kind: KindTuple, Arity: len(elems)}, Args: args}
}

func ArrayTy(elem Ty, n int) Apply {
	return Apply{Name: TypeName{Kind: KindArray, Len: n}, Args: []Arg{elem}}
}

func SliceTy(elem Ty) Apply {
	return Apply{Name: TypeName{Kind: KindSlice}, Args: []Arg{elem}}
}

func RefTy(m Mutability, lt Lifetime, referent Ty) Apply {
	return Apply{Name: TypeName{Kind: KindRef, Mut: m}, Args: []Arg{lt, referent}}
}

func RawPtrTy(m Mutability, pointee Ty) Apply {
	return Apply{Name: TypeName{Kind: KindRawPtr, Mut: m}, Args: []Arg{pointee}}
}

func FnDefTy(id FnDefID, args ...Arg) Apply {
	return Apply{Name: TypeName{Kind: KindFnDef, FnDef: id}, Args: args}
}

func ClosureTy(id ClosureID) Apply {
	return Apply{Name: TypeName{Kind: KindClosure, Closure: id}}
}

func BoundLifetime(i int) Lifetime { return Lifetime{Kind: LifetimeBound, Index: i} }

func InferLifetime(id int) Lifetime { return Lifetime{Kind: LifetimeInfer, Index: id} }

func PlaceholderLifetime(name string) Lifetime {
	return Lifetime{Kind: LifetimePlaceholder, Name: name}
}

// TyArgs returns the type arguments of an Apply, skipping lifetimes.
func (a Apply) TyArgs() []Ty {
	var out []Ty
	for _, arg := range a.Args {
		if ty, ok := arg.(Ty); ok {
			out = append(out, ty)
		}
	}
	return out
}

// IsVar reports whether ty is a variable of any sort, i.e. a term whose
// shape is not yet known.
func IsVar(ty Ty) bool {
	switch ty.(type) {
	case BoundVar, InferVar:
		return true
	}
	return false
}
