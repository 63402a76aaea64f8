package ir

// TraitRef names a trait applied to arguments. Args[0] is the Self type.
type TraitRef struct {
	Trait TraitID
	Args  []Arg
}

// SelfType returns Args[0] as a type, or nil for a malformed ref.
func (t TraitRef) SelfType() Ty {
	if len(t.Args) == 0 {
		return nil
	}
	ty, _ := t.Args[0].(Ty)
	return ty
}

// WhereClause is an assumable/provable fact about types.
type WhereClause interface {
	isWhereClause()
	String() string
}

// Implemented is `T: Trait<Args>`.
type Implemented struct {
	TraitRef TraitRef
}

// AliasEq is `<T as Trait>::Assoc = Ty`.
type AliasEq struct {
	Alias Projection
	Ty    Ty
}

func (Implemented) isWhereClause() {}
func (AliasEq) isWhereClause()     {}

// DomainGoal is a provable predicate: the head of a program clause or one of
// its conditions.
type DomainGoal interface {
	isDomainGoal()
	String() string
}

// Holds lifts a where-clause into a goal.
type Holds struct {
	Clause WhereClause
}

// Normalize is `Normalize(<T as Trait>::Assoc -> Ty)`.
type Normalize struct {
	Alias Projection
	Ty    Ty
}

// WellFormedTy is `WellFormed(Ty)`.
type WellFormedTy struct {
	Ty Ty
}

// WellFormedTrait is `WellFormed(T: Trait)`.
type WellFormedTrait struct {
	TraitRef TraitRef
}

// FromEnvTy is `FromEnv(Ty)`: the type is assumed well formed by the caller.
type FromEnvTy struct {
	Ty Ty
}

// FromEnvTrait is `FromEnv(T: Trait)`: the bound is implied by the
// caller's environment.
type FromEnvTrait struct {
	TraitRef TraitRef
}

func (Holds) isDomainGoal()           {}
func (Normalize) isDomainGoal()       {}
func (WellFormedTy) isDomainGoal()    {}
func (WellFormedTrait) isDomainGoal() {}
func (FromEnvTy) isDomainGoal()       {}
func (FromEnvTrait) isDomainGoal()    {}

// ImplementedGoal is shorthand for Holds(Implemented(ref)).
func ImplementedGoal(ref TraitRef) Holds {
	return Holds{Clause: Implemented{TraitRef: ref}}
}

// ProgramClause is `forall<Binders> { Head :- Conditions }`. BoundVar and
// bound lifetimes in Head and Conditions index into Binders.
type ProgramClause struct {
	Binders    []VarKind
	Head       DomainGoal
	Conditions []DomainGoal
}

// IsFact reports whether the clause has an empty body.
func (c ProgramClause) IsFact() bool {
	return len(c.Conditions) == 0
}

// Environment is the ordered set of where-clauses assumed at a goal site.
type Environment struct {
	Clauses []WhereClause
}

// NewEnvironment builds an environment from assumptions.
func NewEnvironment(clauses ...WhereClause) Environment {
	return Environment{Clauses: clauses}
}
