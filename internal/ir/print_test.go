package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func iter(self Ty) TraitRef { return TraitRef{Trait: "Iterator", Args: []Arg{self}} }

func itemOf(self Ty) Projection {
	return Projection{Trait: "Iterator", Assoc: "Iterator::Item", Args: []Arg{self}}
}

func TestTyString(t *testing.T) {
	tests := []struct {
		name string
		ty   Ty
		want string
	}{
		{"bound", BoundVar{Index: 2}, "^2"},
		{"infer", InferVar{ID: 7}, "?7"},
		{"placeholder", Placeholder{Name: "T"}, "!T"},
		{"scalar", ScalarTy(U8), "u8"},
		{"str", StrTy(), "str"},
		{"never", NeverTy(), "!"},
		{"adt", AdtTy("Map", ScalarTy(U8), BoundVar{Index: 0}), "Map<u8, ^0>"},
		{"unit", TupleTy(), "()"},
		{"one tuple", TupleTy(ScalarTy(U8)), "(u8,)"},
		{"pair", TupleTy(ScalarTy(U8), StrTy()), "(u8, str)"},
		{"array", ArrayTy(ScalarTy(I32), 4), "[i32; 4]"},
		{"slice", SliceTy(ScalarTy(U8)), "[u8]"},
		{"ref", RefTy(Not, Static, StrTy()), "&'static str"},
		{"mut ref", RefTy(Mut, BoundLifetime(1), BoundVar{Index: 0}), "&'^1 mut ^0"},
		{"erased ref", RefTy(Not, Lifetime{}, ScalarTy(U8)), "&'_ u8"},
		{"infer lifetime", RefTy(Not, InferLifetime(3), ScalarTy(U8)), "&'?3 u8"},
		{"placeholder lifetime", RefTy(Not, PlaceholderLifetime("a"), ScalarTy(U8)), "&'a u8"},
		{"raw mut", RawPtrTy(Mut, ScalarTy(U8)), "*mut u8"},
		{"raw const", RawPtrTy(Not, ScalarTy(U8)), "*const u8"},
		{"fn def", FnDefTy("parse"), "parse"},
		{"closure", ClosureTy("adder"), "adder"},
		{"fn ptr", FnPtr{Params: []Ty{ScalarTy(U8)}, Return: ScalarTy(Bool)}, "fn(u8) -> bool"},
		{"fn ptr unit", FnPtr{Params: []Ty{ScalarTy(U8), StrTy()}, Return: TupleTy()}, "fn(u8, str)"},
		{"projection", itemOf(Placeholder{Name: "I"}), "<!I as Iterator>::Item"},
		{
			"dyn with binding",
			Dyn{
				Bounds: []WhereClause{
					Implemented{TraitRef: iter(SelfTy{})},
					AliasEq{Alias: itemOf(SelfTy{}), Ty: ScalarTy(U8)},
					Implemented{TraitRef: TraitRef{Trait: "Send", Args: []Arg{SelfTy{}}}},
				},
				Lifetime: Static,
			},
			"dyn Iterator<Item = u8> + Send + 'static",
		},
		{
			"dyn erased lifetime",
			Dyn{Bounds: []WhereClause{Implemented{TraitRef: TraitRef{Trait: "Display", Args: []Arg{SelfTy{}}}}}},
			"dyn Display",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ty.String())
		})
	}
}

func TestGoalString(t *testing.T) {
	T := Placeholder{Name: "T"}
	fnOnce := TraitRef{Trait: "FnOnce", Args: []Arg{T, TupleTy(ScalarTy(U8))}}

	tests := []struct {
		goal DomainGoal
		want string
	}{
		{ImplementedGoal(fnOnce), "Implemented(!T: FnOnce<(u8,)>)"},
		{Holds{Clause: AliasEq{Alias: itemOf(T), Ty: ScalarTy(U8)}}, "AliasEq(<!T as Iterator>::Item = u8)"},
		{Normalize{Alias: itemOf(T), Ty: InferVar{ID: 0}}, "Normalize(<!T as Iterator>::Item -> ?0)"},
		{WellFormedTy{Ty: AdtTy("Vec", T)}, "WellFormed(Vec<!T>)"},
		{WellFormedTrait{TraitRef: iter(T)}, "WellFormed(!T: Iterator)"},
		{FromEnvTy{Ty: T}, "FromEnv(!T)"},
		{FromEnvTrait{TraitRef: iter(T)}, "FromEnv(!T: Iterator)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.goal.String())
	}
}

func TestClauseString(t *testing.T) {
	fact := ProgramClause{Head: ImplementedGoal(iter(AdtTy("Counter")))}
	assert.True(t, fact.IsFact())
	assert.Equal(t, "Implemented(Counter: Iterator)", fact.String())

	rule := ProgramClause{
		Binders: []VarKind{KindType, KindLifetime},
		Head:    ImplementedGoal(iter(RefTy(Not, BoundLifetime(1), BoundVar{Index: 0}))),
		Conditions: []DomainGoal{
			ImplementedGoal(iter(BoundVar{Index: 0})),
			WellFormedTy{Ty: BoundVar{Index: 0}},
		},
	}
	assert.False(t, rule.IsFact())
	assert.Equal(t,
		"forall<type, lifetime> { Implemented(&'^1 ^0: Iterator) :- Implemented(^0: Iterator), WellFormed(^0) }",
		rule.String())
}

func TestEnvironmentString(t *testing.T) {
	assert.Equal(t, "{}", NewEnvironment().String())
	env := NewEnvironment(
		Implemented{TraitRef: iter(Placeholder{Name: "I"})},
		AliasEq{Alias: itemOf(Placeholder{Name: "I"}), Ty: ScalarTy(U8)},
	)
	assert.Equal(t, "{!I: Iterator, <!I as Iterator>::Item = u8}", env.String())
}

func TestAssocName(t *testing.T) {
	assert.Equal(t, "Item", AssocName("Iterator::Item"))
	assert.Equal(t, "Output", AssocName("Output"))
}

func TestCanonicalize(t *testing.T) {
	// forall<lifetime, type, type> { Implemented(&'^0 ^2: Iterator) :- ^2: Iterator }
	// binder 1 is unused and the others are renumbered by first occurrence.
	c := ProgramClause{
		Binders:    []VarKind{KindLifetime, KindType, KindType},
		Head:       ImplementedGoal(iter(RefTy(Not, BoundLifetime(0), BoundVar{Index: 2}))),
		Conditions: []DomainGoal{ImplementedGoal(iter(BoundVar{Index: 2}))},
	}
	got := Canonicalize(c)
	assert.Equal(t, []VarKind{KindLifetime, KindType}, got.Binders)
	assert.Equal(t,
		"forall<lifetime, type> { Implemented(&'^0 ^1: Iterator) :- Implemented(^1: Iterator) }",
		got.String())
	assert.Equal(t, got.String(), Canonicalize(got).String(), "canonical form is a fixed point")
}

func TestAlphaEqual(t *testing.T) {
	a := ProgramClause{
		Binders: []VarKind{KindType, KindType},
		Head:    ImplementedGoal(TraitRef{Trait: "Eq", Args: []Arg{TupleTy(BoundVar{Index: 0}, BoundVar{Index: 1})}}),
	}
	b := ProgramClause{
		Binders: []VarKind{KindType, KindType},
		Head:    ImplementedGoal(TraitRef{Trait: "Eq", Args: []Arg{TupleTy(BoundVar{Index: 1}, BoundVar{Index: 0})}}),
	}
	c := ProgramClause{
		Binders: []VarKind{KindType},
		Head:    ImplementedGoal(TraitRef{Trait: "Eq", Args: []Arg{TupleTy(BoundVar{Index: 0}, BoundVar{Index: 0})}}),
	}
	assert.True(t, AlphaEqual(a, b))
	assert.False(t, AlphaEqual(a, c))
}
