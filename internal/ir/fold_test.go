package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSubstituter(t *testing.T) {
	ty := AdtTy("Map", BoundVar{Index: 0}, RefTy(Not, BoundLifetime(1), BoundVar{Index: 2}), BoundVar{Index: 5})
	args := []Arg{ScalarTy(U8), Static, StrTy()}

	got := Substituter(args).FoldTy(ty)
	assert.Equal(t, "Map<u8, &'static str, ^5>", got.String(), "out-of-range indices are left alone")
}

func TestSubstituterKindMismatch(t *testing.T) {
	// A lifetime argument never replaces a type variable and vice versa.
	ty := RefTy(Not, BoundLifetime(0), BoundVar{Index: 0})
	got := Substituter([]Arg{ScalarTy(U8)}).FoldTy(ty)
	assert.Equal(t, "&'^0 u8", got.String())
}

func TestShifter(t *testing.T) {
	c := ProgramClause{
		Binders:    []VarKind{KindType, KindLifetime},
		Head:       ImplementedGoal(iter(RefTy(Not, BoundLifetime(1), BoundVar{Index: 0}))),
		Conditions: []DomainGoal{FromEnvTy{Ty: BoundVar{Index: 0}}},
	}
	got := Shifter(3).FoldClause(c)
	assert.Equal(t, "forall<type, lifetime> { Implemented(&'^4 ^3: Iterator) :- FromEnv(^3) }", got.String())
	assert.Equal(t, "forall<type, lifetime> { Implemented(&'^1 ^0: Iterator) :- FromEnv(^0) }", c.String(), "input is not mutated")
}

func TestSelfReplacer(t *testing.T) {
	inner := Dyn{Bounds: []WhereClause{Implemented{TraitRef: TraitRef{Trait: "Display", Args: []Arg{SelfTy{}}}}}}
	bound := AliasEq{Alias: itemOf(SelfTy{}), Ty: AdtTy("Box", inner)}

	got := SelfReplacer(Placeholder{Name: "D"}).FoldWhereClause(bound)
	assert.Equal(t, "<!D as Iterator>::Item = Box<dyn Display>", got.String())

	nested := got.(AliasEq).Ty.(Apply).Args[0].(Dyn)
	if diff := cmp.Diff(inner, nested); diff != "" {
		t.Errorf("nested dyn must keep its own Self (-want +got):\n%s", diff)
	}
}

func TestBoundArgs(t *testing.T) {
	args := BoundArgs([]VarKind{KindType, KindLifetime, KindType}, 2)
	want := []Arg{BoundVar{Index: 2}, BoundLifetime(3), BoundVar{Index: 4}}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Errorf("BoundArgs mismatch (-want +got):\n%s", diff)
	}
}

func TestHasInferVars(t *testing.T) {
	tests := []struct {
		name string
		ty   Ty
		want bool
	}{
		{"scalar", ScalarTy(U8), false},
		{"bound", BoundVar{Index: 0}, false},
		{"placeholder", Placeholder{Name: "T"}, false},
		{"infer", InferVar{ID: 0}, true},
		{"nested infer", AdtTy("Vec", TupleTy(ScalarTy(U8), InferVar{ID: 1})), true},
		{"infer lifetime", RefTy(Not, InferLifetime(0), ScalarTy(U8)), true},
		{"fn ptr return", FnPtr{Return: InferVar{ID: 2}}, true},
		{"projection", itemOf(InferVar{ID: 3}), true},
		{
			"dyn lifetime",
			Dyn{Bounds: []WhereClause{Implemented{TraitRef: iter(SelfTy{})}}, Lifetime: InferLifetime(1)},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasInferVars(tt.ty))
		})
	}
}

func TestIsVar(t *testing.T) {
	assert.True(t, IsVar(BoundVar{}))
	assert.True(t, IsVar(InferVar{}))
	assert.False(t, IsVar(Placeholder{Name: "T"}))
	assert.False(t, IsVar(ScalarTy(U8)))
}

func TestTyArgsSkipsLifetimes(t *testing.T) {
	ref := RefTy(Mut, Static, ScalarTy(U8))
	assert.Equal(t, []Ty{ScalarTy(U8)}, ref.TyArgs())
	assert.Equal(t, ScalarTy(U8), ref.TyArgs()[0])
}

func TestProjectionAccessors(t *testing.T) {
	p := itemOf(Placeholder{Name: "I"})
	assert.Equal(t, Placeholder{Name: "I"}, p.SelfType())
	assert.Equal(t, iter(Placeholder{Name: "I"}), p.TraitRef())
	assert.Nil(t, Projection{}.SelfType())
}
