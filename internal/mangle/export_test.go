package mangle

import (
	"strings"
	"testing"

	"github.com/google/mangle/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausegen/internal/ir"
)

func copyRef(self ir.Ty) ir.TraitRef {
	return ir.TraitRef{Trait: "Copy", Args: []ir.Arg{self}}
}

func TestAtomImplemented(t *testing.T) {
	atom, err := Atom(ir.ImplementedGoal(copyRef(ir.ScalarTy(ir.U8))))
	require.NoError(t, err)

	assert.Equal(t, PredImplemented, atom.Predicate.Symbol)
	require.Len(t, atom.Args, 3)
	assert.Equal(t, ast.String("Copy"), atom.Args[0])
	u8, err := ast.Name("/u8")
	require.NoError(t, err)
	assert.Equal(t, u8, atom.Args[1])
}

func TestClauseVariables(t *testing.T) {
	// forall<type> { Implemented([^0; 2]: Copy) :- Implemented(^0: Copy) }
	c := ir.ProgramClause{
		Binders:    []ir.VarKind{ir.KindType},
		Head:       ir.ImplementedGoal(copyRef(ir.ArrayTy(ir.BoundVar{Index: 0}, 2))),
		Conditions: []ir.DomainGoal{ir.ImplementedGoal(copyRef(ir.BoundVar{Index: 0}))},
	}
	clause, err := Clause(c)
	require.NoError(t, err)
	require.Len(t, clause.Premises, 1)

	premise, ok := clause.Premises[0].(ast.Atom)
	require.True(t, ok)
	assert.Equal(t, Var(0), premise.Args[1])
	assert.Contains(t, clause.String(), "V0")
	assert.Contains(t, clause.String(), "fn:list")
}

func TestGoalPredicates(t *testing.T) {
	proj := ir.Projection{Trait: "Iterator", Assoc: "Iterator::Item", Args: []ir.Arg{ir.AdtTy("Counter")}}
	u32 := ir.ScalarTy(ir.U32)
	tests := []struct {
		goal ir.DomainGoal
		pred string
	}{
		{ir.ImplementedGoal(copyRef(u32)), PredImplemented},
		{ir.Holds{Clause: ir.AliasEq{Alias: proj, Ty: u32}}, PredAliasEq},
		{ir.Normalize{Alias: proj, Ty: u32}, PredNormalize},
		{ir.WellFormedTy{Ty: ir.AdtTy("Counter")}, PredWellFormedTy},
		{ir.WellFormedTrait{TraitRef: copyRef(u32)}, PredWellFormedTrait},
		{ir.FromEnvTy{Ty: ir.AdtTy("Counter")}, PredFromEnvTy},
		{ir.FromEnvTrait{TraitRef: copyRef(u32)}, PredFromEnvTrait},
	}
	for _, tt := range tests {
		t.Run(tt.pred, func(t *testing.T) {
			atom, err := Atom(tt.goal)
			require.NoError(t, err)
			assert.Equal(t, tt.pred, atom.Predicate.Symbol)
		})
	}
}

func TestRendersInferenceVariables(t *testing.T) {
	term, err := Ty(ir.InferVar{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, "fn:list(/infer,3)", term.String())

	term, err = Ty(ir.RefTy(ir.Not, ir.InferLifetime(1), ir.ScalarTy(ir.U8)))
	require.NoError(t, err)
	assert.Contains(t, term.String(), "fn:list(/infer_lifetime,1)")

	// environment clauses keep the caller's variables as written
	eq := ir.TraitRef{Trait: "Eq", Args: []ir.Arg{ir.InferVar{ID: 0}}}
	src, err := Render([]ir.ProgramClause{
		{Head: ir.ImplementedGoal(eq)},
		{Head: ir.FromEnvTrait{TraitRef: eq}},
	})
	require.NoError(t, err)
	lines := strings.Split(src, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], PredImplemented+"("))
	assert.True(t, strings.HasPrefix(lines[1], PredFromEnvTrait+"("))
	for _, line := range lines {
		assert.Contains(t, line, "fn:list(/infer,0)")
	}
}

func TestRejectsUnrenderableTerms(t *testing.T) {
	_, err := Atom(ir.ImplementedGoal(ir.TraitRef{Trait: "Copy"}))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Render([]ir.ProgramClause{{Head: ir.ImplementedGoal(ir.TraitRef{Trait: "Copy"})}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clause 0")
}

func TestRender(t *testing.T) {
	clauses := []ir.ProgramClause{
		{Head: ir.ImplementedGoal(copyRef(ir.ScalarTy(ir.U8)))},
		{
			Binders:    []ir.VarKind{ir.KindType},
			Head:       ir.ImplementedGoal(copyRef(ir.TupleTy(ir.BoundVar{Index: 0}))),
			Conditions: []ir.DomainGoal{ir.ImplementedGoal(copyRef(ir.BoundVar{Index: 0}))},
		},
		{Head: ir.WellFormedTy{Ty: ir.AdtTy("Counter")}},
	}
	src, err := Render(clauses)
	require.NoError(t, err)

	lines := strings.Split(src, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], PredImplemented+"("))
	assert.Contains(t, lines[1], ":-")
	assert.True(t, strings.HasPrefix(lines[2], PredWellFormedTy+"("))
}
