package mangle

import (
	"strings"
	"testing"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaDeclaresEveryPredicate(t *testing.T) {
	sv, err := NewSchemaValidator(Schema)
	require.NoError(t, err)
	assert.Equal(t, []string{
		PredAliasEq,
		PredFromEnvTrait,
		PredFromEnvTy,
		PredImplemented,
		PredNormalize,
		PredWellFormedTrait,
		PredWellFormedTy,
	}, sv.Predicates())
}

func TestSchemaValidatorRejects(t *testing.T) {
	sv, err := NewSchemaValidator(Schema)
	require.NoError(t, err)

	tests := []struct {
		name   string
		source string
		errMsg string
	}{
		{"undeclared head", `server_health(/degraded).`, "undeclared predicate server_health"},
		{"undeclared premise", `well_formed_ty(X) :- sized(X).`, "undeclared predicate sized"},
		{"wrong arity", `normalize(/a).`, "arity 1, declared 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := parse.Unit(strings.NewReader(tt.source))
			require.NoError(t, err)
			err = sv.ValidateUnit(unit)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSchemaValidatorAccepts(t *testing.T) {
	sv, err := NewSchemaValidator(Schema)
	require.NoError(t, err)

	clause := ast.Clause{
		Head:     ast.NewAtom(PredWellFormedTy, Var(0)),
		Premises: []ast.Term{ast.NewAtom(PredFromEnvTy, Var(0))},
	}
	assert.NoError(t, sv.ValidateClause(clause))
}

func TestNewSchemaValidatorBadText(t *testing.T) {
	_, err := NewSchemaValidator("Decl broken(")
	assert.ErrorContains(t, err, "failed to parse schema")
}
