package mangle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausegen/internal/clauses"
	"clausegen/internal/lower"
	"clausegen/internal/programdb"
)

func TestRenderGoalWithInferenceEnv(t *testing.T) {
	src, err := programdb.LoadYAML("../../testdata/program.yaml")
	require.NoError(t, err)
	l, err := lower.Lower(src)
	require.NoError(t, err)

	goal, env, err := l.LowerGoal("Implemented(?0: PartialEq)", []string{"?0: Eq"})
	require.NoError(t, err)

	set := clauses.New(l.Program).ProgramClausesForGoal(goal, env)
	require.NotZero(t, set.Len())

	text, err := Render(set.ProgramClauses())
	require.NoError(t, err)
	assert.Contains(t, text, PredFromEnvTrait+"(")
	assert.Contains(t, text, "fn:list(/infer,0)")
	assert.Len(t, strings.Split(text, "\n"), set.Len())
}
