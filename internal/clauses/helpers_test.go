package clauses

import (
	"testing"

	"github.com/stretchr/testify/require"

	"clausegen/internal/ir"
	"clausegen/internal/lower"
	"clausegen/internal/programdb"
)

const sampleProgram = "../../testdata/program.yaml"

func loadSample(t *testing.T) *lower.Lowered {
	t.Helper()
	src, err := programdb.LoadYAML(sampleProgram)
	require.NoError(t, err)
	l, err := lower.Lower(src)
	require.NoError(t, err)
	return l
}

func loadDoc(t *testing.T, doc string) *lower.Lowered {
	t.Helper()
	src, err := programdb.ParseYAML([]byte(doc))
	require.NoError(t, err)
	l, err := lower.Lower(src)
	require.NoError(t, err)
	return l
}

func mustGoal(t *testing.T, l *lower.Lowered, goal string, env ...string) (ir.DomainGoal, ir.Environment) {
	t.Helper()
	g, e, err := l.LowerGoal(goal, env)
	require.NoError(t, err)
	return g, e
}

func strs(clauses []ir.ProgramClause) []string {
	out := make([]string, len(clauses))
	for i, c := range clauses {
		out[i] = c.String()
	}
	return out
}
