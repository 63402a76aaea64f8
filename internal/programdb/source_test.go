package programdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSampleProgram(t *testing.T) {
	src, err := LoadYAML(sampleProgram)
	require.NoError(t, err)

	assert.Len(t, src.Traits, 15)
	assert.Len(t, src.Structs, 5)
	assert.Len(t, src.Enums, 1)
	assert.Len(t, src.Impls, 6)
	assert.Len(t, src.Goals, 6)

	rc := src.Impls[3]
	assert.Equal(t, "Send", rc.Trait)
	assert.True(t, rc.Negative)

	g, ok := src.Goal("eq_implies_partial_eq")
	require.True(t, ok)
	assert.Equal(t, []string{"!T: Eq"}, g.Env)
	_, ok = src.Goal("nope")
	assert.False(t, ok)
}

func TestParseYAMLErrors(t *testing.T) {
	_, err := ParseYAML([]byte("traits: {name: Eq"))
	assert.ErrorContains(t, err, "failed to parse program")

	_, err = LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read program")
}

func TestEncodeYAML(t *testing.T) {
	src := &Source{
		Traits: []TraitDecl{{Name: "Iterator", AssocTypes: []string{"Item"}}},
		Impls: []ImplDecl{{
			Trait: "Iterator",
			For:   "Counter",
			Assoc: []AssocDecl{{Name: "Item", Type: "u32"}},
		}},
	}
	data, err := src.EncodeYAML()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "structs:", "empty sections are omitted")

	back, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, src, back)
}
