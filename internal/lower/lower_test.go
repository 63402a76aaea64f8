package lower

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

func lowerYAML(t *testing.T, doc string) *Lowered {
	t.Helper()
	src, err := programdb.ParseYAML([]byte(doc))
	require.NoError(t, err)
	l, err := Lower(src)
	require.NoError(t, err)
	return l
}

func TestLowerSampleProgram(t *testing.T) {
	src, err := programdb.LoadYAML("../../testdata/program.yaml")
	require.NoError(t, err)

	l, err := Lower(src)
	require.NoError(t, err)

	stats := l.Program.Stats()
	assert.Equal(t, 6, stats.Impls)
	assert.Equal(t, 1, stats.FnDefs)
	assert.Equal(t, 1, stats.Closures)
	assert.Len(t, l.Goals, 6)

	send, ok := l.Program.TraitDatum("Send")
	require.True(t, ok)
	assert.True(t, send.Flags.Auto)
	assert.ElementsMatch(t, []ir.TraitID{"Send", "Sync"}, l.Program.AutoTraits())

	sized, ok := l.Program.WellKnownTrait(programdb.WellKnownSized)
	require.True(t, ok)
	assert.Equal(t, ir.TraitID("Sized"), sized)
}

func TestLowerTraitSelfParameter(t *testing.T) {
	l := lowerYAML(t, `
traits:
  - name: PartialEq
    params: [Rhs]
  - name: Eq
    where: ["Self: PartialEq<Self>"]
`)
	eq, ok := l.Program.TraitDatum("Eq")
	require.True(t, ok)
	assert.Equal(t, []ir.VarKind{ir.KindType}, eq.Binders)

	sups := eq.Supertraits()
	require.Len(t, sups, 1)
	assert.Equal(t, "^0: PartialEq<^0>", sups[0].String())

	peq, _ := l.Program.TraitDatum("PartialEq")
	assert.Equal(t, []ir.VarKind{ir.KindType, ir.KindType}, peq.Binders)
}

func TestLowerAssocBindingsExpand(t *testing.T) {
	l := lowerYAML(t, `
traits:
  - name: Iterator
    assoc_types: [Item]
structs:
  - name: Counter
fns:
  - name: sum
    params: [I]
    args: [I]
    where: ["I: Iterator<Item = u32>"]
`)
	f, ok := l.Program.FnDefDatum("sum")
	require.True(t, ok)
	require.Len(t, f.WhereClauses, 2)
	assert.Equal(t, "^0: Iterator", f.WhereClauses[0].String())
	assert.Equal(t, "<^0 as Iterator>::Item = u32", f.WhereClauses[1].String())
	assert.Equal(t, "()", f.Return.String())
}

func TestLowerImplAssocValues(t *testing.T) {
	l := lowerYAML(t, `
traits:
  - name: Iterator
    assoc_types: [Item]
structs:
  - name: Counter
impls:
  - trait: Iterator
    for: Counter
    assoc:
      - {name: Item, type: u32}
`)
	impls := l.Program.ImplsForTrait("Iterator")
	require.Len(t, impls, 1)
	ty, ok := impls[0].AssocValue("Iterator::Item")
	require.True(t, ok)
	assert.Equal(t, "u32", ty.String())
	assert.Equal(t, "Counter: Iterator", impls[0].TraitRef.String())
}

func TestLowerTypes(t *testing.T) {
	l := lowerYAML(t, `
traits:
  - name: Display
  - name: Iterator
    assoc_types: [Item]
structs:
  - name: Ref
    params: ["'a", T]
    fields:
      - {name: r, type: "&'a mut T"}
      - {name: p, type: "*const [T; 4]"}
      - {name: s, type: "&'static [u8]"}
      - {name: f, type: "fn(T, bool) -> (T,)"}
      - {name: d, type: "&'a dyn Display + 'a"}
      - {name: i, type: "<T as Iterator>::Item"}
      - {name: n, type: "!"}
`)
	adt, ok := l.Program.AdtDatum("Ref")
	require.True(t, ok)
	assert.Equal(t, []ir.VarKind{ir.KindLifetime, ir.KindType}, adt.Binders)

	var got []string
	for _, ty := range adt.FieldTypes() {
		got = append(got, ty.String())
	}
	assert.Equal(t, []string{
		"&'^0 mut ^1",
		"*const [^1; 4]",
		"&'static [u8]",
		"fn(^1, bool) -> (^1,)",
		"&'^0 dyn Display + '^0",
		"<^1 as Iterator>::Item",
		"!",
	}, got)
}

func TestLowerGoals(t *testing.T) {
	l := lowerYAML(t, `
traits:
  - name: Iterator
    assoc_types: [Item]
  - name: Clone
structs:
  - name: Vec
    params: [T]
`)
	tests := []struct {
		input string
		want  string
	}{
		{"Implemented(Vec<?0>: Clone)", "Implemented(Vec<?0>: Clone)"},
		{"Vec<!T>: Clone", "Implemented(Vec<!T>: Clone)"},
		{"Normalize(<Vec<u8> as Iterator>::Item -> ?3)", "Normalize(<Vec<u8> as Iterator>::Item -> ?3)"},
		{"<?0 as Iterator>::Item = u8", "AliasEq(<?0 as Iterator>::Item = u8)"},
		{"WellFormed(Vec<u8>)", "WellFormed(Vec<u8>)"},
		{"WellFormed(u8: Clone)", "WellFormed(u8: Clone)"},
		{"FromEnv(!T: Iterator)", "FromEnv(!T: Iterator)"},
		{"Implemented(&'a dyn Iterator<Item = u8> + 'a: Clone)", "Implemented(&'a dyn Iterator<Item = u8> + 'a: Clone)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			goal, _, err := l.LowerGoal(tt.input, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, goal.String())
		})
	}
}

// Goals are single domain goals; quantifiers and connectives are the
// solver's business.
func TestLowerGoalRejectsCompoundGoals(t *testing.T) {
	l := lowerYAML(t, `
traits:
  - name: Clone
`)
	for _, input := range []string{
		"forall<T> { Implemented(T: Clone) }",
		"exists<T> { Implemented(T: Clone) }",
		"Implemented(u8: Clone), Implemented(bool: Clone)",
		"if (FromEnv(!T: Clone)) { Implemented(!T: Clone) }",
	} {
		_, _, err := l.LowerGoal(input, nil)
		assert.Error(t, err, input)
	}
}

func TestLowerGoalEnvironment(t *testing.T) {
	l := lowerYAML(t, `
traits:
  - name: Iterator
    assoc_types: [Item]
`)
	_, env, err := l.LowerGoal("Implemented(!I: Iterator)", []string{"!I: Iterator<Item = u8>"})
	require.NoError(t, err)
	assert.Equal(t, "{!I: Iterator, <!I as Iterator>::Item = u8}", env.String())
}

func TestLowerEnv(t *testing.T) {
	l := lowerYAML(t, `
traits:
  - name: Eq
`)
	env, err := l.LowerEnv([]string{"!A: Eq", "!B: Eq"})
	require.NoError(t, err)
	assert.Equal(t, "{!A: Eq, !B: Eq}", env.String())

	_, err = l.LowerEnv([]string{"!A: Missing"})
	assert.ErrorIs(t, err, &Error{Kind: ErrInvalidTypeName})
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind ErrorKind
	}{
		{
			name: "unknown type",
			doc: `
structs:
  - name: S
    fields: [{name: x, type: Missing}]`,
			kind: ErrInvalidTypeName,
		},
		{
			name: "struct used as trait",
			doc: `
structs:
  - name: S
impls:
  - trait: S
    for: u8`,
			kind: ErrNotTrait,
		},
		{
			name: "wrong arity",
			doc: `
structs:
  - name: Vec
    params: [T]
  - name: S
    fields: [{name: x, type: "Vec<u8, u8>"}]`,
			kind: ErrIncorrectParamCount,
		},
		{
			name: "applied type parameter",
			doc: `
structs:
  - name: S
    params: [T]
    fields: [{name: x, type: "T<u8>"}]`,
			kind: ErrCannotApplyTypeParameter,
		},
		{
			name: "unknown associated type",
			doc: `
traits:
  - name: Iterator
    assoc_types: [Item]
impls:
  - trait: Iterator
    for: u8
    assoc: [{name: Elem, type: u8}]`,
			kind: ErrUnknownAssocType,
		},
		{
			name: "duplicate item",
			doc: `
structs:
  - name: S
enums:
  - name: S`,
			kind: ErrDuplicateItem,
		},
		{
			name: "undeclared lifetime",
			doc: `
structs:
  - name: S
    fields: [{name: x, type: "&'a u8"}]`,
			kind: ErrInvalidLifetime,
		},
		{
			name: "bad well-known tag",
			doc: `
traits:
  - name: Weird
    well_known: weird`,
			kind: ErrInvalidWellKnown,
		},
		{
			name: "bad closure kind",
			doc: `
closures:
  - name: c
    kind: sometimes`,
			kind: ErrInvalidClosureKind,
		},
		{
			name: "syntax",
			doc: `
structs:
  - name: S
    fields: [{name: x, type: "Vec<"}]`,
			kind: ErrSyntax,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := programdb.ParseYAML([]byte(tt.doc))
			require.NoError(t, err)
			_, err = Lower(src)
			require.Error(t, err)

			var le *Error
			require.True(t, errors.As(err, &le), "want *Error, got %T", err)
			assert.Equal(t, tt.kind, le.Kind, err.Error())
			assert.True(t, errors.Is(err, &Error{Kind: tt.kind}))
		})
	}
}

func TestLowerErrorNamesItem(t *testing.T) {
	src, err := programdb.ParseYAML([]byte(`
structs:
  - name: Holder
    fields: [{name: x, type: Nope}]
`))
	require.NoError(t, err)
	_, err = Lower(src)
	require.Error(t, err)
	assert.Equal(t, `in struct Holder: invalid type name "Nope"`, err.Error())
}

func TestParseTypeSyntax(t *testing.T) {
	for _, ok := range []string{"u8", "&'a mut [T]", "<T as Tr<A>>::Out", "dyn A<X = u8> + B + 'static", "fn()", "(u8,)"} {
		assert.NoError(t, ParseTypeSyntax(ok), ok)
	}
	for _, bad := range []string{"", "&", "[u8; x]", "*u8", "u8 u8", "dyn 'a", "%"} {
		assert.Error(t, ParseTypeSyntax(bad), bad)
	}
}
