package clauses

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestAutoTraitDefaults(t *testing.T) {
	l := loadSample(t)

	got := strs(AutoTraitDefaults(l.Program, "Send"))
	want := []string{
		"Implemented(Pair: Send) :- Implemented(i32: Send), Implemented(i32: Send)",
		"Implemented(Counter: Send) :- Implemented(u32: Send)",
		"forall<type> { Implemented(Vec<^0>: Send) :- Implemented(*mut ^0: Send), Implemented(usize: Send) }",
		"Implemented(Unit: Send)",
		"forall<type> { Implemented(Option<^0>: Send) :- Implemented(^0: Send) }",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AutoTraitDefaults(Send) mismatch (-want +got):\n%s", diff)
	}
}

func TestAutoTraitDefaultsPerTrait(t *testing.T) {
	l := loadSample(t)

	// the negative impl only affects Send
	got := strs(AutoTraitDefaults(l.Program, "Sync"))
	assert.Contains(t, got, "forall<type> { Implemented(Rc<^0>: Sync) :- Implemented(*const ^0: Sync) }")
	assert.Len(t, got, 6)
}

func TestAutoTraitDefaultsSuppressedByPositiveImpl(t *testing.T) {
	l := loadDoc(t, `
traits:
  - {name: Send, auto: true}
structs:
  - name: Handle
    fields: [{name: fd, type: "*const u8"}]
  - name: Plain
    fields: [{name: x, type: u8}]
impls:
  - {trait: Send, for: Handle}
`)
	got := strs(AutoTraitDefaults(l.Program, "Send"))
	assert.Equal(t, []string{"Implemented(Plain: Send) :- Implemented(u8: Send)"}, got)
}

func TestAutoTraitDefaultGoal(t *testing.T) {
	l := loadSample(t)
	s := New(l.Program)

	tests := []struct {
		name string
		goal string
		want []string
	}{
		{
			name: "struct",
			goal: "Implemented(Pair: Send)",
			want: []string{"Implemented(Pair: Send) :- Implemented(i32: Send), Implemented(i32: Send)"},
		},
		{
			name: "negative impl",
			goal: "Implemented(Rc<u8>: Send)",
			want: nil,
		},
		{
			name: "placeholder self",
			goal: "Implemented(!T: Send)",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal, env := mustGoal(t, l, tt.goal)
			got := s.ProgramClausesForGoal(goal, env).ByCategory(CategoryAutoTraitDefault)
			assert.Equal(t, len(tt.want), got.Len())
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, got.Strings())
			}
		})
	}
}
