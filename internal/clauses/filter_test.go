package clauses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausegen/internal/ir"
)

// filterGoals covers every predicate and every builder category.
var filterGoals = []string{
	"Implemented(Pair: Send)",
	"Implemented(Rc<u8>: Send)",
	"Implemented(?0: Send)",
	"Implemented(!T: PartialEq)",
	"Implemented(Vec<?0>: Clone)",
	"Implemented(Vec<u8>: Iterator)",
	"Implemented((u8, str): Sized)",
	"Implemented([u8]: Sized)",
	"Implemented(Option<u8>: Sized)",
	"Implemented(&'a mut u8: Copy)",
	"Implemented(adder: Copy)",
	"Implemented(adder: Fn<(i32,)>)",
	"Implemented(parse: FnOnce<(&str,)>)",
	"Implemented(fn(u8) -> u8: FnMut<(u8,)>)",
	"Implemented([u8; 3]: Unsize<[u8]>)",
	"Implemented(Counter: Unsize<dyn Iterator<Item = u32> + 'static>)",
	"Implemented((u8,): Tuple)",
	"Implemented(*const u8: Sync)",
	"Implemented(dyn Display + Send + 'static: Display)",
	"Implemented(dyn Iterator<Item = ?0> + '?1: Iterator)",
	"Normalize(<Counter as Iterator>::Item -> ?0)",
	"Normalize(<dyn Iterator<Item = u8> as Iterator>::Item -> ?0)",
	"Normalize(<parse as FnOnce<(&str,)>>::Output -> ?0)",
	"AliasEq(<Vec<u8> as Iterator>::Item = ?0)",
	"WellFormed(!T: Eq)",
	"WellFormed(Vec<u8>)",
	"WellFormed(?0)",
	"WellFormed(dyn Display)",
	"FromEnv(!T: PartialEq)",
	"FromEnv(!T: FnOnce<(u8,)>)",
	"FromEnv(Vec<u8>)",
}

// TestFilterConservative runs every builder the filter rejects and checks
// that none of its clauses could have matched the goal.
func TestFilterConservative(t *testing.T) {
	l := loadSample(t)
	s := New(l.Program)
	f := s.Filter()

	for _, src := range filterGoals {
		goal, _ := mustGoal(t, l, src)
		selected := make(map[Category]bool)
		for _, cat := range f.ProgramClausesThatCouldMatch(goal) {
			selected[cat] = true
		}
		for _, cat := range AllCategories {
			if selected[cat] {
				continue
			}
			b := newClauseBuilder(l.Program)
			s.build(b, cat, goal)
			for _, c := range b.clauses {
				assert.False(t, CouldMatchGoal(c.Head, goal),
					"filter rejected %s for %s but it produced %s", cat, src, c)
			}
		}
	}
}

func TestFilterSelects(t *testing.T) {
	l := loadSample(t)
	f := NewFilter(l.Program)

	tests := []struct {
		goal string
		want []Category
	}{
		{"Implemented(Pair: Send)", []Category{CategoryEnv, CategoryTraitWF, CategoryAutoTraitDefault}},
		{"Implemented(Vec<?0>: Clone)", []Category{CategoryEnv, CategoryImpl, CategoryTraitWF}},
		{"Implemented(u8: Copy)", []Category{CategoryEnv, CategoryTraitWF, CategoryBuiltinCopyClone}},
		{"Normalize(<Counter as Iterator>::Item -> ?0)", []Category{CategoryEnv, CategoryAssocNormalize}},
		{"AliasEq(<Counter as Iterator>::Item = ?0)", []Category{CategoryEnv, CategoryProjection}},
		{"WellFormed(Vec<u8>)", []Category{CategoryEnv, CategoryAdtWF}},
		{"WellFormed(dyn Display)", []Category{CategoryEnv, CategoryDyn}},
		{"Implemented(dyn Display: Display)", []Category{CategoryEnv, CategoryTraitWF, CategoryDyn}},
	}
	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			goal, _ := mustGoal(t, l, tt.goal)
			assert.Equal(t, tt.want, f.ProgramClausesThatCouldMatch(goal))
		})
	}
}

func TestWildcardSelfFlounders(t *testing.T) {
	l := loadSample(t)
	s := New(l.Program)

	tests := []struct {
		goal       string
		floundered bool
	}{
		{"Implemented(?0: Clone)", true},
		{"Implemented(?0: Copy)", true},
		{"Implemented(?0: Sized)", true},
		{"Implemented(?0: Send)", true},
		{"Implemented(?0: Tuple)", true},
		{"Implemented(?0: Fn<(u8,)>)", true},
		{"Implemented(?0: Unsize<[u8]>)", true},
		{"Implemented([u8; 3]: Unsize<?0>)", true},
		{"Implemented(<Counter as Iterator>::Item: Clone)", true},
		{"Normalize(<?0 as FnOnce<(u8,)>>::Output -> ?1)", true},

		{"Implemented(?0: PartialEq)", false},
		{"Implemented(!T: Clone)", false},
		{"Implemented(u8: Clone)", false},
		{"Implemented(Vec<?0>: Clone)", false},
		{"Implemented([u8; 3]: Unsize<[u8]>)", false},
		{"Normalize(<Counter as Iterator>::Item -> ?0)", false},
		{"AliasEq(<?0 as FnOnce<(u8,)>>::Output = ?1)", false},
		{"WellFormed(?0)", false},
	}
	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			goal, env := mustGoal(t, l, tt.goal, "!T: Eq")
			assert.Equal(t, tt.floundered, s.Filter().Flounders(goal))

			set := s.ProgramClausesForGoal(goal, env)
			assert.Equal(t, tt.floundered, set.Floundered)
			if tt.floundered {
				assert.Zero(t, set.Len())
				assert.Equal(t, "floundered", set.String())
			} else {
				assert.NotZero(t, set.Len())
			}
		})
	}
}

// A builtin trait goal with a known constructor gets that constructor's rule.
func TestKnownSelfGetsBuiltinRule(t *testing.T) {
	l := loadSample(t)
	s := New(l.Program)

	goal, env := mustGoal(t, l, "Implemented(u8: Clone)")
	set := s.ProgramClausesForGoal(goal, env)
	assert.False(t, set.Floundered)
	assert.Equal(t, []string{"Implemented(u8: Clone)"}, set.ByCategory(CategoryBuiltinCopyClone).Strings())
}

func TestUnknownTraitYieldsEnvOnly(t *testing.T) {
	l := loadSample(t)
	s := New(l.Program)
	goal := ir.ImplementedGoal(ir.TraitRef{Trait: "Missing", Args: []ir.Arg{ir.ScalarTy(ir.U8)}})

	assert.Equal(t, []Category{CategoryEnv}, s.Filter().ProgramClausesThatCouldMatch(goal))
	assert.Zero(t, s.ProgramClausesForGoal(goal, ir.Environment{}).Len())

	_, env := mustGoal(t, l, "Implemented(u8: Copy)", "!T: Eq")
	set := s.ProgramClausesForGoal(goal, env)
	assert.Equal(t, 4, set.Len())
	assert.Equal(t, set.Len(), set.ByCategory(CategoryEnv).Len())
}

func TestCategoriesExhaustive(t *testing.T) {
	require.Len(t, AllCategories, int(numCategories))

	l := loadSample(t)
	s := New(l.Program)
	goal, _ := mustGoal(t, l, "Implemented(u8: Copy)")
	for _, cat := range AllCategories {
		name := cat.String()
		assert.NotEqual(t, "unknown", name, "category %d has no name", int(cat))
		back, ok := ParseCategory(name)
		assert.True(t, ok)
		assert.Equal(t, cat, back)

		// neither switch may panic on any category
		assert.NotPanics(t, func() {
			s.Filter().CouldMatch(cat, goal)
			s.build(newClauseBuilder(l.Program), cat, goal)
		})
	}
	_, ok := ParseCategory("nope")
	assert.False(t, ok)
}
