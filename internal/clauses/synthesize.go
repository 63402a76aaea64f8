// Package clauses turns a program database into the program clauses a
// resolution solver consumes. For each goal it selects the relevant
// builders, runs them, keeps the clauses whose head could match the goal
// and appends the caller's elaborated environment.
//
// A Synthesizer holds only the read-only database and configuration. All
// per-call state lives in a clauseBuilder and, for goal-derived types, a
// Generalizer allocated by that call.
package clauses

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

// ClauseSet is the result of one synthesis call: deduplicated up to
// renaming of bound variables, in emission order.
//
// A floundered set has no clauses: the goal's self type is not known well
// enough to enumerate its candidates, and the solver should retry once it
// is.
type ClauseSet struct {
	Clauses    []Clause
	Floundered bool
}

// Len returns the number of clauses.
func (s ClauseSet) Len() int { return len(s.Clauses) }

// ProgramClauses strips the categories.
func (s ClauseSet) ProgramClauses() []ir.ProgramClause {
	out := make([]ir.ProgramClause, len(s.Clauses))
	for i, c := range s.Clauses {
		out[i] = c.ProgramClause
	}
	return out
}

// Strings prints every clause.
func (s ClauseSet) Strings() []string {
	out := make([]string, len(s.Clauses))
	for i, c := range s.Clauses {
		out[i] = c.String()
	}
	return out
}

// ByCategory returns the clauses produced by cat.
func (s ClauseSet) ByCategory(cat Category) ClauseSet {
	var out ClauseSet
	for _, c := range s.Clauses {
		if c.Category == cat {
			out.Clauses = append(out.Clauses, c)
		}
	}
	return out
}

func (s ClauseSet) String() string {
	if s.Floundered {
		return "floundered"
	}
	return strings.Join(s.Strings(), "\n")
}

// dedupe drops clauses alpha-equivalent to an earlier one.
func dedupe(in []Clause) ClauseSet {
	seen := make(map[string]bool, len(in))
	out := ClauseSet{Clauses: make([]Clause, 0, len(in))}
	for _, c := range in {
		key := ir.Canonicalize(c.ProgramClause).String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Clauses = append(out.Clauses, c)
	}
	return out
}

// Synthesizer produces clause sets for goals against one program.
type Synthesizer struct {
	db      programdb.Database
	filter  *Filter
	logger  *zap.Logger
	workers int
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkers bounds the goroutines SynthesizeBatch runs at once.
func WithWorkers(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New returns a Synthesizer over db. db must not be mutated while the
// Synthesizer is in use.
func New(db programdb.Database, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		db:      db,
		filter:  NewFilter(db),
		logger:  zap.NewNop(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Filter returns the match filter used for goal dispatch.
func (s *Synthesizer) Filter() *Filter { return s.filter }

// ProgramClausesForEnv returns the elaborated environment as clauses.
func (s *Synthesizer) ProgramClausesForEnv(env ir.Environment) ClauseSet {
	b := newClauseBuilder(s.db)
	b.envClauses(Elaborate(s.db, env))
	return dedupe(b.clauses)
}

// ProgramClausesForGoal returns the clauses relevant to proving goal under
// env. A goal no builder recognizes yields only the environment clauses.
// A goal whose candidates cannot be enumerated yields a floundered set.
func (s *Synthesizer) ProgramClausesForGoal(goal ir.DomainGoal, env ir.Environment) ClauseSet {
	if s.filter.Flounders(goal) {
		s.logger.Debug("goal floundered", zap.Stringer("goal", goal))
		return ClauseSet{Floundered: true}
	}

	start := time.Now()
	b := newClauseBuilder(s.db)

	categories := s.filter.ProgramClausesThatCouldMatch(goal)
	for _, cat := range categories {
		s.build(b, cat, goal)
	}

	kept := b.clauses[:0]
	for _, c := range b.clauses {
		if CouldMatchGoal(c.Head, goal) {
			kept = append(kept, c)
		}
	}
	b.clauses = kept
	b.envClauses(Elaborate(s.db, env))

	out := dedupe(b.clauses)
	s.logger.Debug("synthesized clauses",
		zap.Stringer("goal", goal),
		zap.Int("categories", len(categories)),
		zap.Int("clauses", out.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return out
}

// build runs the builder for cat against goal.
func (s *Synthesizer) build(b *clauseBuilder, cat Category, goal ir.DomainGoal) {
	switch cat {
	case CategoryEnv:
		// appended after the head filter, see ProgramClausesForGoal

	case CategoryImpl:
		if ref, ok := implementedRef(goal); ok {
			b.implClauses(ref.Trait)
		}

	case CategoryTraitWF:
		b.traitRules(goal)

	case CategoryAdtWF:
		b.adtRules(goal)

	case CategoryProjection:
		h, _ := goal.(ir.Holds)
		if eq, ok := h.Clause.(ir.AliasEq); ok {
			if trait, ok := s.db.TraitDatum(eq.Alias.Trait); ok {
				b.projectionClause(trait, eq.Alias.Assoc)
			}
		}

	case CategoryAssocNormalize:
		if n, ok := goal.(ir.Normalize); ok {
			b.assocNormalizeClauses(n.Alias.Trait, n.Alias.Assoc)
		}

	case CategoryAutoTraitDefault:
		if ref, ok := implementedRef(goal); ok {
			only, _ := adtOf(ref.SelfType())
			b.autoTraitDefaults(ref.Trait, only)
		}

	case CategoryBuiltinSized, CategoryBuiltinCopyClone, CategoryBuiltinTuple, CategoryBuiltinAuto:
		if ref, ok := implementedRef(goal); ok {
			b.shapeClauses(cat, ref.Trait, ref.SelfType())
		}

	case CategoryBuiltinFn:
		b.fnClauses(goal)

	case CategoryBuiltinUnsize:
		if ref, ok := implementedRef(goal); ok {
			b.unsizeClauses(ref)
		}

	case CategoryDyn:
		if d, ok := goalSelfTy(goal).(ir.Dyn); ok {
			b.dynClauses(d)
		}
	}
}
