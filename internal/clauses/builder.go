package clauses

import (
	"clausegen/internal/ir"
	"clausegen/internal/programdb"
)

// Clause is a program clause tagged with the builder that produced it.
type Clause struct {
	ir.ProgramClause
	Category Category
}

func (c Clause) String() string {
	return c.ProgramClause.String()
}

// clauseBuilder accumulates clauses for one synthesis call. It is never
// shared between calls.
type clauseBuilder struct {
	db       programdb.Database
	category Category
	clauses  []Clause
}

func newClauseBuilder(db programdb.Database) *clauseBuilder {
	return &clauseBuilder{db: db}
}

func (b *clauseBuilder) push(binders []ir.VarKind, head ir.DomainGoal, conds ...ir.DomainGoal) {
	b.clauses = append(b.clauses, Clause{
		ProgramClause: ir.ProgramClause{
			Binders:    append([]ir.VarKind(nil), binders...),
			Head:       head,
			Conditions: conds,
		},
		Category: b.category,
	})
}

// program returns the accumulated clauses without their categories.
func (b *clauseBuilder) program() []ir.ProgramClause {
	out := make([]ir.ProgramClause, len(b.clauses))
	for i, c := range b.clauses {
		out[i] = c.ProgramClause
	}
	return out
}

// holds lifts where-clauses into goals.
func holds(wcs []ir.WhereClause) []ir.DomainGoal {
	out := make([]ir.DomainGoal, 0, len(wcs))
	for _, wc := range wcs {
		out = append(out, ir.Holds{Clause: wc})
	}
	return out
}

func implementedBy(ty ir.Ty, trait ir.TraitID, rest ...ir.Arg) ir.Holds {
	return ir.ImplementedGoal(ir.TraitRef{Trait: trait, Args: append([]ir.Arg{ty}, rest...)})
}
