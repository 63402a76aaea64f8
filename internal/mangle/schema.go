package mangle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/parse"
)

// Schema declares every predicate Render emits.
const Schema = `Decl implemented(Trait, Self, Args).
Decl alias_eq(Alias, Ty).
Decl normalize(Alias, Ty).
Decl well_formed_ty(Ty).
Decl well_formed_trait(Trait, Self, Args).
Decl from_env_ty(Ty).
Decl from_env_trait(Trait, Self, Args).
`

// SchemaValidator checks that rendered clauses only use declared predicates
// with their declared arity.
type SchemaValidator struct {
	arities map[string]int
}

// NewSchemaValidator parses the Decl statements in schemaText.
func NewSchemaValidator(schemaText string) (*SchemaValidator, error) {
	unit, err := parse.Unit(strings.NewReader(schemaText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	sv := &SchemaValidator{arities: make(map[string]int)}
	for _, decl := range unit.Decls {
		sym := decl.DeclaredAtom.Predicate
		if sym.Symbol == "Package" || sym.Symbol == "Use" {
			continue
		}
		sv.arities[sym.Symbol] = sym.Arity
	}
	return sv, nil
}

// Predicates returns the declared predicate names, sorted.
func (sv *SchemaValidator) Predicates() []string {
	out := make([]string, 0, len(sv.arities))
	for p := range sv.arities {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ValidateClause checks the head and every premise of c.
func (sv *SchemaValidator) ValidateClause(c ast.Clause) error {
	if err := sv.validateAtom(c.Head); err != nil {
		return err
	}
	for _, premise := range c.Premises {
		atom, ok := premise.(ast.Atom)
		if !ok {
			return fmt.Errorf("unexpected premise %s", premise)
		}
		if err := sv.validateAtom(atom); err != nil {
			return err
		}
	}
	return nil
}

func (sv *SchemaValidator) validateAtom(a ast.Atom) error {
	want, ok := sv.arities[a.Predicate.Symbol]
	if !ok {
		return fmt.Errorf("undeclared predicate %s (available: %v)", a.Predicate.Symbol, sv.Predicates())
	}
	if got := len(a.Args); got != want {
		return fmt.Errorf("predicate %s has arity %d, declared %d", a.Predicate.Symbol, got, want)
	}
	return nil
}

// ValidateUnit validates every clause of a parsed unit.
func (sv *SchemaValidator) ValidateUnit(unit parse.SourceUnit) error {
	for i, c := range unit.Clauses {
		if err := sv.ValidateClause(c); err != nil {
			return fmt.Errorf("clause %d: %w", i, err)
		}
	}
	return nil
}

var defaultValidator = func() *SchemaValidator {
	sv, err := NewSchemaValidator(Schema)
	if err != nil {
		panic(err)
	}
	return sv
}()
