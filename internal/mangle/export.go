// Package mangle renders synthesized program clauses as Mangle Datalog
// source, so a clause set can be inspected or loaded by Mangle tooling.
//
// Predicates:
//
//	implemented(Trait, Self, Args)
//	alias_eq(Alias, Ty)
//	normalize(Alias, Ty)
//	well_formed_ty(Ty)
//	well_formed_trait(Trait, Self, Args)
//	from_env_ty(Ty)
//	from_env_trait(Trait, Self, Args)
//
// Compound types are fn:list terms tagged with a name constant, e.g.
// Vec<u8> is fn:list(/adt, "Vec", /u8). Clause binders become the variables
// V0, V1, .... Inference variables from the caller's environment are
// constants, fn:list(/infer, N), since the solver resolves them, not the
// clause. Clauses that quantify over types are not range
// restricted: the output parses as Mangle but is meant for inspection, not
// bottom-up evaluation.
package mangle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/parse"

	"clausegen/internal/ir"
)

// Predicate names used in rendered clauses.
const (
	PredImplemented     = "implemented"
	PredAliasEq         = "alias_eq"
	PredNormalize       = "normalize"
	PredWellFormedTy    = "well_formed_ty"
	PredWellFormedTrait = "well_formed_trait"
	PredFromEnvTy       = "from_env_ty"
	PredFromEnvTrait    = "from_env_trait"
)

// ErrUnsupported is returned for terms with no Datalog rendering, such as a
// trait ref without a self type.
var ErrUnsupported = errors.New("term cannot be rendered")

// Var returns the Datalog variable for binder i.
func Var(i int) ast.Variable {
	return ast.Variable{Symbol: "V" + strconv.Itoa(i)}
}

func name(sym string) ast.BaseTerm {
	c, err := ast.Name("/" + sym)
	if err != nil {
		// tags are compile-time identifiers; fall back to a string
		return ast.String(sym)
	}
	return c
}

func list(args ...ast.BaseTerm) ast.ApplyFn {
	return ast.ApplyFn{Function: ast.FunctionSym{Symbol: "fn:list", Arity: len(args)}, Args: args}
}

func tagged(tag string, args ...ast.BaseTerm) ast.ApplyFn {
	return list(append([]ast.BaseTerm{name(tag)}, args...)...)
}

// Lifetime renders a lifetime.
func Lifetime(lt ir.Lifetime) (ast.BaseTerm, error) {
	switch lt.Kind {
	case ir.LifetimeStatic:
		return name("static"), nil
	case ir.LifetimeErased:
		return name("erased"), nil
	case ir.LifetimeBound:
		return Var(lt.Index), nil
	case ir.LifetimePlaceholder:
		return tagged("placeholder", ast.String("'"+lt.Name)), nil
	case ir.LifetimeInfer:
		return tagged("infer_lifetime", ast.Number(int64(lt.Index))), nil
	}
	return nil, fmt.Errorf("%w: lifetime %s", ErrUnsupported, lt)
}

// Ty renders a type term.
func Ty(ty ir.Ty) (ast.BaseTerm, error) {
	switch t := ty.(type) {
	case ir.BoundVar:
		return Var(t.Index), nil
	case ir.InferVar:
		return tagged("infer", ast.Number(int64(t.ID))), nil
	case ir.Placeholder:
		return tagged("placeholder", ast.String(t.Name)), nil
	case ir.SelfTy:
		return name("self"), nil
	case ir.Apply:
		return apply(t)
	case ir.FnPtr:
		params := make([]ast.BaseTerm, len(t.Params))
		for i, p := range t.Params {
			term, err := Ty(p)
			if err != nil {
				return nil, err
			}
			params[i] = term
		}
		ret, err := Ty(t.Return)
		if err != nil {
			return nil, err
		}
		return tagged("fn_ptr", list(params...), ret), nil
	case ir.Dyn:
		bounds := make([]ast.BaseTerm, len(t.Bounds))
		for i, b := range t.Bounds {
			term, err := whereClause(b)
			if err != nil {
				return nil, err
			}
			bounds[i] = term
		}
		lt, err := Lifetime(t.Lifetime)
		if err != nil {
			return nil, err
		}
		return tagged("dyn", list(bounds...), lt), nil
	case ir.Projection:
		return alias(t)
	}
	return nil, fmt.Errorf("%w: type %v", ErrUnsupported, ty)
}

func apply(t ir.Apply) (ast.BaseTerm, error) {
	args, err := Args(t.Args)
	if err != nil {
		return nil, err
	}
	switch t.Name.Kind {
	case ir.KindAdt:
		return tagged("adt", append([]ast.BaseTerm{ast.String(string(t.Name.Adt))}, args...)...), nil
	case ir.KindScalar:
		return name(string(t.Name.Scalar)), nil
	case ir.KindStr:
		return name("str"), nil
	case ir.KindNever:
		return name("never"), nil
	case ir.KindTuple:
		return tagged("tuple", args...), nil
	case ir.KindArray:
		return tagged("array", append(args, ast.Number(int64(t.Name.Len)))...), nil
	case ir.KindSlice:
		return tagged("slice", args...), nil
	case ir.KindRef:
		return tagged("ref", append([]ast.BaseTerm{mutability(t.Name.Mut)}, args...)...), nil
	case ir.KindRawPtr:
		return tagged("ptr", append([]ast.BaseTerm{mutability(t.Name.Mut)}, args...)...), nil
	case ir.KindFnDef:
		return tagged("fn_def", append([]ast.BaseTerm{ast.String(string(t.Name.FnDef))}, args...)...), nil
	case ir.KindClosure:
		return tagged("closure", ast.String(string(t.Name.Closure))), nil
	}
	return nil, fmt.Errorf("%w: constructor %s", ErrUnsupported, t.Name.Kind)
}

func mutability(m ir.Mutability) ast.BaseTerm {
	if m == ir.Mut {
		return name("mut")
	}
	return name("not")
}

// Args renders generic arguments in order.
func Args(args []ir.Arg) ([]ast.BaseTerm, error) {
	out := make([]ast.BaseTerm, 0, len(args))
	for _, a := range args {
		var (
			term ast.BaseTerm
			err  error
		)
		switch x := a.(type) {
		case ir.Lifetime:
			term, err = Lifetime(x)
		case ir.Ty:
			term, err = Ty(x)
		default:
			err = fmt.Errorf("%w: argument %v", ErrUnsupported, a)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, term)
	}
	return out, nil
}

func alias(p ir.Projection) (ast.BaseTerm, error) {
	args, err := Args(p.Args)
	if err != nil {
		return nil, err
	}
	head := []ast.BaseTerm{ast.String(string(p.Trait)), ast.String(ir.AssocName(p.Assoc))}
	return tagged("alias", append(head, args...)...), nil
}

// traitArgs splits a trait ref into its (Trait, Self, Args) triple.
func traitArgs(ref ir.TraitRef) ([]ast.BaseTerm, error) {
	if len(ref.Args) == 0 {
		return nil, fmt.Errorf("%w: trait ref %s without self type", ErrUnsupported, ref.Trait)
	}
	args, err := Args(ref.Args)
	if err != nil {
		return nil, err
	}
	return []ast.BaseTerm{ast.String(string(ref.Trait)), args[0], list(args[1:]...)}, nil
}

func whereClause(wc ir.WhereClause) (ast.BaseTerm, error) {
	switch w := wc.(type) {
	case ir.Implemented:
		args, err := traitArgs(w.TraitRef)
		if err != nil {
			return nil, err
		}
		return tagged(PredImplemented, args...), nil
	case ir.AliasEq:
		a, err := alias(w.Alias)
		if err != nil {
			return nil, err
		}
		ty, err := Ty(w.Ty)
		if err != nil {
			return nil, err
		}
		return tagged(PredAliasEq, a, ty), nil
	}
	return nil, fmt.Errorf("%w: where-clause %v", ErrUnsupported, wc)
}

// Atom renders a domain goal.
func Atom(goal ir.DomainGoal) (ast.Atom, error) {
	switch g := goal.(type) {
	case ir.Holds:
		switch wc := g.Clause.(type) {
		case ir.Implemented:
			args, err := traitArgs(wc.TraitRef)
			if err != nil {
				return ast.Atom{}, err
			}
			return ast.NewAtom(PredImplemented, args...), nil
		case ir.AliasEq:
			return aliasAtom(PredAliasEq, wc.Alias, wc.Ty)
		}
	case ir.Normalize:
		return aliasAtom(PredNormalize, g.Alias, g.Ty)
	case ir.WellFormedTy:
		return tyAtom(PredWellFormedTy, g.Ty)
	case ir.FromEnvTy:
		return tyAtom(PredFromEnvTy, g.Ty)
	case ir.WellFormedTrait:
		args, err := traitArgs(g.TraitRef)
		if err != nil {
			return ast.Atom{}, err
		}
		return ast.NewAtom(PredWellFormedTrait, args...), nil
	case ir.FromEnvTrait:
		args, err := traitArgs(g.TraitRef)
		if err != nil {
			return ast.Atom{}, err
		}
		return ast.NewAtom(PredFromEnvTrait, args...), nil
	}
	return ast.Atom{}, fmt.Errorf("%w: goal %v", ErrUnsupported, goal)
}

func aliasAtom(pred string, p ir.Projection, ty ir.Ty) (ast.Atom, error) {
	a, err := alias(p)
	if err != nil {
		return ast.Atom{}, err
	}
	t, err := Ty(ty)
	if err != nil {
		return ast.Atom{}, err
	}
	return ast.NewAtom(pred, a, t), nil
}

func tyAtom(pred string, ty ir.Ty) (ast.Atom, error) {
	t, err := Ty(ty)
	if err != nil {
		return ast.Atom{}, err
	}
	return ast.NewAtom(pred, t), nil
}

// Clause renders a program clause.
func Clause(c ir.ProgramClause) (ast.Clause, error) {
	head, err := Atom(c.Head)
	if err != nil {
		return ast.Clause{}, err
	}
	premises := make([]ast.Term, 0, len(c.Conditions))
	for _, cond := range c.Conditions {
		atom, err := Atom(cond)
		if err != nil {
			return ast.Clause{}, err
		}
		premises = append(premises, atom)
	}
	return ast.Clause{Head: head, Premises: premises}, nil
}

// Render renders clauses as Mangle source, one clause per line, and checks
// that the result parses and matches Schema.
func Render(clauses []ir.ProgramClause) (string, error) {
	lines := make([]string, 0, len(clauses))
	for i, c := range clauses {
		clause, err := Clause(c)
		if err != nil {
			return "", fmt.Errorf("clause %d (%s): %w", i, c, err)
		}
		lines = append(lines, clause.String())
	}
	source := strings.Join(lines, "\n")
	unit, err := parse.Unit(strings.NewReader(source))
	if err != nil {
		return "", fmt.Errorf("mangle parse failed: %w", err)
	}
	if err := defaultValidator.ValidateUnit(unit); err != nil {
		return "", fmt.Errorf("schema check failed: %w", err)
	}
	return source, nil
}
