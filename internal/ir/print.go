package ir

import (
	"fmt"
	"strconv"
	"strings"
)

func (t BoundVar) String() string    { return "^" + strconv.Itoa(t.Index) }
func (t InferVar) String() string    { return "?" + strconv.Itoa(t.ID) }
func (t Placeholder) String() string { return "!" + t.Name }
func (SelfTy) String() string        { return "Self" }

func (lt Lifetime) String() string {
	switch lt.Kind {
	case LifetimeStatic:
		return "'static"
	case LifetimeBound:
		return "'^" + strconv.Itoa(lt.Index)
	case LifetimeInfer:
		return "'?" + strconv.Itoa(lt.Index)
	case LifetimePlaceholder:
		return "'" + lt.Name
	}
	return "'_"
}

func (t Apply) String() string {
	switch t.Name.Kind {
	case KindAdt:
		return string(t.Name.Adt) + angleArgs(t.Args)
	case KindScalar:
		return string(t.Name.Scalar)
	case KindStr:
		return "str"
	case KindNever:
		return "!"
	case KindTuple:
		parts := argStrings(t.Args)
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindArray:
		return fmt.Sprintf("[%s; %d]", argAt(t.Args, 0), t.Name.Len)
	case KindSlice:
		return "[" + argAt(t.Args, 0) + "]"
	case KindRef:
		prefix := "&" + argAt(t.Args, 0) + " "
		if t.Name.Mut == Mut {
			prefix += "mut "
		}
		return prefix + argAt(t.Args, 1)
	case KindRawPtr:
		if t.Name.Mut == Mut {
			return "*mut " + argAt(t.Args, 0)
		}
		return "*const " + argAt(t.Args, 0)
	case KindFnDef:
		return string(t.Name.FnDef) + angleArgs(t.Args)
	case KindClosure:
		return string(t.Name.Closure)
	}
	return "<unknown>"
}

func (t FnPtr) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	s := "fn(" + strings.Join(params, ", ") + ")"
	if ret, ok := t.Return.(Apply); ok && ret.Name.Kind == KindTuple && ret.Name.Arity == 0 {
		return s
	}
	if t.Return != nil {
		s += " -> " + t.Return.String()
	}
	return s
}

func (t Dyn) String() string {
	var parts []string
	for _, b := range t.Bounds {
		switch wc := b.(type) {
		case Implemented:
			var args []string
			if len(wc.TraitRef.Args) > 1 {
				args = argStrings(wc.TraitRef.Args[1:])
			}
			for _, other := range t.Bounds {
				eq, ok := other.(AliasEq)
				if ok && eq.Alias.Trait == wc.TraitRef.Trait {
					args = append(args, AssocName(eq.Alias.Assoc)+" = "+eq.Ty.String())
				}
			}
			s := string(wc.TraitRef.Trait)
			if len(args) > 0 {
				s += "<" + strings.Join(args, ", ") + ">"
			}
			parts = append(parts, s)
		}
	}
	if t.Lifetime.Kind != LifetimeErased {
		parts = append(parts, t.Lifetime.String())
	}
	return "dyn " + strings.Join(parts, " + ")
}

func (p Projection) String() string {
	self := "<missing>"
	if len(p.Args) > 0 {
		self = p.Args[0].String()
	}
	trait := TraitRef{Trait: p.Trait, Args: p.Args}
	return fmt.Sprintf("<%s as %s>::%s", self, trait.nameWithArgs(), AssocName(p.Assoc))
}

// AssocName strips the trait prefix of an associated type id.
func AssocName(id AssocTypeID) string {
	s := string(id)
	if i := strings.LastIndex(s, "::"); i >= 0 {
		return s[i+2:]
	}
	return s
}

func (t TraitRef) nameWithArgs() string {
	if len(t.Args) <= 1 {
		return string(t.Trait)
	}
	return string(t.Trait) + "<" + strings.Join(argStrings(t.Args[1:]), ", ") + ">"
}

func (t TraitRef) String() string {
	self := "<missing>"
	if len(t.Args) > 0 {
		self = t.Args[0].String()
	}
	return self + ": " + t.nameWithArgs()
}

func (w Implemented) String() string { return w.TraitRef.String() }
func (w AliasEq) String() string     { return w.Alias.String() + " = " + w.Ty.String() }

func (g Holds) String() string {
	switch wc := g.Clause.(type) {
	case Implemented:
		return "Implemented(" + wc.String() + ")"
	case AliasEq:
		return "AliasEq(" + wc.String() + ")"
	}
	return "Holds(?)"
}

func (g Normalize) String() string {
	return "Normalize(" + g.Alias.String() + " -> " + g.Ty.String() + ")"
}
func (g WellFormedTy) String() string    { return "WellFormed(" + g.Ty.String() + ")" }
func (g WellFormedTrait) String() string { return "WellFormed(" + g.TraitRef.String() + ")" }
func (g FromEnvTy) String() string       { return "FromEnv(" + g.Ty.String() + ")" }
func (g FromEnvTrait) String() string    { return "FromEnv(" + g.TraitRef.String() + ")" }

func (c ProgramClause) String() string {
	var sb strings.Builder
	sb.WriteString(c.Head.String())
	if len(c.Conditions) > 0 {
		conds := make([]string, len(c.Conditions))
		for i, g := range c.Conditions {
			conds[i] = g.String()
		}
		sb.WriteString(" :- ")
		sb.WriteString(strings.Join(conds, ", "))
	}
	if len(c.Binders) == 0 {
		return sb.String()
	}
	kinds := make([]string, len(c.Binders))
	for i, k := range c.Binders {
		kinds[i] = k.String()
	}
	return "forall<" + strings.Join(kinds, ", ") + "> { " + sb.String() + " }"
}

func (e Environment) String() string {
	parts := make([]string, len(e.Clauses))
	for i, wc := range e.Clauses {
		parts[i] = wc.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func argStrings(args []Arg) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.String()
	}
	return out
}

func angleArgs(args []Arg) string {
	if len(args) == 0 {
		return ""
	}
	return "<" + strings.Join(argStrings(args), ", ") + ">"
}

func argAt(args []Arg, i int) string {
	if i >= len(args) {
		return "<missing>"
	}
	return args[i].String()
}

// Canonicalize renumbers the clause binders in order of first occurrence
// (head first, then conditions) and drops unused binders. Two clauses are
// alpha-equivalent exactly when their canonical forms print the same.
func Canonicalize(c ProgramClause) ProgramClause {
	remap := map[int]int{}
	var kinds []VarKind
	see := func(idx int, kind VarKind) int {
		if n, ok := remap[idx]; ok {
			return n
		}
		n := len(kinds)
		remap[idx] = n
		kinds = append(kinds, kind)
		return n
	}
	f := Folder{
		Ty: func(ty Ty) (Ty, bool) {
			if bv, ok := ty.(BoundVar); ok {
				return BoundVar{Index: see(bv.Index, KindType)}, true
			}
			return nil, false
		},
		Lifetime: func(lt Lifetime) Lifetime {
			if lt.Kind == LifetimeBound {
				return BoundLifetime(see(lt.Index, KindLifetime))
			}
			return lt
		},
	}
	head := f.FoldGoal(c.Head)
	conds := make([]DomainGoal, len(c.Conditions))
	for i, g := range c.Conditions {
		conds[i] = f.FoldGoal(g)
	}
	return ProgramClause{Binders: kinds, Head: head, Conditions: conds}
}

// AlphaEqual reports whether two clauses are equal up to renaming of their
// bound variables.
func AlphaEqual(a, b ProgramClause) bool {
	return Canonicalize(a).String() == Canonicalize(b).String()
}
