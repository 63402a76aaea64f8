package lower

import (
	"fmt"
	"strconv"
)

// Surface syntax trees produced by the parser and consumed by the lowerer.

type tyExpr interface{ isTyExpr() }

type nameTy struct {
	name string
	args []argExpr
}

type inferTy struct{ id int }

type placeholderTy struct{ name string }

type neverTy struct{}

type tupleTy struct{ elems []tyExpr }

type arrayTy struct {
	elem tyExpr
	len  int
}

type sliceTy struct{ elem tyExpr }

type refTy struct {
	lifetime *lifetimeExpr
	mut      bool
	referent tyExpr
}

type ptrTy struct {
	mut     bool
	pointee tyExpr
}

type fnTy struct {
	params []tyExpr
	ret    tyExpr
}

type dynTy struct {
	bounds   []traitRefExpr
	lifetime *lifetimeExpr
}

type projTy struct {
	self  tyExpr
	trait traitRefExpr
	name  string
}

func (nameTy) isTyExpr()        {}
func (inferTy) isTyExpr()       {}
func (placeholderTy) isTyExpr() {}
func (neverTy) isTyExpr()       {}
func (tupleTy) isTyExpr()       {}
func (arrayTy) isTyExpr()       {}
func (sliceTy) isTyExpr()       {}
func (refTy) isTyExpr()         {}
func (ptrTy) isTyExpr()         {}
func (fnTy) isTyExpr()          {}
func (dynTy) isTyExpr()         {}
func (projTy) isTyExpr()        {}

// lifetimeExpr is 'name, 'static or '?N.
type lifetimeExpr struct {
	name  string
	infer bool
	id    int
}

// argExpr is exactly one of ty, lifetime or binding.
type argExpr struct {
	ty       tyExpr
	lifetime *lifetimeExpr
	binding  *bindingExpr
}

type bindingExpr struct {
	name string
	ty   tyExpr
}

type traitRefExpr struct {
	name     string
	args     []argExpr
	bindings []bindingExpr
}

type whereExpr struct {
	// `T: Trait<..>` when trait is set, otherwise `<..>::A = ty`
	self  tyExpr
	trait *traitRefExpr
	proj  *projTy
	ty    tyExpr
}

type goalKind int

const (
	goalImplemented goalKind = iota
	goalAliasEq
	goalNormalize
	goalWellFormed
	goalFromEnv
)

type goalExpr struct {
	kind  goalKind
	where *whereExpr // Implemented, AliasEq, and trait forms of WellFormed/FromEnv
	proj  *projTy    // Normalize
	ty    tyExpr     // Normalize target, type forms of WellFormed/FromEnv
}

type parser struct {
	toks []token
	pos  int
}

func newParser(input string) (*parser, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) isKeyword(s string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == s
}

func (p *parser) accept(s string) bool {
	if p.isPunct(s) || p.isKeyword(s) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(s string) error {
	if !p.accept(s) {
		return p.errorf("expected %q, found %s", s, p.peek())
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &Error{Kind: ErrSyntax, Detail: fmt.Sprintf(format, args...)}
}

func (p *parser) expectEOF() error {
	if p.peek().kind != tokEOF {
		return p.errorf("unexpected %s after end of expression", p.peek())
	}
	return nil
}

func (p *parser) ident() (string, error) {
	t := p.next()
	if t.kind != tokIdent {
		return "", p.errorf("expected identifier, found %s", t)
	}
	return t.text, nil
}

func (p *parser) parseTy() (tyExpr, error) {
	t := p.peek()
	switch {
	case t.kind == tokPunct && t.text == "?":
		p.next()
		n := p.next()
		if n.kind != tokInt {
			return nil, p.errorf("expected inference variable number, found %s", n)
		}
		id, _ := strconv.Atoi(n.text)
		return inferTy{id: id}, nil

	case t.kind == tokPunct && t.text == "!":
		p.next()
		if p.peek().kind == tokIdent {
			name, _ := p.ident()
			return placeholderTy{name: name}, nil
		}
		return neverTy{}, nil

	case t.kind == tokPunct && t.text == "&":
		p.next()
		ref := refTy{}
		if p.peek().kind == tokLifetime {
			lt, err := p.parseLifetime()
			if err != nil {
				return nil, err
			}
			ref.lifetime = &lt
		}
		ref.mut = p.accept("mut")
		referent, err := p.parseTy()
		if err != nil {
			return nil, err
		}
		ref.referent = referent
		return ref, nil

	case t.kind == tokPunct && t.text == "*":
		p.next()
		ptr := ptrTy{}
		switch {
		case p.accept("mut"):
			ptr.mut = true
		case p.accept("const"):
		default:
			return nil, p.errorf("expected const or mut after *, found %s", p.peek())
		}
		pointee, err := p.parseTy()
		if err != nil {
			return nil, err
		}
		ptr.pointee = pointee
		return ptr, nil

	case t.kind == tokPunct && t.text == "(":
		p.next()
		var elems []tyExpr
		for !p.isPunct(")") {
			el, err := p.parseTy()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
			if !p.accept(",") {
				break
			}
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return tupleTy{elems: elems}, nil

	case t.kind == tokPunct && t.text == "[":
		p.next()
		elem, err := p.parseTy()
		if err != nil {
			return nil, err
		}
		if p.accept(";") {
			n := p.next()
			if n.kind != tokInt {
				return nil, p.errorf("expected array length, found %s", n)
			}
			length, _ := strconv.Atoi(n.text)
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			return arrayTy{elem: elem, len: length}, nil
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		return sliceTy{elem: elem}, nil

	case t.kind == tokPunct && t.text == "<":
		return p.parseProjection()

	case t.kind == tokIdent && t.text == "fn" && p.peekAt(1).kind == tokPunct && p.peekAt(1).text == "(":
		p.next()
		p.next()
		fn := fnTy{}
		for !p.isPunct(")") {
			param, err := p.parseTy()
			if err != nil {
				return nil, err
			}
			fn.params = append(fn.params, param)
			if !p.accept(",") {
				break
			}
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		if p.accept("->") {
			ret, err := p.parseTy()
			if err != nil {
				return nil, err
			}
			fn.ret = ret
		}
		return fn, nil

	case t.kind == tokIdent && t.text == "dyn":
		p.next()
		return p.parseDyn()

	case t.kind == tokIdent:
		p.next()
		ty := nameTy{name: t.text}
		if p.isPunct("<") {
			args, bindings, err := p.parseGenericArgs()
			if err != nil {
				return nil, err
			}
			if len(bindings) > 0 {
				return nil, p.errorf("associated type bindings are only allowed on traits")
			}
			ty.args = args
		}
		return ty, nil
	}
	return nil, p.errorf("expected type, found %s", t)
}

func (p *parser) parseLifetime() (lifetimeExpr, error) {
	t := p.next()
	if t.kind != tokLifetime {
		return lifetimeExpr{}, p.errorf("expected lifetime, found %s", t)
	}
	body := t.text[1:]
	if len(body) > 0 && body[0] == '?' {
		id, err := strconv.Atoi(body[1:])
		if err != nil {
			return lifetimeExpr{}, p.errorf("invalid inference lifetime %s", t.text)
		}
		return lifetimeExpr{infer: true, id: id}, nil
	}
	return lifetimeExpr{name: body}, nil
}

// parseGenericArgs parses `<A, 'a, Name = T>`.
func (p *parser) parseGenericArgs() ([]argExpr, []bindingExpr, error) {
	if err := p.expect("<"); err != nil {
		return nil, nil, err
	}
	var args []argExpr
	var bindings []bindingExpr
	for !p.isPunct(">") {
		switch {
		case p.peek().kind == tokLifetime:
			lt, err := p.parseLifetime()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, argExpr{lifetime: &lt})
		case p.peek().kind == tokIdent && p.peekAt(1).kind == tokPunct && p.peekAt(1).text == "=":
			name, _ := p.ident()
			p.next()
			ty, err := p.parseTy()
			if err != nil {
				return nil, nil, err
			}
			bindings = append(bindings, bindingExpr{name: name, ty: ty})
		default:
			ty, err := p.parseTy()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, argExpr{ty: ty})
		}
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(">"); err != nil {
		return nil, nil, err
	}
	return args, bindings, nil
}

func (p *parser) parseTraitRef() (traitRefExpr, error) {
	name, err := p.ident()
	if err != nil {
		return traitRefExpr{}, err
	}
	ref := traitRefExpr{name: name}
	if p.isPunct("<") {
		args, bindings, err := p.parseGenericArgs()
		if err != nil {
			return traitRefExpr{}, err
		}
		ref.args = args
		ref.bindings = bindings
	}
	return ref, nil
}

func (p *parser) parseDyn() (tyExpr, error) {
	dyn := dynTy{}
	for {
		if p.peek().kind == tokLifetime {
			lt, err := p.parseLifetime()
			if err != nil {
				return nil, err
			}
			dyn.lifetime = &lt
		} else {
			ref, err := p.parseTraitRef()
			if err != nil {
				return nil, err
			}
			dyn.bounds = append(dyn.bounds, ref)
		}
		if !p.accept("+") {
			break
		}
	}
	if len(dyn.bounds) == 0 {
		return nil, p.errorf("dyn type needs at least one trait")
	}
	return dyn, nil
}

// parseProjection parses `<T as Trait<..>>::Name`.
func (p *parser) parseProjection() (projTy, error) {
	if err := p.expect("<"); err != nil {
		return projTy{}, err
	}
	self, err := p.parseTy()
	if err != nil {
		return projTy{}, err
	}
	if err := p.expect("as"); err != nil {
		return projTy{}, err
	}
	trait, err := p.parseTraitRef()
	if err != nil {
		return projTy{}, err
	}
	if err := p.expect(">"); err != nil {
		return projTy{}, err
	}
	if err := p.expect("::"); err != nil {
		return projTy{}, err
	}
	name, err := p.ident()
	if err != nil {
		return projTy{}, err
	}
	return projTy{self: self, trait: trait, name: name}, nil
}

// parseWhere parses `T: Trait<..>` or `<T as Trait>::A = U`.
func (p *parser) parseWhere() (whereExpr, error) {
	if p.isPunct("<") {
		save := p.pos
		proj, err := p.parseProjection()
		if err == nil && p.accept("=") {
			ty, err := p.parseTy()
			if err != nil {
				return whereExpr{}, err
			}
			return whereExpr{proj: &proj, ty: ty}, nil
		}
		p.pos = save
	}
	self, err := p.parseTy()
	if err != nil {
		return whereExpr{}, err
	}
	if err := p.expect(":"); err != nil {
		return whereExpr{}, err
	}
	trait, err := p.parseTraitRef()
	if err != nil {
		return whereExpr{}, err
	}
	return whereExpr{self: self, trait: &trait}, nil
}

var goalKeywords = map[string]goalKind{
	"Implemented": goalImplemented,
	"AliasEq":     goalAliasEq,
	"Normalize":   goalNormalize,
	"WellFormed":  goalWellFormed,
	"FromEnv":     goalFromEnv,
}

// parseGoal parses a domain goal. A bare where-clause is accepted as the
// corresponding Implemented or AliasEq goal.
func (p *parser) parseGoal() (goalExpr, error) {
	t := p.peek()
	kind, isKeyword := goalKeywords[t.text]
	if t.kind != tokIdent || !isKeyword || p.peekAt(1).text != "(" {
		w, err := p.parseWhere()
		if err != nil {
			return goalExpr{}, err
		}
		if w.trait != nil {
			return goalExpr{kind: goalImplemented, where: &w}, nil
		}
		return goalExpr{kind: goalAliasEq, where: &w}, nil
	}
	p.next()
	p.next()

	g := goalExpr{kind: kind}
	switch kind {
	case goalNormalize:
		proj, err := p.parseProjection()
		if err != nil {
			return goalExpr{}, err
		}
		if err := p.expect("->"); err != nil {
			return goalExpr{}, err
		}
		ty, err := p.parseTy()
		if err != nil {
			return goalExpr{}, err
		}
		g.proj = &proj
		g.ty = ty
	case goalImplemented:
		w, err := p.parseWhere()
		if err != nil {
			return goalExpr{}, err
		}
		if w.trait == nil {
			return goalExpr{}, p.errorf("Implemented expects a trait bound")
		}
		g.where = &w
	case goalAliasEq:
		w, err := p.parseWhere()
		if err != nil {
			return goalExpr{}, err
		}
		if w.proj == nil {
			return goalExpr{}, p.errorf("AliasEq expects a projection equality")
		}
		g.where = &w
	case goalWellFormed, goalFromEnv:
		ty, err := p.parseTy()
		if err != nil {
			return goalExpr{}, err
		}
		if p.accept(":") {
			trait, err := p.parseTraitRef()
			if err != nil {
				return goalExpr{}, err
			}
			g.where = &whereExpr{self: ty, trait: &trait}
		} else {
			g.ty = ty
		}
	}
	if err := p.expect(")"); err != nil {
		return goalExpr{}, err
	}
	return g, nil
}

// ParseTypeSyntax checks that input is a well-formed type expression without
// resolving any names.
func ParseTypeSyntax(input string) error {
	p, err := newParser(input)
	if err != nil {
		return err
	}
	if _, err := p.parseTy(); err != nil {
		return err
	}
	return p.expectEOF()
}
