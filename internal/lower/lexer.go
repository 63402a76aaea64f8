package lower

import (
	"fmt"
	"strconv"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokLifetime // 'a, 'static, '?3
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

// multi-character punctuation, longest first
var puncts = []string{"::", "->", "<", ">", "(", ")", "[", "]", ",", ";", ":", "&", "*", "!", "?", "+", "="}

func lex(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := rune(input[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '\'':
			start := i
			i++
			if i < len(input) && input[i] == '?' {
				i++
			}
			j := i
			for j < len(input) && isIdentChar(rune(input[j])) {
				j++
			}
			if j == i {
				return nil, &Error{Kind: ErrSyntax, Detail: fmt.Sprintf("empty lifetime at offset %d", start)}
			}
			toks = append(toks, token{kind: tokLifetime, text: input[start:j], pos: start})
			i = j
		case unicode.IsDigit(c):
			j := i
			for j < len(input) && unicode.IsDigit(rune(input[j])) {
				j++
			}
			toks = append(toks, token{kind: tokInt, text: input[i:j], pos: i})
			i = j
		case isIdentStart(c):
			j := i
			for j < len(input) && isIdentChar(rune(input[j])) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: input[i:j], pos: i})
			i = j
		default:
			matched := false
			for _, p := range puncts {
				if len(input)-i >= len(p) && input[i:i+len(p)] == p {
					toks = append(toks, token{kind: tokPunct, text: p, pos: i})
					i += len(p)
					matched = true
					break
				}
			}
			if !matched {
				return nil, &Error{Kind: ErrSyntax, Detail: fmt.Sprintf("unexpected character %q at offset %d", c, i)}
			}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(input)}), nil
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentChar(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
