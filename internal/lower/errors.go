package lower

import "fmt"

// ErrorKind classifies lowering failures.
type ErrorKind int

const (
	ErrSyntax ErrorKind = iota
	ErrInvalidTypeName
	ErrNotTrait
	ErrIncorrectParamCount
	ErrCannotApplyTypeParameter
	ErrUnknownAssocType
	ErrDuplicateItem
	ErrInvalidLifetime
	ErrInvalidWellKnown
	ErrInvalidClosureKind
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrInvalidTypeName:
		return "invalid type name"
	case ErrNotTrait:
		return "not a trait"
	case ErrIncorrectParamCount:
		return "incorrect number of type parameters"
	case ErrCannotApplyTypeParameter:
		return "cannot apply type parameter"
	case ErrUnknownAssocType:
		return "unknown associated type"
	case ErrDuplicateItem:
		return "duplicate item"
	case ErrInvalidLifetime:
		return "invalid lifetime"
	case ErrInvalidWellKnown:
		return "invalid well-known trait"
	case ErrInvalidClosureKind:
		return "invalid closure kind"
	}
	return "lowering error"
}

// Error is a lowering failure. Item names the declaration being lowered and
// Name the offending identifier, when known.
type Error struct {
	Kind   ErrorKind
	Item   string
	Name   string
	Detail string
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Item != "" {
		msg = fmt.Sprintf("in %s: %s", e.Item, msg)
	}
	return msg
}

// Is matches another *Error of the same kind, so callers can test with
// errors.Is(err, &lower.Error{Kind: lower.ErrNotTrait}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
