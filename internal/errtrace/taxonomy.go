// Package errtrace implements the interpreter's error taxonomy and
// traceback rendering (spec.md §4.2, §7). Every error that can escape a
// user script is a *Error with a Kind drawn from the closed enum below;
// Limit kinds can never be caught by script-level try/except.
package errtrace

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-saferun/internal/ast"
)

// Kind identifies which branch of the taxonomy an Error belongs to.
type Kind string

const (
	KindSyntaxError         Kind = "SyntaxError"
	KindNotDefined          Kind = "NotDefined"
	KindFeatureNotAvailable Kind = "FeatureNotAvailable"
	KindValueError          Kind = "ValueError"
	KindNumberTooHigh       Kind = "NumberTooHigh"
	KindIterableTooLong     Kind = "IterableTooLong"
	KindTooManyStatements   Kind = "TooManyStatements"
	KindTooMuchRecursion    Kind = "TooMuchRecursion"
	KindAnnotated           Kind = "Annotated"
	KindNested              Kind = "Nested"
	KindUserError           Kind = "UserError"
)

// IsLimit reports whether k is one of the four uncatchable limit-breach
// kinds (spec.md §4.2/§4.6: "If a Limit error arises it is never
// catchable").
func (k Kind) IsLimit() bool {
	switch k {
	case KindNumberTooHigh, KindIterableTooLong, KindTooManyStatements, KindTooMuchRecursion:
		return true
	default:
		return false
	}
}

// Error is the single concrete error type carrying a taxonomy Kind, a
// message, the offending node's position, the original source, and
// (lazily, as the error unwinds through a user function call) the name of
// the function frame it was raised in.
//
// Nested holds the direct predecessor when an error crosses a user-function
// call boundary, so FormatTraceback can walk the chain outermost to
// innermost (spec.md §4.2).
type Error struct {
	Kind    Kind
	Message string
	Node    ast.Node // nil only for a postponed error not yet annotated
	Source  string
	InFunc  string // "" until a call boundary tags it

	Nested *Error // predecessor frame, set when this error crosses a call
}

func (e *Error) Error() string {
	if e.InFunc != "" {
		return fmt.Sprintf("%s: %s (in %s)", e.Kind, e.Message, e.InFunc)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a fully-formed error already attached to a node.
func New(kind Kind, node ast.Node, source, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Node:    node,
		Source:  source,
	}
}

// WithFunc returns a copy of e tagged with the name of the user function
// frame it is currently unwinding through. Called once per call-boundary
// crossing (spec.md §4.6 step 4).
func (e *Error) WithFunc(name string) *Error {
	cp := *e
	cp.InFunc = name
	return &cp
}

// Wrap builds a Nested error recording e as the predecessor, for a raise
// that crosses a user-function-call boundary.
func Wrap(outer *Error, node ast.Node, source string) *Error {
	return &Error{
		Kind:    KindNested,
		Message: outer.Error(),
		Node:    node,
		Source:  source,
		Nested:  outer,
	}
}

// MatchesTypeName reports whether a script-level `except 'Name':` clause
// naming typeName should catch e. Matching is by taxonomy Kind name, and by
// walking to the innermost non-Nested cause first so a handler written for
// the leaf kind (e.g. "ZeroDivisionError") still matches through a Nested
// wrapper.
func (e *Error) MatchesTypeName(typeName string) bool {
	cur := e
	for cur.Kind == KindNested && cur.Nested != nil {
		cur = cur.Nested
	}
	return cur.scriptTypeName() == typeName
}

// divisionMessages are the ValueError messages operators/arith.go raises for
// `/`, `//`, and `%` by zero — surfaced to scripts as "ZeroDivisionError",
// matching the reference language's exception name (spec.md §8 scenario 8).
var divisionMessages = map[string]bool{
	"division by zero":                   true,
	"integer division or modulo by zero": true,
	"float floor division by zero":       true,
}

// scriptTypeName returns the name a script-level `except 'Name':` clause
// matches against: the taxonomy Kind name, except where a ValueError's
// message pins it to a finer-grained reference-language name.
func (e *Error) scriptTypeName() string {
	switch e.Kind {
	case KindUserError:
		return "UserError"
	case KindValueError:
		if divisionMessages[e.Message] {
			return "ZeroDivisionError"
		}
	}
	return string(e.Kind)
}

// innermost walks the Nested chain to the original failure.
func (e *Error) innermost() *Error {
	cur := e
	for cur.Kind == KindNested && cur.Nested != nil {
		cur = cur.Nested
	}
	return cur
}

// TypeName returns the taxonomy/script-visible exception type name used by
// except clauses and by FormatTraceback's final line.
func (e *Error) TypeName() string {
	return e.innermost().scriptTypeName()
}

// String renders e using the default (non-traceback) formatting, useful in
// logs where only the message matters.
func (e *Error) String() string {
	var sb strings.Builder
	sb.WriteString(e.TypeName())
	sb.WriteString(": ")
	sb.WriteString(e.innermost().Message)
	return sb.String()
}
