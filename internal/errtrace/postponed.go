package errtrace

import "fmt"

// Postponed is the "postponed error" idiom from spec.md §4.2/§9: helper
// routines deep inside operator/container code cannot see the syntax-tree
// node currently being evaluated, so they raise a Postponed carrying only
// the Kind and message. Every AST visitor catches Postponed at its own node
// boundary and rethrows it as a fully-formed *Error with Node/Source
// attached — this is the sole idiom by which deep helpers annotate errors.
type Postponed struct {
	Kind    Kind
	Message string
}

func (p *Postponed) Error() string {
	return string(p.Kind) + ": " + p.Message
}

// Raise constructs a Postponed ready to be returned (as a Go error) from a
// helper that has no node context.
func Raise(kind Kind, format string, args ...any) *Postponed {
	return &Postponed{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
