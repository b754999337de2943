package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/value"
)

// outcomeKind distinguishes a normal statement-sequence completion from a
// break/continue/return sentinel surfacing through it (SPEC_FULL.md §9:
// "best modeled as an explicit Outcome sum type returned from every
// statement executor").
type outcomeKind int

const (
	outcomeNormal outcomeKind = iota
	outcomeBreak
	outcomeContinue
	outcomeReturn
)

func (k outcomeKind) keyword() string {
	switch k {
	case outcomeBreak:
		return "break"
	case outcomeContinue:
		return "continue"
	default:
		return "return"
	}
}

// outcome is the sentinel carried up through execBlock/exec calls. value is
// only meaningful for outcomeReturn; node records the originating
// break/continue/return statement for error reporting when one escapes
// somewhere it shouldn't.
type outcome struct {
	kind  outcomeKind
	value value.Value
	node  ast.Node
}

var normalOutcome = outcome{kind: outcomeNormal}
