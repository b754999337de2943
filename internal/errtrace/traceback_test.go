package errtrace

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-saferun/internal/ast"
)

func node(line, col int) ast.Node {
	return fakeNode{ast.Span{Start: ast.Position{Line: line, Column: col}, End: ast.Position{Line: line, Column: col + 1}}}
}

type fakeNode struct{ span ast.Span }

func (f fakeNode) Span() ast.Span { return f.span }

func TestFormatTraceback_SingleFrame(t *testing.T) {
	src := "1/0"
	e := &Error{Kind: KindValueError, Message: "division by zero", Node: node(1, 1), Source: src}

	out := FormatTraceback(e)
	if !strings.HasPrefix(out, "Traceback (most recent call last):\n") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "Line 1, col 1") {
		t.Errorf("missing position line: %q", out)
	}
	if !strings.Contains(out, "1/0") {
		t.Errorf("missing source line: %q", out)
	}
	if !strings.HasSuffix(out, "ZeroDivisionError: division by zero\n") {
		t.Errorf("missing final line: %q", out)
	}
}

func TestFormatTraceback_NestedChain(t *testing.T) {
	inner := &Error{Kind: KindNumberTooHigh, Message: "too big", Node: node(2, 5), Source: "x"}
	outer := Wrap(inner, node(1, 1), "x")
	outer.InFunc = "caller"

	out := FormatTraceback(outer)
	if !strings.Contains(out, "in caller") {
		t.Errorf("expected 'in caller' frame annotation: %q", out)
	}
	if !strings.HasSuffix(out, "NumberTooHigh: too big\n") {
		t.Errorf("expected leaf kind/message at end: %q", out)
	}
}

func TestMatchesTypeName(t *testing.T) {
	e := &Error{Kind: KindUserError, Message: "boom"}
	if !e.MatchesTypeName("UserError") {
		t.Error("UserError should match its own taxonomy name")
	}
	if e.MatchesTypeName("ValueError") {
		t.Error("UserError should not match unrelated type name")
	}
}

func TestIsLimitUncatchable(t *testing.T) {
	for _, k := range []Kind{KindNumberTooHigh, KindIterableTooLong, KindTooManyStatements, KindTooMuchRecursion} {
		if !k.IsLimit() {
			t.Errorf("%s should be a limit kind", k)
		}
	}
	for _, k := range []Kind{KindValueError, KindNotDefined, KindUserError} {
		if k.IsLimit() {
			t.Errorf("%s should not be a limit kind", k)
		}
	}
}
