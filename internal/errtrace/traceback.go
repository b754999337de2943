package errtrace

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-saferun/internal/ast"
)

// FormatTraceback renders e in the shape documented by spec.md §4.2 and
// carried from original_source/draconic/utils.py's format_traceback: a
// "Traceback (most recent call last):" header, one frame block per nested
// call (outermost first) giving the line/column (and, once known, the
// enclosing function name) plus the offending source line with a caret
// underline, and a final "TypeName: message" line carrying the
// script-visible type name (see TypeName).
//
// This mirrors the teacher repo's internal/errors.CompilerError.Format
// header-plus-caret layout, extended to walk a call-boundary chain instead
// of rendering a single position.
func FormatTraceback(e *Error) string {
	var sb strings.Builder
	sb.WriteString("Traceback (most recent call last):\n")

	for _, frame := range chain(e) {
		writeFrame(&sb, frame)
	}

	leaf := e.innermost()
	sb.WriteString(fmt.Sprintf("%s: %s\n", leaf.typeNameForRender(), leaf.Message))
	return sb.String()
}

// typeNameForRender is TypeName but callable on any frame in the chain, not
// just the outermost error.
func (e *Error) typeNameForRender() string {
	return e.scriptTypeName()
}

// chain walks e's Nested links outermost-first, matching
// format_traceback's "while isinstance(exc, NestedException)" loop.
func chain(e *Error) []*Error {
	var frames []*Error
	cur := e
	for cur.Kind == KindNested && cur.Nested != nil {
		frames = append(frames, cur)
		cur = cur.Nested
	}
	frames = append(frames, cur)
	return frames
}

func writeFrame(sb *strings.Builder, e *Error) {
	if e.Node == nil {
		return
	}
	pos := e.Node.Span().Start
	if e.InFunc != "" {
		sb.WriteString(fmt.Sprintf("  Line %d, col %d, in %s\n", pos.Line, pos.Column, e.InFunc))
	} else {
		sb.WriteString(fmt.Sprintf("  Line %d, col %d\n", pos.Line, pos.Column))
	}
	sb.WriteString(indent(pointerLine(e.Source, e.Node), "    "))
}

// pointerLine extracts the offending source line and underlines the node's
// extent with carets, collapsing to a single caret when the node spans
// multiple lines (spec.md §4.2: "caret underline spanning the node's
// extent").
func pointerLine(source string, node ast.Node) string {
	span := node.Span()
	lines := strings.Split(source, "\n")
	lineIdx := span.Start.Line - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return ""
	}
	line := lines[lineIdx]

	col := span.Start.Column - 1
	if col < 0 {
		col = 0
	}

	width := 1
	if span.End.Line == span.Start.Line && span.End.Column > span.Start.Column {
		width = span.End.Column - span.Start.Column
	}

	return line + "\n" + strings.Repeat(" ", col) + strings.Repeat("^", width)
}

func indent(s, prefix string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
