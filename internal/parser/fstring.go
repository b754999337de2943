package parser

import (
	"strings"

	"github.com/cwbudde/go-saferun/internal/ast"
)

// parseFString decomposes an f-string's raw literal text (with `{{`/`}}`
// as escaped braces) into literal-text and interpolated-expression parts,
// recursively parsing each `{expr}` or `{expr:spec}` run as a standalone
// expression via a fresh Parser (spec.md §2's f-string grammar).
func (p *Parser) parseFString(start ast.Position, raw string) ast.Expr {
	var parts []ast.FStringPart
	var lit strings.Builder
	i := 0
	for i < len(raw) {
		ch := raw[i]
		switch {
		case ch == '{' && i+1 < len(raw) && raw[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case ch == '}' && i+1 < len(raw) && raw[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case ch == '{':
			if lit.Len() > 0 {
				parts = append(parts, ast.FStringPart{Literal: lit.String()})
				lit.Reset()
			}
			end, exprText, specText, hasSpec := scanFStringField(raw, i+1)
			sub := New(exprText)
			inner := sub.parseExpr()
			for _, e := range sub.Errors() {
				p.errors = append(p.errors, e)
			}
			parts = append(parts, ast.FStringPart{Value: inner, FormatSpec: specText, HasSpec: hasSpec})
			i = end
		default:
			lit.WriteByte(ch)
			i++
		}
	}
	if lit.Len() > 0 {
		parts = append(parts, ast.FStringPart{Literal: lit.String()})
	}
	return &ast.FString{Base: ast.NewBase(start, p.lastEnd()), Parts: parts}
}

// scanFStringField scans forward from just past a field's opening `{`,
// tracking nested bracket depth so a subscript/call inside the expression
// (`{d[1]}`, `{f(1, 2)}`) doesn't trip the field's own closing `}`. Returns
// the index just past the field's closing `}`, the expression text, the
// format-spec text (after a top-level `:`), and whether a spec was present.
func scanFStringField(raw string, i int) (int, string, string, bool) {
	depth := 0
	exprStart := i
	specStart := -1
	for i < len(raw) {
		switch raw[i] {
		case '(', '[', '{':
			depth++
		case ')', ']':
			depth--
		case '}':
			if depth == 0 {
				if specStart >= 0 {
					return i + 1, raw[exprStart : specStart-1], raw[specStart:i], true
				}
				return i + 1, raw[exprStart:i], "", false
			}
			depth--
		case ':':
			if depth == 0 && specStart < 0 {
				specStart = i + 1
			}
		}
		i++
	}
	if specStart >= 0 {
		return i, raw[exprStart : specStart-1], raw[specStart:], true
	}
	return i, raw[exprStart:], "", false
}
