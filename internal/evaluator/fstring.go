package evaluator

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

// evalFString renders an f-string: each segment is evaluated and
// concatenated with a running length check against max_const_len
// (SPEC_FULL.md §4.5). A format spec is validated against
// value.FormatSpecRE before use.
func (e *Evaluator) evalFString(n *ast.FString) (value.Value, error) {
	var sb strings.Builder
	total := 0
	for _, part := range n.Parts {
		var piece string
		if part.Value == nil {
			piece = part.Literal
		} else {
			v, err := e.evalExpr(part.Value)
			if err != nil {
				return nil, e.annotate(err, part.Value)
			}
			if part.HasSpec {
				if !value.FormatSpecRE.MatchString(part.FormatSpec) {
					return nil, e.annotate(errtrace.Raise(errtrace.KindFeatureNotAvailable, "invalid format spec %q", part.FormatSpec), n)
				}
				rendered, err := formatWithSpec(v, part.FormatSpec)
				if err != nil {
					return nil, e.annotate(err, n)
				}
				piece = rendered
			} else {
				piece = v.String()
			}
		}
		total += len([]rune(piece))
		if total > e.cfg.MaxConstLen {
			return nil, e.annotate(errtrace.Raise(errtrace.KindIterableTooLong, "This str is too large"), n)
		}
		sb.WriteString(piece)
	}
	return value.NewStr(e.cfg, sb.String()), nil
}

// formatWithSpec renders v under a format spec already validated against
// value.FormatSpecRE's field grammar
// ([[fill]align][sign][#][0][width][,][.precision][type]).
func formatWithSpec(v value.Value, spec string) (string, error) {
	m := value.FormatSpecRE.FindStringSubmatch(spec)
	names := value.FormatSpecRE.SubexpNames()
	group := func(name string) string {
		for i, n := range names {
			if n == name && i < len(m) {
				return m[i]
			}
		}
		return ""
	}
	typ := group("type")
	width := group("width")
	precision := group("precision")
	align := group("align")
	fill := group("fill")
	if fill == "" {
		fill = " "
	}

	var rendered string
	switch typ {
	case "d":
		n, _ := value.AsInt64(v)
		rendered = strconv.FormatInt(n, 10)
	case "b":
		n, _ := value.AsInt64(v)
		rendered = strconv.FormatInt(n, 2)
	case "o":
		n, _ := value.AsInt64(v)
		rendered = strconv.FormatInt(n, 8)
	case "x":
		n, _ := value.AsInt64(v)
		rendered = strconv.FormatInt(n, 16)
	case "X":
		n, _ := value.AsInt64(v)
		rendered = strings.ToUpper(strconv.FormatInt(n, 16))
	case "f", "F":
		f, _ := value.AsFloat64(v)
		prec := 6
		if precision != "" {
			prec, _ = strconv.Atoi(precision)
		}
		rendered = strconv.FormatFloat(f, 'f', prec, 64)
	case "e", "E":
		f, _ := value.AsFloat64(v)
		prec := 6
		if precision != "" {
			prec, _ = strconv.Atoi(precision)
		}
		rendered = strconv.FormatFloat(f, byte(typ[0]), prec, 64)
	case "g", "G":
		f, _ := value.AsFloat64(v)
		rendered = strconv.FormatFloat(f, byte(typ[0]), -1, 64)
	case "%":
		f, _ := value.AsFloat64(v)
		prec := 6
		if precision != "" {
			prec, _ = strconv.Atoi(precision)
		}
		rendered = strconv.FormatFloat(f*100, 'f', prec, 64) + "%"
	default:
		rendered = v.String()
	}

	if width == "" {
		return rendered, nil
	}
	w, _ := strconv.Atoi(width)
	pad := w - len([]rune(rendered))
	if pad <= 0 {
		return rendered, nil
	}
	switch align {
	case "<":
		return rendered + strings.Repeat(fill, pad), nil
	case "^":
		left := pad / 2
		right := pad - left
		return strings.Repeat(fill, left) + rendered + strings.Repeat(fill, right), nil
	default: // ">" or "=" or numeric default (right-align)
		return strings.Repeat(fill, pad) + rendered, nil
	}
}
