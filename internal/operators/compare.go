package operators

import (
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

// Eq and Ne implement `==`/`!=` for any two values via value.Equatable;
// values of incomparable types are simply unequal (Python semantics).
func Eq(a, b value.Value) bool {
	eq, ok := a.(value.Equatable)
	return ok && eq.Equal(b)
}

func Ne(a, b value.Value) bool { return !Eq(a, b) }

// order returns -1, 0, or 1 for a relative to b, and false if the pair is
// not ordered (spec.md §4.4: only numbers and same-kind strings/sequences
// support <, <=, >, >=).
func order(a, b value.Value) (int, bool) {
	if fa, ok := value.AsFloat64(a); ok {
		if fb, ok := value.AsFloat64(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	if sa, ok := a.(*value.Str); ok {
		if sb, ok := b.(*value.Str); ok {
			switch {
			case sa.Go() < sb.Go():
				return -1, true
			case sa.Go() > sb.Go():
				return 1, true
			default:
				return 0, true
			}
		}
	}
	if sa, ok := a.(*value.Seq); ok {
		if sb, ok := b.(*value.Seq); ok {
			return orderElems(sa.Elems(), sb.Elems())
		}
	}
	if ta, ok := a.(*value.Tuple); ok {
		if tb, ok := b.(*value.Tuple); ok {
			return orderElems(ta.Elems, tb.Elems)
		}
	}
	return 0, false
}

// orderElems implements Python's element-wise, shorter-prefix-is-smaller
// sequence ordering.
func orderElems(a, b []value.Value) (int, bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if Eq(a[i], b[i]) {
			continue
		}
		return order(a[i], b[i])
	}
	switch {
	case len(a) < len(b):
		return -1, true
	case len(a) > len(b):
		return 1, true
	default:
		return 0, true
	}
}

func cmp(op string, a, b value.Value) (bool, error) {
	o, ok := order(a, b)
	if !ok {
		return false, errtrace.Raise(errtrace.KindValueError, "'%s' not supported between instances of '%s' and '%s'", op, a.TypeName(), b.TypeName())
	}
	switch op {
	case "<":
		return o < 0, nil
	case "<=":
		return o <= 0, nil
	case ">":
		return o > 0, nil
	case ">=":
		return o >= 0, nil
	}
	return false, nil
}

func Lt(a, b value.Value) (bool, error) { return cmp("<", a, b) }
func Le(a, b value.Value) (bool, error) { return cmp("<=", a, b) }
func Gt(a, b value.Value) (bool, error) { return cmp(">", a, b) }
func Ge(a, b value.Value) (bool, error) { return cmp(">=", a, b) }

// Compare dispatches on op (one of "==", "!=", "<", "<=", ">", ">=", "in",
// "not in", "is", "is not") for the evaluator's chained-comparison walk
// (spec.md §4.4: `a < b < c` evaluates left to right, short-circuiting at
// the first false link without evaluating the rest).
func Compare(op string, a, b value.Value) (bool, error) {
	switch op {
	case "==":
		return Eq(a, b), nil
	case "!=":
		return Ne(a, b), nil
	case "<":
		return Lt(a, b)
	case "<=":
		return Le(a, b)
	case ">":
		return Gt(a, b)
	case ">=":
		return Ge(a, b)
	case "in":
		return Contains(b, a)
	case "not in":
		ok, err := Contains(b, a)
		return !ok, err
	case "is":
		return isIdentical(a, b), nil
	case "is not":
		return !isIdentical(a, b), nil
	}
	return false, errtrace.Raise(errtrace.KindValueError, "unknown comparison operator %q", op)
}

// isIdentical implements `is`/`is not`: for the interned singletons (None,
// True, False) this is value equality; for everything else it is Go pointer
// identity, matching the fact that this language never exposes object
// identity for numbers/strings beyond what `==` already gives.
func isIdentical(a, b value.Value) bool {
	if value.IsNone(a) || value.IsNone(b) {
		return value.IsNone(a) && value.IsNone(b)
	}
	if ba, ok := a.(value.Bool); ok {
		if bb, ok2 := b.(value.Bool); ok2 {
			return ba == bb
		}
	}
	return a == b
}

// Contains implements `in`/`not in` membership, dispatching per container
// kind (spec.md §3/§4.3).
func Contains(container, item value.Value) (bool, error) {
	switch c := container.(type) {
	case *value.Seq:
		for _, e := range c.Elems() {
			if Eq(e, item) {
				return true, nil
			}
		}
		return false, nil
	case *value.Tuple:
		for _, e := range c.Elems {
			if Eq(e, item) {
				return true, nil
			}
		}
		return false, nil
	case *value.Set:
		return c.Contains(item), nil
	case *value.Map:
		_, ok := c.Get(item)
		return ok, nil
	case *value.Str:
		sub, ok := item.(*value.Str)
		if !ok {
			return false, errtrace.Raise(errtrace.KindValueError, "'in <string>' requires string as left operand, not %s", item.TypeName())
		}
		return stringsContains(c.Go(), sub.Go()), nil
	}
	return false, errtrace.Raise(errtrace.KindValueError, "argument of type '%s' is not iterable", container.TypeName())
}

func stringsContains(s, sub string) bool {
	if sub == "" {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
