package operators

import "github.com/cwbudde/go-saferun/internal/value"

// Truthy implements Python-style truthiness (spec.md §3): empty containers,
// zero numbers, empty strings, and None are false; everything else is true.
func Truthy(v value.Value) bool {
	if t, ok := v.(value.Truthy); ok {
		return t.Truthy()
	}
	if s, ok := v.(value.Sized); ok {
		return s.ApproxLen() != 0
	}
	return true
}
