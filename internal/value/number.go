package value

import (
	"strconv"
)

// Int is a bounded 64-bit integer. Magnitude enforcement against the
// configured ceiling (spec.md §4.1, max_int_size) happens in
// internal/operators, which checks every arithmetic result before it is
// wrapped back into an *Int; Int itself just carries the Go int64.
type Int struct {
	V int64
}

func NewInt(v int64) *Int { return &Int{V: v} }

func (*Int) TypeName() string { return "int" }
func (i *Int) String() string { return strconv.FormatInt(i.V, 10) }
func (i *Int) Truthy() bool   { return i.V != 0 }
func (i *Int) ApproxLen() int { return 1 }

func (i *Int) Equal(o Value) bool {
	switch ov := o.(type) {
	case *Int:
		return i.V == ov.V
	case *Float:
		return float64(i.V) == ov.V
	default:
		return false
	}
}

// Float is a 64-bit floating point value, exempt from integer-magnitude
// checks (spec.md §4.4) but still subject to container-growth checks when
// combined with a string/sequence.
type Float struct {
	V float64
}

func NewFloat(v float64) *Float { return &Float{V: v} }

func (*Float) TypeName() string { return "float" }
func (f *Float) String() string {
	return strconv.FormatFloat(f.V, 'g', -1, 64)
}
func (f *Float) Truthy() bool   { return f.V != 0 }
func (f *Float) ApproxLen() int { return 1 }

func (f *Float) Equal(o Value) bool {
	switch ov := o.(type) {
	case *Float:
		return f.V == ov.V
	case *Int:
		return f.V == float64(ov.V)
	default:
		return false
	}
}

// AsFloat64 extracts a float64 from any numeric Value.
func AsFloat64(v Value) (float64, bool) {
	switch n := v.(type) {
	case *Int:
		return float64(n.V), true
	case *Float:
		return n.V, true
	default:
		return 0, false
	}
}

// AsInt64 extracts an int64 from an *Int (floats are never implicitly
// truncated — callers that accept float-or-int numeric arguments should use
// AsFloat64 instead).
func AsInt64(v Value) (int64, bool) {
	n, ok := v.(*Int)
	if !ok {
		return 0, false
	}
	return n.V, true
}

// IsNumeric reports whether v is an *Int or *Float.
func IsNumeric(v Value) bool {
	switch v.(type) {
	case *Int, *Float:
		return true
	default:
		return false
	}
}
