// Package value implements the interpreter's runtime value model: the
// tagged union described by spec.md §3, and the bounded containers
// described by spec.md §4.3 that refuse growth past a configured ceiling.
package value

import "fmt"

// Value is the universe of runtime values (spec.md §3). Every concrete
// value type in this package implements it.
type Value interface {
	// TypeName returns the taxonomy name used in error messages and by the
	// `type()`/`isinstance`-style builtins (e.g. "int", "list", "NoneType").
	TypeName() string
	// String returns the script-visible str() rendering of the value.
	String() string
}

// Truthy implements Python-style truthiness, used by `if`/`while`/`and`/`or`.
type Truthy interface {
	Truthy() bool
}

// Equatable values support `==`/`!=`.
type Equatable interface {
	Equal(other Value) bool
}

// Sized values have an approx_len contribution (spec.md §3); containers
// implement this directly with a cached count, primitives return 1 (or
// their character length for strings), and anything else counts as 1 in
// ApproxLen's fallback.
type Sized interface {
	ApproxLen() int
}

// Bool is the boolean value type.
type Bool bool

func (Bool) TypeName() string { return "bool" }

func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}

func (b Bool) Truthy() bool { return bool(b) }

func (b Bool) Equal(o Value) bool {
	ob, ok := o.(Bool)
	return ok && ob == b
}

func (Bool) ApproxLen() int { return 1 }

// None is the single none value.
type noneType struct{}

func (noneType) TypeName() string { return "NoneType" }
func (noneType) String() string   { return "None" }
func (noneType) Truthy() bool     { return false }
func (noneType) Equal(o Value) bool {
	_, ok := o.(noneType)
	return ok
}
func (noneType) ApproxLen() int { return 1 }

// None is the canonical none value instance.
var None Value = noneType{}

// IsNone reports whether v is the none value.
func IsNone(v Value) bool {
	_, ok := v.(noneType)
	return ok
}

// Tuple is an immutable, heterogeneous ordered value.
type Tuple struct {
	Elems []Value
}

func (*Tuple) TypeName() string { return "tuple" }
func (t *Tuple) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	s := "("
	for i, e := range t.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + ")"
}
func (t *Tuple) ApproxLen() int {
	n := 0
	for _, e := range t.Elems {
		n += ApproxLen(e, nil)
	}
	return n
}
func (t *Tuple) Equal(o Value) bool {
	ot, ok := o.(*Tuple)
	if !ok || len(ot.Elems) != len(t.Elems) {
		return false
	}
	for i := range t.Elems {
		eq, ok := t.Elems[i].(Equatable)
		if !ok || !eq.Equal(ot.Elems[i]) {
			return false
		}
	}
	return true
}

// Slice is the runtime value produced by a bare `a:b:c` subscript
// expression (spec.md §3).
type Slice struct {
	Lower, Upper, Step Value // each is either an *Int or None
}

func (*Slice) TypeName() string { return "slice" }
func (s *Slice) String() string {
	return fmt.Sprintf("slice(%s, %s, %s)", s.Lower, s.Upper, s.Step)
}
func (*Slice) ApproxLen() int { return 1 }

// HostObject wraps an opaque value supplied by the embedding host. Scripts
// may only read its attributes (subject to the deny-lists) and never
// mutate or reflect on it beyond that (spec.md §3).
type HostObject struct {
	Name string
	Obj  any
	// GetAttr resolves an attribute read; returns (value, true) if found.
	GetAttr func(name string) (Value, bool)
}

func (h *HostObject) TypeName() string { return "HostObject" }
func (h *HostObject) String() string {
	if h.Name != "" {
		return fmt.Sprintf("<%s>", h.Name)
	}
	return fmt.Sprintf("<host object %T>", h.Obj)
}
func (*HostObject) ApproxLen() int { return 1 }
