package value

import (
	"strings"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
)

// Set is the bounded set container (spec.md §4.3). Insertion order is
// preserved for deterministic String() output even though set membership
// is unordered semantically.
type Set struct {
	cfg       *config.Config
	keys      []string
	byKey     map[string]Value
	cachedLen int
}

func NewSet(cfg *config.Config) *Set {
	return &Set{cfg: cfg, byKey: make(map[string]Value)}
}

func NewSetFrom(cfg *config.Config, elems []Value) (*Set, error) {
	s := NewSet(cfg)
	for _, e := range elems {
		if err := s.Add(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (*Set) TypeName() string { return "set" }

func (s *Set) String() string {
	if len(s.keys) == 0 {
		return "set()"
	}
	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range s.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s.byKey[k].String())
	}
	sb.WriteString("}")
	return sb.String()
}

func (s *Set) ApproxLen() int         { return s.cachedLen }
func (s *Set) Len() int               { return len(s.keys) }
func (s *Set) Config() *config.Config { return s.cfg }

func (s *Set) Contains(v Value) bool {
	k, ok := hashKey(v)
	if !ok {
		return false
	}
	_, found := s.byKey[k]
	return found
}

func (s *Set) Values() []Value {
	out := make([]Value, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.byKey[k]
	}
	return out
}

// Add inserts v, checking growth first (spec.md §4.3).
func (s *Set) Add(v Value) error {
	k, ok := hashKey(v)
	if !ok {
		return errtrace.Raise(errtrace.KindValueError, unhashableError(v))
	}
	if _, exists := s.byKey[k]; exists {
		return nil
	}
	added := ApproxLen(v, nil)
	if s.cachedLen+added > s.cfg.MaxConstLen {
		return errtrace.Raise(errtrace.KindIterableTooLong, "This set is too large")
	}
	s.keys = append(s.keys, k)
	s.byKey[k] = v
	s.cachedLen += added
	return nil
}

// Remove deletes v; returns an error if it is absent (Python set.remove
// semantics; Discard below is the non-erroring form).
func (s *Set) Remove(v Value) error {
	k, ok := hashKey(v)
	if !ok || !s.removeKey(k) {
		return errtrace.Raise(errtrace.KindValueError, "%s", v.String())
	}
	return nil
}

// Discard deletes v if present; a no-op otherwise.
func (s *Set) Discard(v Value) {
	if k, ok := hashKey(v); ok {
		s.removeKey(k)
	}
}

func (s *Set) removeKey(k string) bool {
	v, found := s.byKey[k]
	if !found {
		return false
	}
	delete(s.byKey, k)
	for i, kk := range s.keys {
		if kk == k {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	s.cachedLen -= ApproxLen(v, nil)
	return true
}

// Pop removes and returns an arbitrary element (the most recently inserted,
// for determinism).
func (s *Set) Pop() (Value, bool) {
	if len(s.keys) == 0 {
		return nil, false
	}
	k := s.keys[len(s.keys)-1]
	v := s.byKey[k]
	s.removeKey(k)
	return v, true
}

func (s *Set) Clear() {
	s.keys = nil
	s.byKey = make(map[string]Value)
	s.cachedLen = 0
}

// Union returns a new Set containing s plus every element of others,
// checking the combined ApproxLen before building it (spec.md §4.3).
func (s *Set) Union(others ...*Set) (*Set, error) {
	total := s.cachedLen
	for _, o := range others {
		total += o.cachedLen
	}
	if total > s.cfg.MaxConstLen {
		return nil, errtrace.Raise(errtrace.KindIterableTooLong, "This set is too large")
	}
	out := NewSet(s.cfg)
	for _, v := range s.Values() {
		_ = out.Add(v)
	}
	for _, o := range others {
		for _, v := range o.Values() {
			_ = out.Add(v)
		}
	}
	return out, nil
}

// Intersection returns a new Set of elements common to s and every other,
// bounded per spec.md §4.3 by the largest operand's ApproxLen (an
// overestimate, acceptable since intersection cannot grow the result).
func (s *Set) Intersection(others ...*Set) (*Set, error) {
	largest := s.cachedLen
	for _, o := range others {
		if o.cachedLen > largest {
			largest = o.cachedLen
		}
	}
	if largest > s.cfg.MaxConstLen {
		return nil, errtrace.Raise(errtrace.KindIterableTooLong, "This set is too large")
	}
	out := NewSet(s.cfg)
	for _, v := range s.Values() {
		inAll := true
		for _, o := range others {
			if !o.Contains(v) {
				inAll = false
				break
			}
		}
		if inAll {
			_ = out.Add(v)
		}
	}
	return out, nil
}

// SymmetricDifference returns elements in exactly one of s/other.
func (s *Set) SymmetricDifference(other *Set) (*Set, error) {
	total := s.cachedLen + other.cachedLen
	if total > s.cfg.MaxConstLen {
		return nil, errtrace.Raise(errtrace.KindIterableTooLong, "This set is too large")
	}
	out := NewSet(s.cfg)
	for _, v := range s.Values() {
		if !other.Contains(v) {
			_ = out.Add(v)
		}
	}
	for _, v := range other.Values() {
		if !s.Contains(v) {
			_ = out.Add(v)
		}
	}
	return out, nil
}

// Difference returns elements of s not in other. Unchecked: it cannot grow
// the set (spec.md §4.3).
func (s *Set) Difference(other *Set) *Set {
	out := NewSet(s.cfg)
	for _, v := range s.Values() {
		if !other.Contains(v) {
			_ = out.Add(v)
		}
	}
	return out
}

// Update mutates s in place to include every element of others, checking
// combined growth first.
func (s *Set) Update(others ...*Set) error {
	merged, err := s.Union(others...)
	if err != nil {
		return err
	}
	s.keys = merged.keys
	s.byKey = merged.byKey
	s.cachedLen = merged.cachedLen
	return nil
}
