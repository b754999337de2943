package value

import (
	"strings"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
)

// Seq is the bounded, mutable sequence container (spec.md §4.3's "safe
// sequence"). Every growing mutator checks the post-operation ApproxLen
// against cfg.MaxConstLen before committing, raising a Postponed
// IterableTooLong and leaving the receiver unchanged otherwise.
type Seq struct {
	cfg       *config.Config
	elems     []Value
	cachedLen int
}

// NewSeq builds a Seq from elems, computing the initial cached length.
func NewSeq(cfg *config.Config, elems []Value) *Seq {
	s := &Seq{cfg: cfg, elems: elems}
	n := 0
	for _, e := range elems {
		n += ApproxLen(e, nil)
	}
	s.cachedLen = n
	return s
}

func (*Seq) TypeName() string { return "list" }

func (s *Seq) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range s.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteString("]")
	return sb.String()
}

func (s *Seq) ApproxLen() int { return s.cachedLen }

// Elems returns the underlying slice (read-only by convention; callers
// outside this package must go through the mutators below to keep
// cachedLen consistent).
func (s *Seq) Elems() []Value { return s.elems }

func (s *Seq) Len() int { return len(s.elems) }

func (s *Seq) Get(i int) (Value, bool) {
	if i < 0 || i >= len(s.elems) {
		return nil, false
	}
	return s.elems[i], true
}

func (s *Seq) Set(i int, v Value) bool {
	if i < 0 || i >= len(s.elems) {
		return false
	}
	old := s.elems[i]
	s.cachedLen += ApproxLen(v, nil) - ApproxLen(old, nil)
	s.elems[i] = v
	return true
}

func (s *Seq) checkGrow(added int) error {
	if s.cachedLen+added > s.cfg.MaxConstLen {
		return errtrace.Raise(errtrace.KindIterableTooLong, "This list is too long")
	}
	return nil
}

// Append adds one element, checking growth first.
func (s *Seq) Append(v Value) error {
	added := ApproxLen(v, nil)
	if err := s.checkGrow(added); err != nil {
		return err
	}
	s.elems = append(s.elems, v)
	s.cachedLen += added
	return nil
}

// Extend appends every element of other, checking the combined growth
// before mutating (so a failed Extend leaves the receiver untouched).
func (s *Seq) Extend(other []Value) error {
	added := 0
	for _, v := range other {
		added += ApproxLen(v, nil)
	}
	if err := s.checkGrow(added); err != nil {
		return err
	}
	s.elems = append(s.elems, other...)
	s.cachedLen += added
	return nil
}

// Insert places v at index i, checking growth first.
func (s *Seq) Insert(i int, v Value) error {
	added := ApproxLen(v, nil)
	if err := s.checkGrow(added); err != nil {
		return err
	}
	if i < 0 {
		i = 0
	}
	if i > len(s.elems) {
		i = len(s.elems)
	}
	s.elems = append(s.elems, nil)
	copy(s.elems[i+1:], s.elems[i:])
	s.elems[i] = v
	s.cachedLen += added
	return nil
}

// Mul builds a new Seq equal to n copies of s's elements, without
// re-walking the data to compute the new length (spec.md §4.3: "so that
// [x] * 10000 is O(1) in length accounting").
func (s *Seq) Mul(n int) (*Seq, error) {
	if n <= 0 {
		return NewSeq(s.cfg, nil), nil
	}
	newLen := s.cachedLen * n
	if newLen >= s.cfg.MaxConstLen {
		return nil, errtrace.Raise(errtrace.KindIterableTooLong, "This list is too long")
	}
	elems := make([]Value, 0, len(s.elems)*n)
	for i := 0; i < n; i++ {
		elems = append(elems, s.elems...)
	}
	return &Seq{cfg: s.cfg, elems: elems, cachedLen: newLen}, nil
}

// Concat builds a new Seq that is s followed by other, checking combined
// growth first.
func (s *Seq) Concat(other *Seq) (*Seq, error) {
	newLen := s.cachedLen + other.cachedLen
	if newLen > s.cfg.MaxConstLen {
		return nil, errtrace.Raise(errtrace.KindIterableTooLong, "This list is too long")
	}
	elems := make([]Value, 0, len(s.elems)+len(other.elems))
	elems = append(elems, s.elems...)
	elems = append(elems, other.elems...)
	return &Seq{cfg: s.cfg, elems: elems, cachedLen: newLen}, nil
}

// Pop removes and returns the element at i (Python-style negative indices
// already resolved by the caller), decrementing the cached length.
func (s *Seq) Pop(i int) (Value, bool) {
	if i < 0 || i >= len(s.elems) {
		return nil, false
	}
	v := s.elems[i]
	s.elems = append(s.elems[:i], s.elems[i+1:]...)
	s.cachedLen -= ApproxLen(v, nil)
	return v, true
}

// Remove deletes the first element equal to v, decrementing the cached
// length. Returns false if no such element exists.
func (s *Seq) Remove(v Value) bool {
	for i, e := range s.elems {
		if eq, ok := e.(Equatable); ok && eq.Equal(v) {
			s.elems = append(s.elems[:i], s.elems[i+1:]...)
			s.cachedLen -= ApproxLen(e, nil)
			return true
		}
	}
	return false
}

// Clear empties the sequence.
func (s *Seq) Clear() {
	s.elems = nil
	s.cachedLen = 0
}

// Config exposes the bound config, used by container-returning builtins
// (e.g. list comprehensions) that need to build further Seq/Set/Map values
// under the same ceilings.
func (s *Seq) Config() *config.Config { return s.cfg }
