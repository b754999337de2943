package value

import (
	"testing"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
)

func TestSeqAppendGrowthLimit(t *testing.T) {
	cfg := config.New(config.WithMaxConstLen(2))
	s := NewSeq(cfg, []Value{NewInt(1), NewInt(2)})

	before := s.ApproxLen()
	err := s.Append(NewInt(3))
	if err == nil {
		t.Fatal("expected IterableTooLong, got nil")
	}
	pe, ok := err.(*errtrace.Postponed)
	if !ok || pe.Kind != errtrace.KindIterableTooLong {
		t.Fatalf("expected Postponed IterableTooLong, got %v", err)
	}
	if s.ApproxLen() != before || s.Len() != 2 {
		t.Fatalf("sequence mutated despite failed append: len=%d approx=%d", s.Len(), s.ApproxLen())
	}
}

func TestSeqMulIsLengthOnly(t *testing.T) {
	cfg := config.New()
	s := NewSeq(cfg, []Value{NewInt(7)})
	big, err := s.Mul(10000)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if big.ApproxLen() != 10000 || big.Len() != 10000 {
		t.Fatalf("Mul length mismatch: approx=%d len=%d", big.ApproxLen(), big.Len())
	}
}

func TestSeqMulOverLimit(t *testing.T) {
	cfg := config.New(config.WithMaxConstLen(200000))
	s := NewSeq(cfg, []Value{NewStr(cfg, "text")})
	_, err := s.Mul(50000)
	if err == nil {
		t.Fatal("expected IterableTooLong for 50000*'text'-shaped growth")
	}
}

func TestSetIntersectionUsesLargestOperand(t *testing.T) {
	cfg := config.New(config.WithMaxConstLen(3))
	a, _ := NewSetFrom(cfg, []Value{NewInt(1), NewInt(2)})
	b, _ := NewSetFrom(cfg, []Value{NewInt(2)})
	if _, err := a.Intersection(b); err != nil {
		t.Fatalf("Intersection should use largest-operand bound, not sum: %v", err)
	}
}

func TestMapSetGrowthLimit(t *testing.T) {
	cfg := config.New(config.WithMaxConstLen(1))
	m := NewMap(cfg)
	if err := m.Set(NewStr(cfg, "a"), NewInt(1)); err != nil {
		t.Fatalf("first Set should fit: %v", err)
	}
	if err := m.Set(NewStr(cfg, "b"), NewInt(2)); err == nil {
		t.Fatal("expected IterableTooLong on second Set")
	}
	if m.Len() != 1 {
		t.Fatalf("map mutated despite failed Set: len=%d", m.Len())
	}
}

func TestStrReplaceGrowthLimit(t *testing.T) {
	cfg := config.New(config.WithMaxConstLen(5))
	s := NewStr(cfg, "aa")
	_, err := s.Replace("a", "aaaa", -1)
	if err == nil {
		t.Fatal("expected IterableTooLong from Replace growth")
	}
}

func TestStrJoin(t *testing.T) {
	cfg := config.New()
	sep := NewStr(cfg, ", ")
	out, err := sep.Join([]Value{NewStr(cfg, "a"), NewStr(cfg, "b")})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if out.Go() != "a, b" {
		t.Fatalf("Join = %q, want %q", out.Go(), "a, b")
	}
}

func TestApproxLenCycleGuard(t *testing.T) {
	cfg := config.New()
	s := NewSeq(cfg, nil)
	// A container can't literally contain itself as a Value without the
	// evaluator wiring a self-reference in; here we just assert ApproxLen
	// terminates on an empty self-referential-shaped structure.
	if got := ApproxLen(s, nil); got != 0 {
		t.Fatalf("ApproxLen(empty seq) = %d, want 0", got)
	}
}

func TestIntFloatEquality(t *testing.T) {
	if !NewInt(2).Equal(NewFloat(2.0)) {
		t.Error("2 should equal 2.0")
	}
}
