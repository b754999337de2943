package operators

import (
	"testing"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

func TestAddIntOverflow(t *testing.T) {
	cfg := config.New(config.WithMaxIntSize(8))
	_, err := Add(cfg, value.NewInt(127), value.NewInt(1))
	if err == nil {
		t.Fatal("expected NumberTooHigh")
	}
	pe, ok := err.(*errtrace.Postponed)
	if !ok || pe.Kind != errtrace.KindNumberTooHigh {
		t.Fatalf("got %v", err)
	}
}

func TestFloorDivSignConvention(t *testing.T) {
	cfg := config.New()
	r, err := FloorDiv(cfg, value.NewInt(-7), value.NewInt(2))
	if err != nil {
		t.Fatal(err)
	}
	if r.(*value.Int).V != -4 {
		t.Fatalf("-7 // 2 = %v, want -4", r)
	}
}

func TestModSignConvention(t *testing.T) {
	cfg := config.New()
	r, err := Mod(cfg, value.NewInt(-7), value.NewInt(2))
	if err != nil {
		t.Fatal(err)
	}
	if r.(*value.Int).V != 1 {
		t.Fatalf("-7 %% 2 = %v, want 1", r)
	}
}

func TestPowBaseCeiling(t *testing.T) {
	cfg := config.New(config.WithMaxPower(1000000, 1000))
	_, err := Pow(cfg, value.NewInt(2000000), value.NewInt(2))
	if err == nil {
		t.Fatal("expected NumberTooHigh for base over ceiling")
	}
}

func TestCompareLtGt(t *testing.T) {
	ok, err := Compare("<", value.NewInt(1), value.NewInt(2))
	if err != nil || !ok {
		t.Fatalf("1 < 2: %v %v", ok, err)
	}
	ok, err = Compare(">", value.NewInt(1), value.NewInt(2))
	if err != nil || ok {
		t.Fatalf("1 > 2: %v %v", ok, err)
	}
}

func TestContainsSeq(t *testing.T) {
	cfg := config.New()
	s := value.NewSeq(cfg, []value.Value{value.NewInt(1), value.NewInt(2)})
	ok, err := Contains(s, value.NewInt(2))
	if err != nil || !ok {
		t.Fatalf("2 in [1,2]: %v %v", ok, err)
	}
}

func TestSeqTimesIntCommutes(t *testing.T) {
	cfg := config.New()
	s := value.NewSeq(cfg, []value.Value{value.NewInt(9)})
	r1, err := Mul(cfg, s, value.NewInt(3))
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Mul(cfg, value.NewInt(3), s)
	if err != nil {
		t.Fatal(err)
	}
	if r1.(*value.Seq).Len() != 3 || r2.(*value.Seq).Len() != 3 {
		t.Fatalf("expected both orders to repeat 3x")
	}
}
