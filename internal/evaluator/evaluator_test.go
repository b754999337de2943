package evaluator

import (
	"testing"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/parser"
	"github.com/cwbudde/go-saferun/internal/value"
)

func evalExpr(t *testing.T, cfg *config.Config, builtins map[string]value.Value, src string) (value.Value, error) {
	t.Helper()
	p := parser.New(src)
	mod := p.ParseModule()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors())
	}
	e := New(cfg, builtins)
	return e.Eval(src, mod)
}

func execSrc(t *testing.T, cfg *config.Config, builtins map[string]value.Value, src string) (value.Value, error) {
	t.Helper()
	p := parser.New(src)
	mod := p.ParseModule()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors())
	}
	e := New(cfg, builtins)
	return e.Execute(src, mod)
}

func wantErrKind(t *testing.T, err error, kind errtrace.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	te, ok := err.(*errtrace.Error)
	if !ok {
		t.Fatalf("expected *errtrace.Error, got %T (%v)", err, err)
	}
	if te.TypeName() != string(kind) {
		t.Fatalf("expected kind %s, got %s (%v)", kind, te.TypeName(), te)
	}
}

// Scenario 1: list comprehension.
func TestScenario_ListComprehension(t *testing.T) {
	v, err := evalExpr(t, config.New(), nil, "[a + 1 for a in [1,2,3]]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seq, ok := v.(*value.Seq)
	if !ok {
		t.Fatalf("expected *value.Seq, got %T", v)
	}
	want := []int64{2, 3, 4}
	if seq.Len() != len(want) {
		t.Fatalf("want len %d, got %d", len(want), seq.Len())
	}
	for i, w := range want {
		el, _ := seq.Get(i)
		if n, ok := el.(*value.Int); !ok || n.V != w {
			t.Fatalf("elem %d = %v, want %d", i, el, w)
		}
	}
}

// Scenario 2: exponentiation base ceiling.
func TestScenario_PowerBaseTooHigh(t *testing.T) {
	cfg := config.New(config.WithMaxPower(100, 100))
	_, err := evalExpr(t, cfg, nil, "101**2")
	wantErrKind(t, err, errtrace.KindNumberTooHigh)
}

// Scenario 3: string repetition at the growth ceiling.
func TestScenario_StringRepeatTooLong(t *testing.T) {
	cfg := config.New()
	_, err := evalExpr(t, cfg, nil, "50000*'text'")
	wantErrKind(t, err, errtrace.KindIterableTooLong)
}

// Scenario 4: recursive factorial via a module-level return.
func TestScenario_FactorialRecursion(t *testing.T) {
	src := "def fac(i):\n  if i<1: return 1\n  return i*fac(i-1)\nreturn fac(5)\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(*value.Int)
	if !ok || n.V != 120 {
		t.Fatalf("fac(5) = %v, want 120", v)
	}
}

// Scenario 5: unbounded recursion hits the depth ceiling.
func TestScenario_RecursionDepthExceeded(t *testing.T) {
	cfg := config.New(config.WithMaxRecursionDepth(50))
	src := "def f(): f()\nf()\n"
	_, err := execSrc(t, cfg, nil, src)
	wantErrKind(t, err, errtrace.KindTooMuchRecursion)
}

// Scenario 6: sequence pattern with a star capture.
func TestScenario_MatchStarPattern(t *testing.T) {
	src := "match [1,2,3]:\n  case [x,*_]: return x\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(*value.Int)
	if !ok || n.V != 1 {
		t.Fatalf("match result = %v, want 1", v)
	}
}

// Scenario 7: assigning over a builtin name is refused.
func TestScenario_AssignShadowsBuiltin(t *testing.T) {
	builtins := map[string]value.Value{"shadow": &value.GoFunc{Name: "shadow"}}
	_, err := execSrc(t, config.New(), builtins, "shadow = 1\n")
	wantErrKind(t, err, errtrace.KindValueError)
}

// Scenario 8: division by zero is catchable under its reference-language name.
func TestScenario_TryExceptZeroDivision(t *testing.T) {
	src := "try:\n  1/0\nexcept 'ZeroDivisionError':\n  return 'ok'\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := v.(*value.Str)
	if !ok || s.Go() != "ok" {
		t.Fatalf("result = %v, want 'ok'", v)
	}
}

// Scenario 9: finally's own return overrides the try body's.
func TestScenario_FinallyOverridesReturn(t *testing.T) {
	src := "try:\n  return 0\nfinally:\n  return 3\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(*value.Int)
	if !ok || n.V != 3 {
		t.Fatalf("result = %v, want 3", v)
	}
}

// Scenario 10: walrus both yields and binds.
func TestScenario_WalrusBindsAndYields(t *testing.T) {
	cfg := config.New()
	src := "(a := 1) + a"
	p := parser.New(src)
	mod := p.ParseModule()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors())
	}
	e := New(cfg, nil)
	v, err := e.Eval(src, mod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(*value.Int)
	if !ok || n.V != 2 {
		t.Fatalf("result = %v, want 2", v)
	}
	bound, ok := e.Env().Get("a")
	if !ok {
		t.Fatal("expected 'a' to remain bound after eval")
	}
	if bn, ok := bound.(*value.Int); !ok || bn.V != 1 {
		t.Fatalf("a = %v, want 1", bound)
	}
}

// Universal invariant: a subsequent eval after an error still works.
func TestInvariant_RecoversAfterError(t *testing.T) {
	cfg := config.New()
	e := New(cfg, nil)

	p1 := parser.New("1/0")
	mod1 := p1.ParseModule()
	if _, err := e.Eval("1/0", mod1); err == nil {
		t.Fatal("expected an error from 1/0")
	}

	p2 := parser.New("1")
	mod2 := p2.ParseModule()
	v, err := e.Eval("1", mod2)
	if err != nil {
		t.Fatalf("unexpected error after prior failure: %v", err)
	}
	if n, ok := v.(*value.Int); !ok || n.V != 1 {
		t.Fatalf("result = %v, want 1", v)
	}
}

// Universal invariant: a Limit error is never catchable.
func TestInvariant_LimitErrorsUncatchable(t *testing.T) {
	cfg := config.New(config.WithMaxStatements(2))
	src := "try:\n  x = 1\n  y = 2\n  z = 3\nexcept 'TooManyStatements':\n  return 'caught'\n"
	_, err := execSrc(t, cfg, nil, src)
	wantErrKind(t, err, errtrace.KindTooManyStatements)
}

// Universal invariant: attribute access honors the deny-lists.
func TestInvariant_DeniedAttributeUnreadable(t *testing.T) {
	_, err := evalExpr(t, config.New(), nil, "(1).__class__")
	wantErrKind(t, err, errtrace.KindFeatureNotAvailable)
}

func TestForLoopElseRunsWithoutBreak(t *testing.T) {
	src := "total = 0\nfor i in [1,2,3]:\n  total = total + i\nelse:\n  total = total + 100\nreturn total\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.(*value.Int); !ok || n.V != 106 {
		t.Fatalf("result = %v, want 106", v)
	}
}

func TestForLoopElseSkippedOnBreak(t *testing.T) {
	src := "total = 0\nfor i in [1,2,3]:\n  if i == 2: break\n  total = total + i\nelse:\n  total = total + 100\nreturn total\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.(*value.Int); !ok || n.V != 1 {
		t.Fatalf("result = %v, want 1", v)
	}
}

func TestComprehensionDoesNotLeakTargetIntoEnclosingScope(t *testing.T) {
	src := "a = 99\n_ = [a for a in [1,2,3]]\nreturn a\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.(*value.Int); !ok || n.V != 99 {
		t.Fatalf("result = %v, want 99 (comprehension target leaked)", v)
	}
}

func TestChainedAssignment(t *testing.T) {
	src := "a = b = 5\nreturn a + b\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.(*value.Int); !ok || n.V != 10 {
		t.Fatalf("result = %v, want 10", v)
	}
}

func TestAugAssign(t *testing.T) {
	src := "a = 5\na += 3\nreturn a\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.(*value.Int); !ok || n.V != 8 {
		t.Fatalf("result = %v, want 8", v)
	}
}

func TestTupleUnpackWithStar(t *testing.T) {
	src := "first, *rest = [1,2,3,4]\nreturn rest\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seq, ok := v.(*value.Seq)
	if !ok || seq.Len() != 3 {
		t.Fatalf("rest = %v, want [2,3,4]", v)
	}
}

func TestRaiseAndCatchUserError(t *testing.T) {
	src := "try:\n  raise 'boom'\nexcept 'UserError':\n  return 'caught'\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := v.(*value.Str); !ok || s.Go() != "caught" {
		t.Fatalf("result = %v, want 'caught'", v)
	}
}

func TestClosureCapturesByShallowSnapshot(t *testing.T) {
	src := "x = 1\ndef f(): return x\nx = 2\nreturn f()\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.(*value.Int); !ok || n.V != 1 {
		t.Fatalf("result = %v, want 1 (closures snapshot at definition time)", v)
	}
}

func TestDefaultArgumentsReevaluatedPerCall(t *testing.T) {
	src := "calls = [0]\ndef counter():\n  calls[0] = calls[0] + 1\n  return calls[0]\ndef f(n=counter()):\n  return n\na = f()\nb = f()\nreturn [a, b]\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seq, ok := v.(*value.Seq)
	if !ok || seq.Len() != 2 {
		t.Fatalf("result = %v, want a 2-element list", v)
	}
	a, _ := seq.Get(0)
	b, _ := seq.Get(1)
	an, _ := a.(*value.Int)
	bn, _ := b.(*value.Int)
	if an == nil || bn == nil || an.V == bn.V {
		t.Fatalf("expected default to be re-evaluated each call, got a=%v b=%v", a, b)
	}
}

func TestMatchMappingPatternWithRest(t *testing.T) {
	src := "match {'a': 1, 'b': 2, 'c': 3}:\n  case {'a': x, **rest}: return [x, rest]\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seq, ok := v.(*value.Seq)
	if !ok || seq.Len() != 2 {
		t.Fatalf("result = %v", v)
	}
	x, _ := seq.Get(0)
	if n, ok := x.(*value.Int); !ok || n.V != 1 {
		t.Fatalf("x = %v, want 1", x)
	}
	rest, _ := seq.Get(1)
	m, ok := rest.(*value.Map)
	if !ok || m.Len() != 2 {
		t.Fatalf("rest = %v, want a 2-entry mapping", rest)
	}
}

func TestMatchGuardFailureKeepsBindings(t *testing.T) {
	// Per spec.md §9: bindings persist across a failed guard. The second
	// case's guard can therefore observe `x` bound by the first case's
	// (failed-guard) match.
	src := "match 5:\n  case x if x > 10:\n    return 'big'\n  case _ if x == 5:\n    return 'matched via leaked binding'\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := v.(*value.Str); !ok || s.Go() != "matched via leaked binding" {
		t.Fatalf("result = %v", v)
	}
}

func TestWhileLoopBreakAndContinue(t *testing.T) {
	src := "i = 0\ntotal = 0\nwhile i < 10:\n  i = i + 1\n  if i % 2 == 0:\n    continue\n  if i > 7:\n    break\n  total = total + i\nreturn total\n"
	v, err := execSrc(t, config.New(), nil, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// odd i in 1..7: 1+3+5+7 = 16
	if n, ok := v.(*value.Int); !ok || n.V != 16 {
		t.Fatalf("result = %v, want 16", v)
	}
}

func TestSliceExpression(t *testing.T) {
	v, err := evalExpr(t, config.New(), nil, "[1,2,3,4,5][1:4]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seq, ok := v.(*value.Seq)
	if !ok || seq.Len() != 3 {
		t.Fatalf("result = %v, want [2,3,4]", v)
	}
}

func TestFStringFormatSpec(t *testing.T) {
	v, err := evalExpr(t, config.New(), nil, "f'{3.14159:.2f}'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := v.(*value.Str)
	if !ok || s.Go() != "3.14" {
		t.Fatalf("result = %v, want '3.14'", v)
	}
}
