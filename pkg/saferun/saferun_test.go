package saferun

import (
	"bytes"
	"testing"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

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

func TestEngineEvalAndExecute(t *testing.T) {
	e := New(nil, nil)
	v, err := e.Eval("2 ** 10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "1024" {
		t.Fatalf("want 1024, got %s", v.String())
	}

	v, err = e.Execute("x = 1\nx = x + 1\nreturn x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "2" {
		t.Fatalf("want 2, got %s", v.String())
	}
}

func TestEngineLocalsSurviveAcrossCalls(t *testing.T) {
	e := New(nil, nil)
	if _, err := e.ExecuteModule("counter = 0", "mod"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.ExecuteModule("counter = counter + 1", "mod"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := e.Env().Get("counter")
	if !ok || v.String() != "1" {
		t.Fatalf("want counter == 1, got %#v, ok=%v", v, ok)
	}
}

func TestWithOutputCapturesPrint(t *testing.T) {
	var buf bytes.Buffer
	e := New(nil, nil, WithOutput(&buf))
	if _, err := e.Execute(`print("hi")`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "hi\n" {
		t.Fatalf("want %q, got %q", "hi\n", buf.String())
	}
}

func TestRegisterFunctionCallableFromScript(t *testing.T) {
	e := New(nil, nil)
	if err := e.RegisterFunction("Double", func(n int64) int64 { return n * 2 }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := e.Eval("Double(21)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "42" {
		t.Fatalf("want 42, got %s", v.String())
	}
}

func TestRegisterFunctionRejectsNonFunction(t *testing.T) {
	e := New(nil, nil)
	if err := e.RegisterFunction("NotAFunc", "oops"); err == nil {
		t.Fatalf("expected error for non-function value")
	}
}

func TestRegisterFunctionRejectsDuplicate(t *testing.T) {
	e := New(nil, nil)
	if err := e.RegisterFunction("F", func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.RegisterFunction("F", func() {}); err == nil {
		t.Fatalf("expected error for duplicate registration")
	}
}

func TestRegisterFunctionPropagatesGoError(t *testing.T) {
	e := New(nil, nil)
	boom := errtrace.New(errtrace.KindUserError, nil, "", "boom")
	err := e.RegisterFunction("Fail", func() error { return boom })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = e.Execute("Fail()")
	wantErrKind(t, err, errtrace.KindUserError)
}

func TestWithBuiltinsSeedsExtraNames(t *testing.T) {
	extra := map[string]value.Value{"ANSWER": value.NewInt(42)}
	e := New(config.New(), nil, WithBuiltins(extra))
	v, err := e.Eval("ANSWER")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "42" {
		t.Fatalf("want 42, got %s", v.String())
	}
}
