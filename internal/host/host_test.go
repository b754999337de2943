package host

import (
	"bytes"
	"io"
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

func TestEvalExpression(t *testing.T) {
	i := New(config.New(), io.Discard, nil)
	v, err := i.Eval("1 + 2 * 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(*value.Int)
	if !ok || n.V != 7 {
		t.Fatalf("want Int(7), got %#v", v)
	}
}

func TestEvalRejectsStatement(t *testing.T) {
	i := New(config.New(), io.Discard, nil)
	_, err := i.Eval("x = 1")
	wantErrKind(t, err, errtrace.KindSyntaxError)
}

func TestExecuteReturnsTopLevelReturn(t *testing.T) {
	i := New(config.New(), io.Discard, nil)
	v, err := i.Execute("return 1 + 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.(*value.Int)
	if !ok || n.V != 2 {
		t.Fatalf("want Int(2), got %#v", v)
	}
}

func TestExecuteModuleRejectsTopLevelReturn(t *testing.T) {
	i := New(config.New(), io.Discard, nil)
	_, err := i.ExecuteModule("return 1", "mod")
	wantErrKind(t, err, errtrace.KindSyntaxError)
}

func TestExecuteModulePreservesCountersAcrossCalls(t *testing.T) {
	// Each "name = literal" module visits two nodes (the statement and its
	// value), so two runs fit under 4 and the third crosses it.
	cfg := config.New(config.WithMaxStatements(4))
	i := New(cfg, io.Discard, nil)
	if _, err := i.ExecuteModule("x = 1", "mod"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := i.ExecuteModule("y = 2", "mod"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := i.ExecuteModule("z = 3", "mod")
	wantErrKind(t, err, errtrace.KindTooManyStatements)
}

func TestPrintBuiltinWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	i := New(config.New(), &buf, nil)
	if _, err := i.Execute(`print("hello", 1)`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "hello 1\n" {
		t.Fatalf("want %q, got %q", "hello 1\n", got)
	}
}

func TestDefaultBuiltinsConstructors(t *testing.T) {
	i := New(config.New(), io.Discard, nil)
	cases := map[string]string{
		"int('42')":    "42",
		"float('3.5')": "3.5",
		"bool([])":     "False",
		"bool([1])":    "True",
		"str(5)":       "5",
		"len([1,2,3])": "3",
		"len('hello')": "5",
	}
	for src, want := range cases {
		v, err := i.Eval(src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", src, err)
		}
		if got := v.String(); got != want {
			t.Fatalf("%s: want %q, got %q", src, want, got)
		}
	}
}

func TestBuiltinsExtendDefaultFalseReplacesTable(t *testing.T) {
	cfg := config.New(config.WithBuiltinsExtendDefault(false))
	extra := map[string]value.Value{
		"only": value.NewInt(9),
	}
	i := New(cfg, io.Discard, extra)
	if v, err := i.Eval("only"); err != nil || v.(*value.Int).V != 9 {
		t.Fatalf("want Int(9), got %#v, err=%v", v, err)
	}
	_, err := i.Eval("len([1])")
	wantErrKind(t, err, errtrace.KindNotDefined)
}

func TestValueToJSONScalarsAndContainers(t *testing.T) {
	i := New(config.New(), io.Discard, nil)
	v, err := i.Eval(`[1, "two", 3.0, True, None]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := ValueToJSON(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `[1,"two",3,true,null]`
	if doc != want {
		t.Fatalf("want %s, got %s", want, doc)
	}
}

func TestValueToJSONStringKeyedMap(t *testing.T) {
	i := New(config.New(), io.Discard, nil)
	v, err := i.Eval(`{"a": 1, "b": 2}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := ValueToJSON(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if JSONPath(doc, "a").Int() != 1 || JSONPath(doc, "b").Int() != 2 {
		t.Fatalf("unexpected JSON document: %s", doc)
	}
}

func TestTracebackToJSONCarriesKindAndMessage(t *testing.T) {
	i := New(config.New(), io.Discard, nil)
	_, err := i.Execute("1 / 0")
	te, ok := err.(*errtrace.Error)
	if !ok {
		t.Fatalf("expected *errtrace.Error, got %T", err)
	}
	doc, jerr := TracebackToJSON(te)
	if jerr != nil {
		t.Fatalf("unexpected error: %v", jerr)
	}
	if JSONPath(doc, "kind").String() != "ZeroDivisionError" {
		t.Fatalf("unexpected kind in %s", doc)
	}
}
