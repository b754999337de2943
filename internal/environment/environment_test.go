package environment

import (
	"testing"

	"github.com/cwbudde/go-saferun/internal/value"
)

func TestGetChecksLocalsBeforeBuiltins(t *testing.T) {
	builtins := map[string]value.Value{"x": value.NewInt(1)}
	env := New(builtins)
	env.Define("x", value.NewInt(2))

	v, ok := env.Get("x")
	if !ok || v.(*value.Int).V != 2 {
		t.Fatalf("expected locals to shadow builtins, got %v", v)
	}
}

func TestGetFallsBackToBuiltins(t *testing.T) {
	builtins := map[string]value.Value{"len": &value.GoFunc{Name: "len"}}
	env := New(builtins)

	_, ok := env.Get("len")
	if !ok {
		t.Fatal("expected builtin to resolve")
	}
	_, ok = env.Get("missing")
	if ok {
		t.Fatal("expected missing name to not resolve")
	}
}

func TestIsBuiltin(t *testing.T) {
	env := New(map[string]value.Value{"len": &value.GoFunc{Name: "len"}})
	if !env.IsBuiltin("len") {
		t.Fatal("expected len to be a builtin")
	}
	if env.IsBuiltin("x") {
		t.Fatal("expected x to not be a builtin")
	}
}

func TestSnapshotIsIndependentOfLaterMutation(t *testing.T) {
	env := New(nil)
	env.Define("x", value.NewInt(1))
	snap := env.Snapshot()

	env.Define("x", value.NewInt(2))

	if snap["x"].(*value.Int).V != 1 {
		t.Fatal("snapshot should not observe later rebinding, per closure semantics")
	}
}

func TestSetLocalsInstallsFrame(t *testing.T) {
	env := New(nil)
	env.Define("outer", value.NewInt(1))
	saved := env.Locals()

	env.SetLocals(map[string]value.Value{"param": value.NewInt(42)})
	v, ok := env.Get("param")
	if !ok || v.(*value.Int).V != 42 {
		t.Fatal("expected frame's param to resolve")
	}
	if _, ok := env.Get("outer"); ok {
		t.Fatal("expected outer to not leak into the new frame")
	}

	env.SetLocals(saved)
	if _, ok := env.Get("outer"); !ok {
		t.Fatal("expected restoring the saved frame to bring outer back")
	}
}
