// Package environment implements the interpreter's two-layer name scope
// (spec.md §3's "Environment"): an immutable builtins layer and a mutable
// locals layer. This mirrors the structural shape of the teacher repo's
// runtime.Environment (case-insensitive nested scope chain), simplified to
// the two-layer model spec.md specifies: no lexical outer-scope chain,
// since function calls install a fresh locals layer from the callee's
// captured environment snapshot rather than nesting scopes.
package environment

import "github.com/cwbudde/go-saferun/internal/value"

// Environment is the per-interpreter name scope.
type Environment struct {
	builtins map[string]value.Value
	locals   map[string]value.Value
}

// New builds a fresh Environment over the given (immutable) builtins table.
func New(builtins map[string]value.Value) *Environment {
	return &Environment{
		builtins: builtins,
		locals:   make(map[string]value.Value),
	}
}

// Get resolves name, checking locals first then builtins (spec.md §3:
// "reads check locals first, then builtins, otherwise raise NotDefined").
func (e *Environment) Get(name string) (value.Value, bool) {
	if v, ok := e.locals[name]; ok {
		return v, true
	}
	v, ok := e.builtins[name]
	return v, ok
}

// IsBuiltin reports whether name is bound in the builtins layer — used to
// refuse shadowing assignments (spec.md §3/§4.6).
func (e *Environment) IsBuiltin(name string) bool {
	_, ok := e.builtins[name]
	return ok
}

// Define binds name in locals, creating or overwriting it. Callers must
// have already checked IsBuiltin if shadow-prevention is required (spec.md
// §4.6: "Simple name: refuse if name is a builtin; else bind in locals").
func (e *Environment) Define(name string, v value.Value) {
	e.locals[name] = v
}

// Locals returns the mutable locals map directly, for snapshotting a
// closure at function-definition time (a shallow copy, per SPEC_FULL.md's
// Design Note on closures) and for restoring a saved frame after a call.
func (e *Environment) Locals() map[string]value.Value {
	return e.locals
}

// SetLocals replaces the locals layer wholesale — used by the function call
// protocol to install/restore frames (spec.md §4.6 steps 2 and 5).
func (e *Environment) SetLocals(locals map[string]value.Value) {
	e.locals = locals
}

// Snapshot returns a shallow copy of the current locals map, suitable for
// capturing a closure.
func (e *Environment) Snapshot() map[string]value.Value {
	cp := make(map[string]value.Value, len(e.locals))
	for k, v := range e.locals {
		cp[k] = v
	}
	return cp
}

// Builtins exposes the builtins table read-only, for introspection
// builtins like `dir()` (not required by spec.md, omitted from the default
// builtin set, but convenient for a host extending it).
func (e *Environment) Builtins() map[string]value.Value {
	return e.builtins
}
