package evaluator

import "github.com/cwbudde/go-saferun/internal/value"

// mapScope adapts a plain map to value.Scope, letting a Function/Lambda
// carry its captured environment snapshot (SPEC_FULL.md §3/§9's
// shallow-snapshot closure) without the value package importing
// internal/environment.
type mapScope map[string]value.Value

func (m mapScope) Get(name string) (value.Value, bool) {
	v, ok := m[name]
	return v, ok
}

// cloneScope wraps a snapshot map (already a fresh shallow copy from
// Environment.Snapshot) as a value.Scope.
func cloneScope(snapshot map[string]value.Value) value.Scope {
	return mapScope(snapshot)
}
