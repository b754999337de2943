package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/operators"
	"github.com/cwbudde/go-saferun/internal/value"
)

// execMatch implements `match subject: case pattern [if guard]: body`
// (SPEC_FULL.md §4.6). Bindings a pattern produces are merged into locals
// before its guard runs and are NOT rolled back if the guard fails — an
// explicit, documented leniency carried from spec.md §9.
func (e *Evaluator) execMatch(s *ast.MatchStmt) (outcome, error) {
	subject, err := e.evalExpr(s.Subject)
	if err != nil {
		return outcome{}, e.annotate(err, s.Subject)
	}
	for _, c := range s.Cases {
		bindings, matched, err := e.matchPattern(c.Pattern, subject)
		if err != nil {
			return outcome{}, e.annotate(err, s)
		}
		if !matched {
			continue
		}
		for name, v := range bindings {
			e.env.Define(name, v)
		}
		if c.Guard != nil {
			g, err := e.evalExpr(c.Guard)
			if err != nil {
				return outcome{}, e.annotate(err, c.Guard)
			}
			if !operators.Truthy(g) {
				continue
			}
		}
		return e.execBlock(c.Body)
	}
	return normalOutcome, nil
}

// matchPattern reports whether subject matches p, and if so the bindings it
// produces (SPEC_FULL.md §4.6's per-pattern-kind rules).
func (e *Evaluator) matchPattern(p ast.Pattern, subject value.Value) (map[string]value.Value, bool, error) {
	switch pat := p.(type) {
	case *ast.ValuePattern:
		v, err := e.evalExpr(pat.Value)
		if err != nil {
			return nil, false, err
		}
		eq, ok := v.(value.Equatable)
		if !ok || !eq.Equal(subject) {
			return nil, false, nil
		}
		return nil, true, nil

	case *ast.SingletonPattern:
		switch pat.Kind {
		case "None":
			return nil, value.IsNone(subject), nil
		case "True":
			b, ok := subject.(value.Bool)
			return nil, ok && bool(b), nil
		case "False":
			b, ok := subject.(value.Bool)
			return nil, ok && !bool(b), nil
		}
		return nil, false, nil

	case *ast.SequencePattern:
		return e.matchSequencePattern(pat, subject)

	case *ast.MappingPattern:
		return e.matchMappingPattern(pat, subject)

	case *ast.AsPattern:
		if pat.Inner == nil {
			if pat.Name == "_" {
				return nil, true, nil
			}
			return map[string]value.Value{pat.Name: subject}, true, nil
		}
		bindings, matched, err := e.matchPattern(pat.Inner, subject)
		if err != nil || !matched {
			return nil, matched, err
		}
		if bindings == nil {
			bindings = map[string]value.Value{}
		}
		if err := addBinding(bindings, pat.Name, subject); err != nil {
			return nil, false, err
		}
		return bindings, true, nil

	case *ast.OrPattern:
		for _, alt := range pat.Patterns {
			bindings, matched, err := e.matchPattern(alt, subject)
			if err != nil {
				return nil, false, err
			}
			if matched {
				return bindings, true, nil
			}
		}
		return nil, false, nil

	case *ast.StarPattern:
		// Only valid nested inside a SequencePattern; bare use is a no-op wildcard.
		if pat.Name == "" {
			return nil, true, nil
		}
		return map[string]value.Value{pat.Name: subject}, true, nil

	default:
		return nil, false, errtrace.Raise(errtrace.KindFeatureNotAvailable, "unsupported pattern")
	}
}

func (e *Evaluator) matchSequencePattern(pat *ast.SequencePattern, subject value.Value) (map[string]value.Value, bool, error) {
	var items []value.Value
	switch s := subject.(type) {
	case *value.Seq:
		items = s.Elems()
	case *value.Tuple:
		items = s.Elems
	default:
		return nil, false, nil
	}

	bindings := map[string]value.Value{}
	if pat.StarIndex < 0 {
		if len(items) != len(pat.Patterns) {
			return nil, false, nil
		}
		for i, sub := range pat.Patterns {
			b, matched, err := e.matchPattern(sub, items[i])
			if err != nil || !matched {
				return nil, matched, err
			}
			if err := mergeBindings(bindings, b); err != nil {
				return nil, false, err
			}
		}
		return bindings, true, nil
	}

	before := pat.Patterns[:pat.StarIndex]
	starPat := pat.Patterns[pat.StarIndex].(*ast.StarPattern)
	after := pat.Patterns[pat.StarIndex+1:]
	if len(items) < len(before)+len(after) {
		return nil, false, nil
	}
	for i, sub := range before {
		b, matched, err := e.matchPattern(sub, items[i])
		if err != nil || !matched {
			return nil, matched, err
		}
		if err := mergeBindings(bindings, b); err != nil {
			return nil, false, err
		}
	}
	mid := items[len(before) : len(items)-len(after)]
	if starPat.Name != "" {
		if err := addBinding(bindings, starPat.Name, value.NewSeq(e.cfg, append([]value.Value(nil), mid...))); err != nil {
			return nil, false, err
		}
	}
	for i, sub := range after {
		item := items[len(items)-len(after)+i]
		b, matched, err := e.matchPattern(sub, item)
		if err != nil || !matched {
			return nil, matched, err
		}
		if err := mergeBindings(bindings, b); err != nil {
			return nil, false, err
		}
	}
	return bindings, true, nil
}

func (e *Evaluator) matchMappingPattern(pat *ast.MappingPattern, subject value.Value) (map[string]value.Value, bool, error) {
	m, ok := subject.(*value.Map)
	if !ok {
		return nil, false, nil
	}
	bindings := map[string]value.Value{}
	matchedKeys := map[string]bool{}
	for i, keyExpr := range pat.Keys {
		key, err := e.evalExpr(keyExpr)
		if err != nil {
			return nil, false, err
		}
		v, found := m.Get(key)
		if !found {
			return nil, false, nil
		}
		b, matched, err := e.matchPattern(pat.Patterns[i], v)
		if err != nil || !matched {
			return nil, matched, err
		}
		if err := mergeBindings(bindings, b); err != nil {
			return nil, false, err
		}
		if ks, ok := key.(*value.Str); ok {
			matchedKeys[ks.Go()] = true
		}
	}
	if pat.Rest != "" {
		rest := value.NewMap(e.cfg)
		for _, k := range m.Keys() {
			ks, ok := k.(*value.Str)
			if ok && matchedKeys[ks.Go()] {
				continue
			}
			v, _ := m.Get(k)
			if err := rest.Set(k, v); err != nil {
				return nil, false, err
			}
		}
		if err := addBinding(bindings, pat.Rest, rest); err != nil {
			return nil, false, err
		}
	}
	return bindings, true, nil
}

// mergeBindings folds src into dst, raising ValueError on a duplicate
// capture name across sub-patterns (spec.md §4.6).
func mergeBindings(dst, src map[string]value.Value) error {
	for name, v := range src {
		if err := addBinding(dst, name, v); err != nil {
			return err
		}
	}
	return nil
}

func addBinding(dst map[string]value.Value, name string, v value.Value) error {
	if _, exists := dst[name]; exists {
		return errtrace.Raise(errtrace.KindValueError, "multiple assignments to name '%s' in pattern", name)
	}
	dst[name] = v
	return nil
}
