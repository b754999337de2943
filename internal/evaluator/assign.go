package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

// bindTarget assigns v into target, covering every target shape
// SPEC_FULL.md §4.6 documents: a bare name, a subscript (assign-through), or
// a tuple/list destructure with at most one starred sub-target. Attribute
// targets are always refused.
func (e *Evaluator) bindTarget(target ast.Expr, v value.Value) error {
	switch t := target.(type) {
	case *ast.Ident:
		return e.bindNameValue(t.Name, v)
	case *ast.TupleExpr:
		return e.unpackInto(t.Elts, v, target)
	case *ast.ListExpr:
		return e.unpackInto(t.Elts, v, target)
	case *ast.SubscriptExpr:
		return e.assignSubscript(t, v)
	case *ast.AttributeExpr:
		return errtrace.Raise(errtrace.KindFeatureNotAvailable, "assignment to attributes is not allowed")
	default:
		return errtrace.Raise(errtrace.KindFeatureNotAvailable, "invalid assignment target")
	}
}

// bindNameValue is the simple-name assignment path (SPEC_FULL.md
// §4.6: "refuse if name is a builtin; else bind in locals").
func (e *Evaluator) bindNameValue(name string, v value.Value) error {
	if e.env.IsBuiltin(name) {
		return errtrace.Raise(errtrace.KindValueError, "cannot assign to '%s': already builtin", name)
	}
	e.env.Define(name, v)
	return nil
}

// unpackInto distributes v's elements across elts, honoring at most one
// starred sub-target (SPEC_FULL.md §4.6).
func (e *Evaluator) unpackInto(elts []ast.Expr, v value.Value, node ast.Node) error {
	items, err := e.iterate(v)
	if err != nil {
		return err
	}
	starAt := -1
	for i, el := range elts {
		if _, ok := el.(*ast.StarredExpr); ok {
			if starAt >= 0 {
				return errtrace.Raise(errtrace.KindValueError, "multiple starred expressions in assignment")
			}
			starAt = i
		}
	}
	if starAt < 0 {
		if len(items) != len(elts) {
			return errtrace.Raise(errtrace.KindValueError, "expected %d values to unpack, got %d", len(elts), len(items))
		}
		for i, el := range elts {
			if err := e.bindTarget(el, items[i]); err != nil {
				return err
			}
		}
		return nil
	}
	before := starAt
	after := len(elts) - starAt - 1
	if len(items) < before+after {
		return errtrace.Raise(errtrace.KindValueError, "expected at least %d values to unpack, got %d", before+after, len(items))
	}
	for i := 0; i < before; i++ {
		if err := e.bindTarget(elts[i], items[i]); err != nil {
			return err
		}
	}
	mid := items[before : len(items)-after]
	starTarget := elts[starAt].(*ast.StarredExpr).Value
	if err := e.bindTarget(starTarget, value.NewSeq(e.cfg, append([]value.Value(nil), mid...))); err != nil {
		return err
	}
	for i := 0; i < after; i++ {
		if err := e.bindTarget(elts[starAt+1+i], items[len(items)-after+i]); err != nil {
			return err
		}
	}
	return nil
}

// assignSubscript evaluates the container and key once, then assigns
// through (mutates in place): sequence[i] = v, mapping[k] = v.
func (e *Evaluator) assignSubscript(t *ast.SubscriptExpr, v value.Value) error {
	container, err := e.evalExpr(t.Value)
	if err != nil {
		return e.annotate(err, t.Value)
	}
	if sl, ok := t.Index.(*ast.SliceExpr); ok {
		_ = sl
		return errtrace.Raise(errtrace.KindFeatureNotAvailable, "slice assignment is not allowed")
	}
	key, err := e.evalExpr(t.Index)
	if err != nil {
		return e.annotate(err, t.Index)
	}
	switch c := container.(type) {
	case *value.Seq:
		idx, ok := value.AsInt64(key)
		if !ok {
			return errtrace.Raise(errtrace.KindValueError, "list indices must be integers")
		}
		i := resolveIndex(int(idx), c.Len())
		if !c.Set(i, v) {
			return errtrace.Raise(errtrace.KindValueError, "list assignment index out of range")
		}
		return nil
	case *value.Map:
		return c.Set(key, v)
	default:
		return errtrace.Raise(errtrace.KindFeatureNotAvailable, "'%s' object does not support item assignment", container.TypeName())
	}
}

// resolveIndex turns a possibly-negative Python-style index into a
// zero-based Go index against a container of the given length.
func resolveIndex(i, length int) int {
	if i < 0 {
		return i + length
	}
	return i
}
