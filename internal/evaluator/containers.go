package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

// evalElements evaluates a literal's element list left to right, inlining
// any *ast.StarredExpr by iterating its value (SPEC_FULL.md §4.6: "Starred
// subexpressions unwrap iterables inline, each iteration counted against
// max_loops").
func (e *Evaluator) evalElements(elts []ast.Expr) ([]value.Value, error) {
	var out []value.Value
	for _, elt := range elts {
		star, isStar := elt.(*ast.StarredExpr)
		if !isStar {
			v, err := e.evalExpr(elt)
			if err != nil {
				return nil, e.annotate(err, elt)
			}
			out = append(out, v)
			continue
		}
		iterable, err := e.evalExpr(star.Value)
		if err != nil {
			return nil, e.annotate(err, star.Value)
		}
		items, err := e.iterate(iterable)
		if err != nil {
			return nil, e.annotate(err, star)
		}
		for _, it := range items {
			if err := e.countLoop(star); err != nil {
				return nil, err
			}
			out = append(out, it)
		}
	}
	return out, nil
}

func (e *Evaluator) evalListExpr(n *ast.ListExpr) (value.Value, error) {
	elems, err := e.evalElements(n.Elts)
	if err != nil {
		return nil, err
	}
	return value.NewSeq(e.cfg, elems), nil
}

func (e *Evaluator) evalTupleExpr(n *ast.TupleExpr) (value.Value, error) {
	elems, err := e.evalElements(n.Elts)
	if err != nil {
		return nil, err
	}
	return &value.Tuple{Elems: elems}, nil
}

func (e *Evaluator) evalSetExpr(n *ast.SetExpr) (value.Value, error) {
	elems, err := e.evalElements(n.Elts)
	if err != nil {
		return nil, err
	}
	s, err := value.NewSetFrom(e.cfg, elems)
	return s, e.annotate(err, n)
}

// evalDictExpr builds a mapping literal, preserving insertion order. A nil
// Keys[i] marks a `**value` unpack entry (SPEC_FULL.md §4.6).
func (e *Evaluator) evalDictExpr(n *ast.DictExpr) (value.Value, error) {
	m := value.NewMap(e.cfg)
	for i, k := range n.Keys {
		if k == nil {
			src, err := e.evalExpr(n.Values[i])
			if err != nil {
				return nil, e.annotate(err, n.Values[i])
			}
			other, ok := src.(*value.Map)
			if !ok {
				return nil, e.annotate(errtrace.Raise(errtrace.KindValueError, "argument of type '%s' is not a mapping", src.TypeName()), n.Values[i])
			}
			if err := m.Update(other); err != nil {
				return nil, e.annotate(err, n)
			}
			continue
		}
		key, err := e.evalExpr(k)
		if err != nil {
			return nil, e.annotate(err, k)
		}
		val, err := e.evalExpr(n.Values[i])
		if err != nil {
			return nil, e.annotate(err, n.Values[i])
		}
		if err := m.Set(key, val); err != nil {
			return nil, e.annotate(err, n)
		}
	}
	return m, nil
}

// iterate yields the elements of any iterable runtime value (sequence,
// tuple, set, string-by-character, or mapping-by-key), the common
// traversal every for/comprehension/starred-unpack needs.
func (e *Evaluator) iterate(v value.Value) ([]value.Value, error) {
	switch c := v.(type) {
	case *value.Seq:
		return append([]value.Value(nil), c.Elems()...), nil
	case *value.Tuple:
		return append([]value.Value(nil), c.Elems...), nil
	case *value.Set:
		return c.Values(), nil
	case *value.Map:
		return c.Keys(), nil
	case *value.Str:
		runes := []rune(c.Go())
		out := make([]value.Value, len(runes))
		for i, r := range runes {
			out[i] = value.NewStr(e.cfg, string(r))
		}
		return out, nil
	default:
		return nil, errtrace.Raise(errtrace.KindValueError, "'%s' object is not iterable", v.TypeName())
	}
}
