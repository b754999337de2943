package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

// evalSubscript implements `value[index]`, including slice construction
// when Index is a *ast.SliceExpr (SPEC_FULL.md §4.5).
func (e *Evaluator) evalSubscript(n *ast.SubscriptExpr) (value.Value, error) {
	container, err := e.evalExpr(n.Value)
	if err != nil {
		return nil, e.annotate(err, n.Value)
	}
	if sl, ok := n.Index.(*ast.SliceExpr); ok {
		return e.evalSlice(container, sl, n)
	}
	key, err := e.evalExpr(n.Index)
	if err != nil {
		return nil, e.annotate(err, n.Index)
	}
	v, err := e.subscriptGet(container, key)
	return v, e.annotate(err, n)
}

func (e *Evaluator) subscriptGet(container, key value.Value) (value.Value, error) {
	switch c := container.(type) {
	case *value.Seq:
		idx, ok := value.AsInt64(key)
		if !ok {
			return nil, errtrace.Raise(errtrace.KindValueError, "list indices must be integers")
		}
		v, ok := c.Get(resolveIndex(int(idx), c.Len()))
		if !ok {
			return nil, errtrace.Raise(errtrace.KindValueError, "list index out of range")
		}
		return v, nil
	case *value.Tuple:
		idx, ok := value.AsInt64(key)
		if !ok {
			return nil, errtrace.Raise(errtrace.KindValueError, "tuple indices must be integers")
		}
		i := resolveIndex(int(idx), len(c.Elems))
		if i < 0 || i >= len(c.Elems) {
			return nil, errtrace.Raise(errtrace.KindValueError, "tuple index out of range")
		}
		return c.Elems[i], nil
	case *value.Str:
		idx, ok := value.AsInt64(key)
		if !ok {
			return nil, errtrace.Raise(errtrace.KindValueError, "string indices must be integers")
		}
		runes := []rune(c.Go())
		i := resolveIndex(int(idx), len(runes))
		if i < 0 || i >= len(runes) {
			return nil, errtrace.Raise(errtrace.KindValueError, "string index out of range")
		}
		return value.NewStr(e.cfg, string(runes[i])), nil
	case *value.Map:
		v, ok := c.Get(key)
		if !ok {
			return nil, errtrace.Raise(errtrace.KindValueError, "%s", key.String())
		}
		return v, nil
	default:
		return nil, errtrace.Raise(errtrace.KindFeatureNotAvailable, "'%s' object is not subscriptable", container.TypeName())
	}
}

// evalSlice evaluates a `lower:upper:step` subscript against a sequence,
// tuple, or string container, building the runtime *value.Slice only as an
// intermediate (per spec.md §3) before applying it.
func (e *Evaluator) evalSlice(container value.Value, sl *ast.SliceExpr, node ast.Node) (value.Value, error) {
	lower, upper, step, err := e.evalSliceParts(sl)
	if err != nil {
		return nil, e.annotate(err, node)
	}
	length, err := e.sliceableLen(container)
	if err != nil {
		return nil, e.annotate(err, node)
	}
	start, stop, strideStep := normalizeSlice(lower, upper, step, length)
	indices := sliceIndices(start, stop, strideStep)
	switch c := container.(type) {
	case *value.Seq:
		elems := make([]value.Value, 0, len(indices))
		for _, i := range indices {
			v, _ := c.Get(i)
			elems = append(elems, v)
		}
		return value.NewSeq(e.cfg, elems), nil
	case *value.Tuple:
		elems := make([]value.Value, 0, len(indices))
		for _, i := range indices {
			elems = append(elems, c.Elems[i])
		}
		return &value.Tuple{Elems: elems}, nil
	case *value.Str:
		runes := []rune(c.Go())
		out := make([]rune, 0, len(indices))
		for _, i := range indices {
			out = append(out, runes[i])
		}
		return value.NewStr(e.cfg, string(out)), nil
	default:
		return nil, e.annotate(errtrace.Raise(errtrace.KindFeatureNotAvailable, "'%s' object is not sliceable", container.TypeName()), node)
	}
}

func (e *Evaluator) sliceableLen(v value.Value) (int, error) {
	switch c := v.(type) {
	case *value.Seq:
		return c.Len(), nil
	case *value.Tuple:
		return len(c.Elems), nil
	case *value.Str:
		return len([]rune(c.Go())), nil
	default:
		return 0, errtrace.Raise(errtrace.KindFeatureNotAvailable, "'%s' object is not sliceable", v.TypeName())
	}
}

// evalSliceParts evaluates the slice's optional bounds, returning each as
// (value, present).
func (e *Evaluator) evalSliceParts(sl *ast.SliceExpr) (lower, upper, step *int64, err error) {
	get := func(x ast.Expr) (*int64, error) {
		if x == nil {
			return nil, nil
		}
		v, err := e.evalExpr(x)
		if err != nil {
			return nil, err
		}
		if value.IsNone(v) {
			return nil, nil
		}
		n, ok := value.AsInt64(v)
		if !ok {
			return nil, errtrace.Raise(errtrace.KindValueError, "slice indices must be integers or None")
		}
		return &n, nil
	}
	if lower, err = get(sl.Lower); err != nil {
		return
	}
	if upper, err = get(sl.Upper); err != nil {
		return
	}
	if step, err = get(sl.Step); err != nil {
		return
	}
	return
}

// normalizeSlice applies Python's slice-bound normalization rules for a
// container of the given length.
func normalizeSlice(lower, upper, step *int64, length int) (start, stop, strideStep int) {
	strideStep = 1
	if step != nil {
		strideStep = int(*step)
	}
	if strideStep == 0 {
		strideStep = 1
	}
	if strideStep > 0 {
		start = 0
		stop = length
	} else {
		start = length - 1
		stop = -1
	}
	if lower != nil {
		start = clampIndex(int(*lower), length, strideStep > 0)
	}
	if upper != nil {
		stop = clampIndex(int(*upper), length, strideStep > 0)
	}
	return
}

func clampIndex(i, length int, forward bool) int {
	if i < 0 {
		i += length
		if i < 0 {
			if forward {
				return 0
			}
			return -1
		}
	}
	if forward && i > length {
		return length
	}
	if !forward && i >= length {
		return length - 1
	}
	return i
}

func sliceIndices(start, stop, step int) []int {
	var out []int
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return out
}
