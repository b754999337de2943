package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

// callArgs is a CallExpr's already-evaluated argument list, positional and
// keyword args kept separate the way the five-step call protocol
// (SPEC_FULL.md §4.6) needs them.
type callArgs struct {
	positional []value.Value
	keywords   map[string]value.Value
	kwOrder    []string
}

// evalCallArgs evaluates a call's argument list left to right, inlining
// `*args` (iterating the unpacked value) and `**kwargs` (merging a mapping)
// exactly where they appear (SPEC_FULL.md §4.6).
func (e *Evaluator) evalCallArgs(n *ast.CallExpr) (*callArgs, error) {
	out := &callArgs{keywords: map[string]value.Value{}}
	for _, a := range n.Args {
		if star, ok := a.(*ast.StarredExpr); ok {
			v, err := e.evalExpr(star.Value)
			if err != nil {
				return nil, e.annotate(err, star.Value)
			}
			items, err := e.iterate(v)
			if err != nil {
				return nil, e.annotate(err, star)
			}
			out.positional = append(out.positional, items...)
			continue
		}
		v, err := e.evalExpr(a)
		if err != nil {
			return nil, e.annotate(err, a)
		}
		out.positional = append(out.positional, v)
	}
	for _, kw := range n.Keywords {
		if kw.Name == "" {
			v, err := e.evalExpr(kw.Value)
			if err != nil {
				return nil, e.annotate(err, kw.Value)
			}
			m, ok := v.(*value.Map)
			if !ok {
				return nil, e.annotate(errtrace.Raise(errtrace.KindValueError, "argument after ** must be a mapping"), n)
			}
			for _, k := range m.Keys() {
				ks, ok := k.(*value.Str)
				if !ok {
					return nil, e.annotate(errtrace.Raise(errtrace.KindValueError, "keywords must be strings"), n)
				}
				val, _ := m.Get(k)
				if _, exists := out.keywords[ks.Go()]; !exists {
					out.kwOrder = append(out.kwOrder, ks.Go())
				}
				out.keywords[ks.Go()] = val
			}
			continue
		}
		v, err := e.evalExpr(kw.Value)
		if err != nil {
			return nil, e.annotate(err, kw.Value)
		}
		if _, exists := out.keywords[kw.Name]; !exists {
			out.kwOrder = append(out.kwOrder, kw.Name)
		}
		out.keywords[kw.Name] = v
	}
	return out, nil
}

func (e *Evaluator) evalCall(n *ast.CallExpr) (value.Value, error) {
	callee, err := e.evalExpr(n.Func)
	if err != nil {
		return nil, e.annotate(err, n.Func)
	}
	args, err := e.evalCallArgs(n)
	if err != nil {
		return nil, err
	}
	v, err := e.call(callee, args, n)
	return v, e.annotate(err, n)
}

// call dispatches to the callee's own invocation protocol.
func (e *Evaluator) call(callee value.Value, args *callArgs, node ast.Node) (value.Value, error) {
	switch fn := callee.(type) {
	case *value.Function:
		return e.callUserFunction(fn, args, node)
	case *value.Lambda:
		return e.callLambda(fn, args, node)
	case *value.GoFunc:
		if len(args.keywords) != 0 {
			return nil, errtrace.Raise(errtrace.KindFeatureNotAvailable, "keyword arguments are not supported for this function")
		}
		return fn.Call(args.positional)
	case *value.BoundMethod:
		if len(args.keywords) != 0 {
			return nil, errtrace.Raise(errtrace.KindFeatureNotAvailable, "keyword arguments are not supported for this method")
		}
		return fn.Call(args.positional)
	default:
		return nil, errtrace.Raise(errtrace.KindFeatureNotAvailable, "'%s' object is not callable", callee.TypeName())
	}
}

// enterCall implements the recursion-depth accounting shared by user
// function and lambda calls: step 1 of the call protocol (SPEC_FULL.md
// §4.6). The returned func performs step 5's guaranteed cleanup.
func (e *Evaluator) enterCall(name string, savedSnapshot map[string]value.Value) (func(), error) {
	e.callDepth++
	if e.callDepth > e.cfg.MaxRecursionDepth {
		e.callDepth--
		return nil, errtrace.Raise(errtrace.KindTooMuchRecursion, "maximum recursion depth exceeded")
	}
	e.funcStack = append(e.funcStack, name)
	return func() {
		e.env.SetLocals(savedSnapshot)
		e.funcStack = e.funcStack[:len(e.funcStack)-1]
		e.callDepth--
	}, nil
}

// callUserFunction implements the five-step call protocol for a
// *value.Function.
func (e *Evaluator) callUserFunction(fn *value.Function, args *callArgs, node ast.Node) (value.Value, error) {
	savedLocals := e.env.Locals()
	cleanup, err := e.enterCall(fn.Name, savedLocals)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	closureCopy := make(map[string]value.Value)
	for k, v := range closureMapOf(fn.Closure) {
		closureCopy[k] = v
	}
	e.env.SetLocals(closureCopy)

	if err := e.bindParams(fn.Params, args); err != nil {
		return nil, err
	}

	out, err := e.execBlock(fn.Body)
	if err != nil {
		return nil, errorInFunc(err, fn.Name)
	}
	switch out.kind {
	case outcomeReturn:
		return out.value, nil
	case outcomeBreak, outcomeContinue:
		return nil, e.annotate(errtrace.Raise(errtrace.KindSyntaxError, "'%s' outside loop", out.kind.keyword()), out.node)
	default:
		return value.None, nil
	}
}

// callLambda is callUserFunction's single-expression-body counterpart.
func (e *Evaluator) callLambda(fn *value.Lambda, args *callArgs, node ast.Node) (value.Value, error) {
	savedLocals := e.env.Locals()
	cleanup, err := e.enterCall("<lambda>", savedLocals)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	closureCopy := make(map[string]value.Value)
	for k, v := range closureMapOf(fn.Closure) {
		closureCopy[k] = v
	}
	e.env.SetLocals(closureCopy)

	if err := e.bindParams(fn.Params, args); err != nil {
		return nil, err
	}
	v, err := e.evalExpr(fn.Body)
	if err != nil {
		return nil, errorInFunc(err, "<lambda>")
	}
	return v, nil
}

// errorInFunc tags an already-annotated *errtrace.Error with the function
// frame it is unwinding through, building a Nested wrapper when the error
// is crossing its first call boundary.
func errorInFunc(err error, name string) error {
	te, ok := err.(*errtrace.Error)
	if !ok {
		return err
	}
	if te.InFunc == "" {
		return te.WithFunc(name)
	}
	return errtrace.Wrap(te, te.Node, te.Source)
}

// closureMapOf extracts the raw snapshot map back out of a value.Scope,
// since every Scope this evaluator ever constructs is a mapScope.
func closureMapOf(s value.Scope) map[string]value.Value {
	if m, ok := s.(mapScope); ok {
		return m
	}
	return map[string]value.Value{}
}

// bindParams implements call-protocol step 3: position-only, then
// positional-or-keyword (detecting multi-bind), then keyword-only, then
// vararg, then kwarg (SPEC_FULL.md §4.6).
func (e *Evaluator) bindParams(params *ast.Params, args *callArgs) error {
	pos := args.positional
	usedKw := map[string]bool{}

	bindPositional := func(name string, def ast.Expr) error {
		if len(pos) > 0 {
			e.env.Define(name, pos[0])
			pos = pos[1:]
			return nil
		}
		if v, ok := args.keywords[name]; ok {
			usedKw[name] = true
			e.env.Define(name, v)
			return nil
		}
		if def != nil {
			v, err := e.evalExpr(def)
			if err != nil {
				return e.annotate(err, def)
			}
			e.env.Define(name, v)
			return nil
		}
		return errtrace.Raise(errtrace.KindValueError, "missing required argument: '%s'", name)
	}

	for _, p := range params.PosOnly {
		if len(pos) > 0 {
			e.env.Define(p.Name, pos[0])
			pos = pos[1:]
			continue
		}
		if p.Default != nil {
			v, err := e.evalExpr(p.Default)
			if err != nil {
				return e.annotate(err, p.Default)
			}
			e.env.Define(p.Name, v)
			continue
		}
		return errtrace.Raise(errtrace.KindValueError, "missing required argument: '%s'", p.Name)
	}
	for _, p := range params.PosOrKw {
		if len(pos) > 0 {
			if _, ok := args.keywords[p.Name]; ok {
				return errtrace.Raise(errtrace.KindValueError, "multiple values for argument '%s'", p.Name)
			}
			e.env.Define(p.Name, pos[0])
			pos = pos[1:]
			continue
		}
		if err := bindPositional(p.Name, p.Default); err != nil {
			return err
		}
	}
	if params.Vararg != nil {
		if err := e.checkVarargGrow(len(pos)); err != nil {
			return err
		}
		e.env.Define(params.Vararg.Name, value.NewSeq(e.cfg, append([]value.Value(nil), pos...)))
		pos = nil
	} else if len(pos) > 0 {
		return errtrace.Raise(errtrace.KindValueError, "too many positional arguments")
	}
	for _, p := range params.KwOnly {
		if v, ok := args.keywords[p.Name]; ok {
			usedKw[p.Name] = true
			e.env.Define(p.Name, v)
			continue
		}
		if p.Default != nil {
			v, err := e.evalExpr(p.Default)
			if err != nil {
				return e.annotate(err, p.Default)
			}
			e.env.Define(p.Name, v)
			continue
		}
		return errtrace.Raise(errtrace.KindValueError, "missing required keyword-only argument: '%s'", p.Name)
	}
	if params.Kwarg != nil {
		m := value.NewMap(e.cfg)
		for _, name := range args.kwOrder {
			if usedKw[name] {
				continue
			}
			if err := m.Set(value.NewStr(e.cfg, name), args.keywords[name]); err != nil {
				return err
			}
		}
		e.env.Define(params.Kwarg.Name, m)
		return nil
	}
	for name := range args.keywords {
		if !usedKw[name] {
			return errtrace.Raise(errtrace.KindValueError, "unexpected keyword argument '%s'", name)
		}
	}
	return nil
}

func (e *Evaluator) checkVarargGrow(n int) error {
	if n > e.cfg.MaxConstLen {
		return errtrace.Raise(errtrace.KindIterableTooLong, "too many positional arguments")
	}
	return nil
}
