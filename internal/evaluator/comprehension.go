package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/operators"
	"github.com/cwbudde/go-saferun/internal/value"
)

func (e *Evaluator) evalListComp(n *ast.ListComp) (value.Value, error) {
	seq := value.NewSeq(e.cfg, nil)
	err := e.runComprehension(n.Generators, n, func() error {
		v, err := e.evalExpr(n.Element)
		if err != nil {
			return e.annotate(err, n.Element)
		}
		return e.annotate(seq.Append(v), n)
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}

func (e *Evaluator) evalSetComp(n *ast.SetComp) (value.Value, error) {
	set := value.NewSet(e.cfg)
	err := e.runComprehension(n.Generators, n, func() error {
		v, err := e.evalExpr(n.Element)
		if err != nil {
			return e.annotate(err, n.Element)
		}
		return e.annotate(set.Add(v), n)
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// evalGeneratorExp has no lazy-generator runtime in this sandbox (an
// unbounded generator would defeat the loop-counter ceiling), so a
// generator expression is eagerly materialized into a Seq exactly like a
// list comprehension (SPEC_FULL.md's Non-goals exclude true laziness).
func (e *Evaluator) evalGeneratorExp(n *ast.GeneratorExp) (value.Value, error) {
	seq := value.NewSeq(e.cfg, nil)
	err := e.runComprehension(n.Generators, n, func() error {
		v, err := e.evalExpr(n.Element)
		if err != nil {
			return e.annotate(err, n.Element)
		}
		return e.annotate(seq.Append(v), n)
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}

func (e *Evaluator) evalDictComp(n *ast.DictComp) (value.Value, error) {
	m := value.NewMap(e.cfg)
	err := e.runComprehension(n.Generators, n, func() error {
		k, err := e.evalExpr(n.Key)
		if err != nil {
			return e.annotate(err, n.Key)
		}
		v, err := e.evalExpr(n.Value)
		if err != nil {
			return e.annotate(err, n.Value)
		}
		return e.annotate(m.Set(k, v), n)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// runComprehension composes nested generator clauses by recursion on
// generator index (SPEC_FULL.md §4.6). Before iterating, it snapshots any
// existing locals binding for every target name the generators introduce,
// and restores (or removes) them once the comprehension finishes — success
// or error — so the iteration variables never leak into the enclosing
// scope.
func (e *Evaluator) runComprehension(gens []ast.Comprehension, node ast.Node, emit func() error) error {
	names := map[string]bool{}
	for _, g := range gens {
		collectTargetNames(g.Target, names)
	}
	locals := e.env.Locals()
	saved := make(map[string]value.Value, len(names))
	existed := make(map[string]bool, len(names))
	for name := range names {
		if v, ok := locals[name]; ok {
			saved[name] = v
			existed[name] = true
		}
	}
	defer func() {
		locals := e.env.Locals()
		for name := range names {
			if existed[name] {
				locals[name] = saved[name]
			} else {
				delete(locals, name)
			}
		}
	}()
	return e.recurseGenerators(gens, 0, node, emit)
}

func (e *Evaluator) recurseGenerators(gens []ast.Comprehension, idx int, node ast.Node, emit func() error) error {
	if idx == len(gens) {
		return emit()
	}
	gen := gens[idx]
	iterable, err := e.evalExpr(gen.Iter)
	if err != nil {
		return e.annotate(err, gen.Iter)
	}
	items, err := e.iterate(iterable)
	if err != nil {
		return e.annotate(err, gen.Iter)
	}
	for _, item := range items {
		if err := e.countLoop(node); err != nil {
			return err
		}
		if err := e.bindTarget(gen.Target, item); err != nil {
			return e.annotate(err, gen.Target)
		}
		pass := true
		for _, cond := range gen.Ifs {
			v, err := e.evalExpr(cond)
			if err != nil {
				return e.annotate(err, cond)
			}
			if !operators.Truthy(v) {
				pass = false
				break
			}
		}
		if !pass {
			continue
		}
		if err := e.recurseGenerators(gens, idx+1, node, emit); err != nil {
			return err
		}
	}
	return nil
}

// collectTargetNames walks a (possibly tuple/list/starred) assignment
// target and records every bare name it binds.
func collectTargetNames(target ast.Expr, out map[string]bool) {
	switch t := target.(type) {
	case *ast.Ident:
		out[t.Name] = true
	case *ast.TupleExpr:
		for _, el := range t.Elts {
			collectTargetNames(el, out)
		}
	case *ast.ListExpr:
		for _, el := range t.Elts {
			collectTargetNames(el, out)
		}
	case *ast.StarredExpr:
		collectTargetNames(t.Value, out)
	}
}
