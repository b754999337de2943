package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/operators"
	"github.com/cwbudde/go-saferun/internal/value"
)

// evalExpr dispatches on node kind (SPEC_FULL.md §4.5). Every visit counts
// against max_statements, mirroring the reference's "every node visit"
// accounting (§2).
func (e *Evaluator) evalExpr(node ast.Expr) (value.Value, error) {
	if err := e.countStatement(node); err != nil {
		return nil, err
	}
	switch n := node.(type) {
	case *ast.NumberLit:
		return e.evalNumberLit(n)
	case *ast.StringLit:
		return value.NewStr(e.cfg, n.Value), nil
	case *ast.BoolLit:
		return value.Bool(n.Value), nil
	case *ast.NoneLit:
		return value.None, nil
	case *ast.Ident:
		return e.evalIdent(n)
	case *ast.UnaryExpr:
		return e.evalUnary(n)
	case *ast.BinaryExpr:
		return e.evalBinary(n)
	case *ast.BoolOpExpr:
		return e.evalBoolOp(n)
	case *ast.CompareExpr:
		return e.evalCompare(n)
	case *ast.IfExpr:
		return e.evalIfExpr(n)
	case *ast.CallExpr:
		return e.evalCall(n)
	case *ast.AttributeExpr:
		return e.evalAttribute(n)
	case *ast.SubscriptExpr:
		return e.evalSubscript(n)
	case *ast.ListExpr:
		return e.evalListExpr(n)
	case *ast.SetExpr:
		return e.evalSetExpr(n)
	case *ast.TupleExpr:
		return e.evalTupleExpr(n)
	case *ast.DictExpr:
		return e.evalDictExpr(n)
	case *ast.ListComp:
		return e.evalListComp(n)
	case *ast.SetComp:
		return e.evalSetComp(n)
	case *ast.GeneratorExp:
		return e.evalGeneratorExp(n)
	case *ast.DictComp:
		return e.evalDictComp(n)
	case *ast.FString:
		return e.evalFString(n)
	case *ast.LambdaExpr:
		return &value.Lambda{Params: n.Params, Body: n.Body, Closure: cloneScope(e.env.Snapshot()), Source: e.source}, nil
	case *ast.NamedExpr:
		return e.evalNamedExpr(n)
	case *ast.StarredExpr:
		return nil, errtrace.Raise(errtrace.KindFeatureNotAvailable, "starred expression not allowed here")
	case *ast.DoubleStarredExpr:
		return nil, errtrace.Raise(errtrace.KindFeatureNotAvailable, "double-starred expression not allowed here")
	default:
		return nil, errtrace.Raise(errtrace.KindFeatureNotAvailable, "unsupported expression node")
	}
}

func (e *Evaluator) evalNumberLit(n *ast.NumberLit) (value.Value, error) {
	if n.IsFloat {
		return value.NewFloat(n.Float), nil
	}
	if !e.cfg.IntInRange(n.Int) {
		return nil, errtrace.Raise(errtrace.KindNumberTooHigh, "int too large")
	}
	return value.NewInt(n.Int), nil
}

func (e *Evaluator) evalIdent(n *ast.Ident) (value.Value, error) {
	v, ok := e.env.Get(n.Name)
	if !ok {
		return nil, errtrace.Raise(errtrace.KindNotDefined, "name '%s' is not defined", n.Name)
	}
	return v, nil
}

func (e *Evaluator) evalUnary(n *ast.UnaryExpr) (value.Value, error) {
	x, err := e.evalExpr(n.X)
	if err != nil {
		return nil, e.annotate(err, n.X)
	}
	switch n.Op {
	case "-":
		v, err := operators.Neg(e.cfg, x)
		return v, e.annotate(err, n)
	case "+":
		v, err := operators.Pos(x)
		return v, e.annotate(err, n)
	case "not":
		return value.Bool(!operators.Truthy(x)), nil
	case "~":
		v, err := operators.BitNot(e.cfg, x)
		return v, e.annotate(err, n)
	default:
		return nil, e.annotate(errtrace.Raise(errtrace.KindFeatureNotAvailable, "unknown unary operator %q", n.Op), n)
	}
}

func (e *Evaluator) evalBinary(n *ast.BinaryExpr) (value.Value, error) {
	left, err := e.evalExpr(n.Left)
	if err != nil {
		return nil, e.annotate(err, n.Left)
	}
	right, err := e.evalExpr(n.Right)
	if err != nil {
		return nil, e.annotate(err, n.Right)
	}
	v, err := e.applyBinaryOp(n.Op, left, right)
	return v, e.annotate(err, n)
}

func (e *Evaluator) applyBinaryOp(op string, left, right value.Value) (value.Value, error) {
	switch op {
	case "+":
		return operators.Add(e.cfg, left, right)
	case "-":
		return operators.Sub(e.cfg, left, right)
	case "*":
		return operators.Mul(e.cfg, left, right)
	case "/":
		return operators.Div(left, right)
	case "//":
		return operators.FloorDiv(e.cfg, left, right)
	case "%":
		return operators.Mod(e.cfg, left, right)
	case "**":
		return operators.Pow(e.cfg, left, right)
	case "&":
		return operators.BitAnd(e.cfg, left, right)
	case "|":
		return operators.BitOr(e.cfg, left, right)
	case "^":
		return operators.BitXor(e.cfg, left, right)
	case "<<":
		return operators.Lshift(e.cfg, left, right)
	case ">>":
		return operators.Rshift(e.cfg, left, right)
	default:
		return nil, errtrace.Raise(errtrace.KindFeatureNotAvailable, "unknown binary operator %q", op)
	}
}

// evalBoolOp implements `and`/`or` short-circuit: the only place this logic
// lives, since operators.Truthy alone has no access to lazy sub-expression
// evaluation (SPEC_FULL.md §4.4/§9).
func (e *Evaluator) evalBoolOp(n *ast.BoolOpExpr) (value.Value, error) {
	var last value.Value
	for i, sub := range n.Values {
		v, err := e.evalExpr(sub)
		if err != nil {
			return nil, e.annotate(err, sub)
		}
		last = v
		truthy := operators.Truthy(v)
		if n.Op == "and" && !truthy {
			return v, nil
		}
		if n.Op == "or" && truthy {
			return v, nil
		}
		_ = i
	}
	return last, nil
}

// evalCompare implements chained comparison with short-circuit: each
// comparator is evaluated exactly once, and the chain stops at the first
// false link (SPEC_FULL.md §4.4).
func (e *Evaluator) evalCompare(n *ast.CompareExpr) (value.Value, error) {
	left, err := e.evalExpr(n.Left)
	if err != nil {
		return nil, e.annotate(err, n.Left)
	}
	for i, op := range n.Ops {
		right, err := e.evalExpr(n.Comparators[i])
		if err != nil {
			return nil, e.annotate(err, n.Comparators[i])
		}
		ok, err := operators.Compare(op, left, right)
		if err != nil {
			return nil, e.annotate(err, n)
		}
		if !ok {
			return value.Bool(false), nil
		}
		left = right
	}
	return value.Bool(true), nil
}

func (e *Evaluator) evalIfExpr(n *ast.IfExpr) (value.Value, error) {
	test, err := e.evalExpr(n.Test)
	if err != nil {
		return nil, e.annotate(err, n.Test)
	}
	if operators.Truthy(test) {
		return e.evalExpr(n.Body)
	}
	return e.evalExpr(n.Orelse)
}

func (e *Evaluator) evalNamedExpr(n *ast.NamedExpr) (value.Value, error) {
	v, err := e.evalExpr(n.Value)
	if err != nil {
		return nil, e.annotate(err, n.Value)
	}
	if e.env.IsBuiltin(n.Target.Name) {
		return nil, e.annotate(errtrace.Raise(errtrace.KindValueError, "cannot assign to '%s': already builtin", n.Target.Name), n)
	}
	e.env.Define(n.Target.Name, v)
	return v, nil
}
