package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/operators"
	"github.com/cwbudde/go-saferun/internal/value"
)

// execBlock runs a statement sequence, stopping and surfacing the first
// break/continue/return sentinel a statement produces (SPEC_FULL.md §4.6,
// §9's Outcome sum type).
func (e *Evaluator) execBlock(body []ast.Stmt) (outcome, error) {
	for _, stmt := range body {
		out, err := e.exec(stmt)
		if err != nil {
			return outcome{}, err
		}
		if out.kind != outcomeNormal {
			return out, nil
		}
	}
	return normalOutcome, nil
}

func (e *Evaluator) exec(stmt ast.Stmt) (outcome, error) {
	if err := e.countStatement(stmt); err != nil {
		return outcome{}, err
	}
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := e.evalExpr(s.X)
		return normalOutcome, e.annotate(err, s)
	case *ast.AssignStmt:
		return normalOutcome, e.execAssign(s)
	case *ast.AugAssignStmt:
		return normalOutcome, e.execAugAssign(s)
	case *ast.IfStmt:
		return e.execIf(s)
	case *ast.WhileStmt:
		return e.execWhile(s)
	case *ast.ForStmt:
		return e.execFor(s)
	case *ast.BreakStmt:
		return outcome{kind: outcomeBreak, node: s}, nil
	case *ast.ContinueStmt:
		return outcome{kind: outcomeContinue, node: s}, nil
	case *ast.ReturnStmt:
		return e.execReturn(s)
	case *ast.FunctionDef:
		return normalOutcome, e.execFunctionDef(s)
	case *ast.RaiseStmt:
		return outcome{}, e.execRaise(s)
	case *ast.TryStmt:
		return e.execTry(s)
	case *ast.MatchStmt:
		return e.execMatch(s)
	default:
		return outcome{}, e.annotate(errtrace.Raise(errtrace.KindFeatureNotAvailable, "unsupported statement"), stmt)
	}
}

// execAssign implements simple, subscript, and tuple/list-unpack targets,
// assigning each target left to right for chained assignment (SPEC_FULL.md
// §4.6).
func (e *Evaluator) execAssign(s *ast.AssignStmt) error {
	v, err := e.evalExpr(s.Value)
	if err != nil {
		return e.annotate(err, s.Value)
	}
	for _, t := range s.Targets {
		if err := e.bindTarget(t, v); err != nil {
			return e.annotate(err, t)
		}
	}
	return nil
}

// execAugAssign rewrites `target op= value` to `target = target op value`,
// reusing the operator path so bounds checks apply (SPEC_FULL.md §4.6).
func (e *Evaluator) execAugAssign(s *ast.AugAssignStmt) error {
	cur, err := e.evalExpr(s.Target)
	if err != nil {
		return e.annotate(err, s.Target)
	}
	rhs, err := e.evalExpr(s.Value)
	if err != nil {
		return e.annotate(err, s.Value)
	}
	result, err := e.applyBinaryOp(s.Op, cur, rhs)
	if err != nil {
		return e.annotate(err, s)
	}
	return e.annotate(e.bindTarget(s.Target, result), s.Target)
}

func (e *Evaluator) execIf(s *ast.IfStmt) (outcome, error) {
	test, err := e.evalExpr(s.Test)
	if err != nil {
		return outcome{}, e.annotate(err, s.Test)
	}
	if operators.Truthy(test) {
		return e.execBlock(s.Body)
	}
	return e.execBlock(s.Orelse)
}

// execWhile increments the loop counter once per iteration and runs the
// `else` clause only if the loop finished without a `break`.
func (e *Evaluator) execWhile(s *ast.WhileStmt) (outcome, error) {
	broke := false
	for {
		test, err := e.evalExpr(s.Test)
		if err != nil {
			return outcome{}, e.annotate(err, s.Test)
		}
		if !operators.Truthy(test) {
			break
		}
		if err := e.countLoop(s); err != nil {
			return outcome{}, err
		}
		out, err := e.execBlock(s.Body)
		if err != nil {
			return outcome{}, err
		}
		switch out.kind {
		case outcomeBreak:
			broke = true
		case outcomeContinue:
			continue
		case outcomeReturn:
			return out, nil
		}
		if broke {
			break
		}
	}
	if !broke {
		return e.execBlock(s.Orelse)
	}
	return normalOutcome, nil
}

// execFor evaluates the iterable once, then iterates, binding the target
// (with unpacking) each time (SPEC_FULL.md §4.6).
func (e *Evaluator) execFor(s *ast.ForStmt) (outcome, error) {
	iterable, err := e.evalExpr(s.Iter)
	if err != nil {
		return outcome{}, e.annotate(err, s.Iter)
	}
	items, err := e.iterate(iterable)
	if err != nil {
		return outcome{}, e.annotate(err, s.Iter)
	}
	broke := false
	for _, item := range items {
		if err := e.countLoop(s); err != nil {
			return outcome{}, err
		}
		if err := e.bindTarget(s.Target, item); err != nil {
			return outcome{}, e.annotate(err, s.Target)
		}
		out, err := e.execBlock(s.Body)
		if err != nil {
			return outcome{}, err
		}
		if out.kind == outcomeBreak {
			broke = true
			break
		}
		if out.kind == outcomeReturn {
			return out, nil
		}
		// outcomeContinue and outcomeNormal both fall through to the next item.
	}
	if !broke {
		return e.execBlock(s.Orelse)
	}
	return normalOutcome, nil
}

func (e *Evaluator) execReturn(s *ast.ReturnStmt) (outcome, error) {
	if s.Value == nil {
		return outcome{kind: outcomeReturn, value: value.None, node: s}, nil
	}
	v, err := e.evalExpr(s.Value)
	if err != nil {
		return outcome{}, e.annotate(err, s.Value)
	}
	return outcome{kind: outcomeReturn, value: v, node: s}, nil
}

// execFunctionDef binds a callable record in locals, refusing to shadow a
// builtin (SPEC_FULL.md §4.6).
func (e *Evaluator) execFunctionDef(s *ast.FunctionDef) error {
	if e.env.IsBuiltin(s.Name) {
		return e.annotate(errtrace.Raise(errtrace.KindValueError, "cannot define '%s': already builtin", s.Name), s)
	}
	fn := &value.Function{
		Name:    s.Name,
		Params:  s.Params,
		Body:    s.Body,
		Closure: cloneScope(e.env.Snapshot()),
		Source:  e.source,
	}
	e.env.Define(s.Name, fn)
	return nil
}

// execRaise implements `raise message_expr`, the UserError feature
// supplemented from original_source/draconic (SPEC_FULL.md).
func (e *Evaluator) execRaise(s *ast.RaiseStmt) error {
	if s.Exc == nil {
		return e.annotate(errtrace.Raise(errtrace.KindUserError, "raise requires a message"), s)
	}
	v, err := e.evalExpr(s.Exc)
	if err != nil {
		return e.annotate(err, s.Exc)
	}
	msg, ok := v.(*value.Str)
	if !ok {
		return e.annotate(errtrace.Raise(errtrace.KindValueError, "raise expects a str message"), s.Exc)
	}
	return e.annotate(errtrace.Raise(errtrace.KindUserError, "%s", msg.Go()), s)
}
