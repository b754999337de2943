// Package evaluator implements the tree-walking evaluator described by
// SPEC_FULL.md §4.5/§4.6: expression evaluation, statement execution,
// control flow, user-function calls, pattern matching, and try/except, all
// running under the three per-run counters (statements, loops, call depth)
// that make a script's resource use bounded.
package evaluator

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/environment"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/value"
)

// Evaluator walks a parsed tree against one Environment under one Config.
// Not safe for concurrent use from multiple goroutines (SPEC_FULL.md §5) —
// callers wanting concurrency run one Evaluator per goroutine.
type Evaluator struct {
	cfg *config.Config
	env *environment.Environment

	source string

	stmtsExecuted int
	loopsExecuted int
	callDepth     int

	// funcStack names the user function currently executing, innermost
	// last, used to tag an escaping error with "in which function"
	// (SPEC_FULL.md §4.2/§4.6 step 4).
	funcStack []string
}

// New builds an Evaluator over cfg and an Environment seeded with builtins.
func New(cfg *config.Config, builtins map[string]value.Value) *Evaluator {
	return &Evaluator{
		cfg: cfg,
		env: environment.New(builtins),
	}
}

// Config returns the bound configuration, used by container-returning
// helpers that need to build further Seq/Set/Map values under the same
// ceilings.
func (e *Evaluator) Config() *config.Config { return e.cfg }

// Env exposes the live environment, used by pkg/saferun and internal/host
// to inspect/seed locals between runs.
func (e *Evaluator) Env() *environment.Environment { return e.env }

// resetCounters zeroes the three per-run counters (SPEC_FULL.md §3:
// "Reset on each top-level eval/execute (but not by execute_module...)").
func (e *Evaluator) resetCounters() {
	e.stmtsExecuted = 0
	e.loopsExecuted = 0
	e.callDepth = 0
}

// Eval implements the `eval(source)` entry point: source is one expression,
// counters reset, result returned directly. A bare return/break/continue
// escaping is a SyntaxError.
func (e *Evaluator) Eval(source string, mod *ast.Module) (value.Value, error) {
	e.resetCounters()
	e.source = source
	if len(mod.Body) == 0 {
		return value.None, nil
	}
	stmt := mod.Body[0]
	exprStmt, ok := stmt.(*ast.ExprStmt)
	if !ok {
		return nil, e.annotate(errtrace.Raise(errtrace.KindSyntaxError, "eval() expects a single expression"), stmt)
	}
	return e.evalExprTop(exprStmt.X)
}

// Execute implements the `execute(source)` entry point: run as statements,
// counters reset, returning a top-level return's value or none.
func (e *Evaluator) Execute(source string, mod *ast.Module) (value.Value, error) {
	e.resetCounters()
	e.source = source
	return e.runTop(mod.Body)
}

// ExecuteModule implements `execute_module(source, module_name)`: counters
// are NOT reset, so a module can be reentered inside an already-running host
// session without resetting its statement/loop/recursion budget (spec.md §3:
// "Reset on each top-level eval/execute (but not by execute_module...)").
// Unlike Execute, a top-level `return` here is a SyntaxError — a module body
// runs for its side effects (definitions bound into locals), not for a
// result.
func (e *Evaluator) ExecuteModule(source string, mod *ast.Module) (value.Value, error) {
	e.source = source
	out, err := e.execBlock(mod.Body)
	if err != nil {
		return nil, err
	}
	switch out.kind {
	case outcomeReturn, outcomeBreak, outcomeContinue:
		return nil, e.annotate(errtrace.Raise(errtrace.KindSyntaxError, "'%s' outside loop", out.kind.keyword()), out.node)
	default:
		return value.None, nil
	}
}

// runTop executes body as a statement sequence, surfacing a top-level
// return's value or none; break/continue escaping to the top is a
// SyntaxError (SPEC_FULL.md §4.6: "Function bodies that surface a
// break/continue sentinel raise a syntax error").
func (e *Evaluator) runTop(body []ast.Stmt) (value.Value, error) {
	out, err := e.execBlock(body)
	if err != nil {
		return nil, err
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

// evalExprTop evaluates a single top-level expression for Eval, wrapping
// any Postponed error with the expression's own node.
func (e *Evaluator) evalExprTop(x ast.Expr) (value.Value, error) {
	v, err := e.evalExpr(x)
	if err != nil {
		return nil, e.annotate(err, x)
	}
	return v, nil
}

// annotate converts a Postponed error into a fully-formed *errtrace.Error
// attached to node, tagging it with the innermost function frame if one is
// active. A non-Postponed *errtrace.Error (already annotated deeper in the
// call tree) passes through unchanged. Any other error reaching here can
// only have come from a host callable (GoFunc/BoundMethod), so it is wrapped
// as KindAnnotated per SPEC_FULL.md §4.2 ("any non-library exception raised
// by a host callable, wrapped with the syntax-tree node in effect when it
// propagated").
func (e *Evaluator) annotate(err error, node ast.Node) error {
	if err == nil {
		return nil
	}
	if p, ok := err.(*errtrace.Postponed); ok {
		built := errtrace.New(p.Kind, node, e.source, "%s", p.Message)
		if len(e.funcStack) > 0 {
			built = built.WithFunc(e.funcStack[len(e.funcStack)-1])
		}
		return built
	}
	if _, ok := err.(*errtrace.Error); ok {
		return err
	}
	built := errtrace.New(errtrace.KindAnnotated, node, e.source, "%s", err.Error())
	if len(e.funcStack) > 0 {
		built = built.WithFunc(e.funcStack[len(e.funcStack)-1])
	}
	return built
}

// countStatement increments the per-run statement counter, raising
// TooManyStatements (a Limit error, uncatchable) once the ceiling is
// crossed (SPEC_FULL.md §4.1/§8).
func (e *Evaluator) countStatement(node ast.Node) error {
	e.stmtsExecuted++
	if e.stmtsExecuted > e.cfg.MaxStatements {
		return e.annotate(errtrace.Raise(errtrace.KindTooManyStatements, "Too many statements executed"), node)
	}
	return nil
}

// countLoop increments the per-run loop-iteration counter (covers for,
// while, comprehension generators, and starred unpacking per SPEC_FULL.md
// §4.1). The taxonomy has no separate "too many loops" kind, so a breach is
// reported as TooManyStatements with a loop-specific message.
func (e *Evaluator) countLoop(node ast.Node) error {
	e.loopsExecuted++
	if e.loopsExecuted > e.cfg.MaxLoops {
		return e.annotate(errtrace.Raise(errtrace.KindTooManyStatements, "Too many loop iterations"), node)
	}
	return nil
}
