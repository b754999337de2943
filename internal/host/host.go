// Package host implements the embeddable interpreter surface SPEC_FULL.md
// §6 describes: wiring the lexer/parser, the evaluator, and the default
// builtin table together behind three entry points (Eval/Execute/
// ExecuteModule), and rendering a caught traceback or result value to JSON
// for hosts that want structured error reporting.
package host

import (
	"io"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/environment"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/evaluator"
	"github.com/cwbudde/go-saferun/internal/parser"
	"github.com/cwbudde/go-saferun/internal/value"
)

// Interpreter ties one Config, one builtin table, and one evaluator
// together. Not safe for concurrent use from multiple goroutines
// (SPEC_FULL.md §5) — a host wanting concurrency runs one Interpreter per
// goroutine.
type Interpreter struct {
	cfg  *config.Config
	eval *evaluator.Evaluator
}

// New builds an Interpreter. output is where the default print builtin
// writes (SPEC_FULL.md's AMBIENT STACK logging section); extraBuiltins are
// merged over (or, if cfg.BuiltinsExtendDefault is false, replace) the
// default builtin table.
func New(cfg *config.Config, output io.Writer, extraBuiltins map[string]value.Value) *Interpreter {
	builtins := mergeBuiltins(cfg, output, extraBuiltins)
	return &Interpreter{
		cfg:  cfg,
		eval: evaluator.New(cfg, builtins),
	}
}

// Config returns the bound configuration.
func (i *Interpreter) Config() *config.Config { return i.cfg }

// Env exposes the live environment, letting a host inspect or seed locals
// between runs (e.g. a REPL echoing bound names).
func (i *Interpreter) Env() *environment.Environment {
	return i.eval.Env()
}

// parse runs source through internal/lexer + internal/parser, folding the
// first accumulated parse/lexical error into a SyntaxError with no AST node
// (there is none yet) — this is the one boundary in this module where a
// non-safety-critical component (the bundled parser, SPEC_FULL.md §1) hands
// off to the safety-critical one.
func parse(source string) (*parser.Parser, error) {
	p := parser.New(source)
	// Parse errors are only recorded while ParseModule runs, so a throwaway
	// parser collects them before the caller parses with p.
	probe := parser.New(source)
	probe.ParseModule()
	if errs := probe.Errors(); len(errs) > 0 {
		return nil, errtrace.New(errtrace.KindSyntaxError, nil, source, "%s", errs[0].Error())
	}
	return p, nil
}

// Eval implements `eval(source)`: source must be a single expression.
func (i *Interpreter) Eval(source string) (value.Value, error) {
	p, err := parse(source)
	if err != nil {
		return nil, err
	}
	return i.eval.Eval(source, p.ParseModule())
}

// Execute implements `execute(source)`: source runs as a statement
// sequence, returning a top-level return's value or none.
func (i *Interpreter) Execute(source string) (value.Value, error) {
	p, err := parse(source)
	if err != nil {
		return nil, err
	}
	return i.eval.Execute(source, p.ParseModule())
}

// ExecuteModule implements `execute_module(source, module_name)`: counters
// are not reset, and a top-level return is a SyntaxError. moduleName is
// accepted for parity with spec.md §6's signature and for a host's own
// logging; the evaluator itself has no notion of modules, so it plays no
// part in error taxonomy or traceback rendering.
func (i *Interpreter) ExecuteModule(source, moduleName string) (value.Value, error) {
	_ = moduleName
	p, err := parse(source)
	if err != nil {
		return nil, err
	}
	return i.eval.ExecuteModule(source, p.ParseModule())
}
