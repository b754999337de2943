// Package saferun is the embeddable entry point SPEC_FULL.md §6 describes:
// a host constructs one Engine per goroutine, feeds it source text through
// Eval/Execute/ExecuteModule, and optionally exposes Go functions to scripts
// via RegisterFunction.
package saferun

import (
	"io"

	"github.com/cwbudde/go-saferun/internal/config"
	"github.com/cwbudde/go-saferun/internal/environment"
	"github.com/cwbudde/go-saferun/internal/errtrace"
	"github.com/cwbudde/go-saferun/internal/host"
	"github.com/cwbudde/go-saferun/internal/value"
)

// Engine wraps one internal/host.Interpreter behind the public API. Not safe
// for concurrent use from multiple goroutines (SPEC_FULL.md §5).
type Engine struct {
	cfg    *config.Config
	output io.Writer
	extra  map[string]value.Value
	interp *host.Interpreter
}

// Option configures an Engine built by New.
type Option func(*Engine)

// WithOutput sets the io.Writer the script-visible print builtin writes to.
// Defaults to io.Discard.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.output = w }
}

// WithBuiltins seeds additional names into the builtin table, combined with
// the defaults per cfg.BuiltinsExtendDefault.
func WithBuiltins(extra map[string]value.Value) Option {
	return func(e *Engine) {
		for k, v := range extra {
			e.extra[k] = v
		}
	}
}

// New builds an Engine. cfg may be nil, in which case config.New()'s
// defaults apply. builtins seeds the same table WithBuiltins does; both may
// be used together.
func New(cfg *config.Config, builtins map[string]value.Value, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.New()
	}
	e := &Engine{
		cfg:    cfg,
		output: io.Discard,
		extra:  make(map[string]value.Value, len(builtins)),
	}
	for k, v := range builtins {
		e.extra[k] = v
	}
	for _, opt := range opts {
		opt(e)
	}
	e.interp = host.New(e.cfg, e.output, e.extra)
	return e
}

// Eval implements `eval(source)`.
func (e *Engine) Eval(source string) (value.Value, error) {
	return e.interp.Eval(source)
}

// Execute implements `execute(source)`.
func (e *Engine) Execute(source string) (value.Value, error) {
	return e.interp.Execute(source)
}

// ExecuteModule implements `execute_module(source, module_name)`.
func (e *Engine) ExecuteModule(source, moduleName string) (value.Value, error) {
	return e.interp.ExecuteModule(source, moduleName)
}

// Config returns the bound configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Env exposes the live environment, letting a host inspect or seed locals
// between runs (e.g. a REPL echoing bound names).
func (e *Engine) Env() *environment.Environment { return e.interp.Env() }

// RegisterFunction exposes a Go function fn to scripts under name, via
// reflection (SPEC_FULL.md §6). Unlike the teacher's general-purpose FFI,
// parameters and results are limited to the primitive kinds value.Value can
// round-trip (ints, floats, bools, strings); arbitrary host object method
// dispatch is an explicit non-goal. Returns an error describing why fn could
// not be registered rather than panicking, so a host can surface a bad
// registration to its own caller.
func (e *Engine) RegisterFunction(name string, fn any) error {
	wrapped, err := wrapGoFunc(e.cfg, name, fn)
	if err != nil {
		return err
	}
	if _, exists := e.extra[name]; exists {
		return errtrace.New(errtrace.KindValueError, nil, "", "function '%s' is already registered", name)
	}
	e.extra[name] = wrapped
	// Bind directly into the live environment's locals layer rather than
	// rebuilding the Interpreter, so any locals a prior Eval/Execute/
	// ExecuteModule call already bound survive (spec.md's REPL-reuse
	// requirement).
	e.interp.Env().Define(name, wrapped)
	return nil
}
