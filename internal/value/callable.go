package value

import (
	"fmt"

	"github.com/cwbudde/go-saferun/internal/ast"
)

// Scope is the minimal read interface a closure snapshot needs; satisfied
// structurally by internal/environment.Environment without value importing
// that package (which itself imports value for its storage type).
type Scope interface {
	Get(name string) (Value, bool)
}

// Function is a user-defined, named callable (spec.md §3's "Callables").
// Closure is a shallow snapshot of the environment at definition time — see
// SPEC_FULL.md's Design Note on closures: later rebinding of an outer
// variable is deliberately not visible inside the function.
type Function struct {
	Name    string
	Params  *ast.Params
	Body    []ast.Stmt
	Closure Scope
	Source  string
}

func (*Function) TypeName() string { return "function" }
func (f *Function) String() string { return fmt.Sprintf("<function %s>", f.Name) }
func (*Function) ApproxLen() int   { return 1 }

// Lambda is an anonymous callable whose body is a single expression.
type Lambda struct {
	Params  *ast.Params
	Body    ast.Expr
	Closure Scope
	Source  string
}

func (*Lambda) TypeName() string { return "function" }
func (*Lambda) String() string   { return "<lambda>" }
func (*Lambda) ApproxLen() int   { return 1 }

// GoFunc wraps a host-supplied Go function registered as a builtin
// (pkg/saferun.Engine.RegisterFunction). Call receives already-converted
// Values and returns a Value or an error.
type GoFunc struct {
	Name string
	Call func(args []Value) (Value, error)
}

func (f *GoFunc) TypeName() string { return "builtin_function" }
func (f *GoFunc) String() string   { return fmt.Sprintf("<built-in function %s>", f.Name) }
func (*GoFunc) ApproxLen() int     { return 1 }

// BoundMethod binds a receiver to a container method (e.g. `mylist.append`)
// so it can be passed around and called like any other callable.
type BoundMethod struct {
	Receiver Value
	Name     string
	Call     func(args []Value) (Value, error)
}

func (b *BoundMethod) TypeName() string { return "method" }
func (b *BoundMethod) String() string {
	return fmt.Sprintf("<bound method %s of %s>", b.Name, b.Receiver.TypeName())
}
func (*BoundMethod) ApproxLen() int { return 1 }
