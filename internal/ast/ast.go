package ast

// Node is implemented by every expression and statement node.
type Node interface {
	Span() Span
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Base embeds the source span shared by every concrete node, so each node
// type only has to declare its own fields. Exported so the parser package
// (outside ast) can populate it directly in a struct literal.
type Base struct {
	span Span
}

// Span returns the node's source extent.
func (b Base) Span() Span { return b.span }

// NewBase builds the embeddable span holder; used by the parser when
// constructing nodes.
func NewBase(start, end Position) Base {
	return Base{span: Span{Start: start, End: end}}
}

// Module is the root of a parsed program: a flat statement list plus the
// original source text, kept for traceback rendering.
type Module struct {
	Base
	Body   []Stmt
	Source string
}

// NewModule builds a *Module with the given span.
func NewModule(body []Stmt, source string, start, end Position) *Module {
	return &Module{Base: NewBase(start, end), Body: body, Source: source}
}
