// Package parser builds an internal/ast tree from an internal/lexer token
// stream via recursive descent with precedence climbing for expressions,
// following the teacher repo's internal/parser shape: a single Parser
// struct holding a token cursor, one error slice accumulated across the
// whole parse rather than panicking on the first bad token, and parse*
// methods named after the grammar production they implement.
package parser

import (
	"fmt"

	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/lexer"
)

// Error is a single parse failure with its source position.
type Error struct {
	Message string
	Line    int
	Column  int
}

func (e Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser consumes a pre-scanned token slice and builds an *ast.Module.
type Parser struct {
	toks   []lexer.Token
	pos    int
	source string
	errors []Error
}

// New builds a Parser over source, scanning it with internal/lexer first.
// Lexical errors are folded into the parser's own error list so callers
// have one place to check.
func New(source string) *Parser {
	lx := lexer.New(source)
	toks := lx.Scan()
	p := &Parser{toks: toks, source: source}
	for _, e := range lx.Errors() {
		p.errors = append(p.errors, Error{Message: e.Message, Line: e.Line, Column: e.Column})
	}
	return p
}

// Errors returns every parse (and folded-in lexical) error encountered.
func (p *Parser) Errors() []Error { return p.errors }

// ParseModule parses the entire token stream into an *ast.Module. Parsing
// continues past a statement-level error (appending it to Errors) by
// skipping to the next NEWLINE, so a single typo doesn't hide the rest of
// the script's problems — callers should still treat any non-empty
// Errors() as an overall SyntaxError.
func (p *Parser) ParseModule() *ast.Module {
	start := p.here()
	var body []ast.Stmt
	for !p.at(lexer.EOF) {
		if p.at(lexer.NEWLINE) {
			p.next()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
	}
	end := p.here()
	return ast.NewModule(body, p.source, start, end)
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[i]
}

func (p *Parser) at(t lexer.TokenType) bool { return p.cur().Type == t }

func (p *Parser) next() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) here() ast.Position {
	c := p.cur()
	return ast.Position{Line: c.Line, Column: c.Column}
}

func (p *Parser) errorf(format string, args ...any) {
	c := p.cur()
	p.errors = append(p.errors, Error{Message: fmt.Sprintf(format, args...), Line: c.Line, Column: c.Column})
}

// expect consumes the current token if it matches t, else records an error
// and returns the zero Token without advancing (so the caller's subsequent
// parsing attempts still make forward progress off of whatever is there).
func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if p.at(t) {
		return p.next()
	}
	p.errorf("expected %v, got %v %q", t, p.cur().Type, p.cur().Literal)
	return lexer.Token{}
}

// skipToNewline recovers from a statement-level parse error by discarding
// tokens through the next NEWLINE (or EOF), so one bad line doesn't corrupt
// the rest of the module's parse.
func (p *Parser) skipToNewline() {
	for !p.at(lexer.NEWLINE) && !p.at(lexer.EOF) {
		p.next()
	}
	if p.at(lexer.NEWLINE) {
		p.next()
	}
}
