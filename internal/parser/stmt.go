package parser

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/lexer"
)

var augOps = map[lexer.TokenType]string{
	lexer.PLUSEQ: "+", lexer.MINUSEQ: "-", lexer.STAREQ: "*", lexer.SLASHEQ: "/",
	lexer.DOUBLESLASHEQ: "//", lexer.PERCENTEQ: "%", lexer.AMPEQ: "&", lexer.PIPEEQ: "|",
	lexer.CARETEQ: "^", lexer.LSHIFTEQ: "<<", lexer.RSHIFTEQ: ">>", lexer.DOUBLESTAREQ: "**",
}

// parseStatement parses one statement, simple or compound, returning nil
// for a bare `pass` (which contributes nothing to the tree). On a
// statement-level parse error it records the error and skips to the next
// NEWLINE so the rest of the module can still be parsed and reported.
func (p *Parser) parseStatement() ast.Stmt {
	before := len(p.errors)
	stmt := p.parseStatementInner()
	if len(p.errors) > before {
		p.skipToNewline()
	}
	return stmt
}

func (p *Parser) parseStatementInner() ast.Stmt {
	switch p.cur().Type {
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.DEF:
		return p.parseFunctionDef()
	case lexer.TRY:
		return p.parseTry()
	case lexer.MATCH:
		return p.parseMatch()
	case lexer.PASS:
		p.next()
		p.consumeSimpleTerminator()
		return nil
	case lexer.BREAK:
		start := p.here()
		p.next()
		p.consumeSimpleTerminator()
		return &ast.BreakStmt{Base: ast.NewBase(start, start)}
	case lexer.CONTINUE:
		start := p.here()
		p.next()
		p.consumeSimpleTerminator()
		return &ast.ContinueStmt{Base: ast.NewBase(start, start)}
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.RAISE:
		return p.parseRaise()
	default:
		return p.parseExprOrAssignStatement()
	}
}

// consumeSimpleTerminator consumes a trailing `;` (allowing further simple
// statements on the same logical line, handled by the caller's loop) or the
// statement's NEWLINE.
func (p *Parser) consumeSimpleTerminator() {
	if p.at(lexer.SEMICOLON) {
		p.next()
		return
	}
	if p.at(lexer.NEWLINE) {
		p.next()
	}
}

// parseBlock parses the suite following a `:` — either an indented block on
// following lines, or one or more semicolon-separated simple statements on
// the same line (spec.md's grammar permits both, matching Python).
func (p *Parser) parseBlock() []ast.Stmt {
	p.expect(lexer.COLON)
	if p.at(lexer.NEWLINE) {
		p.next()
		p.expect(lexer.INDENT)
		var body []ast.Stmt
		for !p.at(lexer.DEDENT) && !p.at(lexer.EOF) {
			if p.at(lexer.NEWLINE) {
				p.next()
				continue
			}
			if s := p.parseStatement(); s != nil {
				body = append(body, s)
			}
		}
		p.expect(lexer.DEDENT)
		return body
	}
	var body []ast.Stmt
	for !p.at(lexer.NEWLINE) && !p.at(lexer.EOF) {
		if s := p.parseStatementInner(); s != nil {
			body = append(body, s)
		}
		if p.at(lexer.SEMICOLON) {
			p.next()
		}
	}
	if p.at(lexer.NEWLINE) {
		p.next()
	}
	return body
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.here()
	p.next() // 'if'
	test := p.parseExpr()
	body := p.parseBlock()
	orelse := p.parseElifChain()
	return &ast.IfStmt{Base: ast.NewBase(start, p.lastEnd()), Test: test, Body: body, Orelse: orelse}
}

func (p *Parser) parseElifChain() []ast.Stmt {
	if p.at(lexer.ELIF) {
		start := p.here()
		p.next()
		test := p.parseExpr()
		body := p.parseBlock()
		orelse := p.parseElifChain()
		return []ast.Stmt{&ast.IfStmt{Base: ast.NewBase(start, p.lastEnd()), Test: test, Body: body, Orelse: orelse}}
	}
	if p.at(lexer.ELSE) {
		p.next()
		return p.parseBlock()
	}
	return nil
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.here()
	p.next()
	test := p.parseExpr()
	body := p.parseBlock()
	var orelse []ast.Stmt
	if p.at(lexer.ELSE) {
		p.next()
		orelse = p.parseBlock()
	}
	return &ast.WhileStmt{Base: ast.NewBase(start, p.lastEnd()), Test: test, Body: body, Orelse: orelse}
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.here()
	p.next()
	target := p.parseTargetList()
	p.expect(lexer.IN)
	iter := p.parseExpr()
	body := p.parseBlock()
	var orelse []ast.Stmt
	if p.at(lexer.ELSE) {
		p.next()
		orelse = p.parseBlock()
	}
	return &ast.ForStmt{Base: ast.NewBase(start, p.lastEnd()), Target: target, Iter: iter, Body: body, Orelse: orelse}
}

func (p *Parser) parseFunctionDef() ast.Stmt {
	start := p.here()
	p.next() // 'def'
	name := p.expect(lexer.IDENT).Literal
	p.expect(lexer.LPAREN)
	params := p.parseParamList(lexer.RPAREN)
	p.expect(lexer.RPAREN)
	if p.at(lexer.ARROW) {
		p.next()
		p.parseExpr() // return-type annotation, accepted and discarded
	}
	body := p.parseBlock()
	return &ast.FunctionDef{Base: ast.NewBase(start, p.lastEnd()), Name: name, Params: params, Body: body}
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.here()
	p.next()
	var value ast.Expr
	if !p.at(lexer.NEWLINE) && !p.at(lexer.SEMICOLON) && !p.at(lexer.EOF) && !p.at(lexer.DEDENT) {
		value = p.parseReturnValue()
	}
	p.consumeSimpleTerminator()
	return &ast.ReturnStmt{Base: ast.NewBase(start, p.lastEnd()), Value: value}
}

// parseReturnValue parses `expr[, expr...]`, building a TupleExpr for the
// multi-value `return a, b` shape.
func (p *Parser) parseReturnValue() ast.Expr {
	start := p.here()
	first := p.parseExpr()
	if !p.at(lexer.COMMA) {
		return first
	}
	elts := []ast.Expr{first}
	for p.at(lexer.COMMA) {
		p.next()
		if p.at(lexer.NEWLINE) || p.at(lexer.SEMICOLON) {
			break
		}
		elts = append(elts, p.parseExpr())
	}
	return &ast.TupleExpr{Base: ast.NewBase(start, p.lastEnd()), Elts: elts}
}

func (p *Parser) parseRaise() ast.Stmt {
	start := p.here()
	p.next()
	var exc ast.Expr
	if !p.at(lexer.NEWLINE) && !p.at(lexer.SEMICOLON) && !p.at(lexer.EOF) {
		exc = p.parseExpr()
	}
	p.consumeSimpleTerminator()
	return &ast.RaiseStmt{Base: ast.NewBase(start, p.lastEnd()), Exc: exc}
}

func (p *Parser) parseTry() ast.Stmt {
	start := p.here()
	p.next()
	body := p.parseBlock()
	var handlers []ast.ExceptHandler
	for p.at(lexer.EXCEPT) {
		hStart := p.here()
		p.next()
		var typ ast.Expr
		if !p.at(lexer.COLON) {
			typ = p.parseExceptType()
		}
		hBody := p.parseBlock()
		handlers = append(handlers, ast.ExceptHandler{Base: ast.NewBase(hStart, p.lastEnd()), Type: typ, Body: hBody})
	}
	var orelse, finally []ast.Stmt
	if p.at(lexer.ELSE) {
		p.next()
		orelse = p.parseBlock()
	}
	if p.at(lexer.FINALLY) {
		p.next()
		finally = p.parseBlock()
	}
	return &ast.TryStmt{Base: ast.NewBase(start, p.lastEnd()), Body: body, Handlers: handlers, Orelse: orelse, Finally: finally}
}

// parseExceptType parses an `except <type>[, <type>...]:` clause's type
// expression, a bare string-literal name or a parenthesized tuple of them
// per spec.md §4.6.
func (p *Parser) parseExceptType() ast.Expr {
	return p.parseExpr()
}

func (p *Parser) parseExprOrAssignStatement() ast.Stmt {
	start := p.here()
	first := p.parseTestOrStarred()

	if op, ok := augOps[p.cur().Type]; ok {
		p.next()
		value := p.parseExpr()
		p.consumeSimpleTerminator()
		return &ast.AugAssignStmt{Base: ast.NewBase(start, p.lastEnd()), Target: first, Op: op, Value: value}
	}

	if p.at(lexer.ASSIGN) {
		targets := []ast.Expr{first}
		var value ast.Expr
		for p.at(lexer.ASSIGN) {
			p.next()
			next := p.parseTestListTarget()
			targets = append(targets, next)
		}
		value = targets[len(targets)-1]
		targets = targets[:len(targets)-1]
		p.consumeSimpleTerminator()
		return &ast.AssignStmt{Base: ast.NewBase(start, p.lastEnd()), Targets: targets, Value: value}
	}

	expr := p.finishExprStatement(first)
	p.consumeSimpleTerminator()
	return &ast.ExprStmt{Base: ast.NewBase(start, p.lastEnd()), X: expr}
}

// parseTestListTarget parses one element of a chained-assignment's
// right-hand sequence, which may itself be a bare tuple (`a = b, c = 1, 2`
// is not valid Python, but `a = 1, 2` assigning a tuple is).
func (p *Parser) parseTestListTarget() ast.Expr {
	start := p.here()
	first := p.parseTestOrStarred()
	if !p.at(lexer.COMMA) {
		return first
	}
	elts := []ast.Expr{first}
	for p.at(lexer.COMMA) {
		p.next()
		if p.at(lexer.NEWLINE) || p.at(lexer.SEMICOLON) || p.at(lexer.ASSIGN) || p.at(lexer.EOF) {
			break
		}
		elts = append(elts, p.parseTestOrStarred())
	}
	return &ast.TupleExpr{Base: ast.NewBase(start, p.lastEnd()), Elts: elts}
}

// finishExprStatement handles a bare expression statement that turns out to
// be a bare tuple, e.g. `1, 2` as its own statement (rare but legal).
func (p *Parser) finishExprStatement(first ast.Expr) ast.Expr {
	if !p.at(lexer.COMMA) {
		return first
	}
	start := first.Span().Start
	elts := []ast.Expr{first}
	for p.at(lexer.COMMA) {
		p.next()
		if p.at(lexer.NEWLINE) || p.at(lexer.SEMICOLON) || p.at(lexer.EOF) {
			break
		}
		elts = append(elts, p.parseTestOrStarred())
	}
	return &ast.TupleExpr{Base: ast.NewBase(start, p.lastEnd()), Elts: elts}
}
