package parser

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/lexer"
)

func endOf(e ast.Expr) ast.Position { return e.Span().End }

// parseExpr is the top-level expression production: lambda, the ternary
// `body if test else orelse`, or a plain or_test chain.
func (p *Parser) parseExpr() ast.Expr {
	if p.at(lexer.LAMBDA) {
		return p.parseLambda()
	}
	start := p.here()
	body := p.parseOrTest()
	if p.at(lexer.IF) {
		p.next()
		test := p.parseOrTest()
		p.expect(lexer.ELSE)
		orelse := p.parseExpr()
		return &ast.IfExpr{Base: ast.NewBase(start, endOf(orelse)), Test: test, Body: body, Orelse: orelse}
	}
	return body
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.here()
	p.next() // 'lambda'
	params := p.parseParamList(lexer.COLON)
	p.expect(lexer.COLON)
	body := p.parseExpr()
	return &ast.LambdaExpr{Base: ast.NewBase(start, endOf(body)), Params: params, Body: body}
}

func (p *Parser) parseOrTest() ast.Expr {
	start := p.here()
	first := p.parseAndTest()
	if !p.at(lexer.OR) {
		return first
	}
	values := []ast.Expr{first}
	for p.at(lexer.OR) {
		p.next()
		values = append(values, p.parseAndTest())
	}
	return &ast.BoolOpExpr{Base: ast.NewBase(start, endOf(values[len(values)-1])), Op: "or", Values: values}
}

func (p *Parser) parseAndTest() ast.Expr {
	start := p.here()
	first := p.parseNotTest()
	if !p.at(lexer.AND) {
		return first
	}
	values := []ast.Expr{first}
	for p.at(lexer.AND) {
		p.next()
		values = append(values, p.parseNotTest())
	}
	return &ast.BoolOpExpr{Base: ast.NewBase(start, endOf(values[len(values)-1])), Op: "and", Values: values}
}

func (p *Parser) parseNotTest() ast.Expr {
	if p.at(lexer.NOT) {
		start := p.here()
		p.next()
		x := p.parseNotTest()
		return &ast.UnaryExpr{Base: ast.NewBase(start, endOf(x)), Op: "not", X: x}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Expr {
	start := p.here()
	left := p.parseBitOr()
	var ops []string
	var comparators []ast.Expr
	for {
		op, ok := p.tryCompareOp()
		if !ok {
			break
		}
		ops = append(ops, op)
		comparators = append(comparators, p.parseBitOr())
	}
	if len(ops) == 0 {
		return left
	}
	return &ast.CompareExpr{
		Base:        ast.NewBase(start, endOf(comparators[len(comparators)-1])),
		Left:        left,
		Ops:         ops,
		Comparators: comparators,
	}
}

func (p *Parser) tryCompareOp() (string, bool) {
	switch p.cur().Type {
	case lexer.LT:
		p.next()
		return "<", true
	case lexer.LE:
		p.next()
		return "<=", true
	case lexer.GT:
		p.next()
		return ">", true
	case lexer.GE:
		p.next()
		return ">=", true
	case lexer.EQ:
		p.next()
		return "==", true
	case lexer.NE:
		p.next()
		return "!=", true
	case lexer.IN:
		p.next()
		return "in", true
	case lexer.NOT:
		if p.peek(1).Type == lexer.IN {
			p.next()
			p.next()
			return "not in", true
		}
		return "", false
	case lexer.IS:
		p.next()
		if p.at(lexer.NOT) {
			p.next()
			return "is not", true
		}
		return "is", true
	}
	return "", false
}

func (p *Parser) parseBinaryLevel(next func() ast.Expr, ops map[lexer.TokenType]string) ast.Expr {
	start := p.here()
	left := next()
	for {
		opStr, ok := ops[p.cur().Type]
		if !ok {
			break
		}
		p.next()
		right := next()
		left = &ast.BinaryExpr{Base: ast.NewBase(start, endOf(right)), Op: opStr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitOr() ast.Expr {
	return p.parseBinaryLevel(p.parseBitXor, map[lexer.TokenType]string{lexer.PIPE: "|"})
}

func (p *Parser) parseBitXor() ast.Expr {
	return p.parseBinaryLevel(p.parseBitAnd, map[lexer.TokenType]string{lexer.CARET: "^"})
}

func (p *Parser) parseBitAnd() ast.Expr {
	return p.parseBinaryLevel(p.parseShift, map[lexer.TokenType]string{lexer.AMP: "&"})
}

func (p *Parser) parseShift() ast.Expr {
	return p.parseBinaryLevel(p.parseArith, map[lexer.TokenType]string{lexer.LSHIFT: "<<", lexer.RSHIFT: ">>"})
}

func (p *Parser) parseArith() ast.Expr {
	return p.parseBinaryLevel(p.parseTerm, map[lexer.TokenType]string{lexer.PLUS: "+", lexer.MINUS: "-"})
}

func (p *Parser) parseTerm() ast.Expr {
	return p.parseBinaryLevel(p.parseFactor, map[lexer.TokenType]string{
		lexer.STAR: "*", lexer.SLASH: "/", lexer.DOUBLESLASH: "//", lexer.PERCENT: "%",
	})
}

func (p *Parser) parseFactor() ast.Expr {
	start := p.here()
	switch p.cur().Type {
	case lexer.PLUS:
		p.next()
		x := p.parseFactor()
		return &ast.UnaryExpr{Base: ast.NewBase(start, endOf(x)), Op: "+", X: x}
	case lexer.MINUS:
		p.next()
		x := p.parseFactor()
		return &ast.UnaryExpr{Base: ast.NewBase(start, endOf(x)), Op: "-", X: x}
	case lexer.TILDE:
		p.next()
		x := p.parseFactor()
		return &ast.UnaryExpr{Base: ast.NewBase(start, endOf(x)), Op: "~", X: x}
	}
	return p.parsePower()
}

func (p *Parser) parsePower() ast.Expr {
	start := p.here()
	base := p.parsePostfix()
	if p.at(lexer.DOUBLESTAR) {
		p.next()
		exp := p.parseFactor()
		return &ast.BinaryExpr{Base: ast.NewBase(start, endOf(exp)), Op: "**", Left: base, Right: exp}
	}
	return base
}

func (p *Parser) parsePostfix() ast.Expr {
	start := p.here()
	x := p.parseAtom()
	for {
		switch p.cur().Type {
		case lexer.DOT:
			p.next()
			nameTok := p.expect(lexer.IDENT)
			x = &ast.AttributeExpr{Base: ast.NewBase(start, ast.Position{Line: nameTok.Line, Column: nameTok.Column + len(nameTok.Literal)}), Value: x, Attr: nameTok.Literal}
		case lexer.LPAREN:
			x = p.parseCall(start, x)
		case lexer.LBRACKET:
			x = p.parseSubscript(start, x)
		default:
			return x
		}
	}
}

func (p *Parser) parseCall(start ast.Position, fn ast.Expr) ast.Expr {
	p.next() // '('
	var args []ast.Expr
	var kwargs []ast.Keyword
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		switch {
		case p.at(lexer.DOUBLESTAR):
			p.next()
			kwargs = append(kwargs, ast.Keyword{Name: "", Value: p.parseExpr()})
		case p.at(lexer.STAR):
			st := p.here()
			p.next()
			v := p.parseExpr()
			args = append(args, &ast.StarredExpr{Base: ast.NewBase(st, endOf(v)), Value: v})
		case p.at(lexer.IDENT) && p.peek(1).Type == lexer.ASSIGN:
			name := p.next().Literal
			p.next() // '='
			kwargs = append(kwargs, ast.Keyword{Name: name, Value: p.parseExpr()})
		default:
			args = append(args, p.parseExprOrComprehension())
		}
		if p.at(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	end := p.here()
	p.expect(lexer.RPAREN)
	return &ast.CallExpr{Base: ast.NewBase(start, end), Func: fn, Args: args, Keywords: kwargs}
}

// parseExprOrComprehension parses a single expression, folding it into a
// GeneratorExp if immediately followed by `for` (a bare generator argument,
// e.g. `sum(x for x in xs)`).
func (p *Parser) parseExprOrComprehension() ast.Expr {
	start := p.here()
	e := p.parseExpr()
	if p.at(lexer.FOR) {
		gens := p.parseComprehensionClauses()
		return &ast.GeneratorExp{Base: ast.NewBase(start, p.lastEnd()), Element: e, Generators: gens}
	}
	return e
}

func (p *Parser) lastEnd() ast.Position {
	if p.pos == 0 {
		return p.here()
	}
	t := p.toks[p.pos-1]
	return ast.Position{Line: t.Line, Column: t.Column + len(t.Literal)}
}

func (p *Parser) parseSubscript(start ast.Position, x ast.Expr) ast.Expr {
	p.next() // '['
	index := p.parseSliceOrIndex()
	end := p.here()
	p.expect(lexer.RBRACKET)
	return &ast.SubscriptExpr{Base: ast.NewBase(start, end), Value: x, Index: index}
}

func (p *Parser) parseSliceOrIndex() ast.Expr {
	start := p.here()
	var lower, upper, step ast.Expr
	isSlice := false
	if !p.at(lexer.COLON) {
		lower = p.parseExpr()
	}
	if p.at(lexer.COLON) {
		isSlice = true
		p.next()
		if !p.at(lexer.COLON) && !p.at(lexer.RBRACKET) {
			upper = p.parseExpr()
		}
		if p.at(lexer.COLON) {
			p.next()
			if !p.at(lexer.RBRACKET) {
				step = p.parseExpr()
			}
		}
	}
	if !isSlice {
		return lower
	}
	return &ast.SliceExpr{Base: ast.NewBase(start, p.here()), Lower: lower, Upper: upper, Step: step}
}

func (p *Parser) parseAtom() ast.Expr {
	start := p.here()
	switch p.cur().Type {
	case lexer.NUMBER:
		tok := p.next()
		i, f, isFloat := parseNumberLiteral(tok.Literal)
		return &ast.NumberLit{Base: ast.NewBase(start, p.lastEnd()), IsFloat: isFloat, Int: i, Float: f}
	case lexer.STRING:
		tok := p.next()
		text := tok.Literal
		for p.at(lexer.STRING) {
			text += p.next().Literal
		}
		return &ast.StringLit{Base: ast.NewBase(start, p.lastEnd()), Value: text}
	case lexer.FSTRING:
		tok := p.next()
		return p.parseFString(start, tok.Literal)
	case lexer.TRUE:
		p.next()
		return &ast.BoolLit{Base: ast.NewBase(start, p.lastEnd()), Value: true}
	case lexer.FALSE:
		p.next()
		return &ast.BoolLit{Base: ast.NewBase(start, p.lastEnd()), Value: false}
	case lexer.NONE:
		p.next()
		return &ast.NoneLit{Base: ast.NewBase(start, p.lastEnd())}
	case lexer.IDENT:
		if p.peek(1).Type == lexer.WALRUS {
			name := p.next()
			p.next() // ':='
			v := p.parseExpr()
			return &ast.NamedExpr{
				Base:   ast.NewBase(start, endOf(v)),
				Target: &ast.Ident{Base: ast.NewBase(start, ast.Position{Line: name.Line, Column: name.Column + len(name.Literal)}), Name: name.Literal},
				Value:  v,
			}
		}
		tok := p.next()
		return &ast.Ident{Base: ast.NewBase(start, p.lastEnd()), Name: tok.Literal}
	case lexer.LPAREN:
		return p.parseParenExpr(start)
	case lexer.LBRACKET:
		return p.parseListExpr(start)
	case lexer.LBRACE:
		return p.parseBraceExpr(start)
	}
	p.errorf("unexpected token %v %q in expression", p.cur().Type, p.cur().Literal)
	p.next()
	return &ast.NoneLit{Base: ast.NewBase(start, start)}
}

func parseNumberLiteral(lit string) (int64, float64, bool) {
	return lexer.ParseNumber(lit)
}

func (p *Parser) parseParenExpr(start ast.Position) ast.Expr {
	p.next() // '('
	if p.at(lexer.RPAREN) {
		p.next()
		return &ast.TupleExpr{Base: ast.NewBase(start, p.lastEnd())}
	}
	first := p.parseTestOrStarred()
	if p.at(lexer.FOR) {
		gens := p.parseComprehensionClauses()
		end := p.here()
		p.expect(lexer.RPAREN)
		return &ast.GeneratorExp{Base: ast.NewBase(start, end), Element: first, Generators: gens}
	}
	if p.at(lexer.COMMA) {
		elts := []ast.Expr{first}
		for p.at(lexer.COMMA) {
			p.next()
			if p.at(lexer.RPAREN) {
				break
			}
			elts = append(elts, p.parseTestOrStarred())
		}
		end := p.here()
		p.expect(lexer.RPAREN)
		return &ast.TupleExpr{Base: ast.NewBase(start, end), Elts: elts}
	}
	p.expect(lexer.RPAREN)
	return first
}

// parseTestOrStarred parses one expression, recognizing a leading `*` as an
// unpack marker (valid inside tuple/list/call-argument contexts).
func (p *Parser) parseTestOrStarred() ast.Expr {
	if p.at(lexer.STAR) {
		start := p.here()
		p.next()
		v := p.parseExpr()
		return &ast.StarredExpr{Base: ast.NewBase(start, endOf(v)), Value: v}
	}
	return p.parseExpr()
}

func (p *Parser) parseListExpr(start ast.Position) ast.Expr {
	p.next() // '['
	if p.at(lexer.RBRACKET) {
		p.next()
		return &ast.ListExpr{Base: ast.NewBase(start, p.lastEnd())}
	}
	first := p.parseTestOrStarred()
	if p.at(lexer.FOR) {
		gens := p.parseComprehensionClauses()
		end := p.here()
		p.expect(lexer.RBRACKET)
		return &ast.ListComp{Base: ast.NewBase(start, end), Element: first, Generators: gens}
	}
	elts := []ast.Expr{first}
	for p.at(lexer.COMMA) {
		p.next()
		if p.at(lexer.RBRACKET) {
			break
		}
		elts = append(elts, p.parseTestOrStarred())
	}
	end := p.here()
	p.expect(lexer.RBRACKET)
	return &ast.ListExpr{Base: ast.NewBase(start, end), Elts: elts}
}

func (p *Parser) parseBraceExpr(start ast.Position) ast.Expr {
	p.next() // '{'
	if p.at(lexer.RBRACE) {
		p.next()
		return &ast.DictExpr{Base: ast.NewBase(start, p.lastEnd())}
	}

	if p.at(lexer.DOUBLESTAR) {
		dsStart := p.here()
		p.next()
		v := p.parseExpr()
		return p.finishDictExpr(start, nil, &ast.DoubleStarredExpr{Base: ast.NewBase(dsStart, endOf(v)), Value: v})
	}

	firstIsStar := p.at(lexer.STAR)
	first := p.parseTestOrStarred()

	if !firstIsStar && p.at(lexer.COLON) {
		p.next()
		firstVal := p.parseExpr()
		if p.at(lexer.FOR) {
			gens := p.parseComprehensionClauses()
			end := p.here()
			p.expect(lexer.RBRACE)
			return &ast.DictComp{Base: ast.NewBase(start, end), Key: first, Value: firstVal, Generators: gens}
		}
		return p.finishDictExpr(start, first, firstVal)
	}

	if p.at(lexer.FOR) {
		gens := p.parseComprehensionClauses()
		end := p.here()
		p.expect(lexer.RBRACE)
		return &ast.SetComp{Base: ast.NewBase(start, end), Element: first, Generators: gens}
	}

	elts := []ast.Expr{first}
	for p.at(lexer.COMMA) {
		p.next()
		if p.at(lexer.RBRACE) {
			break
		}
		elts = append(elts, p.parseTestOrStarred())
	}
	end := p.here()
	p.expect(lexer.RBRACE)
	return &ast.SetExpr{Base: ast.NewBase(start, end), Elts: elts}
}

// finishDictExpr continues parsing a dict literal after its first key/value
// (or **unpack) entry has already been consumed.
func (p *Parser) finishDictExpr(start ast.Position, firstKey, firstVal ast.Expr) ast.Expr {
	keys := []ast.Expr{firstKey}
	values := []ast.Expr{firstVal}
	for p.at(lexer.COMMA) {
		p.next()
		if p.at(lexer.RBRACE) {
			break
		}
		if p.at(lexer.DOUBLESTAR) {
			dsStart := p.here()
			p.next()
			v := p.parseExpr()
			keys = append(keys, nil)
			values = append(values, &ast.DoubleStarredExpr{Base: ast.NewBase(dsStart, endOf(v)), Value: v})
			continue
		}
		k := p.parseExpr()
		p.expect(lexer.COLON)
		v := p.parseExpr()
		keys = append(keys, k)
		values = append(values, v)
	}
	end := p.here()
	p.expect(lexer.RBRACE)
	return &ast.DictExpr{Base: ast.NewBase(start, end), Keys: keys, Values: values}
}

// parseComprehensionClauses parses one or more `for target in iter [if
// cond]*` clauses following a comprehension's element expression.
func (p *Parser) parseComprehensionClauses() []ast.Comprehension {
	var gens []ast.Comprehension
	for p.at(lexer.FOR) {
		p.next()
		target := p.parseTargetList()
		p.expect(lexer.IN)
		iter := p.parseOrTest()
		var ifs []ast.Expr
		for p.at(lexer.IF) {
			p.next()
			ifs = append(ifs, p.parseOrTest())
		}
		gens = append(gens, ast.Comprehension{Target: target, Iter: iter, Ifs: ifs})
	}
	return gens
}

// parseTargetList parses a for-loop/comprehension binding target: a single
// name, attribute, or subscript, or a tuple of such (bare or parenthesized).
func (p *Parser) parseTargetList() ast.Expr {
	start := p.here()
	first := p.parsePostfix()
	if !p.at(lexer.COMMA) {
		return first
	}
	elts := []ast.Expr{first}
	for p.at(lexer.COMMA) {
		p.next()
		if p.at(lexer.IN) {
			break
		}
		elts = append(elts, p.parsePostfix())
	}
	return &ast.TupleExpr{Base: ast.NewBase(start, p.lastEnd()), Elts: elts}
}
