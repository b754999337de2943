package parser

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/lexer"
)

func (p *Parser) parseMatch() ast.Stmt {
	start := p.here()
	p.next() // 'match'
	subject := p.parseExpr()
	p.expect(lexer.COLON)
	p.expect(lexer.NEWLINE)
	p.expect(lexer.INDENT)

	var cases []ast.MatchCase
	for !p.at(lexer.DEDENT) && !p.at(lexer.EOF) {
		if p.at(lexer.NEWLINE) {
			p.next()
			continue
		}
		p.expect(lexer.CASE)
		pat := p.parsePattern()
		var guard ast.Expr
		if p.at(lexer.IF) {
			p.next()
			guard = p.parseExpr()
		}
		body := p.parseBlock()
		cases = append(cases, ast.MatchCase{Pattern: pat, Guard: guard, Body: body})
	}
	p.expect(lexer.DEDENT)
	return &ast.MatchStmt{Base: ast.NewBase(start, p.lastEnd()), Subject: subject, Cases: cases}
}

func (p *Parser) parsePattern() ast.Pattern {
	first := p.parseClosedPattern()
	if !p.at(lexer.PIPE) {
		return first
	}
	alts := []ast.Pattern{first}
	for p.at(lexer.PIPE) {
		p.next()
		alts = append(alts, p.parseClosedPattern())
	}
	return &ast.OrPattern{Patterns: alts}
}

func (p *Parser) parseClosedPattern() ast.Pattern {
	pat := p.parsePrimaryPattern()
	if p.isCapturable(pat) && p.atAsKeyword() {
		p.next()
		bound := p.expect(lexer.IDENT).Literal
		return &ast.AsPattern{Inner: pat, Name: bound}
	}
	return pat
}

// atAsKeyword reports whether the current token is the contextual `as`
// keyword; `as` is not a reserved word elsewhere in the grammar so the
// lexer emits it as a plain IDENT.
func (p *Parser) atAsKeyword() bool {
	return p.at(lexer.IDENT) && p.cur().Literal == "as"
}

func (p *Parser) isCapturable(pat ast.Pattern) bool {
	switch pat.(type) {
	case *ast.SequencePattern, *ast.MappingPattern:
		return false
	default:
		return true
	}
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	switch p.cur().Type {
	case lexer.TRUE:
		p.next()
		return &ast.SingletonPattern{Kind: "True"}
	case lexer.FALSE:
		p.next()
		return &ast.SingletonPattern{Kind: "False"}
	case lexer.NONE:
		p.next()
		return &ast.SingletonPattern{Kind: "None"}
	case lexer.NUMBER:
		return &ast.ValuePattern{Value: p.parseAtom()}
	case lexer.STRING:
		return &ast.ValuePattern{Value: p.parseAtom()}
	case lexer.MINUS:
		return &ast.ValuePattern{Value: p.parseFactor()}
	case lexer.LPAREN:
		return p.parseGroupOrSequencePattern()
	case lexer.LBRACKET:
		return p.parseSequencePatternBody()
	case lexer.LBRACE:
		return p.parseMappingPattern()
	case lexer.STAR:
		p.next()
		if p.at(lexer.IDENT) && p.cur().Literal != "_" {
			name := p.next().Literal
			return &ast.StarPattern{Name: name}
		}
		if p.at(lexer.IDENT) {
			p.next()
		}
		return &ast.StarPattern{Name: ""}
	case lexer.IDENT:
		return p.parseNameOrValuePattern()
	}
	p.errorf("unexpected token %v in pattern", p.cur().Type)
	p.next()
	return &ast.AsPattern{Name: "_"}
}

func (p *Parser) parseNameOrValuePattern() ast.Pattern {
	name := p.next().Literal
	if name == "_" {
		return &ast.AsPattern{Name: "_"}
	}
	start := ast.Position{}
	value := ast.Expr(&ast.Ident{Name: name})
	for p.at(lexer.DOT) {
		p.next()
		attr := p.expect(lexer.IDENT).Literal
		value = &ast.AttributeExpr{Base: ast.NewBase(start, start), Value: value, Attr: attr}
	}
	if _, isIdent := value.(*ast.Ident); isIdent {
		return &ast.AsPattern{Name: name}
	}
	return &ast.ValuePattern{Value: value}
}

func (p *Parser) parseGroupOrSequencePattern() ast.Pattern {
	close := lexer.RPAREN
	p.next() // '('
	if p.at(close) {
		p.next()
		return &ast.SequencePattern{StarIndex: -1}
	}
	first := p.parsePatternOrStar()
	if p.at(lexer.COMMA) {
		pats := []ast.Pattern{first}
		starIndex := starIndexOf(first, 0)
		idx := 1
		for p.at(lexer.COMMA) {
			p.next()
			if p.at(close) {
				break
			}
			pat := p.parsePatternOrStar()
			if si := starIndexOf(pat, idx); si >= 0 {
				starIndex = si
			}
			pats = append(pats, pat)
			idx++
		}
		p.expect(close)
		return &ast.SequencePattern{Patterns: pats, StarIndex: starIndex}
	}
	p.expect(close)
	return first
}

func (p *Parser) parseSequencePatternBody() ast.Pattern {
	close := lexer.RBRACKET
	p.next() // '['
	if p.at(close) {
		p.next()
		return &ast.SequencePattern{StarIndex: -1}
	}
	var pats []ast.Pattern
	starIndex := -1
	idx := 0
	for {
		pat := p.parsePatternOrStar()
		if si := starIndexOf(pat, idx); si >= 0 {
			starIndex = si
		}
		pats = append(pats, pat)
		idx++
		if p.at(lexer.COMMA) {
			p.next()
			if p.at(close) {
				break
			}
			continue
		}
		break
	}
	p.expect(close)
	return &ast.SequencePattern{Patterns: pats, StarIndex: starIndex}
}

func starIndexOf(pat ast.Pattern, idx int) int {
	if _, ok := pat.(*ast.StarPattern); ok {
		return idx
	}
	return -1
}

func (p *Parser) parsePatternOrStar() ast.Pattern {
	return p.parsePattern()
}

func (p *Parser) parseMappingPattern() ast.Pattern {
	p.next() // '{'
	mp := &ast.MappingPattern{}
	if p.at(lexer.RBRACE) {
		p.next()
		return mp
	}
	for {
		if p.at(lexer.DOUBLESTAR) {
			p.next()
			mp.Rest = p.expect(lexer.IDENT).Literal
		} else {
			key := p.parseOrTest()
			p.expect(lexer.COLON)
			val := p.parsePattern()
			mp.Keys = append(mp.Keys, key)
			mp.Patterns = append(mp.Patterns, val)
		}
		if p.at(lexer.COMMA) {
			p.next()
			if p.at(lexer.RBRACE) {
				break
			}
			continue
		}
		break
	}
	p.expect(lexer.RBRACE)
	return mp
}
