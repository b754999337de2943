package parser

import (
	"github.com/cwbudde/go-saferun/internal/ast"
	"github.com/cwbudde/go-saferun/internal/lexer"
)

// parseParamList parses a function/lambda parameter signature up to (but
// not consuming) terminator, splitting names into the five binding groups
// spec.md's host surface documents: positional-only (before `/`),
// positional-or-keyword, `*args`, keyword-only (after a bare `*` or
// `*args`), and `**kwargs`.
func (p *Parser) parseParamList(terminator lexer.TokenType) *ast.Params {
	params := &ast.Params{}
	seenStar := false

	for !p.at(terminator) && !p.at(lexer.EOF) {
		switch {
		case p.at(lexer.SLASH):
			p.next()
			params.PosOnly = append(params.PosOnly, params.PosOrKw...)
			params.PosOrKw = nil
		case p.at(lexer.DOUBLESTAR):
			p.next()
			name := p.expect(lexer.IDENT).Literal
			params.Kwarg = &ast.Param{Name: name}
		case p.at(lexer.STAR):
			p.next()
			seenStar = true
			if p.at(lexer.IDENT) {
				name := p.next().Literal
				params.Vararg = &ast.Param{Name: name}
			}
		case p.at(lexer.IDENT):
			name := p.next().Literal
			var def ast.Expr
			if p.at(lexer.ASSIGN) {
				p.next()
				def = p.parseExpr()
			}
			param := ast.Param{Name: name, Default: def}
			if seenStar {
				params.KwOnly = append(params.KwOnly, param)
			} else {
				params.PosOrKw = append(params.PosOrKw, param)
			}
		default:
			p.errorf("unexpected token %v in parameter list", p.cur().Type)
			p.next()
			continue
		}
		if p.at(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	return params
}
