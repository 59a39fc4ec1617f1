package parser

import (
	"github.com/freeeve/jsone/ast"
	"github.com/freeeve/jsone/token"
)

// Precedence levels, lowest to highest, per spec.md §4.E.
const (
	precLowest = iota
	precOr     // ||
	precAnd    // &&
	precIn     // in
	precEq     // == !=
	precCmp    // < <= > >=
	precAdd    // + -
	precMul    // * /
	precPow    // ** (right-associative)
	precPostfix
	precUnary
)

var binPrec = map[token.Token]int{
	token.OR:    precOr,
	token.AND:   precAnd,
	token.IN:    precIn,
	token.EQ:    precEq,
	token.NEQ:   precEq,
	token.LT:    precCmp,
	token.LTE:   precCmp,
	token.GT:    precCmp,
	token.GTE:   precCmp,
	token.PLUS:  precAdd,
	token.MINUS: precAdd,
	token.STAR:  precMul,
	token.SLASH: precMul,
	token.POW:   precPow,
}

var binOp = map[token.Token]ast.BinaryOp{
	token.OR:    ast.BinOr,
	token.AND:   ast.BinAnd,
	token.IN:    ast.BinIn,
	token.EQ:    ast.BinEq,
	token.NEQ:   ast.BinNeq,
	token.LT:    ast.BinLt,
	token.LTE:   ast.BinLte,
	token.GT:    ast.BinGt,
	token.GTE:   ast.BinGte,
	token.PLUS:  ast.BinAdd,
	token.MINUS: ast.BinSub,
	token.STAR:  ast.BinMul,
	token.SLASH: ast.BinDiv,
	token.POW:   ast.BinPow,
}

// parseExpr parses an expression with precedence climbing, stopping once it
// meets an operator binding less tightly than minPrec.
func (p *Parser) parseExpr(minPrec int) ast.Node {
	left := p.parseUnary()
	if p.err != nil {
		return left
	}

	for {
		prec, ok := binPrec[p.cur.Type]
		if !ok || prec < minPrec {
			return left
		}
		op := p.cur.Type
		pos := p.cur.Pos
		p.advance()

		// ** is right-associative: parse the RHS at the same precedence so
		// that `2 ** 3 ** 2` groups as `2 ** (3 ** 2)`. Everything else is
		// left-associative, so the RHS parses at prec+1.
		nextMin := prec + 1
		if op == token.POW {
			nextMin = prec
		}
		right := p.parseExpr(nextMin)
		if p.err != nil {
			return left
		}
		left = &ast.Binary{P: pos, Op: binOp[op], Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Node {
	switch p.cur.Type {
	case token.MINUS:
		pos := p.cur.Pos
		p.advance()
		return &ast.Unary{P: pos, Op: ast.UnaryNeg, Expr: p.parseExpr(precUnary)}
	case token.PLUS:
		pos := p.cur.Pos
		p.advance()
		return &ast.Unary{P: pos, Op: ast.UnaryPos, Expr: p.parseExpr(precUnary)}
	case token.BANG:
		pos := p.cur.Pos
		p.advance()
		return &ast.Unary{P: pos, Op: ast.UnaryNot, Expr: p.parseExpr(precUnary)}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Node {
	node := p.parsePrimary()
	for p.err == nil {
		switch p.cur.Type {
		case token.LBRACK:
			node = p.parseIndexOrSlice(node)
		case token.DOT:
			pos := p.cur.Pos
			p.advance()
			name := p.expect(token.IDENT)
			node = &ast.Dot{P: pos, Target: node, Name: name.Value}
		case token.LPAREN:
			node = p.parseCall(node)
		default:
			return node
		}
	}
	return node
}

func (p *Parser) parseIndexOrSlice(target ast.Node) ast.Node {
	pos := p.cur.Pos
	p.advance() // consume '['

	if p.curIs(token.COLON) {
		p.advance()
		high := p.parseOptionalSliceEnd()
		p.expect(token.RBRACK)
		return &ast.Slice{P: pos, Target: target, Low: nil, High: high}
	}

	first := p.parseExpr(precLowest)
	if p.err != nil {
		return target
	}

	if p.curIs(token.COLON) {
		p.advance()
		high := p.parseOptionalSliceEnd()
		p.expect(token.RBRACK)
		return &ast.Slice{P: pos, Target: target, Low: first, High: high}
	}

	p.expect(token.RBRACK)
	return &ast.Index{P: pos, Target: target, Key: first}
}

func (p *Parser) parseOptionalSliceEnd() ast.Node {
	if p.curIs(token.RBRACK) {
		return nil
	}
	return p.parseExpr(precLowest)
}

func (p *Parser) parseCall(callee ast.Node) ast.Node {
	pos := p.cur.Pos
	p.advance() // consume '('
	var args []ast.Node
	if !p.curIs(token.RPAREN) {
		for {
			args = append(args, p.parseExpr(precLowest))
			if p.err != nil {
				break
			}
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	p.expect(token.RPAREN)
	return &ast.Call{P: pos, Callee: callee, Args: args}
}

func (p *Parser) parsePrimary() ast.Node {
	item := p.cur
	switch item.Type {
	case token.NUMBER:
		p.advance()
		return &ast.Number{P: item.Pos, Value: item.Value}
	case token.STRING:
		p.advance()
		return &ast.String{P: item.Pos, Value: item.Value}
	case token.TRUE:
		p.advance()
		return &ast.True{P: item.Pos}
	case token.FALSE:
		p.advance()
		return &ast.False{P: item.Pos}
	case token.NULL:
		p.advance()
		return &ast.Null{P: item.Pos}
	case token.IDENT:
		p.advance()
		return &ast.Ident{P: item.Pos, Name: item.Value}
	case token.LPAREN:
		p.advance()
		node := p.parseExpr(precLowest)
		p.expect(token.RPAREN)
		return node
	case token.LBRACK:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	}
	p.fail("unexpected token %s %q", item.Type, item.Value)
	return &ast.Null{P: item.Pos}
}

func (p *Parser) parseArrayLiteral() ast.Node {
	pos := p.cur.Pos
	p.advance() // '['
	var elems []ast.Node
	if !p.curIs(token.RBRACK) {
		for {
			elems = append(elems, p.parseExpr(precLowest))
			if p.err != nil {
				break
			}
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	p.expect(token.RBRACK)
	return &ast.Array{P: pos, Elements: elems}
}

func (p *Parser) parseObjectLiteral() ast.Node {
	pos := p.cur.Pos
	p.advance() // '{'
	var fields []ast.ObjectField
	if !p.curIs(token.RBRACE) {
		for {
			key, ok := p.parseObjectKey()
			if !ok {
				break
			}
			p.expect(token.COLON)
			val := p.parseExpr(precLowest)
			fields = append(fields, ast.ObjectField{Key: key, Value: val})
			if p.err != nil {
				break
			}
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	p.expect(token.RBRACE)
	return &ast.Object{P: pos, Fields: fields}
}

func (p *Parser) parseObjectKey() (string, bool) {
	switch p.cur.Type {
	case token.IDENT:
		v := p.cur.Value
		p.advance()
		return v, true
	case token.STRING:
		v := p.cur.Value
		p.advance()
		return v, true
	}
	p.fail("expected object key, got %s %q", p.cur.Type, p.cur.Value)
	return "", false
}
