// Package parser implements a Pratt-style precedence-climbing parser for
// the jsone expression language.
package parser

import (
	"fmt"
	"sync"

	"github.com/freeeve/jsone/ast"
	"github.com/freeeve/jsone/jsoneerr"
	"github.com/freeeve/jsone/lexer"
	"github.com/freeeve/jsone/token"
)

// Parser parses expression-language source into an ast.Node.
type Parser struct {
	lexer *lexer.Lexer
	cur   token.Item
	err   error
}

var parserPool = sync.Pool{
	New: func() any { return &Parser{} },
}

// New creates a Parser over input.
func New(input string) *Parser {
	p := &Parser{lexer: lexer.New(input)}
	p.advance()
	return p
}

// Get returns a pooled Parser for input. Call Put when done.
func Get(input string) *Parser {
	p := parserPool.Get().(*Parser)
	p.lexer = lexer.Get(input)
	p.err = nil
	p.advance()
	return p
}

// Put returns p and its lexer to their pools.
func Put(p *Parser) {
	if p.lexer != nil {
		lexer.Put(p.lexer)
		p.lexer = nil
	}
	parserPool.Put(p)
}

// Error is a parse failure tied to a source position.
type Error struct {
	Pos     token.Pos
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("column %d: %s", e.Pos.Column, e.Message)
}

func (p *Parser) advance() {
	p.cur = p.lexer.Next()
}

func (p *Parser) curIs(t token.Token) bool { return p.err == nil && p.cur.Type == t }

func (p *Parser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = &Error{Pos: p.cur.Pos, Message: fmt.Sprintf(format, args...)}
	}
}

func (p *Parser) expect(t token.Token) token.Item {
	cur := p.cur
	if !p.curIs(t) {
		p.fail("expected %s, got %s %q", t, p.cur.Type, p.cur.Value)
		return cur
	}
	p.advance()
	return cur
}

// ParseAll parses the entirety of input as a single expression; any
// unconsumed trailing input is a syntax error.
func ParseAll(input string) (ast.Node, error) {
	p := Get(input)
	defer Put(p)
	node := p.parseExpr(precLowest)
	if p.err == nil && p.cur.Type != token.EOF {
		p.fail("unexpected trailing input %q", p.cur.Value)
	}
	if p.err != nil {
		return nil, jsoneerr.WrapSyntaxError(p.err, "%s", p.err.Error())
	}
	return node, nil
}

// ParsePartial parses one expression and returns it along with the
// unconsumed remainder of input. Used by string interpolation, which must
// stop at the closing `}` of a `${...}` rather than requiring the whole
// string to be one expression.
func ParsePartial(input string) (ast.Node, string, error) {
	p := Get(input)
	defer Put(p)
	node := p.parseExpr(precLowest)
	if p.err != nil {
		return nil, "", jsoneerr.WrapSyntaxError(p.err, "%s", p.err.Error())
	}
	var rest string
	if p.cur.Type != token.EOF {
		// The current token has already been lexed past its start offset;
		// the remainder of the original input begins at that offset.
		off := p.cur.Pos.Offset
		if off >= 0 && off <= len(input) {
			rest = input[off:]
		}
	}
	return node, rest, nil
}
