// Package ast defines the abstract syntax tree produced by the expression
// parser.
package ast

import "github.com/freeeve/jsone/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() token.Pos
	exprNode()
}

// Number is a numeric literal, stored as its original source text and
// parsed to float64 lazily by the evaluator.
type Number struct {
	P     token.Pos
	Value string
}

func (*Number) exprNode()       {}
func (n *Number) Pos() token.Pos { return n.P }

// String is a string literal.
type String struct {
	P     token.Pos
	Value string
}

func (*String) exprNode()       {}
func (s *String) Pos() token.Pos { return s.P }

// True is the `true` literal.
type True struct{ P token.Pos }

func (*True) exprNode()       {}
func (t *True) Pos() token.Pos { return t.P }

// False is the `false` literal.
type False struct{ P token.Pos }

func (*False) exprNode()       {}
func (f *False) Pos() token.Pos { return f.P }

// Null is the `null` literal.
type Null struct{ P token.Pos }

func (*Null) exprNode()       {}
func (n *Null) Pos() token.Pos { return n.P }

// Ident is an identifier reference, resolved against a scope at eval time.
type Ident struct {
	P    token.Pos
	Name string
}

func (*Ident) exprNode()       {}
func (i *Ident) Pos() token.Pos { return i.P }

// Array is an array literal.
type Array struct {
	P        token.Pos
	Elements []Node
}

func (*Array) exprNode()       {}
func (a *Array) Pos() token.Pos { return a.P }

// ObjectField is a single key/value pair in an object literal.
type ObjectField struct {
	Key   string
	Value Node
}

// Object is an object literal.
type Object struct {
	P      token.Pos
	Fields []ObjectField
}

func (*Object) exprNode()       {}
func (o *Object) Pos() token.Pos { return o.P }

// UnaryOp identifies a prefix operator.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota // -x
	UnaryPos                // +x
	UnaryNot                // !x
)

// Unary is a prefix unary operation.
type Unary struct {
	P    token.Pos
	Op   UnaryOp
	Expr Node
}

func (*Unary) exprNode()       {}
func (u *Unary) Pos() token.Pos { return u.P }

// BinaryOp identifies an infix operator.
type BinaryOp int

const (
	BinOr BinaryOp = iota
	BinAnd
	BinIn
	BinEq
	BinNeq
	BinLt
	BinLte
	BinGt
	BinGte
	BinAdd
	BinSub
	BinMul
	BinDiv
	BinPow
)

// Binary is an infix binary operation.
type Binary struct {
	P     token.Pos
	Op    BinaryOp
	Left  Node
	Right Node
}

func (*Binary) exprNode()       {}
func (b *Binary) Pos() token.Pos { return b.P }

// Index is `x[i]`.
type Index struct {
	P      token.Pos
	Target Node
	Key    Node
}

func (*Index) exprNode()       {}
func (i *Index) Pos() token.Pos { return i.P }

// Slice is `x[a:b]` with either endpoint optional.
type Slice struct {
	P      token.Pos
	Target Node
	Low    Node // nil if omitted
	High   Node // nil if omitted
}

func (*Slice) exprNode()       {}
func (s *Slice) Pos() token.Pos { return s.P }

// Dot is `x.name`.
type Dot struct {
	P      token.Pos
	Target Node
	Name   string
}

func (*Dot) exprNode()       {}
func (d *Dot) Pos() token.Pos { return d.P }

// Call is a function invocation `callee(args...)`.
type Call struct {
	P      token.Pos
	Callee Node
	Args   []Node
}

func (*Call) exprNode()       {}
func (c *Call) Pos() token.Pos { return c.P }
