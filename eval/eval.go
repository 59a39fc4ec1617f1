// Package eval walks an expression AST against a Scope, producing a Value.
// Grounded on original_source/src/interpreter/evaluator.rs, generalized to
// jsone's extended value model (slices, first-class function calls).
package eval

import (
	"math"
	"strconv"
	"strings"

	"github.com/freeeve/jsone/ast"
	"github.com/freeeve/jsone/jsoneerr"
	"github.com/freeeve/jsone/scope"
	"github.com/freeeve/jsone/value"
)

// Evaluate walks node against sc, producing its Value or an
// *jsoneerr.InterpreterError.
func Evaluate(node ast.Node, sc *scope.Scope) (value.Value, error) {
	switch n := node.(type) {
	case *ast.Number:
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return value.Null, jsoneerr.WrapInterpreterError(err, "invalid number literal %q", n.Value)
		}
		return value.Number(f), nil

	case *ast.String:
		return value.String(n.Value), nil

	case *ast.True:
		return value.Bool(true), nil

	case *ast.False:
		return value.Bool(false), nil

	case *ast.Null:
		return value.Null, nil

	case *ast.Ident:
		v, ok := sc.Get(n.Name)
		if !ok {
			return value.Null, jsoneerr.NewInterpreterError("unknown context value %s", n.Name)
		}
		return v, nil

	case *ast.Array:
		elems := make([]value.Value, len(n.Elements))
		for i, e := range n.Elements {
			v, err := Evaluate(e, sc)
			if err != nil {
				return value.Null, err
			}
			elems[i] = v
		}
		return value.Array(elems), nil

	case *ast.Object:
		pairs := make([]value.KV, len(n.Fields))
		for i, f := range n.Fields {
			v, err := Evaluate(f.Value, sc)
			if err != nil {
				return value.Null, err
			}
			pairs[i] = value.KV{Key: f.Key, Val: v}
		}
		return value.Object(pairs), nil

	case *ast.Unary:
		return evalUnary(n, sc)

	case *ast.Binary:
		return evalBinary(n, sc)

	case *ast.Index:
		return evalIndex(n, sc)

	case *ast.Slice:
		return evalSlice(n, sc)

	case *ast.Dot:
		return evalDot(n, sc)

	case *ast.Call:
		return evalCall(n, sc)
	}
	return value.Null, jsoneerr.NewInterpreterError("unhandled expression node %T", node)
}

func evalUnary(n *ast.Unary, sc *scope.Scope) (value.Value, error) {
	v, err := Evaluate(n.Expr, sc)
	if err != nil {
		return value.Null, err
	}
	switch n.Op {
	case ast.UnaryNeg:
		if !v.IsNumber() {
			return value.Null, jsoneerr.NewInterpreterError("this operator expects a number")
		}
		return value.Number(-v.AsNumber()), nil
	case ast.UnaryPos:
		if !v.IsNumber() {
			return value.Null, jsoneerr.NewInterpreterError("this operator expects a number")
		}
		return v, nil
	case ast.UnaryNot:
		return value.Bool(!v.Truthy()), nil
	}
	return value.Null, jsoneerr.NewInterpreterError("unknown unary operator")
}

func evalBinary(n *ast.Binary, sc *scope.Scope) (value.Value, error) {
	l, err := Evaluate(n.Left, sc)
	if err != nil {
		return value.Null, err
	}

	if n.Op == ast.BinOr && l.Truthy() {
		return value.Bool(true), nil
	}
	if n.Op == ast.BinAnd && !l.Truthy() {
		return value.Bool(false), nil
	}

	r, err := Evaluate(n.Right, sc)
	if err != nil {
		return value.Null, err
	}

	switch n.Op {
	case ast.BinOr, ast.BinAnd:
		return value.Bool(r.Truthy()), nil

	case ast.BinPow:
		if !l.IsNumber() || !r.IsNumber() {
			return value.Null, jsoneerr.NewInterpreterError("this operator expects numbers")
		}
		return value.Number(math.Pow(l.AsNumber(), r.AsNumber())), nil

	case ast.BinMul:
		if !l.IsNumber() || !r.IsNumber() {
			return value.Null, jsoneerr.NewInterpreterError("this operator expects numbers")
		}
		return value.Number(l.AsNumber() * r.AsNumber()), nil

	case ast.BinDiv:
		if !l.IsNumber() || !r.IsNumber() {
			return value.Null, jsoneerr.NewInterpreterError("this operator expects numbers")
		}
		if r.AsNumber() == 0 {
			return value.Null, jsoneerr.NewInterpreterError("division by zero")
		}
		return value.Number(l.AsNumber() / r.AsNumber()), nil

	case ast.BinAdd:
		if l.IsString() && r.IsString() {
			return value.String(l.AsString() + r.AsString()), nil
		}
		if l.IsNumber() && r.IsNumber() {
			return value.Number(l.AsNumber() + r.AsNumber()), nil
		}
		return value.Null, jsoneerr.NewInterpreterError("this operator expects numbers or strings")

	case ast.BinSub:
		if !l.IsNumber() || !r.IsNumber() {
			return value.Null, jsoneerr.NewInterpreterError("this operator expects numbers")
		}
		return value.Number(l.AsNumber() - r.AsNumber()), nil

	case ast.BinLt, ast.BinLte, ast.BinGt, ast.BinGte:
		return evalCompare(n.Op, l, r)

	case ast.BinEq:
		return value.Bool(value.Equal(l, r)), nil
	case ast.BinNeq:
		return value.Bool(!value.Equal(l, r)), nil

	case ast.BinIn:
		return evalIn(l, r)
	}
	return value.Null, jsoneerr.NewInterpreterError("unknown binary operator")
}

func evalCompare(op ast.BinaryOp, l, r value.Value) (value.Value, error) {
	if l.IsString() && r.IsString() {
		a, b := l.AsString(), r.AsString()
		switch op {
		case ast.BinLt:
			return value.Bool(a < b), nil
		case ast.BinLte:
			return value.Bool(a <= b), nil
		case ast.BinGt:
			return value.Bool(a > b), nil
		case ast.BinGte:
			return value.Bool(a >= b), nil
		}
	}
	if l.IsNumber() && r.IsNumber() {
		a, b := l.AsNumber(), r.AsNumber()
		switch op {
		case ast.BinLt:
			return value.Bool(a < b), nil
		case ast.BinLte:
			return value.Bool(a <= b), nil
		case ast.BinGt:
			return value.Bool(a > b), nil
		case ast.BinGte:
			return value.Bool(a >= b), nil
		}
	}
	return value.Null, jsoneerr.NewInterpreterError("expected numbers or strings")
}

func evalIn(l, r value.Value) (value.Value, error) {
	switch {
	case l.IsString() && r.IsString():
		return value.Bool(strings.Contains(r.AsString(), l.AsString())), nil
	case r.IsArray():
		for _, e := range r.AsArray() {
			if value.Equal(l, e) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case l.IsString() && r.IsObject():
		_, ok := r.Get(l.AsString())
		return value.Bool(ok), nil
	}
	return value.Null, jsoneerr.NewInterpreterError("expected proper arguments for in")
}

func evalIndex(n *ast.Index, sc *scope.Scope) (value.Value, error) {
	target, err := Evaluate(n.Target, sc)
	if err != nil {
		return value.Null, err
	}
	key, err := Evaluate(n.Key, sc)
	if err != nil {
		return value.Null, err
	}

	switch {
	case target.IsArray():
		i, ok := wrapIndex(key, len(target.AsArray()))
		if !ok {
			return value.Null, jsoneerr.NewInterpreterError("should only use integers to access arrays or strings")
		}
		if i < 0 || i >= len(target.AsArray()) {
			return value.Null, jsoneerr.NewInterpreterError("index out of bounds")
		}
		return target.AsArray()[i], nil

	case target.IsString():
		runes := []rune(target.AsString())
		i, ok := wrapIndex(key, len(runes))
		if !ok {
			return value.Null, jsoneerr.NewInterpreterError("should only use integers to access arrays or strings")
		}
		if i < 0 || i >= len(runes) {
			return value.Null, jsoneerr.NewInterpreterError("index out of bounds")
		}
		return value.String(string(runes[i])), nil

	case target.IsObject():
		if !key.IsString() {
			return value.Null, jsoneerr.NewInterpreterError("object keys must be strings")
		}
		v, ok := target.Get(key.AsString())
		if !ok {
			return value.Null, nil
		}
		return v, nil
	}
	return value.Null, jsoneerr.NewInterpreterError("indexing operator expects an object, string, or array")
}

// wrapIndex converts key to an integer index, wrapping negative values from
// length. ok is false if key is not an integral number.
func wrapIndex(key value.Value, length int) (int, bool) {
	if !key.IsNumber() {
		return 0, false
	}
	n := key.AsNumber()
	if n < 0 {
		n += float64(length)
	}
	i := int(n)
	if float64(i) != n {
		return 0, false
	}
	return i, true
}

func evalSlice(n *ast.Slice, sc *scope.Scope) (value.Value, error) {
	target, err := Evaluate(n.Target, sc)
	if err != nil {
		return value.Null, err
	}

	var length int
	switch {
	case target.IsArray():
		length = len(target.AsArray())
	case target.IsString():
		length = len([]rune(target.AsString()))
	default:
		return value.Null, jsoneerr.NewInterpreterError("slicing operator expects a string or array")
	}

	lo, err := sliceBound(n.Low, sc, 0, length)
	if err != nil {
		return value.Null, err
	}
	hi, err := sliceBound(n.High, sc, length, length)
	if err != nil {
		return value.Null, err
	}
	if lo > hi {
		lo = hi
	}

	if target.IsArray() {
		elems := target.AsArray()[lo:hi]
		out := make([]value.Value, len(elems))
		copy(out, elems)
		return value.Array(out), nil
	}
	runes := []rune(target.AsString())
	return value.String(string(runes[lo:hi])), nil
}

func sliceBound(node ast.Node, sc *scope.Scope, def, length int) (int, error) {
	if node == nil {
		return clamp(def, length), nil
	}
	v, err := Evaluate(node, sc)
	if err != nil {
		return 0, err
	}
	if !v.IsNumber() {
		return 0, jsoneerr.NewInterpreterError("slice indices must be numbers")
	}
	n := int(v.AsNumber())
	if n < 0 {
		n += length
	}
	return clamp(n, length), nil
}

func clamp(n, length int) int {
	if n < 0 {
		return 0
	}
	if n > length {
		return length
	}
	return n
}

func evalDot(n *ast.Dot, sc *scope.Scope) (value.Value, error) {
	target, err := Evaluate(n.Target, sc)
	if err != nil {
		return value.Null, err
	}
	if !target.IsObject() {
		return value.Null, jsoneerr.NewInterpreterError("dot operator expects an object")
	}
	v, ok := target.Get(n.Name)
	if !ok {
		return value.Null, jsoneerr.NewInterpreterError("object has no property %s", n.Name)
	}
	return v, nil
}

func evalCall(n *ast.Call, sc *scope.Scope) (value.Value, error) {
	callee, err := Evaluate(n.Callee, sc)
	if err != nil {
		return value.Null, err
	}
	if !callee.IsFunction() {
		return value.Null, jsoneerr.NewInterpreterError("value is not callable")
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Evaluate(a, sc)
		if err != nil {
			return value.Null, err
		}
		args[i] = v
	}
	return callee.AsFunction().Call(sc, args)
}
