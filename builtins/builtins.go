// Package builtins populates a root scope.Scope with the built-in
// functions available to every expression, per spec.md §4.G. Grounded on
// original_source/rs/src/builtins.rs.
package builtins

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/freeeve/jsone/duration"
	"github.com/freeeve/jsone/jsoneerr"
	"github.com/freeeve/jsone/scope"
	"github.com/freeeve/jsone/value"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lowerCaser = cases.Lower(language.Und)
	upperCaser = cases.Upper(language.Und)
)

// Root builds the process-wide, immutable built-ins scope. It has no
// parent: every other scope in a render ultimately chains up to it.
func Root() *scope.Scope {
	root := scope.New()
	register := func(name string, fn func(sc any, args []value.Value) (value.Value, error)) {
		root.Insert(name, value.Function(&value.Func{Name: name, Call: fn}))
	}

	register("abs", absBuiltin)
	register("str", strBuiltin)
	register("len", lenBuiltin)
	register("min", minBuiltin)
	register("max", maxBuiltin)
	register("sqrt", sqrtBuiltin)
	register("ceil", ceilBuiltin)
	register("floor", floorBuiltin)
	register("lowercase", lowercaseBuiltin)
	register("uppercase", uppercaseBuiltin)
	register("number", numberBuiltin)
	register("strip", stripBuiltin)
	register("lstrip", lstripBuiltin)
	register("rstrip", rstripBuiltin)
	register("range", rangeBuiltin)
	register("join", joinBuiltin)
	register("split", splitBuiltin)
	register("fromNow", fromNowBuiltin)
	register("typeof", typeofBuiltin)
	register("defined", definedBuiltin)

	return root
}

func unaryNumber(args []value.Value, op func(float64) float64) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, jsoneerr.NewInterpreterError("expected one argument")
	}
	if !args[0].IsNumber() {
		return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin")
	}
	return value.Number(op(args[0].AsNumber())), nil
}

func unaryString(args []value.Value, op func(string) string) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, jsoneerr.NewInterpreterError("expected one argument")
	}
	if !args[0].IsString() {
		return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin")
	}
	return value.String(op(args[0].AsString())), nil
}

func absBuiltin(_ any, args []value.Value) (value.Value, error) {
	return unaryNumber(args, math.Abs)
}

func sqrtBuiltin(_ any, args []value.Value) (value.Value, error) {
	return unaryNumber(args, math.Sqrt)
}

func ceilBuiltin(_ any, args []value.Value) (value.Value, error) {
	return unaryNumber(args, math.Ceil)
}

func floorBuiltin(_ any, args []value.Value) (value.Value, error) {
	return unaryNumber(args, math.Floor)
}

func lowercaseBuiltin(_ any, args []value.Value) (value.Value, error) {
	return unaryString(args, lowerCaser.String)
}

func uppercaseBuiltin(_ any, args []value.Value) (value.Value, error) {
	return unaryString(args, upperCaser.String)
}

func stripBuiltin(_ any, args []value.Value) (value.Value, error) {
	return unaryString(args, strings.TrimSpace)
}

func lstripBuiltin(_ any, args []value.Value) (value.Value, error) {
	return unaryString(args, func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) })
}

func rstripBuiltin(_ any, args []value.Value) (value.Value, error) {
	return unaryString(args, func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) })
}

func minBuiltin(_ any, args []value.Value) (value.Value, error) {
	return arrayArithmetic(args, math.Min)
}

func maxBuiltin(_ any, args []value.Value) (value.Value, error) {
	return arrayArithmetic(args, math.Max)
}

func arrayArithmetic(args []value.Value, f func(a, b float64) float64) (value.Value, error) {
	if len(args) == 0 {
		return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: expects at least one number")
	}
	res := 0.0
	for i, arg := range args {
		if !arg.IsNumber() {
			return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: expects numbers")
		}
		if i == 0 {
			res = arg.AsNumber()
			continue
		}
		res = f(arg.AsNumber(), res)
	}
	return value.Number(res), nil
}

func strBuiltin(_ any, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, jsoneerr.NewInterpreterError("str expects one argument")
	}
	s, err := args[0].Stringify()
	if err != nil {
		return value.Null, jsoneerr.WrapInterpreterError(err, "invalid arguments to builtin: str")
	}
	return value.String(s), nil
}

func lenBuiltin(_ any, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, jsoneerr.NewInterpreterError("len expects one argument")
	}
	switch {
	case args[0].IsString():
		return value.Number(float64(len([]rune(args[0].AsString())))), nil
	case args[0].IsArray():
		return value.Number(float64(len(args[0].AsArray()))), nil
	}
	return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: len")
}

func numberBuiltin(_ any, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, jsoneerr.NewInterpreterError("number expects one argument")
	}
	if !args[0].IsString() {
		return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: number")
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(args[0].AsString()), 64)
	if err != nil {
		return value.Null, jsoneerr.WrapInterpreterError(err, "string can't be converted to number")
	}
	return value.Number(n), nil
}

func rangeBuiltin(_ any, args []value.Value) (value.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return value.Null, jsoneerr.NewInterpreterError("range requires two arguments and optionally supports a third")
	}
	if !args[0].IsNumber() || !args[1].IsNumber() {
		return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: range")
	}
	start := int64(math.Round(args[0].AsNumber()))
	stop := int64(math.Round(args[1].AsNumber()))
	step := int64(1)
	if len(args) == 3 {
		if !args[2].IsNumber() {
			return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: range")
		}
		step = int64(math.Round(args[2].AsNumber()))
		if step <= 0 {
			return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: range")
		}
	}

	var elems []value.Value
	for i := start; i < stop; i += step {
		elems = append(elems, value.Number(float64(i)))
	}
	if elems == nil {
		elems = []value.Value{}
	}
	return value.Array(elems), nil
}

func joinBuiltin(_ any, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, jsoneerr.NewInterpreterError("join expects two arguments")
	}
	if !args[0].IsArray() {
		return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: join")
	}
	sep, err := args[1].Stringify()
	if err != nil {
		return value.Null, jsoneerr.WrapInterpreterError(err, "invalid separator for join")
	}
	parts := make([]string, len(args[0].AsArray()))
	for i, e := range args[0].AsArray() {
		s, err := e.Stringify()
		if err != nil {
			return value.Null, jsoneerr.WrapInterpreterError(err, "invalid arguments to builtin: join")
		}
		parts[i] = s
	}
	return value.String(strings.Join(parts, sep)), nil
}

func splitBuiltin(_ any, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, jsoneerr.NewInterpreterError("split expects two arguments")
	}
	if !args[0].IsString() {
		return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: split")
	}
	sep, err := args[1].Stringify()
	if err != nil {
		return value.Null, jsoneerr.WrapInterpreterError(err, "invalid separator for split")
	}
	s := args[0].AsString()
	if s == "" {
		return value.Array([]value.Value{value.String("")}), nil
	}
	var out []value.Value
	for _, frag := range strings.Split(s, sep) {
		if frag == "" {
			continue
		}
		out = append(out, value.String(frag))
	}
	if out == nil {
		out = []value.Value{}
	}
	return value.Array(out), nil
}

func fromNowBuiltin(sc any, args []value.Value) (value.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return value.Null, jsoneerr.NewInterpreterError("fromNow expects one or two arguments")
	}
	if !args[0].IsString() {
		return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: fromNow")
	}

	var reference string
	if len(args) == 2 {
		if !args[1].IsString() {
			return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: fromNow")
		}
		reference = args[1].AsString()
	} else {
		s, ok := sc.(*scope.Scope)
		if !ok {
			return value.Null, jsoneerr.NewInterpreterError("fromNow requires a scope to read `now` from")
		}
		now, ok := s.Get("now")
		if !ok || !now.IsString() {
			return value.Null, jsoneerr.NewInterpreterError("context value `now` must be a string")
		}
		reference = now.AsString()
	}

	d, ok := duration.Parse(args[0].AsString())
	if !ok {
		return value.Null, jsoneerr.NewInterpreterError("string %q isn't a time expression", args[0].AsString())
	}
	result, err := applyOffset(reference, d)
	if err != nil {
		return value.Null, jsoneerr.WrapInterpreterError(err, "invalid reference time")
	}
	return value.String(result), nil
}

func typeofBuiltin(_ any, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, jsoneerr.NewInterpreterError("typeof expects one argument")
	}
	return value.String(args[0].TypeName()), nil
}

func definedBuiltin(sc any, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, jsoneerr.NewInterpreterError("defined expects one argument")
	}
	if !args[0].IsString() {
		return value.Null, jsoneerr.NewInterpreterError("invalid arguments to builtin: defined")
	}
	s, ok := sc.(*scope.Scope)
	if !ok {
		return value.Null, jsoneerr.NewInterpreterError("defined requires a scope")
	}
	_, found := s.Get(args[0].AsString())
	return value.Bool(found), nil
}
