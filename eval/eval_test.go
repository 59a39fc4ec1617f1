package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/jsone/scope"
	"github.com/freeeve/jsone/value"
)

func evalString(t *testing.T, expr string, sc *scope.Scope) value.Value {
	t.Helper()
	v, err := EvaluateString(expr, sc)
	require.NoError(t, err, "expr %q", expr)
	return v
}

func TestEvaluateArithmetic(t *testing.T) {
	cases := []struct {
		expr string
		want value.Value
	}{
		{"1+2", value.Number(3)},
		{"2-1", value.Number(1)},
		{"2*3", value.Number(6)},
		{"6/3", value.Number(2)},
		{"2**3**2", value.Number(512)}, // right associative
		{"-3+1", value.Number(-2)},
		{"+3", value.Number(3)},
		{"'a'+'b'", value.String("ab")},
	}
	sc := scope.New()
	for _, c := range cases {
		got := evalString(t, c.expr, sc)
		assert.True(t, value.Equal(c.want, got), "expr %q: want %v got %v", c.expr, c.want, got)
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	_, err := EvaluateString("1/0", scope.New())
	assert.Error(t, err)
}

func TestEvaluateShortCircuit(t *testing.T) {
	sc := scope.New()
	assert.Equal(t, value.Bool(true), evalString(t, "true || (1/0 > 0)", sc))
	assert.Equal(t, value.Bool(false), evalString(t, "false && (1/0 > 0)", sc))
}

func TestEvaluateComparisons(t *testing.T) {
	sc := scope.New()
	assert.Equal(t, value.Bool(true), evalString(t, "1 < 2", sc))
	assert.Equal(t, value.Bool(true), evalString(t, "'a' < 'b'", sc))
	assert.Equal(t, value.Bool(true), evalString(t, "1 == 1", sc))
	assert.Equal(t, value.Bool(true), evalString(t, "1 != 2", sc))
}

func TestEvaluateIn(t *testing.T) {
	sc := scope.New()
	sc.Insert("xs", value.Array([]value.Value{value.Number(1), value.Number(2)}))
	sc.Insert("obj", value.Object([]value.KV{{Key: "a", Val: value.Number(1)}}))
	assert.Equal(t, value.Bool(true), evalString(t, "2 in xs", sc))
	assert.Equal(t, value.Bool(false), evalString(t, "3 in xs", sc))
	assert.Equal(t, value.Bool(true), evalString(t, "'ell' in 'hello'", sc))
	assert.Equal(t, value.Bool(true), evalString(t, "'a' in obj", sc))
	assert.Equal(t, value.Bool(false), evalString(t, "'b' in obj", sc))
}

func TestEvaluateIndexNegativeWraps(t *testing.T) {
	sc := scope.New()
	sc.Insert("xs", value.Array([]value.Value{value.Number(1), value.Number(2), value.Number(3)}))
	assert.Equal(t, value.Number(3), evalString(t, "xs[-1]", sc))
	assert.Equal(t, value.Number(1), evalString(t, "xs[0]", sc))
}

func TestEvaluateIndexOutOfBoundsErrors(t *testing.T) {
	sc := scope.New()
	sc.Insert("xs", value.Array([]value.Value{value.Number(1)}))
	_, err := EvaluateString("xs[5]", sc)
	assert.Error(t, err)
}

func TestEvaluateObjectIndexMissingKeyIsNull(t *testing.T) {
	sc := scope.New()
	sc.Insert("obj", value.Object([]value.KV{{Key: "a", Val: value.Number(1)}}))
	got := evalString(t, "obj[\"b\"]", sc)
	assert.True(t, got.IsNull())
}

func TestEvaluateDotMissingKeyErrors(t *testing.T) {
	sc := scope.New()
	sc.Insert("obj", value.Object([]value.KV{{Key: "a", Val: value.Number(1)}}))
	_, err := EvaluateString("obj.b", sc)
	assert.Error(t, err)
}

func TestEvaluateSliceClampsOutOfRange(t *testing.T) {
	sc := scope.New()
	sc.Insert("xs", value.Array([]value.Value{value.Number(1), value.Number(2), value.Number(3)}))
	got := evalString(t, "xs[-100:100]", sc)
	require.True(t, got.IsArray())
	assert.Len(t, got.AsArray(), 3)
}

func TestEvaluateStringSlice(t *testing.T) {
	sc := scope.New()
	sc.Insert("s", value.String("hello"))
	got := evalString(t, "s[1:3]", sc)
	assert.Equal(t, value.String("el"), got)
}

func TestEvaluateUnknownIdentifierErrors(t *testing.T) {
	_, err := EvaluateString("nope", scope.New())
	assert.Error(t, err)
}

func TestEvaluateArrayAndObjectLiterals(t *testing.T) {
	sc := scope.New()
	got := evalString(t, "[1,2,3]", sc)
	require.True(t, got.IsArray())
	assert.Len(t, got.AsArray(), 3)

	got = evalString(t, `{a: 1, b: 2}`, sc)
	require.True(t, got.IsObject())
	v, ok := got.Get("a")
	require.True(t, ok)
	assert.Equal(t, value.Number(1), v)
}

func TestEvaluateCallRequiresFunction(t *testing.T) {
	sc := scope.New()
	sc.Insert("notAFunc", value.Number(1))
	_, err := EvaluateString("notAFunc()", sc)
	assert.Error(t, err)
}

func TestEvaluateCallBuiltin(t *testing.T) {
	sc := scope.New()
	sc.Insert("double", value.Function(&value.Func{
		Name: "double",
		Call: func(_ any, args []value.Value) (value.Value, error) {
			return value.Number(args[0].AsNumber() * 2), nil
		},
	}))
	got := evalString(t, "double(21)", sc)
	assert.Equal(t, value.Number(42), got)
}

func TestInterpolateBasic(t *testing.T) {
	sc := scope.New()
	sc.Insert("x", value.Number(4))
	out, err := Interpolate("value is ${x+1}", sc)
	require.NoError(t, err)
	assert.Equal(t, "value is 5", out)
}

func TestInterpolateEscapeDoublesToLiteral(t *testing.T) {
	out, err := Interpolate("$${x}", scope.New())
	require.NoError(t, err)
	assert.Equal(t, "${x}", out)
}

func TestInterpolateNullIsEmptyString(t *testing.T) {
	out, err := Interpolate("[${null}]", scope.New())
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestInterpolateNoDollarIsUnchanged(t *testing.T) {
	out, err := Interpolate("plain text", scope.New())
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}

func TestInterpolateUnterminatedErrors(t *testing.T) {
	_, err := Interpolate("${1", scope.New())
	assert.Error(t, err)
}

func TestInterpolateArrayResultErrors(t *testing.T) {
	_, err := Interpolate("${[1,2]}", scope.New())
	assert.Error(t, err)
}
