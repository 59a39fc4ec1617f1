package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/jsone/scope"
	"github.com/freeeve/jsone/value"
)

func call(t *testing.T, sc any, name string, args ...value.Value) value.Value {
	t.Helper()
	root := Root()
	fn, ok := root.Get(name)
	require.True(t, ok, "no such builtin %q", name)
	require.True(t, fn.IsFunction())
	got, err := fn.AsFunction().Call(sc, args)
	require.NoError(t, err, "calling %q", name)
	return got
}

func TestRootRegistersAllBuiltins(t *testing.T) {
	root := Root()
	names := []string{
		"abs", "str", "len", "min", "max", "sqrt", "ceil", "floor",
		"lowercase", "uppercase", "number", "strip", "lstrip", "rstrip",
		"range", "join", "split", "fromNow", "typeof", "defined",
	}
	for _, n := range names {
		v, ok := root.Get(n)
		assert.True(t, ok, "missing builtin %q", n)
		assert.True(t, v.IsFunction(), "builtin %q is not a function", n)
	}
}

func TestAbs(t *testing.T) {
	assert.Equal(t, value.Number(3), call(t, nil, "abs", value.Number(-3)))
}

func TestSqrtCeilFloor(t *testing.T) {
	assert.Equal(t, value.Number(3), call(t, nil, "sqrt", value.Number(9)))
	assert.Equal(t, value.Number(2), call(t, nil, "ceil", value.Number(1.2)))
	assert.Equal(t, value.Number(1), call(t, nil, "floor", value.Number(1.8)))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, value.Number(1), call(t, nil, "min", value.Number(3), value.Number(1), value.Number(2)))
	assert.Equal(t, value.Number(3), call(t, nil, "max", value.Number(3), value.Number(1), value.Number(2)))
}

func TestStr(t *testing.T) {
	assert.Equal(t, value.String("42"), call(t, nil, "str", value.Number(42)))
	assert.Equal(t, value.String("true"), call(t, nil, "str", value.Bool(true)))
}

func TestLenCountsUnicodeScalars(t *testing.T) {
	assert.Equal(t, value.Number(5), call(t, nil, "len", value.String("héllo")))
	assert.Equal(t, value.Number(3), call(t, nil, "len", value.Array([]value.Value{value.Number(1), value.Number(2), value.Number(3)})))
}

func TestLowercaseUppercase(t *testing.T) {
	assert.Equal(t, value.String("abc"), call(t, nil, "lowercase", value.String("ABC")))
	assert.Equal(t, value.String("ABC"), call(t, nil, "uppercase", value.String("abc")))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, value.Number(42), call(t, nil, "number", value.String(" 42 ")))
}

func TestNumberInvalidErrors(t *testing.T) {
	root := Root()
	fn, _ := root.Get("number")
	_, err := fn.AsFunction().Call(nil, []value.Value{value.String("nope")})
	assert.Error(t, err)
}

func TestStripFamily(t *testing.T) {
	assert.Equal(t, value.String("hi"), call(t, nil, "strip", value.String("  hi  ")))
	assert.Equal(t, value.String("hi  "), call(t, nil, "lstrip", value.String("  hi  ")))
	assert.Equal(t, value.String("  hi"), call(t, nil, "rstrip", value.String("  hi  ")))
}

func TestStripFamilyIsUnicodeAware(t *testing.T) {
	// U+00A0 (no-break space) and U+2003 (em space) are whitespace per
	// unicode.IsSpace but not in an ASCII cutset like " \t\n\r\v\f".
	s := "  hi  "
	assert.Equal(t, value.String("hi"), call(t, nil, "strip", value.String(s)))
	assert.Equal(t, value.String("hi  "), call(t, nil, "lstrip", value.String(s)))
	assert.Equal(t, value.String("  hi"), call(t, nil, "rstrip", value.String(s)))
}

func TestRange(t *testing.T) {
	got := call(t, nil, "range", value.Number(0), value.Number(3))
	require.True(t, got.IsArray())
	want := []value.Value{value.Number(0), value.Number(1), value.Number(2)}
	assert.Equal(t, want, got.AsArray())
}

func TestRangeWithStep(t *testing.T) {
	got := call(t, nil, "range", value.Number(0), value.Number(10), value.Number(5))
	want := []value.Value{value.Number(0), value.Number(5)}
	assert.Equal(t, want, got.AsArray())
}

func TestJoinStringifiesElements(t *testing.T) {
	arr := value.Array([]value.Value{value.Number(1), value.Number(2), value.Number(3)})
	assert.Equal(t, value.String("1-2-3"), call(t, nil, "join", arr, value.String("-")))
}

func TestSplitDropsEmptyFragments(t *testing.T) {
	got := call(t, nil, "split", value.String("a,,b"), value.String(","))
	want := []value.Value{value.String("a"), value.String("b")}
	assert.Equal(t, want, got.AsArray())
}

func TestTypeofReportsKinds(t *testing.T) {
	assert.Equal(t, value.String("array"), call(t, nil, "typeof", value.Array([]value.Value{value.Number(1)})))
	assert.Equal(t, value.String("number"), call(t, nil, "typeof", value.Number(1)))
	assert.Equal(t, value.String("null"), call(t, nil, "typeof", value.Null))
}

func TestDefinedChecksScopeBinding(t *testing.T) {
	sc := scope.New()
	sc.Insert("x", value.Number(1))
	assert.Equal(t, value.Bool(true), call(t, sc, "defined", value.String("x")))
	assert.Equal(t, value.Bool(false), call(t, sc, "defined", value.String("y")))
}

func TestDefinedRequiresRealScope(t *testing.T) {
	root := Root()
	fn, _ := root.Get("defined")
	_, err := fn.AsFunction().Call(nil, []value.Value{value.String("x")})
	assert.Error(t, err)
}

func TestFromNowUsesScopeNowByDefault(t *testing.T) {
	sc := scope.New()
	sc.Insert("now", value.String("2017-01-19T16:27:20.974Z"))
	got := call(t, sc, "fromNow", value.String("1 hour"))
	assert.Equal(t, value.String("2017-01-19T17:27:20.974Z"), got)
}

func TestFromNowWithExplicitReference(t *testing.T) {
	got := call(t, nil, "fromNow", value.String("1 day"), value.String("2000-01-01T00:00:00.000Z"))
	assert.Equal(t, value.String("2000-01-02T00:00:00.000Z"), got)
}
