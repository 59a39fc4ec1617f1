package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonOf marshals v for comparison, sidestepping the int64-vs-float64
// distinction between a hand-written expected literal and numberToJSON's
// output (integral values in range serialize as int64).
func jsonOf(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestRenderSeedsNowFromFixedClock(t *testing.T) {
	t.Cleanup(ResetClock)
	UseTestNow()
	got, err := Render(map[string]any{"$eval": "now"}, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "2017-01-19T16:27:20.974Z", got)
}

func TestRenderScalarsPassThrough(t *testing.T) {
	cases := []any{42.0, "hello", true, nil}
	for _, c := range cases {
		got, err := Render(c, map[string]any{})
		require.NoError(t, err)
		assert.JSONEq(t, jsonOf(t, c), jsonOf(t, got))
	}
}

func TestRenderContextMustBeObject(t *testing.T) {
	_, err := Render(map[string]any{}, []any{1, 2})
	assert.Error(t, err)
}

func TestRenderInterpolatesStrings(t *testing.T) {
	got, err := Render("${x+1}", map[string]any{"x": 4.0})
	require.NoError(t, err)
	assert.Equal(t, "5", got)
}

func TestRenderArrayDropsDeletions(t *testing.T) {
	t.Cleanup(ResetClock)
	tpl := []any{1.0, map[string]any{"$if": "x > 3", "then": 2.0}, 3.0}
	got, err := Render(tpl, map[string]any{"x": 1.0})
	require.NoError(t, err)
	assert.JSONEq(t, `[1,3]`, jsonOf(t, got))
}

func TestRenderObjectEscapesDollarKey(t *testing.T) {
	got, err := Render(map[string]any{"$$if": 1.0}, map[string]any{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"$if":1}`, jsonOf(t, got))
}

func TestRenderIfThenElse(t *testing.T) {
	tpl := map[string]any{"$if": "x > 3", "then": "big", "else": "small"}
	got, err := Render(tpl, map[string]any{"x": 5.0})
	require.NoError(t, err)
	assert.Equal(t, "big", got)

	got, err = Render(tpl, map[string]any{"x": 1.0})
	require.NoError(t, err)
	assert.Equal(t, "small", got)
}

func TestRenderIfWithoutMatchingBranchDeletesKey(t *testing.T) {
	tpl := map[string]any{"a": 1.0, "b": map[string]any{"$if": "x > 3", "then": "big"}}
	got, err := Render(tpl, map[string]any{"x": 1.0})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, jsonOf(t, got))
}

func TestRenderLetBindsAndRendersIn(t *testing.T) {
	tpl := map[string]any{"$let": map[string]any{"x": 1.0, "y": 2.0}, "in": "${x+y}"}
	got, err := Render(tpl, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestRenderLetRejectsLeadingUnderscoreKey(t *testing.T) {
	tpl := map[string]any{"$let": map[string]any{"_x": 1.0}, "in": "${_x}"}
	_, err := Render(tpl, map[string]any{})
	assert.Error(t, err)
}

// TestRenderReduceEachNamesElementFirstThenAccumulator uses a
// non-commutative expression to pin down the binding positions
// themselves (a plain sum would pass even with the roles swapped): the
// first each(...) identifier must receive the array element and the
// second must receive the running accumulator, per SPEC_FULL.md §2.1's
// `each(v,a)` convention.
func TestRenderReduceEachNamesElementFirstThenAccumulator(t *testing.T) {
	tpl := map[string]any{
		"$reduce":   []any{1.0, 2.0, 3.0},
		"each(x,y)": map[string]any{"$eval": "y - x"},
		"initial":   100.0,
	}
	got, err := Render(tpl, map[string]any{})
	require.NoError(t, err)
	assert.JSONEq(t, `94`, jsonOf(t, got))
}

func TestRenderMapOverArray(t *testing.T) {
	tpl := map[string]any{"$map": []any{1.0, 2.0, 3.0}, "each(n)": map[string]any{"v": "${n*n}"}}
	got, err := Render(tpl, map[string]any{})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"v":"1"},{"v":"4"},{"v":"9"}]`, jsonOf(t, got))
}

func TestRenderReduceSumsWithEval(t *testing.T) {
	tpl := map[string]any{
		"$reduce":     []any{1.0, 2.0, 3.0, 4.0},
		"each(n,acc)": map[string]any{"$eval": "acc+n"},
		"initial":     0.0,
	}
	got, err := Render(tpl, map[string]any{})
	require.NoError(t, err)
	assert.JSONEq(t, `10`, jsonOf(t, got))
}

func TestRenderMergeReplacesKeysInOrder(t *testing.T) {
	tpl := map[string]any{"$merge": []any{
		map[string]any{"a": 1.0},
		map[string]any{"b": 2.0},
		map[string]any{"a": 3.0},
	}}
	got, err := Render(tpl, map[string]any{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":2}`, jsonOf(t, got))
}

func TestRenderSortMixedTypesErrors(t *testing.T) {
	_, err := Render(map[string]any{"$sort": []any{1.0, "a"}}, map[string]any{})
	assert.Error(t, err)
}

func TestRenderJSONSerializesWithSortedKeys(t *testing.T) {
	got, err := Render(map[string]any{"$json": map[string]any{"b": 2.0, "a": 1.0}}, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, got)
}

func TestRenderUnrecognizedOperatorErrors(t *testing.T) {
	_, err := Render(map[string]any{"$bogus": 1.0}, map[string]any{})
	assert.Error(t, err)
}

func TestRenderUndefinedSiblingPropertyErrors(t *testing.T) {
	_, err := Render(map[string]any{"$eval": "1", "bogus": true}, map[string]any{})
	assert.Error(t, err)
}

func TestRenderFromNowWithExplicitFrom(t *testing.T) {
	tpl := map[string]any{"$fromNow": "1 day", "from": "2000-01-01T00:00:00.000Z"}
	got, err := Render(tpl, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "2000-01-02T00:00:00.000Z", got)
}

func TestRenderFromNowUsesFixedClock(t *testing.T) {
	t.Cleanup(ResetClock)
	UseTestNow()
	got, err := Render(map[string]any{"$fromNow": "1 hour"}, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "2017-01-19T17:27:20.974Z", got)
}
