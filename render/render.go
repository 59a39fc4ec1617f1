// Package render implements jsone's top-level template renderer: the
// recursive walk over a JSON-plus-operators template, operator dispatch,
// and the `now` clock seeding. Grounded on
// original_source/rs/src/render.rs's `render`/`_render`/`maybe_operator`.
package render

import (
	"sort"
	"strings"

	"github.com/freeeve/jsone/builtins"
	"github.com/freeeve/jsone/eval"
	"github.com/freeeve/jsone/jsoneerr"
	"github.com/freeeve/jsone/scope"
	"github.com/freeeve/jsone/value"
)

var builtinsRoot = builtins.Root()

// Render converts template and context (both plain `any` as produced by
// encoding/json or goccy/go-yaml unmarshaling) into a rendered plain value.
func Render(template any, context any) (any, error) {
	ctxVal, err := value.FromJSON(context)
	if err != nil {
		return nil, jsoneerr.WrapTemplateError(err, "invalid context")
	}
	if !ctxVal.IsObject() {
		return nil, jsoneerr.NewTemplateError("context must be a JSON object")
	}

	rootScope, err := scope.FromObject(ctxVal, builtinsRoot)
	if err != nil {
		return nil, jsoneerr.WrapTemplateError(err, "invalid context")
	}

	sc := rootScope.Child()
	sc.Insert("now", value.String(nowString()))

	tplVal, err := value.FromJSON(template)
	if err != nil {
		return nil, jsoneerr.WrapTemplateError(err, "invalid template")
	}

	result, err := renderValue(tplVal, sc)
	if err != nil {
		return nil, err
	}
	if result.IsDeletion() {
		result = value.Null
	}
	return value.ToJSON(result)
}

// renderValue is the recursive inner render, operating on the Value
// representation throughout so intermediate results (functions, deletion
// markers) never need to round-trip through plain JSON.
func renderValue(template value.Value, sc *scope.Scope) (value.Value, error) {
	switch template.Kind() {
	case value.KindNumber, value.KindBool, value.KindNull:
		return template, nil

	case value.KindString:
		s, err := eval.Interpolate(template.AsString(), sc)
		if err != nil {
			return value.Null, err
		}
		return value.String(s), nil

	case value.KindArray:
		var out []value.Value
		for _, elem := range template.AsArray() {
			rendered, err := renderValue(elem, sc)
			if err != nil {
				return value.Null, err
			}
			if rendered.IsDeletion() {
				continue
			}
			out = append(out, rendered)
		}
		if out == nil {
			out = []value.Value{}
		}
		return value.Array(out), nil

	case value.KindObject:
		return renderObject(template, sc)
	}
	return value.Null, jsoneerr.NewTemplateError("template value of type %s is not renderable", template.TypeName())
}

func renderObject(obj value.Value, sc *scope.Scope) (value.Value, error) {
	fields := obj.AsObject()

	// first pass: does any key (after interpolation) begin with a single `$`?
	for _, kv := range fields {
		interpolated, err := eval.Interpolate(kv.Key, sc)
		if err != nil {
			return value.Null, err
		}
		if strings.HasPrefix(interpolated, "$") && !strings.HasPrefix(interpolated, "$$") {
			rendered, handled, err := dispatchOperator(interpolated, kv.Val, obj, sc)
			if err != nil {
				return value.Null, err
			}
			if handled {
				return rendered, nil
			}
		}
	}

	// second pass: no operator present, recurse over every key
	pairs := make([]value.KV, 0, len(fields))
	for _, kv := range fields {
		rendered, err := renderValue(kv.Val, sc)
		if err != nil {
			return value.Null, err
		}
		if rendered.IsDeletion() {
			continue
		}
		key := kv.Key
		if strings.HasPrefix(key, "$$") {
			key = key[1:]
		}
		interpolatedKey, err := eval.Interpolate(key, sc)
		if err != nil {
			return value.Null, err
		}
		pairs = append(pairs, value.KV{Key: interpolatedKey, Val: rendered})
	}
	return value.Object(pairs), nil
}

// checkOperatorProperties validates that every sibling key of operator
// (other than the operator key itself) passes allowed. Grounded on
// render.rs's `check_operator_properties`.
func checkOperatorProperties(operator string, obj value.Value, allowed func(string) bool) error {
	fields := obj.AsObject()
	if len(fields) == 1 {
		return nil
	}
	var unknown []string
	for _, kv := range fields {
		if kv.Key == operator {
			continue
		}
		if !allowed(kv.Key) {
			unknown = append(unknown, kv.Key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return jsoneerr.NewTemplateError("%s has undefined properties: %s", operator, strings.Join(unknown, " "))
	}
	return nil
}

func noSiblings(string) bool { return false }
