package render

import (
	"regexp"

	"github.com/freeeve/jsone/eval"
	"github.com/freeeve/jsone/jsoneerr"
	"github.com/freeeve/jsone/scope"
	"github.com/freeeve/jsone/value"
)

// dispatchOperator evaluates the recognized `$op` named by operator. An
// unrecognized `$`-prefixed key is always an error (grounded on render.rs's
// `maybe_operator`): there is no "not an operator" outcome once a key has
// passed the single-`$`-prefix check in renderObject.
func dispatchOperator(operator string, opValue value.Value, obj value.Value, sc *scope.Scope) (value.Value, bool, error) {
	switch operator {
	case "$eval":
		v, err := evalOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$if":
		v, err := ifOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$let":
		v, err := letOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$map":
		v, err := mapOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$reduce":
		v, err := reduceOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$match":
		v, err := matchOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$switch":
		v, err := switchOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$merge":
		v, err := mergeOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$mergeDeep":
		v, err := mergeDeepOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$flatten":
		v, err := flattenOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$flattenDeep":
		v, err := flattenDeepOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$reverse":
		v, err := reverseOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$sort":
		v, err := sortOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$fromNow":
		v, err := fromNowOperator(operator, opValue, obj, sc)
		return v, true, err
	case "$json":
		v, err := jsonOperator(operator, opValue, obj, sc)
		return v, true, err
	}
	return value.Null, true, jsoneerr.NewTemplateError("$<identifier> is reserved; use $$<identifier> (%s)", operator)
}

func sibling(obj value.Value, key string) (value.Value, bool) {
	return obj.Get(key)
}

func evalOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, noSiblings); err != nil {
		return value.Null, err
	}
	if !v.IsString() {
		return value.Null, jsoneerr.NewTemplateError("$eval must be given a string expression")
	}
	return eval.EvaluateString(v.AsString(), sc)
}

func ifOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, func(p string) bool { return p == "then" || p == "else" }); err != nil {
		return value.Null, err
	}
	if !v.IsString() {
		return value.Null, jsoneerr.NewTemplateError("$if can evaluate string expressions only")
	}
	cond, err := eval.EvaluateString(v.AsString(), sc)
	if err != nil {
		return value.Null, err
	}
	prop := "else"
	if cond.Truthy() {
		prop = "then"
	}
	branch, ok := sibling(obj, prop)
	if !ok {
		return value.Deletion, nil
	}
	return renderValue(branch, sc)
}

var letKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func letOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, func(p string) bool { return p == "in" }); err != nil {
		return value.Null, err
	}
	if !v.IsObject() {
		return value.Null, jsoneerr.NewTemplateError("$let value must be an object")
	}
	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}
	if !rendered.IsObject() {
		return value.Null, jsoneerr.NewTemplateError("$let value must be an object")
	}

	child := sc.Child()
	for _, kv := range rendered.AsObject() {
		if !letKeyPattern.MatchString(kv.Key) {
			return value.Null, jsoneerr.NewTemplateError("top level keys of $let must follow /[a-zA-Z][a-zA-Z0-9_]*/")
		}
		child.Insert(kv.Key, kv.Val)
	}

	inTpl, ok := sibling(obj, "in")
	if !ok {
		return value.Null, jsoneerr.NewTemplateError("$let operator requires an `in` clause")
	}
	return renderValue(inTpl, child)
}

// eachPattern matches `each(ident)` or `each(ident,ident)`, grounded on
// op_props.rs's `parse_each`.
var eachPattern = regexp.MustCompile(`^each\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:,\s*([A-Za-z_][A-Za-z0-9_]*)\s*)?\)$`)

func parseEach(key string) (valueVar, indexVar string, ok bool) {
	m := eachPattern.FindStringSubmatch(key)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// eachThreePattern matches `each(ident,ident)` or `each(ident,ident,ident)`,
// grounded on op_props.rs's `parse_each_three` ($reduce's sibling syntax).
// Per SPEC_FULL.md §2.1, `each(v,a[,i])` names the element variable first
// and the accumulator variable second.
var eachThreePattern = regexp.MustCompile(`^each\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*,\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:,\s*([A-Za-z_][A-Za-z0-9_]*)\s*)?\)$`)

func parseEachThree(key string) (elemVar, accVar, indexVar string, ok bool) {
	m := eachThreePattern.FindStringSubmatch(key)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

func findEachKey(obj value.Value, operator string) (string, bool) {
	for _, kv := range obj.AsObject() {
		if kv.Key == operator {
			continue
		}
		if _, _, ok := parseEach(kv.Key); ok {
			return kv.Key, true
		}
	}
	return "", false
}

func mapOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, func(p string) bool { _, _, ok := parseEach(p); return ok }); err != nil {
		return value.Null, err
	}
	if len(obj.AsObject()) != 2 {
		return value.Null, jsoneerr.NewTemplateError("$map must have exactly two properties")
	}
	eachKey, ok := findEachKey(obj, operator)
	if !ok {
		return value.Null, jsoneerr.NewTemplateError("$map requires each(identifier[,identifier]) syntax")
	}
	valueVar, indexVar, _ := parseEach(eachKey)
	eachTpl, _ := sibling(obj, eachKey)

	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}

	switch {
	case rendered.IsArray():
		var out []value.Value
		for i, elem := range rendered.AsArray() {
			child := sc.Child()
			child.Insert(valueVar, elem)
			if indexVar != "" {
				child.Insert(indexVar, value.Number(float64(i)))
			}
			res, err := renderValue(eachTpl, child)
			if err != nil {
				return value.Null, err
			}
			if res.IsDeletion() {
				continue
			}
			out = append(out, res)
		}
		if out == nil {
			out = []value.Value{}
		}
		return value.Array(out), nil

	case rendered.IsObject():
		var pairs []value.KV
		for _, kv := range rendered.AsObject() {
			child := sc.Child()
			if indexVar != "" {
				child.Insert(indexVar, value.String(kv.Key))
				child.Insert(valueVar, kv.Val)
			} else {
				child.Insert(valueVar, value.Object([]value.KV{
					{Key: "key", Val: value.String(kv.Key)},
					{Key: "val", Val: kv.Val},
				}))
			}
			res, err := renderValue(eachTpl, child)
			if err != nil {
				return value.Null, err
			}
			if !res.IsObject() {
				return value.Null, jsoneerr.NewTemplateError("$map on objects expects each(..) to evaluate to an object")
			}
			pairs = append(pairs, res.AsObject()...)
		}
		return value.Object(pairs), nil
	}
	return value.Null, jsoneerr.NewTemplateError("$map value must evaluate to an array or object")
}

// reduceOperator is a supplemented operator, absent from render.rs but
// grounded on op_props.rs's `parse_each_three`, which parses exactly the
// sibling syntax this needs. See SPEC_FULL.md §2.1.
func reduceOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	allowed := func(p string) bool {
		if p == "initial" {
			return true
		}
		_, _, _, ok := parseEachThree(p)
		return ok
	}
	if err := checkOperatorProperties(operator, obj, allowed); err != nil {
		return value.Null, err
	}

	var eachKey string
	for _, kv := range obj.AsObject() {
		if kv.Key == operator || kv.Key == "initial" {
			continue
		}
		eachKey = kv.Key
	}
	elemVar, accVar, indexVar, ok := parseEachThree(eachKey)
	if !ok {
		return value.Null, jsoneerr.NewTemplateError("$reduce requires each(identifier,identifier[,identifier]) syntax")
	}
	eachTpl, _ := sibling(obj, eachKey)

	initialTpl, hasInitial := sibling(obj, "initial")
	if !hasInitial {
		return value.Null, jsoneerr.NewTemplateError("$reduce operator requires an `initial` clause")
	}
	acc, err := renderValue(initialTpl, sc)
	if err != nil {
		return value.Null, err
	}

	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}
	if !rendered.IsArray() {
		return value.Null, jsoneerr.NewTemplateError("$reduce value must evaluate to an array")
	}

	for i, elem := range rendered.AsArray() {
		child := sc.Child()
		child.Insert(accVar, acc)
		child.Insert(elemVar, elem)
		if indexVar != "" {
			child.Insert(indexVar, value.Number(float64(i)))
		}
		acc, err = renderValue(eachTpl, child)
		if err != nil {
			return value.Null, err
		}
	}
	return acc, nil
}

func matchOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, noSiblings); err != nil {
		return value.Null, err
	}
	if !v.IsObject() {
		return value.Null, jsoneerr.NewTemplateError("$match can evaluate objects only")
	}
	var out []value.Value
	for _, kv := range v.AsObject() {
		cond, err := eval.EvaluateString(kv.Key, sc)
		if err != nil {
			return value.Null, jsoneerr.WrapTemplateError(err, "parsing error in condition")
		}
		if !cond.Truthy() {
			continue
		}
		rendered, err := renderValue(kv.Val, sc)
		if err != nil {
			return value.Null, err
		}
		out = append(out, rendered)
	}
	if out == nil {
		out = []value.Value{}
	}
	return value.Array(out), nil
}

func switchOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if !v.IsObject() {
		return value.Null, jsoneerr.NewTemplateError("$switch can evaluate objects only")
	}
	var matched value.Value
	var hasMatch bool
	var def value.Value
	var hasDefault bool

	for _, kv := range v.AsObject() {
		if kv.Key == "$default" {
			def = kv.Val
			hasDefault = true
			continue
		}
		cond, err := eval.EvaluateString(kv.Key, sc)
		if err != nil {
			return value.Null, jsoneerr.WrapTemplateError(err, "parsing error in condition")
		}
		if !cond.Truthy() {
			continue
		}
		if hasMatch {
			return value.Null, jsoneerr.NewTemplateError("$switch can only have one truthy condition")
		}
		matched = kv.Val
		hasMatch = true
	}

	switch {
	case hasMatch:
		return renderValue(matched, sc)
	case hasDefault:
		return renderValue(def, sc)
	default:
		return value.Deletion, nil
	}
}

func mergeOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, noSiblings); err != nil {
		return value.Null, err
	}
	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}
	if !rendered.IsArray() {
		return value.Null, jsoneerr.NewTemplateError("$merge value must evaluate to an array of objects")
	}
	var pairs []value.KV
	for _, item := range rendered.AsArray() {
		if !item.IsObject() {
			return value.Null, jsoneerr.NewTemplateError("$merge value must evaluate to an array of objects")
		}
		pairs = append(pairs, item.AsObject()...)
	}
	return value.Object(pairs), nil
}

func mergeDeepOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, noSiblings); err != nil {
		return value.Null, err
	}
	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}
	if !rendered.IsArray() {
		return value.Null, jsoneerr.NewTemplateError("$mergeDeep value must evaluate to an array of objects")
	}
	acc := value.Object(nil)
	for _, item := range rendered.AsArray() {
		if !item.IsObject() {
			return value.Null, jsoneerr.NewTemplateError("$mergeDeep value must evaluate to an array of objects")
		}
		acc = mergeDeep(acc, item)
	}
	return acc, nil
}

func mergeDeep(a, b value.Value) value.Value {
	if a.IsArray() && b.IsArray() {
		combined := make([]value.Value, 0, len(a.AsArray())+len(b.AsArray()))
		combined = append(combined, a.AsArray()...)
		combined = append(combined, b.AsArray()...)
		return value.Array(combined)
	}
	if a.IsObject() && b.IsObject() {
		pairs := make([]value.KV, 0, len(a.AsObject())+len(b.AsObject()))
		pairs = append(pairs, a.AsObject()...)
		for _, kv := range b.AsObject() {
			if existing, ok := a.Get(kv.Key); ok {
				pairs = append(pairs, value.KV{Key: kv.Key, Val: mergeDeep(existing, kv.Val)})
				continue
			}
			pairs = append(pairs, kv)
		}
		return value.Object(pairs)
	}
	return b
}

func flattenOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, noSiblings); err != nil {
		return value.Null, err
	}
	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}
	if !rendered.IsArray() {
		return value.Null, jsoneerr.NewTemplateError("$flatten value must evaluate to an array")
	}
	var out []value.Value
	for _, item := range rendered.AsArray() {
		if item.IsArray() {
			out = append(out, item.AsArray()...)
		} else {
			out = append(out, item)
		}
	}
	if out == nil {
		out = []value.Value{}
	}
	return value.Array(out), nil
}

func flattenDeepOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, noSiblings); err != nil {
		return value.Null, err
	}
	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}
	if !rendered.IsArray() {
		return value.Null, jsoneerr.NewTemplateError("$flattenDeep value must evaluate to an array")
	}
	var out []value.Value
	var flatten func(value.Value)
	flatten = func(item value.Value) {
		if item.IsArray() {
			for _, sub := range item.AsArray() {
				flatten(sub)
			}
			return
		}
		out = append(out, item)
	}
	flatten(rendered)
	if out == nil {
		out = []value.Value{}
	}
	return value.Array(out), nil
}

func reverseOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, noSiblings); err != nil {
		return value.Null, err
	}
	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}
	if !rendered.IsArray() {
		return value.Null, jsoneerr.NewTemplateError("$reverse value must evaluate to an array")
	}
	src := rendered.AsArray()
	out := make([]value.Value, len(src))
	for i, e := range src {
		out[len(src)-1-i] = e
	}
	return value.Array(out), nil
}

var byRegexp = regexp.MustCompile(`^by\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)$`)

func byPattern(key string) (string, bool) {
	m := byRegexp.FindStringSubmatch(key)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func sortOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, func(p string) bool { _, ok := byPattern(p); return ok }); err != nil {
		return value.Null, err
	}
	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}
	if !rendered.IsArray() {
		return value.Null, jsoneerr.NewTemplateError("values to be sorted must have the same type")
	}
	arr := rendered.AsArray()
	if len(arr) == 0 {
		return value.Array(nil), nil
	}

	var byVar string
	var byExpr string
	hasBy := false
	for _, kv := range obj.AsObject() {
		if kv.Key == operator {
			continue
		}
		name, ok := byPattern(kv.Key)
		if !ok {
			return value.Null, jsoneerr.NewTemplateError("$sort requires by(identifier) syntax")
		}
		if !kv.Val.IsString() {
			return value.Null, jsoneerr.NewInterpreterError("invalid expression in $sort by")
		}
		byVar, byExpr, hasBy = name, kv.Val.AsString(), true
	}

	keys := make([]value.Value, len(arr))
	if hasBy {
		for i, item := range arr {
			child := sc.Child()
			child.Insert(byVar, item)
			k, err := eval.EvaluateString(byExpr, child)
			if err != nil {
				return value.Null, err
			}
			keys[i] = k
		}
	} else {
		copy(keys, arr)
	}

	allStrings, allNumbers := true, true
	for _, k := range keys {
		if !k.IsString() {
			allStrings = false
		}
		if !k.IsNumber() {
			allNumbers = false
		}
	}
	if !allStrings && !allNumbers {
		return value.Null, jsoneerr.NewTemplateError("values to be sorted must have the same type")
	}

	type pair struct {
		key value.Value
		val value.Value
	}
	pairs := make([]pair, len(arr))
	for i := range arr {
		pairs[i] = pair{keys[i], arr[i]}
	}
	stableSort(pairs, func(i, j int) bool {
		if allStrings {
			return pairs[i].key.AsString() < pairs[j].key.AsString()
		}
		return pairs[i].key.AsNumber() < pairs[j].key.AsNumber()
	})

	out := make([]value.Value, len(pairs))
	for i, p := range pairs {
		out[i] = p.val
	}
	return value.Array(out), nil
}

// stableSort is a tiny insertion sort used instead of sort.SliceStable to
// avoid reflection over the closure-captured pair type; arrays sorted by
// templates are small in practice.
func stableSort[T any](s []T, less func(i, j int) bool) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func fromNowOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, func(p string) bool { return p == "from" }); err != nil {
		return value.Null, err
	}

	var reference string
	if fromVal, ok := sibling(obj, "from"); ok {
		rendered, err := renderValue(fromVal, sc)
		if err != nil {
			return value.Null, err
		}
		if !rendered.IsString() {
			return value.Null, jsoneerr.NewTemplateError("$fromNow expects a string")
		}
		reference = rendered.AsString()
	} else {
		nowVal, ok := sc.Get("now")
		if !ok || !nowVal.IsString() {
			return value.Null, jsoneerr.NewInterpreterError("context value `now` must be a string")
		}
		reference = nowVal.AsString()
	}

	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}
	if !rendered.IsString() {
		return value.Null, jsoneerr.NewTemplateError("$fromNow expects a string")
	}

	d, ok := parseOffset(rendered.AsString())
	if !ok {
		return value.Null, jsoneerr.NewInterpreterError("string %q isn't a time expression", rendered.AsString())
	}
	result, err := applyOffset(reference, d)
	if err != nil {
		return value.Null, jsoneerr.WrapInterpreterError(err, "invalid reference time")
	}
	return value.String(result), nil
}

func jsonOperator(operator string, v value.Value, obj value.Value, sc *scope.Scope) (value.Value, error) {
	if err := checkOperatorProperties(operator, obj, noSiblings); err != nil {
		return value.Null, err
	}
	rendered, err := renderValue(v, sc)
	if err != nil {
		return value.Null, err
	}
	s, err := value.ToCompactJSON(rendered)
	if err != nil {
		return value.Null, jsoneerr.WrapInterpreterError(err, "cannot serialize $json value")
	}
	return value.String(s), nil
}
