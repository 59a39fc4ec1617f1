// Package value implements the extended JSON value model used throughout
// jsone: null, bool, number, string, array, object (kept sorted by key),
// first-class built-in functions, and the deletion marker sentinel.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindFunction
	KindDeletion
)

// Func is a built-in or user-supplied callable. Scope is declared as `any`
// here to avoid an import cycle with the scope package; callers type-assert
// it to *scope.Scope.
type Func struct {
	Name string
	Call func(scope any, args []Value) (Value, error)
}

// KV is a single key/value pair of an Object, stored sorted by Key.
type KV struct {
	Key string
	Val Value
}

// Value is the tagged JSON-plus-extras value used by the expression
// evaluator and template renderer.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  []KV
	fn   *Func
}

// Null is the null value.
var Null = Value{kind: KindNull}

// Deletion is the "not there" sentinel: it disappears from surrounding
// arrays and objects, and collapses to Null at the top level of a render.
var Deletion = Value{kind: KindDeletion}

// Bool constructs a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number constructs a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String constructs a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array constructs an array value from elements (copied by reference, not
// cloned — callers should not mutate elems after passing it in).
func Array(elems []Value) Value { return Value{kind: KindArray, arr: elems} }

// Object constructs an object value from pairs, sorting them by key.
func Object(pairs []KV) Value {
	sorted := make([]KV, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	// later duplicate keys win, matching map-insert semantics.
	dedup := make([]KV, 0, len(sorted))
	for _, kv := range sorted {
		if n := len(dedup); n > 0 && dedup[n-1].Key == kv.Key {
			dedup[n-1] = kv
			continue
		}
		dedup = append(dedup, kv)
	}
	return Value{kind: KindObject, obj: dedup}
}

// Function constructs a first-class function value.
func Function(f *Func) Value { return Value{kind: KindFunction, fn: f} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool     { return v.kind == KindNull }
func (v Value) IsBool() bool     { return v.kind == KindBool }
func (v Value) IsNumber() bool   { return v.kind == KindNumber }
func (v Value) IsString() bool   { return v.kind == KindString }
func (v Value) IsArray() bool    { return v.kind == KindArray }
func (v Value) IsObject() bool   { return v.kind == KindObject }
func (v Value) IsFunction() bool { return v.kind == KindFunction }
func (v Value) IsDeletion() bool { return v.kind == KindDeletion }

// AsBool returns the bool payload; only meaningful when IsBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the float64 payload; only meaningful when IsNumber.
func (v Value) AsNumber() float64 { return v.n }

// AsString returns the string payload; only meaningful when IsString.
func (v Value) AsString() string { return v.s }

// AsArray returns the element slice; only meaningful when IsArray. The
// returned slice shares storage with v and must not be mutated.
func (v Value) AsArray() []Value { return v.arr }

// AsObject returns the sorted key/value pairs; only meaningful when
// IsObject. The returned slice shares storage with v and must not be
// mutated.
func (v Value) AsObject() []KV { return v.obj }

// AsFunction returns the function payload; only meaningful when
// IsFunction.
func (v Value) AsFunction() *Func { return v.fn }

// Get looks up a key in an object value; returns (Null, false) if v is not
// an object or the key is absent.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Null, false
	}
	// objects are small in practice (template contexts, not data lakes);
	// linear scan over a sorted slice is simpler than maintaining a side
	// index and just as fast at these sizes.
	for _, kv := range v.obj {
		if kv.Key == key {
			return kv.Val, true
		}
	}
	return Null, false
}

// TypeName returns the jsone `typeof` name for v's kind.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindDeletion:
		return "null"
	}
	return "unknown"
}

// Truthy implements the truthiness law from spec.md §4.A.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull, KindDeletion:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0
	case KindString:
		return v.s != ""
	case KindArray:
		return len(v.arr) > 0
	case KindObject:
		return len(v.obj) > 0
	case KindFunction:
		return true
	}
	return false
}

// Equal implements structural equality: values of different kinds are
// never equal, objects compare key-by-key order-insensitively (trivial
// since both sides are stored sorted), and functions compare by identity
// of their Call pointer plus name.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull, KindDeletion:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for i := range a.obj {
			if a.obj[i].Key != b.obj[i].Key || !Equal(a.obj[i].Val, b.obj[i].Val) {
				return false
			}
		}
		return true
	case KindFunction:
		return a.fn == b.fn || (a.fn != nil && b.fn != nil && a.fn.Name == b.fn.Name &&
			fmt.Sprintf("%p", a.fn.Call) == fmt.Sprintf("%p", b.fn.Call))
	}
	return false
}

// Stringify implements the interpolation/operator-level string conversion
// from spec.md §4.A: scalars convert, arrays/objects/functions/deletion
// error.
func (v Value) Stringify() (string, error) {
	switch v.kind {
	case KindNull:
		return "null", nil
	case KindBool:
		if v.b {
			return "true", nil
		}
		return "false", nil
	case KindNumber:
		return formatNumber(v.n), nil
	case KindString:
		return v.s, nil
	default:
		return "", fmt.Errorf("cannot stringify a value of type %s", v.TypeName())
	}
}

// formatNumber produces the shortest round-tripping decimal, with no
// trailing decimal point for integral values.
func formatNumber(n float64) string {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
