package value

import (
	"encoding/json"
	"fmt"
	"math"
)

const u32Max = float64(4294967295) // math.MaxUint32, kept as a float64 constant

// FromJSON converts a host JSON value (as produced by encoding/json's
// Unmarshal into `any`, or goccy/go-yaml's Unmarshal into `any`) into a
// Value.
func FromJSON(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Null, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			cv, err := FromJSON(e)
			if err != nil {
				return Null, err
			}
			elems[i] = cv
		}
		return Array(elems), nil
	case map[string]any:
		pairs := make([]KV, 0, len(t))
		for k, e := range t {
			cv, err := FromJSON(e)
			if err != nil {
				return Null, err
			}
			pairs = append(pairs, KV{Key: k, Val: cv})
		}
		return Object(pairs), nil
	default:
		return Null, fmt.Errorf("unsupported JSON value of type %T", v)
	}
}

// ToJSON converts v to a plain `any` suitable for encoding/json.Marshal.
// Functions cannot be represented and produce an error; Deletion collapses
// to nil (JSON null), matching spec.md §3's invariant that it never
// reaches serialized output except via that collapse.
func ToJSON(v Value) (any, error) {
	switch v.kind {
	case KindNull, KindDeletion:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindString:
		return v.s, nil
	case KindNumber:
		return numberToJSON(v.n)
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			cv, err := ToJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for _, kv := range v.obj {
			cv, err := ToJSON(kv.Val)
			if err != nil {
				return nil, err
			}
			out[kv.Key] = cv
		}
		return out, nil
	case KindFunction:
		return nil, fmt.Errorf("cannot represent a function value as JSON")
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

// numberToJSON renders an integral value in (-u32Max, u32Max) as an int64
// so it serializes without a decimal point; everything else serializes as
// a float64, per spec.md §3/§4.A.
func numberToJSON(n float64) (any, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%v cannot be represented in JSON", n)
	}
	if n == math.Trunc(n) && n > -u32Max && n < u32Max {
		return int64(n), nil
	}
	return n, nil
}

// MustFromJSON is a convenience for call sites (tests, the CLI) that have
// already validated their input and want to skip explicit error handling.
func MustFromJSON(v any) Value {
	val, err := FromJSON(v)
	if err != nil {
		panic(err)
	}
	return val
}
