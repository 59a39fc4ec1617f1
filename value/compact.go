package value

import "encoding/json"

// ToCompactJSON renders v as compact JSON text with object keys sorted,
// which is what `encoding/json` does natively for `map[string]any` values
// produced by ToJSON. Used by the `$json` operator.
func ToCompactJSON(v Value) (string, error) {
	plain, err := ToJSON(v)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(plain)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
