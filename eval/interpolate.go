package eval

import (
	"strings"

	"github.com/freeeve/jsone/jsoneerr"
	"github.com/freeeve/jsone/parser"
	"github.com/freeeve/jsone/scope"
	"github.com/freeeve/jsone/value"
)

// Interpolate performs `${expr}` substitution on source, per spec.md §4.H.
// Grounded on original_source/rs/src/render.rs's `interpolate`.
func Interpolate(source string, sc *scope.Scope) (string, error) {
	if !strings.Contains(source, "$") {
		return source, nil
	}

	var out strings.Builder
	for len(source) > 0 {
		offset := strings.IndexByte(source, '$')
		if offset < 0 {
			out.WriteString(source)
			break
		}

		if offset+2 <= len(source) && source[offset:offset+2] == "${" {
			out.WriteString(source[:offset])
			expr := source[offset+2:]

			node, remainder, err := parser.ParsePartial(expr)
			if err != nil {
				return "", jsoneerr.WrapSyntaxError(err, "invalid expression in interpolation: %s", err)
			}
			if len(remainder) == 0 || remainder[0] != '}' {
				return "", jsoneerr.NewSyntaxError("unterminated ${..} expression")
			}

			v, err := Evaluate(node, sc)
			if err != nil {
				return "", err
			}
			switch v.Kind() {
			case value.KindNull:
				// null interpolates to the empty string
			case value.KindNumber, value.KindBool, value.KindString:
				s, err := v.Stringify()
				if err != nil {
					return "", jsoneerr.WrapInterpreterError(err, "interpolation of '%s' failed", expr)
				}
				out.WriteString(s)
			default:
				return "", jsoneerr.NewInterpreterError("interpolation of '%s' produced an array or object", expr)
			}

			source = remainder[1:]
			continue
		}

		if offset+3 <= len(source) && source[offset:offset+3] == "$${" {
			out.WriteString(source[:offset+1])
			source = source[offset+2:]
			continue
		}

		out.WriteString(source[:offset+1])
		source = source[offset+1:]
	}

	return out.String(), nil
}
