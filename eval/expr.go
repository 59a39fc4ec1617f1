package eval

import (
	"github.com/freeeve/jsone/parser"
	"github.com/freeeve/jsone/scope"
	"github.com/freeeve/jsone/value"
)

// EvaluateString parses expr as a full expression and evaluates it against
// sc. Used by `$eval`, `$if`, `$match`/`$switch` conditions, and the
// `by(...)` expression of `$sort`.
func EvaluateString(expr string, sc *scope.Scope) (value.Value, error) {
	node, err := parser.ParseAll(expr)
	if err != nil {
		return value.Null, err
	}
	return Evaluate(node, sc)
}
