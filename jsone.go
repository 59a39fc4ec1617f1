// Package jsone implements the jsone JSON-template engine: a JSON-E-style
// renderer with an embedded expression language used for interpolation and
// as the argument to its `$`-prefixed template operators.
//
// Basic usage:
//
//	out, err := jsone.Render(map[string]any{"$if": "x", "then": "yes", "else": "no"}, map[string]any{"x": true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out)
package jsone

import (
	"time"

	"github.com/freeeve/jsone/render"
)

// Render renders template against context, both given as plain Go values
// of the kind produced by encoding/json.Unmarshal into `any` (or
// goccy/go-yaml's Unmarshal, which produces the same shapes). context must
// unmarshal to a JSON object.
func Render(template any, context any) (any, error) {
	return render.Render(template, context)
}

// UseFixedNow pins the render clock's `now` binding to the reference
// implementation's canonical test instant. Intended only for tests.
func UseFixedNow() {
	render.UseTestNow()
}

// ResetNow restores the real system clock as the source of `now`.
func ResetNow() {
	render.ResetClock()
}

// UseFixedNowAt pins the render clock's `now` binding to t for every
// subsequent render, until ResetNow is called. Used by the CLI's --now flag
// and by tests that need a caller-chosen reference time.
func UseFixedNowAt(t time.Time) {
	render.UseFixedTime(t)
}
