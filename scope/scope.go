// Package scope implements the lexically-scoped binding chain shared by
// the expression evaluator and the template renderer (spec.md §3/§4.B).
package scope

import "github.com/freeeve/jsone/value"

// Scope is one frame of a parent-pointing binding chain. Insert only ever
// writes to the current frame, never to an ancestor. A new lexical scope ($let, $map, $reduce, a render's own
// `now` frame) is a fresh Child pointing at the frame that was current.
type Scope struct {
	parent *Scope
	names  []string
	vals   []value.Value
}

// New creates a root scope with no parent — used only for the process-wide
// built-ins frame.
func New() *Scope {
	return &Scope{}
}

// Child creates a new frame whose lookups fall back to s on miss.
func (s *Scope) Child() *Scope {
	return &Scope{parent: s}
}

// Insert adds or overwrites a binding in this frame (not a parent frame).
func (s *Scope) Insert(name string, v value.Value) {
	for i, n := range s.names {
		if n == name {
			s.vals[i] = v
			return
		}
	}
	s.names = append(s.names, name)
	s.vals = append(s.vals, v)
}

// Get walks the chain from s to the root, returning the nearest binding.
func (s *Scope) Get(name string) (value.Value, bool) {
	for f := s; f != nil; f = f.parent {
		for i, n := range f.names {
			if n == name {
				return f.vals[i], true
			}
		}
	}
	return value.Null, false
}

// FromObject builds a child scope of parent (nil for a root scope) with
// one binding per key of obj. Used to seed a render's top-level context
// from a JSON object, per spec.md §4.B's `from_json`.
func FromObject(obj value.Value, parent *Scope) (*Scope, error) {
	if !obj.IsObject() {
		return nil, contextMustBeObjectError
	}
	s := &Scope{parent: parent}
	for _, kv := range obj.AsObject() {
		s.Insert(kv.Key, kv.Val)
	}
	return s, nil
}

var contextMustBeObjectError = objectRequiredError{}

type objectRequiredError struct{}

func (objectRequiredError) Error() string { return "context must be a JSON object" }
