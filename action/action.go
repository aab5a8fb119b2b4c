// Package action defines the payload broadcast by a single dispatch.
//
// An Action pairs an opaque, domain-defined type string with caller-defined
// data. Actions are plain values: once built they are passed by copy and
// never mutated by the dispatcher or by stores.
package action

import (
	"errors"
	"fmt"
)

// ErrInvalidAction is returned when a dispatch descriptor is neither a
// non-empty type string nor an action value.
var ErrInvalidAction = errors.New("fluxury: invalid action")

// Action is the {type, data} payload delivered to every registered callback.
type Action struct {
	Type string
	Data any
}

// NoAction is the sentinel "no action" input used to derive an initial state
// from a reducer. It is never dispatched.
var NoAction = Action{}

// Typed is implemented by domain values that describe their own action type.
// The value itself becomes the action data.
type Typed interface {
	ActionType() string
}

// New builds an action.
func New(typ string, data any) Action {
	return Action{Type: typ, Data: data}
}

// IsZero reports whether a is the NoAction sentinel.
func (a Action) IsZero() bool {
	return a.Type == "" && a.Data == nil
}

// String returns the action type.
func (a Action) String() string {
	return a.Type
}

// From normalises an overloaded dispatch descriptor into an Action.
//
// Accepted descriptors: a type string (paired with data), an Action or
// *Action (data is ignored), or a Typed value (used as its own data when
// data is nil). The resulting type must be non-empty.
func From(descriptor any, data any) (Action, error) {
	var a Action

	switch d := descriptor.(type) {
	case string:
		a = Action{Type: d, Data: data}
	case Action:
		a = d
	case *Action:
		if d == nil {
			return NoAction, fmt.Errorf("%w: nil *Action", ErrInvalidAction)
		}
		a = *d
	case Typed:
		a = Action{Type: d.ActionType(), Data: data}
		if data == nil {
			a.Data = d
		}
	default:
		return NoAction, fmt.Errorf("%w: unsupported descriptor %T", ErrInvalidAction, descriptor)
	}

	if a.Type == "" {
		return NoAction, fmt.Errorf("%w: empty type", ErrInvalidAction)
	}

	return a, nil
}

// Mirror turns a list of action types into a key-mirrored set, so that
// callers can refer to types through a map lookup instead of string literals.
func Mirror(types ...string) map[string]string {
	m := make(map[string]string, len(types))
	for _, t := range types {
		m[t] = t
	}
	return m
}
