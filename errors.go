package fluxury

import (
	"errors"

	"github.com/fluxury/fluxury/action"
)

var (
	// Dispatch protocol errors.
	ErrInvalidAction      = action.ErrInvalidAction
	ErrAlreadyDispatching = errors.New("fluxury: cannot dispatch in the middle of a dispatch")
	ErrNotDispatching     = errors.New("fluxury: must be invoked while dispatching")
	ErrUnknownToken       = errors.New("fluxury: token does not map to a registered callback")
	ErrCircularDependency = errors.New("fluxury: circular dependency detected")
	ErrWaitDepthExceeded  = errors.New("fluxury: wait depth exceeded")
	ErrNilCallback        = errors.New("fluxury: callback cannot be nil")

	// Store errors.
	ErrInvalidListener   = errors.New("fluxury: listener must be a non-nil function")
	ErrInvalidReducer    = errors.New("fluxury: store needs a reducer, a handler table or a wait list")
	ErrInvalidName       = errors.New("fluxury: store name must be a non-empty string")
	ErrUnknownSelector   = errors.New("fluxury: unknown selector")
	ErrUnknownActionType = errors.New("fluxury: unknown action type")
	ErrStateType         = errors.New("fluxury: state has the wrong type")

	// Composition errors.
	ErrNoSources      = errors.New("fluxury: composition needs at least one store")
	ErrDuplicateStore = errors.New("fluxury: duplicate store name")
	ErrUnknownStore   = errors.New("fluxury: unknown store")
)

// CallbackError reports the callback whose error aborted a dispatch.
type CallbackError struct {
	// Token is the registration whose callback failed.
	Token Token

	// Label is the name given at registration, if any.
	Label string

	// Action is the type of the action being dispatched.
	Action string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	name := e.Label
	if name == "" {
		name = e.Token.String()
	}
	return "fluxury: callback " + name + " failed on action " + e.Action + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}
