package store

import (
	"maps"

	"github.com/fluxury/fluxury"
	"github.com/fluxury/fluxury/action"
)

// Mode selects how a Definition turns actions into state.
type Mode int

const (
	// ModeFunctionReducer folds every action through a single Reducer.
	ModeFunctionReducer Mode = iota + 1

	// ModeSpecTable looks the action type up in a handler table; unknown
	// types leave the state untouched.
	ModeSpecTable

	// ModeWaitListOnly holds a fixed state and only waits for the stores
	// named with WithWaitFor. Useful as a sequencing barrier.
	ModeWaitListOnly
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeFunctionReducer:
		return "function-reducer"
	case ModeSpecTable:
		return "spec-table"
	case ModeWaitListOnly:
		return "wait-list-only"
	default:
		return "unknown"
	}
}

// WaitFunc waits for other callbacks of the in-flight dispatch to finish.
type WaitFunc func(tokens ...fluxury.Token) error

// Reducer computes the next state from the current state and an action.
// Returning the same reference means "unchanged" and suppresses
// notifications.
type Reducer[S any] func(state S, a action.Action, wait WaitFunc) (S, error)

// Handler reduces one action type. It receives the action data only.
type Handler[S any] func(state S, data any, wait WaitFunc) (S, error)

// Definition describes how a store computes its state. Build one with
// FunctionReducer, DerivedReducer, SpecTable or WaitListOnly.
type Definition[S any] struct {
	Mode Mode

	// Initial is the starting state unless DeriveInitial or InitialState
	// says otherwise.
	Initial S

	// DeriveInitial computes the starting state by running Reducer on the
	// zero state with action.NoAction.
	DeriveInitial bool

	// Reducer is used by ModeFunctionReducer.
	Reducer Reducer[S]

	// Handlers is used by ModeSpecTable, keyed by action type.
	Handlers map[string]Handler[S]

	// InitialState, when set in ModeSpecTable, computes the starting state.
	InitialState func() S
}

// FunctionReducer defines a store reducing every action with r.
func FunctionReducer[S any](initial S, r Reducer[S]) Definition[S] {
	return Definition[S]{Mode: ModeFunctionReducer, Initial: initial, Reducer: r}
}

// DerivedReducer defines a store whose initial state is r(zero, NoAction).
func DerivedReducer[S any](r Reducer[S]) Definition[S] {
	return Definition[S]{Mode: ModeFunctionReducer, DeriveInitial: true, Reducer: r}
}

// SpecTable defines a store with one handler per action type.
func SpecTable[S any](initial S, h map[string]Handler[S]) Definition[S] {
	return Definition[S]{Mode: ModeSpecTable, Initial: initial, Handlers: h}
}

// WaitListOnly defines a store that keeps initial and only waits for its
// wait list.
func WaitListOnly[S any](initial S) Definition[S] {
	return Definition[S]{Mode: ModeWaitListOnly, Initial: initial}
}

func noWait(...fluxury.Token) error { return nil }

// compile validates the definition and returns its reducer and initial
// state. The handler table is copied so later edits by the caller are not
// observed.
func (def Definition[S]) compile() (Reducer[S], map[string]Handler[S], S, error) {
	var zero S

	switch def.Mode {
	case ModeFunctionReducer:
		if def.Reducer == nil {
			return nil, nil, zero, fluxury.ErrInvalidReducer
		}
		if !def.DeriveInitial {
			return def.Reducer, nil, def.Initial, nil
		}
		initial, err := def.Reducer(zero, action.NoAction, noWait)
		if err != nil {
			return nil, nil, zero, err
		}
		return def.Reducer, nil, initial, nil

	case ModeSpecTable:
		if len(def.Handlers) == 0 {
			return nil, nil, zero, fluxury.ErrInvalidReducer
		}
		handlers := maps.Clone(def.Handlers)
		for typ, h := range handlers {
			if h == nil || typ == "" {
				return nil, nil, zero, fluxury.ErrInvalidReducer
			}
		}
		initial := def.Initial
		if def.InitialState != nil {
			initial = def.InitialState()
		}
		return tableReducer(handlers), handlers, initial, nil

	case ModeWaitListOnly:
		return func(state S, _ action.Action, _ WaitFunc) (S, error) {
			return state, nil
		}, nil, def.Initial, nil

	default:
		return nil, nil, zero, fluxury.ErrInvalidReducer
	}
}

func tableReducer[S any](handlers map[string]Handler[S]) Reducer[S] {
	return func(state S, a action.Action, wait WaitFunc) (S, error) {
		h, ok := handlers[a.Type]
		if !ok {
			return state, nil
		}
		return h(state, a.Data, wait)
	}
}
