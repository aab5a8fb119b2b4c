// Package compose derives stores from other stores.
//
// A composed store waits for every constituent store on each dispatch and
// then rebuilds its combined view, either positionally ([]any) or keyed by
// name (map[string]any). When no constituent state changed identity the
// previous combined value is returned, so subscribers of the composed store
// are only told about real changes.
package compose

import (
	"fmt"
	"maps"
	"slices"

	"github.com/fluxury/fluxury"
	"github.com/fluxury/fluxury/action"
	"github.com/fluxury/fluxury/id"
	"github.com/fluxury/fluxury/store"
)

// Source is a store that can be composed. Every *store.Store satisfies it.
type Source interface {
	Name() string
	Token() fluxury.Token
	Snapshot() any
}

// Positional composes sources into a store whose state lists their states
// in argument order. An empty name is replaced by "composed-<store id>".
func Positional(d *fluxury.Dispatcher, name string, sources ...Source) (*store.Store[[]any], error) {
	if len(sources) == 0 {
		return nil, fluxury.ErrNoSources
	}
	for i, src := range sources {
		if src == nil {
			return nil, fmt.Errorf("compose: nil source at position %d", i)
		}
	}
	tokens := tokensOf(sources)

	reduce := func(state []any, _ action.Action, wait store.WaitFunc) ([]any, error) {
		if err := wait(tokens...); err != nil {
			return state, err
		}
		next := positionalState(sources)
		if len(state) == len(next) && allIdentical(state, next) {
			return state, nil
		}
		return next, nil
	}

	name, sid := storeName(name)
	return store.New(d, name, store.FunctionReducer(positionalState(sources), reduce),
		store.WithID[[]any](sid))
}

// Named composes sources into a store whose state maps each key to that
// source's state. An empty name is replaced by "composed-<store id>".
func Named(d *fluxury.Dispatcher, name string, sources map[string]Source) (*store.Store[map[string]any], error) {
	if len(sources) == 0 {
		return nil, fluxury.ErrNoSources
	}
	keyed := make(map[string]Source, len(sources))
	list := make([]Source, 0, len(sources))
	for _, k := range slices.Sorted(maps.Keys(sources)) {
		src := sources[k]
		if src == nil {
			return nil, fmt.Errorf("compose: nil source %q", k)
		}
		keyed[k] = src
		list = append(list, src)
	}
	tokens := tokensOf(list)

	reduce := func(state map[string]any, _ action.Action, wait store.WaitFunc) (map[string]any, error) {
		if err := wait(tokens...); err != nil {
			return state, err
		}
		next := namedState(keyed)
		if sameMembers(state, next) {
			return state, nil
		}
		return next, nil
	}

	name, sid := storeName(name)
	return store.New(d, name, store.FunctionReducer(namedState(keyed), reduce),
		store.WithID[map[string]any](sid))
}

func storeName(name string) (string, id.StoreID) {
	sid := id.NewStoreID()
	if name == "" {
		name = "composed-" + sid.String()
	}
	return name, sid
}

func tokensOf(sources []Source) []fluxury.Token {
	tokens := make([]fluxury.Token, len(sources))
	for i, src := range sources {
		tokens[i] = src.Token()
	}
	return tokens
}

func positionalState(sources []Source) []any {
	state := make([]any, len(sources))
	for i, src := range sources {
		state[i] = src.Snapshot()
	}
	return state
}

func namedState(sources map[string]Source) map[string]any {
	state := make(map[string]any, len(sources))
	for k, src := range sources {
		state[k] = src.Snapshot()
	}
	return state
}

func allIdentical(a, b []any) bool {
	for i := range a {
		if !store.Identical(a[i], b[i]) {
			return false
		}
	}
	return true
}

// sameMembers reports whether a and b have the same keys with identical
// values.
func sameMembers(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range b {
		prev, ok := a[k]
		if !ok || !store.Identical(prev, v) {
			return false
		}
	}
	return true
}
