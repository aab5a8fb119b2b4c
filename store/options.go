package store

import (
	"fmt"
	"log/slog"

	"github.com/fluxury/fluxury"
	"github.com/fluxury/fluxury/id"
)

// Selector is a read-only projection of a store's state.
type Selector[S any] func(state S, args ...any) any

// Option configures a Store.
type Option[S any] func(*options[S]) error

type options[S any] struct {
	selectors map[string]Selector[S]
	waitFor   []fluxury.Token
	equal     func(a, b S) bool
	logger    *slog.Logger
	id        id.StoreID
}

// WithSelectors adds named selectors, queried with Store.Query.
func WithSelectors[S any](selectors map[string]Selector[S]) Option[S] {
	return func(o *options[S]) error {
		for name, sel := range selectors {
			if name == "" || sel == nil {
				return fmt.Errorf("%w: %q", fluxury.ErrUnknownSelector, name)
			}
			o.selectors[name] = sel
		}
		return nil
	}
}

// WithWaitFor makes the store wait for tokens before every reduction.
func WithWaitFor[S any](tokens ...fluxury.Token) Option[S] {
	return func(o *options[S]) error {
		o.waitFor = append(o.waitFor, tokens...)
		return nil
	}
}

// WithEqual replaces Identical as the change test.
func WithEqual[S any](equal func(a, b S) bool) Option[S] {
	return func(o *options[S]) error {
		if equal == nil {
			return fmt.Errorf("store: nil equality function")
		}
		o.equal = equal
		return nil
	}
}

// WithLogger sets the store's logger. Defaults to the dispatcher's.
func WithLogger[S any](l *slog.Logger) Option[S] {
	return func(o *options[S]) error {
		if l == nil {
			return fmt.Errorf("store: nil logger")
		}
		o.logger = l
		return nil
	}
}

// WithID sets the store ID instead of generating one.
func WithID[S any](sid id.StoreID) Option[S] {
	return func(o *options[S]) error {
		if sid.IsNil() || sid.Prefix() != id.PrefixStore {
			return fmt.Errorf("store: invalid store id %q", sid.String())
		}
		o.id = sid
		return nil
	}
}
