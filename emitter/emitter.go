// Package emitter provides the change-notification primitive used by stores.
//
// An Emitter keeps an ordered list of listeners. Adding or removing a
// listener replaces the list instead of mutating it, so Emit can iterate
// the snapshot it took without holding a lock: listeners may subscribe or
// unsubscribe (themselves or others) while a notification is running, and
// the change takes effect from the next Emit.
package emitter

import (
	"errors"
	"slices"
	"sync"

	"github.com/fluxury/fluxury/id"
)

// ErrNilListener is returned when adding a nil listener.
var ErrNilListener = errors.New("emitter: listener cannot be nil")

// Listener receives emitted values.
type Listener[T any] func(v T)

type entry[T any] struct {
	id id.ListenerID
	fn Listener[T]
}

// Emitter fans values out to listeners in subscription order.
type Emitter[T any] struct {
	mu        sync.Mutex
	listeners []entry[T]
}

// New creates an empty Emitter.
func New[T any]() *Emitter[T] {
	return &Emitter[T]{}
}

// Add subscribes fn and returns its listener ID.
func (e *Emitter[T]) Add(fn Listener[T]) (id.ListenerID, error) {
	if fn == nil {
		return id.Nil, ErrNilListener
	}

	lid := id.NewListenerID()

	e.mu.Lock()
	next := make([]entry[T], len(e.listeners), len(e.listeners)+1)
	copy(next, e.listeners)
	e.listeners = append(next, entry[T]{id: lid, fn: fn})
	e.mu.Unlock()

	return lid, nil
}

// Subscribe is Add returning an idempotent unsubscribe function.
func (e *Emitter[T]) Subscribe(fn Listener[T]) (func(), error) {
	lid, err := e.Add(fn)
	if err != nil {
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() { e.Remove(lid) })
	}, nil
}

// Remove unsubscribes the listener with the given ID. It reports whether
// the listener was subscribed.
func (e *Emitter[T]) Remove(lid id.ListenerID) bool {
	key := lid.String()

	e.mu.Lock()
	defer e.mu.Unlock()

	i := slices.IndexFunc(e.listeners, func(en entry[T]) bool {
		return en.id.String() == key
	})
	if i < 0 {
		return false
	}
	e.listeners = slices.Concat(e.listeners[:i], e.listeners[i+1:])
	return true
}

// Emit calls every listener subscribed at the time of the call, in order.
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	snapshot := e.listeners
	e.mu.Unlock()

	for _, en := range snapshot {
		en.fn(v)
	}
}

// Len returns the number of subscribed listeners.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}
