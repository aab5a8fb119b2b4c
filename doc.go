// Package fluxury provides a minimal unidirectional data-flow core: a
// dispatcher that broadcasts actions to registered callbacks, stores that
// fold actions into state, and helpers that compose several stores into
// one derived view.
//
// fluxury is a library. Create a Dispatcher, build stores on top of it and
// dispatch actions from anywhere in the program.
//
// # Quick Start
//
//	d, err := fluxury.New(
//	    fluxury.WithLogger(logger),
//	    fluxury.WithMiddleware(middleware.Recover(logger)),
//	)
//
//	counter, err := store.New(d, "counter", store.FunctionReducer(0,
//	    func(n int, a action.Action, _ store.WaitFunc) (int, error) {
//	        switch a.Type {
//	        case "inc":
//	            return n + 1, nil
//	        }
//	        return n, nil
//	    }))
//
//	_, err = d.Send(ctx, "inc", nil)
//
// # Dispatch Protocol
//
// A dispatch calls every registered callback exactly once, in registration
// order. A callback that depends on another callback's result for the same
// action calls WaitFor with that callback's token; the dependency runs
// first, inline, and the loop skips it later. Waiting on a callback that
// is still running reports ErrCircularDependency.
//
// Dispatches never nest. Starting one from inside a callback fails with
// ErrAlreadyDispatching; use AfterDispatch to queue follow-up work.
//
// All identifiers use TypeID: type-prefixed, K-sortable, UUIDv7-based.
package fluxury
