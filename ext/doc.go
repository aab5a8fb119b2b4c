// Package ext defines the extension system for fluxury.
//
// Extensions are notified of lifecycle events and can react to them by
// recording metrics, writing audit logs, etc. Each lifecycle hook is a
// separate interface so extensions opt in only to the events they care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnStateChanged(ctx context.Context, store string, _ id.Token, a action.Action) error {
//	    log.Printf("%s changed on %s", store, a.Type)
//	    return nil
//	}
//
// # Registration Hooks
//
//   - [CallbackRegistered]: a callback was added to the dispatcher
//   - [CallbackUnregistered]: a callback was removed
//   - [StoreCreated]: a store registered its reducer
//
// # Dispatch Hooks
//
//   - [DispatchStarted]: an action is about to be broadcast
//   - [DispatchCompleted]: every callback handled the action
//   - [DispatchFailed]: a callback error aborted the dispatch
//   - [StateChanged]: a store committed a new state
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface.
package ext
