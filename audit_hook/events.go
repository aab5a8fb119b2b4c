package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle hook
// and becomes the Action field of the audit event.
const (
	ActionCallbackRegistered   = "callback.registered"
	ActionCallbackUnregistered = "callback.unregistered"
	ActionStoreCreated         = "store.created"
	ActionDispatchStarted      = "dispatch.started"
	ActionDispatchCompleted    = "dispatch.completed"
	ActionDispatchFailed       = "dispatch.failed"
	ActionStateChanged         = "store.state_changed"
)

// Audit event categories group related actions.
const (
	CategoryCallback = "fluxury.callback"
	CategoryStore    = "fluxury.store"
	CategoryDispatch = "fluxury.dispatch"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceCallback = "callback"
	ResourceStore    = "store"
	ResourceAction   = "action"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionCallbackRegistered,
		ActionCallbackUnregistered,
		ActionStoreCreated,
		ActionDispatchStarted,
		ActionDispatchCompleted,
		ActionDispatchFailed,
		ActionStateChanged,
	}
}
