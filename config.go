package fluxury

// Config holds configuration for the Dispatcher.
type Config struct {
	// MaxWaitDepth caps how deeply WaitFor calls may nest within one
	// dispatch. Zero means unlimited; chains are always bounded by the
	// number of registered callbacks because cycles are rejected.
	MaxWaitDepth int

	// NotifyOnFailure runs the after-dispatch queue even when a callback
	// error aborted the dispatch. Callbacks that ran before the failure
	// already committed their state, so their subscribers are told.
	NotifyOnFailure bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxWaitDepth:    0,
		NotifyOnFailure: true,
	}
}
