package observability

import (
	"context"
	"time"

	gu "github.com/xraph/go-utils/metrics"

	"github.com/fluxury/fluxury/action"
	"github.com/fluxury/fluxury/ext"
	"github.com/fluxury/fluxury/id"
)

// Compile-time interface checks.
var (
	_ ext.Extension            = (*MetricsExtension)(nil)
	_ ext.CallbackRegistered   = (*MetricsExtension)(nil)
	_ ext.CallbackUnregistered = (*MetricsExtension)(nil)
	_ ext.StoreCreated         = (*MetricsExtension)(nil)
	_ ext.DispatchStarted      = (*MetricsExtension)(nil)
	_ ext.DispatchCompleted    = (*MetricsExtension)(nil)
	_ ext.DispatchFailed       = (*MetricsExtension)(nil)
	_ ext.StateChanged         = (*MetricsExtension)(nil)
)

// MetricsExtension records dispatcher lifecycle metrics via go-utils
// MetricFactory. Register it with fluxury.WithExtensions to track dispatch
// rates, failures, state changes and registrations.
type MetricsExtension struct {
	CallbackRegistered   gu.Counter
	CallbackUnregistered gu.Counter
	StoreCreated         gu.Counter
	DispatchStarted      gu.Counter
	DispatchCompleted    gu.Counter
	DispatchFailed       gu.Counter
	StateChanged         gu.Counter
}

// NewMetricsExtension creates a MetricsExtension using a default metrics collector.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithFactory(gu.NewMetricsCollector("fluxury/observability"))
}

// NewMetricsExtensionWithFactory creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtensionWithFactory(factory gu.MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		CallbackRegistered:   factory.Counter("fluxury.callback.registered"),
		CallbackUnregistered: factory.Counter("fluxury.callback.unregistered"),
		StoreCreated:         factory.Counter("fluxury.store.created"),
		DispatchStarted:      factory.Counter("fluxury.dispatch.started"),
		DispatchCompleted:    factory.Counter("fluxury.dispatch.completed"),
		DispatchFailed:       factory.Counter("fluxury.dispatch.failed"),
		StateChanged:         factory.Counter("fluxury.store.state_changed"),
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Registration hooks ──────────────────────────────

// OnCallbackRegistered implements ext.CallbackRegistered.
func (m *MetricsExtension) OnCallbackRegistered(_ context.Context, _ id.Token) error {
	m.CallbackRegistered.Inc()
	return nil
}

// OnCallbackUnregistered implements ext.CallbackUnregistered.
func (m *MetricsExtension) OnCallbackUnregistered(_ context.Context, _ id.Token) error {
	m.CallbackUnregistered.Inc()
	return nil
}

// OnStoreCreated implements ext.StoreCreated.
func (m *MetricsExtension) OnStoreCreated(_ context.Context, _ string, _ id.StoreID, _ id.Token) error {
	m.StoreCreated.Inc()
	return nil
}

// ── Dispatch hooks ──────────────────────────────────

// OnDispatchStarted implements ext.DispatchStarted.
func (m *MetricsExtension) OnDispatchStarted(_ context.Context, _ action.Action) error {
	m.DispatchStarted.Inc()
	return nil
}

// OnDispatchCompleted implements ext.DispatchCompleted.
func (m *MetricsExtension) OnDispatchCompleted(_ context.Context, _ action.Action, _ time.Duration) error {
	m.DispatchCompleted.Inc()
	return nil
}

// OnDispatchFailed implements ext.DispatchFailed.
func (m *MetricsExtension) OnDispatchFailed(_ context.Context, _ action.Action, _ error) error {
	m.DispatchFailed.Inc()
	return nil
}

// OnStateChanged implements ext.StateChanged.
func (m *MetricsExtension) OnStateChanged(_ context.Context, _ string, _ id.Token, _ action.Action) error {
	m.StateChanged.Inc()
	return nil
}
