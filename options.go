package fluxury

import (
	"fmt"
	"log/slog"

	"github.com/fluxury/fluxury/ext"
	"github.com/fluxury/fluxury/middleware"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithLogger sets the structured logger for the dispatcher.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if l == nil {
			return fmt.Errorf("fluxury: nil logger")
		}
		d.logger = l
		return nil
	}
}

// WithConfig replaces the dispatcher configuration.
func WithConfig(cfg Config) Option {
	return func(d *Dispatcher) error {
		if cfg.MaxWaitDepth < 0 {
			return fmt.Errorf("fluxury: negative max wait depth %d", cfg.MaxWaitDepth)
		}
		d.config = cfg
		return nil
	}
}

// WithMaxWaitDepth caps nested WaitFor calls. Zero means unlimited.
func WithMaxWaitDepth(n int) Option {
	return func(d *Dispatcher) error {
		if n < 0 {
			return fmt.Errorf("fluxury: negative max wait depth %d", n)
		}
		d.config.MaxWaitDepth = n
		return nil
	}
}

// WithNotifyOnFailure controls whether queued notifications run after a
// failed dispatch.
func WithNotifyOnFailure(notify bool) Option {
	return func(d *Dispatcher) error {
		d.config.NotifyOnFailure = notify
		return nil
	}
}

// WithMiddleware appends middleware wrapped around every callback
// invocation. The first middleware is the outermost wrapper.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(d *Dispatcher) error {
		d.mws = append(d.mws, mws...)
		return nil
	}
}

// WithExtensions registers lifecycle extensions, notified in order.
func WithExtensions(exts ...ext.Extension) Option {
	return func(d *Dispatcher) error {
		d.exts = append(d.exts, exts...)
		return nil
	}
}
