// Package audithook is a fluxury extension that bridges dispatcher
// lifecycle events to an audit trail backend.
//
// Every registration, dispatch and state-change hook emits a structured
// audit event through the [Recorder] interface. The extension assigns
// severity levels (info for normal operations, critical for failed
// dispatches) and metadata (store name, action type, elapsed time, errors).
//
// # Usage
//
//	d, err := fluxury.New(fluxury.WithExtensions(
//	    audithook.New(audithook.RecorderFunc(func(ctx context.Context, evt *audithook.AuditEvent) error {
//	        logger.InfoContext(ctx, evt.Action, "resource", evt.Resource, "id", evt.ResourceID)
//	        return nil
//	    })),
//	))
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionDispatchFailed,
//	        audithook.ActionStateChanged,
//	    ),
//	)
package audithook
