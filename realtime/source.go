package realtime

import (
	"context"

	"github.com/comalice/tickfsm/internal/extensibility"
)

// Attach forwards events from src into the batch at src's priority until src
// closes its channel, ctx ends, or the runtime stops. Events that do not fit
// the current batch are dropped with a warning.
func (rt *Runtime) Attach(ctx context.Context, src extensibility.EventSource) error {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()
	if rt.tickCtx == nil {
		return ErrNotRunning
	}
	stopping := rt.tickCtx
	priority := src.Priority()

	rt.sources.Add(1)
	go func() {
		defer rt.sources.Done()
		events := src.Events()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopping.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := rt.SendEventWithPriority(ev, priority); err != nil {
					rt.logger.Warn("event dropped", "event", ev.String(), "error", err)
				}
			}
		}
	}()
	return nil
}
