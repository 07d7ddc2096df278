package realtime

import (
	"time"

	"github.com/comalice/tickfsm/internal/primitives"
)

// processTick processes one complete tick. Callers hold runMu.
func (rt *Runtime) processTick(elapsed time.Duration) {
	// Phase 1: collect and order the external events
	events := rt.collectEvents()
	sortEvents(events)

	// Phase 2: dispatch them
	for _, em := range events {
		rt.report(em.Event.String(), rt.machine.Dispatch(em.Event))
	}

	// Phase 3: advance timers and dispatch what fired
	rt.machine.Tick(elapsed)
	rt.report("timers", rt.machine.DispatchTimerEvents())

	// Phase 4: events enqueued by actions and hooks
	rt.report("queue", rt.machine.ExecuteQueuedEvents())

	rt.snapshot()
	rt.batchMu.Lock()
	rt.tickNum++
	rt.batchMu.Unlock()
}

// collectEvents atomically retrieves and clears the event batch.
func (rt *Runtime) collectEvents() []EventWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	events := rt.eventBatch
	rt.eventBatch = make([]EventWithMeta, 0, cap(rt.eventBatch))
	return events
}

func (rt *Runtime) report(source string, err error) {
	switch {
	case err == nil:
		return
	case primitives.IsNoTransition(err):
		rt.logger.Debug("event not handled", "source", source)
		return
	case primitives.IsRecoverable(err):
		rt.logger.Warn("dispatch rejected", "source", source, "error", err)
	default:
		rt.logger.Error("dispatch failed", "source", source, "error", err)
	}
	if rt.onError != nil {
		rt.onError(source, err)
	}
}
