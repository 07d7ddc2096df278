package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/comalice/tickfsm/internal/core"
	"github.com/comalice/tickfsm/internal/logging"
	"github.com/comalice/tickfsm/internal/primitives"
)

// ErrBatchFull is returned by SendEvent when the current tick's batch is at
// capacity.
var ErrBatchFull = errors.New("event batch full")

var (
	// ErrRunning is returned by Start and Step while the tick loop owns the machine.
	ErrRunning = errors.New("runtime tick loop is running")
	// ErrNotRunning is returned by Attach before Start.
	ErrNotRunning = errors.New("runtime tick loop is not running")
	// ErrTickFailed wraps a panic raised while processing a tick, such as a
	// timer pending-list overflow. It ends the tick loop and sticks to the
	// runtime: Start, Step and SendEvent return it from then on.
	ErrTickFailed = errors.New("tick failed")
)

// Runtime drives a machine from a fixed-rate tick loop. External events are
// batched between ticks and dispatched in deterministic order at the next
// tick boundary; timers advance by the tick rate on every tick.
type Runtime struct {
	machine *core.Machine
	logger  *slog.Logger
	onError func(string, error)

	tickRate time.Duration
	ticker   *time.Ticker
	tickNum  uint64

	// Event batching (replaces an async channel)
	eventBatch  []EventWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64

	// runMu serializes access to the machine.
	runMu   sync.Mutex
	stateMu sync.RWMutex
	states  []primitives.StateID
	fault   error

	// Control
	tickCtx    context.Context
	tickCancel context.CancelFunc
	stopped    chan struct{}
	sources    sync.WaitGroup
}

// Config configures the runtime.
type Config struct {
	TickRate         time.Duration // fixed tick rate, e.g. 16.67ms for 60 FPS
	MaxEventsPerTick int           // batch capacity (default: 1000)
	Logger           *slog.Logger
	// OnError receives dispatch failures other than ErrNoTransition, with the
	// failing event's description, "timers" or "queue" as source.
	OnError func(source string, err error)
}

// NewRuntime wraps machine. The runtime takes ownership: once started, the
// machine must only be reached through the runtime.
func NewRuntime(machine *core.Machine, cfg Config) *Runtime {
	if cfg.MaxEventsPerTick <= 0 {
		cfg.MaxEventsPerTick = 1000
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 16667 * time.Microsecond
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	return &Runtime{
		machine:    machine,
		logger:     cfg.Logger.With("component", "realtime", "machine", machine.ID()),
		onError:    cfg.OnError,
		tickRate:   cfg.TickRate,
		eventBatch: make([]EventWithMeta, 0, cfg.MaxEventsPerTick),
	}
}

// Start starts the machine and begins the tick loop.
func (rt *Runtime) Start(ctx context.Context) error {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()
	if rt.tickCancel != nil {
		return ErrRunning
	}
	if err := rt.Err(); err != nil {
		return err
	}
	err := rt.machine.Start()
	rt.snapshot()
	if err != nil {
		return err
	}

	rt.tickCtx, rt.tickCancel = context.WithCancel(ctx)
	rt.ticker = time.NewTicker(rt.tickRate)
	rt.stopped = make(chan struct{})
	go rt.tickLoop(rt.tickCtx, rt.tickCancel, rt.ticker, rt.stopped)

	rt.logger.Debug("tick loop started", "tick_rate", rt.tickRate)
	return nil
}

// Stop ends the tick loop, waits for attached sources to detach, and stops
// the machine.
func (rt *Runtime) Stop() error {
	rt.runMu.Lock()
	cancel, ticker, stopped := rt.tickCancel, rt.ticker, rt.stopped
	// Attach checks tickCtx under runMu, so no source is added past this point.
	rt.tickCtx = nil
	rt.runMu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	ticker.Stop()
	<-stopped
	rt.sources.Wait()

	rt.runMu.Lock()
	defer rt.runMu.Unlock()
	rt.tickCancel = nil
	err := rt.machine.Stop()
	rt.snapshot()
	return err
}

// tickLoop exits when ctx ends or a tick fails. A failed tick cancels ctx so
// attached sources detach; Stop still has to be called to stop the machine.
func (rt *Runtime) tickLoop(ctx context.Context, cancel context.CancelFunc, ticker *time.Ticker, stopped chan struct{}) {
	defer close(stopped)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.runMu.Lock()
			err := rt.safeTick(rt.tickRate)
			rt.runMu.Unlock()
			if err != nil {
				cancel()
				return
			}
		}
	}
}

// safeTick runs one tick. A panic leaves the machine mid-tick, with timers
// partly advanced, so it is recorded as the runtime's fault and reported
// instead of being retried on the next tick.
func (rt *Runtime) safeTick(elapsed time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: tick %d: %v", ErrTickFailed, rt.TickNumber(), r)
			rt.stateMu.Lock()
			rt.fault = err
			rt.stateMu.Unlock()
			rt.logger.Error("tick loop halted", "error", err)
			if rt.onError != nil {
				rt.onError("tick", err)
			}
		}
	}()
	rt.processTick(elapsed)
	return nil
}

// Err returns the fault that halted the runtime, or nil.
func (rt *Runtime) Err() error {
	rt.stateMu.RLock()
	defer rt.stateMu.RUnlock()
	return rt.fault
}

// Step runs one tick synchronously with the given elapsed time. It is meant
// for deterministic tests and host-driven loops; it fails while the tick loop
// runs.
func (rt *Runtime) Step(elapsed time.Duration) error {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()
	if rt.tickCancel != nil {
		return ErrRunning
	}
	if err := rt.Err(); err != nil {
		return err
	}
	if !rt.machine.Started() {
		if err := rt.machine.Start(); err != nil {
			rt.snapshot()
			return err
		}
	}
	return rt.safeTick(elapsed)
}

// SendEvent queues an event for the next tick. Safe for concurrent use.
func (rt *Runtime) SendEvent(event primitives.Event) error {
	return rt.SendEventWithPriority(event, 0)
}

// SendEventWithPriority queues an event; higher priorities dispatch first
// within a tick.
func (rt *Runtime) SendEventWithPriority(event primitives.Event, priority int) error {
	if err := rt.Err(); err != nil {
		return err
	}
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if len(rt.eventBatch) >= cap(rt.eventBatch) {
		return ErrBatchFull
	}
	rt.eventBatch = append(rt.eventBatch, EventWithMeta{
		Event:       event,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++
	return nil
}

// TickNumber returns the number of completed ticks.
func (rt *Runtime) TickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}

// CurrentStates returns the state vector as of the last completed tick.
func (rt *Runtime) CurrentStates() []primitives.StateID {
	rt.stateMu.RLock()
	defer rt.stateMu.RUnlock()
	return append([]primitives.StateID(nil), rt.states...)
}

// Inspect runs f with exclusive access to the machine, between ticks.
func (rt *Runtime) Inspect(f func(m *core.Machine)) {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()
	f(rt.machine)
}

func (rt *Runtime) snapshot() {
	states := rt.machine.CurrentStates()
	rt.stateMu.Lock()
	rt.states = states
	rt.stateMu.Unlock()
}
