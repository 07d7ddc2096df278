// Package core provides the runtime core tier of the FSM engine: the
// State/Region Store, sub-machine history and the dispatch engine.
// A Machine is single-threaded: every operation runs to completion on the
// caller's goroutine. Concurrent access goes through the realtime runtime.
package core

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/comalice/tickfsm/internal/inspect"
	"github.com/comalice/tickfsm/internal/logging"
	"github.com/comalice/tickfsm/internal/primitives"
	"github.com/comalice/tickfsm/internal/queue"
	"github.com/comalice/tickfsm/internal/timers"
)

// Machine is the runtime instance of a machine declaration. Sub-machines are
// Machines owned by a state of their parent; they share the parent's queue
// and live in a namespaced view of the parent's timers.
type Machine struct {
	id        string
	config    *primitives.MachineConfig
	store     *Store
	history   *HistoryManager
	ctx       *primitives.Context
	queue     queue.Queue
	timers    timers.Timers
	inspector inspect.Inspector
	logger    *slog.Logger
	resolver  Resolver

	drainPre     bool
	drainPost    bool
	maxAnonymous int
	pendingCap   int

	table      map[tableKey][]*primitives.TransitionConfig
	timerDecls map[primitives.TimerID]timerDecl
	interrupts map[primitives.StateID]map[primitives.EventKey]bool

	root    *Machine
	owner   primitives.StateID
	started bool
	busy    bool
}

// NewMachine validates config and builds a stopped machine. config is
// normalized in place and must not be modified afterwards; state data values
// are used as-is, so build one config per machine instance.
func NewMachine(config *primitives.MachineConfig, opts ...Option) (*Machine, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: nil config", primitives.ErrInvalidConfig)
	}
	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		config:       config,
		drainPre:     true,
		maxAnonymous: DefaultMaxAnonymousSteps,
	}

	// Apply functional options
	for _, opt := range opts {
		opt(m)
	}

	if m.id == "" {
		m.id = uuid.NewString()
	}
	if m.ctx == nil {
		m.ctx = primitives.NewContext()
	}
	if m.queue == nil {
		m.queue = queue.NewVec(16)
	}
	if m.timers == nil {
		m.timers = timers.NewCore(config.TimerIDs(), m.pendingCap)
	}
	if m.inspector == nil {
		m.inspector = inspect.Null{}
	}
	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	if m.maxAnonymous <= 0 {
		m.maxAnonymous = DefaultMaxAnonymousSteps
	}
	m.logger = m.logger.With("machine", config.ID, "instance", m.id)
	m.root = m

	if err := m.init(); err != nil {
		return nil, err
	}
	return m, nil
}

// init builds the lookup tables and the sub-machine instances.
func (m *Machine) init() error {
	table, err := buildTable(m.config, m.resolver)
	if err != nil {
		return err
	}
	m.table = table
	m.timerDecls = indexTimers(m.config)
	m.interrupts = indexInterrupts(m.config)
	m.store = newStore(m.config)
	m.history = NewHistoryManager()

	for _, id := range m.store.order {
		sl := m.store.slots[id]
		if sl.cfg.Sub == nil {
			continue
		}
		sub := &Machine{
			id:           m.id + "/" + string(id),
			config:       sl.cfg.Sub,
			ctx:          primitives.NewContext(),
			queue:        m.queue,
			timers:       timers.NewScoped(m.timers, id),
			inspector:    m.inspector,
			logger:       m.logger.With("sub_fsm", string(id)),
			resolver:     m.resolver,
			maxAnonymous: m.maxAnonymous,
			root:         m.root,
			owner:        id,
		}
		if err := sub.init(); err != nil {
			return fmt.Errorf("sub-machine %s: %w", id, err)
		}
		sl.sub = sub
	}
	return nil
}

// ID returns the instance ID.
func (m *Machine) ID() string { return m.id }

// Config returns the machine declaration. Callers must not modify it.
func (m *Machine) Config() *primitives.MachineConfig { return m.config }

// Context returns the machine context.
func (m *Machine) Context() *primitives.Context { return m.ctx }

// Started reports whether Start has run and Stop has not.
func (m *Machine) Started() bool { return m.started }

// History returns the sub-machine history record.
func (m *Machine) History() *HistoryManager { return m.history }

// Timers returns the timer backend.
func (m *Machine) Timers() timers.Timers { return m.timers }

// States returns the read-only view of the State/Region Store.
func (m *Machine) States() primitives.StateView { return m.store }

// CurrentStates returns a copy of the current-state vector, one entry per
// region. Entries are empty before Start.
func (m *Machine) CurrentStates() []primitives.StateID {
	return m.store.Current()
}

// StateData returns the persisted data of a declared state.
func (m *Machine) StateData(id primitives.StateID) (any, error) {
	sl, err := m.store.slot(id)
	if err != nil {
		return nil, err
	}
	return sl.cfg.Data, nil
}

// SubMachine returns the machine held by the sub-machine state id.
func (m *Machine) SubMachine(id primitives.StateID) (*Machine, error) {
	sl, err := m.store.slot(id)
	if err != nil {
		return nil, err
	}
	if sl.sub == nil {
		return nil, fmt.Errorf("state %q holds no sub-machine: %w", id, primitives.ErrUnknownState)
	}
	return sl.sub, nil
}

// Enqueue buffers an event for a later drain.
func (m *Machine) Enqueue(event primitives.Event) error {
	return m.queue.Enqueue(event)
}

// Tick advances the timers by elapsed. Fired timers are dispatched by
// DispatchTimerEvents.
func (m *Machine) Tick(elapsed time.Duration) {
	m.timers.Tick(elapsed)
}

func (m *Machine) acquire() error {
	if m.root.busy {
		return primitives.ErrReentrantDispatch
	}
	m.root.busy = true
	return nil
}

func (m *Machine) release() { m.root.busy = false }

// Start enters the initial state of every region, starting initial
// sub-machines, then resolves eventless transitions. Calling Start again
// restarts the machine from its initial states.
func (m *Machine) Start() error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	if err := m.start(m.inspector); err != nil {
		return err
	}
	m.logger.Debug("machine started", "states", m.store.current)
	return nil
}

func (m *Machine) start(parent inspect.Inspector) error {
	ev := primitives.NoEvent()
	insp := parent.NewEvent(ev, m.store.Current())

	var errs []error
	for r, region := range m.config.Regions {
		sl := m.store.slots[region.Initial]
		if err := m.enterState(sl, m.eventContext(ev, r), insp, false); err != nil {
			errs = append(errs, &primitives.TransitionError{Region: r, To: region.Initial, Stage: "entry", Err: err})
		}
		m.store.current[r] = region.Initial
	}
	m.started = true

	if err := errors.Join(errs...); err != nil {
		insp.OnError("start failed", err)
		insp.EventDone(m.store.Current())
		return err
	}
	insp.EventDone(m.store.Current())
	return m.resolveAnonymous(parent)
}

// resolveAnonymous dispatches NoEvent while eventless transitions fire.
func (m *Machine) resolveAnonymous(parent inspect.Inspector) error {
	for range m.maxAnonymous {
		ev := primitives.NoEvent()
		insp := parent.NewEvent(ev, m.store.Current())
		err := m.step(ev, insp)
		m.finish(insp, err, false)
		switch {
		case err == nil:
			continue
		case primitives.IsNoTransition(err), primitives.IsInterrupted(err):
			return nil
		default:
			return err
		}
	}
	return fmt.Errorf("%w: eventless transitions did not settle after %d steps", primitives.ErrInvalidConfig, m.maxAnonymous)
}

// Stop runs the exit hooks of every region's current state, recursively
// through sub-machines. The state vector is left as is; Dispatch fails with
// ErrNotStarted until the next Start.
func (m *Machine) Stop() error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	if !m.started {
		return nil
	}
	insp := m.inspector.NewEvent(primitives.NoEvent(), m.store.Current())
	err := m.exitCurrent(insp)
	m.started = false
	if err != nil {
		insp.OnError("stop failed", err)
	}
	insp.EventDone(m.store.Current())
	m.logger.Debug("machine stopped", "states", m.store.current)
	return err
}

// Dispatch delivers one event. See step for the per-region protocol.
// The event's own error wins; when it succeeds, the first hard error of a
// queued event drained before or after it is returned instead. The main
// event's transitions have been applied in that case.
func (m *Machine) Dispatch(event primitives.Event) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()
	return m.dispatch(event)
}

func (m *Machine) dispatch(event primitives.Event) error {
	if !m.started {
		return fmt.Errorf("dispatch %s: %w", event, primitives.ErrNotStarted)
	}
	var drained error
	if m.drainPre {
		drained = m.drain()
	}
	insp := m.inspector.NewEvent(event, m.store.Current())
	err := m.step(event, insp)
	if m.drainPost {
		if derr := m.drain(); drained == nil {
			drained = derr
		}
	}
	m.finish(insp, err, true)
	if err == nil {
		return drained
	}
	return err
}

// finish reports the dispatch outcome. Nested dispatches leave ErrNoTransition
// to the parent.
func (m *Machine) finish(insp inspect.Inspector, err error, top bool) {
	if err != nil && (top || !primitives.IsNoTransition(err)) {
		insp.OnError("dispatch failed", err)
	}
	insp.EventDone(m.store.Current())
}

// ExecuteQueuedEvents drains the queue now. It returns the first error other
// than ErrNoTransition; every queued event is dispatched regardless.
func (m *Machine) ExecuteQueuedEvents() error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()
	if !m.started {
		return primitives.ErrNotStarted
	}
	return m.drain()
}

func (m *Machine) drain() error {
	var first error
	for {
		ev, ok := m.queue.Dequeue()
		if !ok {
			return first
		}
		insp := m.inspector.NewEvent(ev, m.store.Current())
		err := m.step(ev, insp)
		m.finish(insp, err, true)
		if err != nil && !primitives.IsNoTransition(err) && first == nil {
			first = err
		}
	}
}

// DispatchTimerEvents dispatches every fired timer until none remain. A timer
// nobody handles is not an error; the first other error is returned.
func (m *Machine) DispatchTimerEvents() error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	var first error
	for {
		id, ok := m.timers.Triggered()
		if !ok {
			return first
		}
		err := m.dispatch(primitives.TimerEvent(id))
		if err != nil && !primitives.IsNoTransition(err) && first == nil {
			first = err
		}
	}
}

func (m *Machine) eventContext(event primitives.Event, region int) *primitives.EventContext {
	return &primitives.EventContext{
		Event:   event,
		Context: m.ctx,
		Queue:   m.queue,
		States:  m.store,
		Region:  region,
	}
}
