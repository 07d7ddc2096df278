package core

import (
	"errors"
	"fmt"

	"github.com/comalice/tickfsm/internal/inspect"
	"github.com/comalice/tickfsm/internal/primitives"
)

// step runs one event through every region in declaration order and
// aggregates: the first hard error in region order wins, otherwise any match
// succeeds, otherwise ErrNoTransition. Every region that matched nothing is
// reported through OnNoTransition, whatever the other regions did.
func (m *Machine) step(event primitives.Event, insp inspect.Inspector) error {
	if m.interrupted(event) {
		return fmt.Errorf("%s in %v: %w", event, m.store.current, primitives.ErrInterrupted)
	}

	matched := false
	var hard error
	for r := range m.config.Regions {
		ok, err := m.dispatchRegion(r, event, insp)
		switch {
		case err != nil:
			if hard == nil {
				hard = err
			}
		case ok:
			matched = true
		default:
			insp.OnNoTransition(r, m.store.current[r])
		}
	}
	if hard != nil {
		return hard
	}
	if matched {
		return nil
	}
	return fmt.Errorf("%s in %v: %w", event, m.store.current, primitives.ErrNoTransition)
}

// interrupted reports whether an active interrupt state blocks event. An
// event on any active resume list passes.
func (m *Machine) interrupted(event primitives.Event) bool {
	blocked := false
	for _, cur := range m.store.current {
		resume, ok := m.interrupts[cur]
		if !ok {
			continue
		}
		if resume[event.Key()] {
			return false
		}
		blocked = true
	}
	return blocked
}

func (m *Machine) dispatchRegion(r int, event primitives.Event, insp inspect.Inspector) (bool, error) {
	sl := m.store.slots[m.store.current[r]]
	if event.IsTimer() {
		return m.dispatchTimer(r, sl, event, insp.ForTimer(event.Timer))
	}
	matched, err := m.tryTransitions(r, sl, event, insp)
	if matched || err != nil {
		return matched, err
	}
	if sl.sub != nil && m.history.Started(sl.cfg.ID) {
		return m.forward(sl, event, insp)
	}
	return false, nil
}

// dispatchTimer handles a timer event in region r. Sub-machine timers go to
// the sub-machine when its state is current. An own timer first tries its
// TimerKey transitions, then dispatches the event its trigger produces
// through the whole machine.
func (m *Machine) dispatchTimer(r int, sl *stateSlot, event primitives.Event, insp inspect.Inspector) (bool, error) {
	if owner, inner, ok := splitSubTimer(event.Timer); ok {
		if owner != sl.cfg.ID || sl.sub == nil || !m.history.Started(owner) {
			return false, nil
		}
		return m.forward(sl, primitives.TimerEvent(inner), insp)
	}

	decl, ok := m.timerDecls[event.Timer]
	if !ok || decl.state != sl.cfg.ID {
		return false, nil
	}
	matched, err := m.tryTransitions(r, sl, event, insp)
	if matched || err != nil {
		return matched, err
	}
	if decl.cfg.Trigger == nil {
		return false, nil
	}
	triggered, ok := decl.cfg.Trigger(m.eventContext(event, r), sl.cfg.Data)
	if !ok {
		return false, nil
	}
	insp.Info(fmt.Sprintf("timer %s triggered %s", event.Timer, triggered))
	err = m.step(triggered, insp)
	if primitives.IsNoTransition(err) {
		return false, nil
	}
	return err == nil, err
}

// forward hands event to the sub-machine held by sl.
func (m *Machine) forward(sl *stateSlot, event primitives.Event, insp inspect.Inspector) (bool, error) {
	scoped := insp.ForSubMachine(sl.cfg.ID)
	sub := sl.sub
	subInsp := scoped.NewEvent(event, sub.store.Current())
	err := sub.step(event, subInsp)
	sub.finish(subInsp, err, false)
	if primitives.IsNoTransition(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sub-machine %s: %w", sl.cfg.ID, err)
	}
	return true, nil
}

func (m *Machine) tryTransitions(r int, sl *stateSlot, event primitives.Event, insp inspect.Inspector) (bool, error) {
	candidates := m.table[tableKey{state: sl.cfg.ID, event: event.Key()}]
	if len(candidates) == 0 {
		return false, nil
	}
	ec := m.eventContext(event, r)
	for _, t := range candidates {
		if t.Guard != nil {
			ok := t.Guard(ec)
			insp.OnGuard(t.GuardLabel(), ok)
			if !ok {
				continue
			}
		}
		return true, m.fire(r, t, ec, insp)
	}
	return false, nil
}

// fire executes a matched transition: exit, action, sub-machine start,
// entry, then the region slot moves to the target. Any hook or action error
// aborts and leaves the slot unchanged.
func (m *Machine) fire(r int, t *primitives.TransitionConfig, ec *primitives.EventContext, insp inspect.Inspector) error {
	src := m.store.slots[t.Source]
	dst := m.store.slots[t.Target]
	external := t.Kind == primitives.External

	tinsp := insp.ForTransition(t)
	if external {
		if err := m.exitState(src, ec, tinsp); err != nil {
			return m.transitionError(r, t, "exit", err)
		}
	}

	if t.SelfAction != nil || t.Action != nil {
		tinsp.OnAction(t.ActionLabel())
		var err error
		if t.SelfAction != nil {
			err = t.SelfAction(ec, src.cfg.Data)
		} else {
			err = t.Action(ec, src.cfg.Data, dst.cfg.Data)
		}
		if err != nil {
			return m.transitionError(r, t, "action", err)
		}
	}

	if external {
		if err := m.enterState(dst, ec, tinsp, t.ShallowHistory); err != nil {
			return m.transitionError(r, t, "entry", err)
		}
	}

	m.store.current[r] = t.Target
	tinsp.OnTransition(t.Source, t.Target)
	return nil
}

func (m *Machine) transitionError(r int, t *primitives.TransitionConfig, stage string, err error) error {
	return &primitives.TransitionError{Region: r, From: t.Source, To: t.Target, Stage: stage, Err: err}
}

// enterState runs the entry sequence of sl. A sub-machine is started unless
// shallow is set and it was started before, in which case the vector it held
// at its last exit is re-entered after the owning state's hook.
func (m *Machine) enterState(sl *stateSlot, ec *primitives.EventContext, insp inspect.Inspector, shallow bool) error {
	id := sl.cfg.ID
	justStarted := false
	if sl.sub != nil && (!shallow || !m.history.Started(id)) {
		m.history.Clear(id)
		if err := sl.sub.start(insp.ForSubMachine(id)); err != nil {
			return fmt.Errorf("start sub-machine %s: %w", id, err)
		}
		m.history.MarkStarted(id)
		justStarted = true
	}

	insp.OnStateEnter(id)
	if sl.cfg.Entry != nil {
		if err := sl.cfg.Entry(ec, sl.cfg.Data); err != nil {
			return fmt.Errorf("entry %s: %w", id, err)
		}
	}
	m.startTimers(sl, ec, insp)

	if sl.sub != nil && !justStarted {
		last, _ := m.history.Restore(id)
		return sl.sub.resume(last, insp.ForSubMachine(id))
	}
	return nil
}

// resume re-enters a started sub-machine at vector, or at its current states
// when no vector was recorded. Nested sub-machines below them restart.
func (m *Machine) resume(vector []primitives.StateID, insp inspect.Inspector) error {
	if len(vector) == len(m.store.current) {
		copy(m.store.current, vector)
	}
	ev := primitives.NoEvent()
	var errs []error
	for r, cur := range m.store.current {
		if err := m.enterState(m.store.slots[cur], m.eventContext(ev, r), insp, false); err != nil {
			errs = append(errs, err)
		}
	}
	m.started = true
	return errors.Join(errs...)
}

// exitState runs the exit sequence of sl: its hook, timer cancellation, then
// the exits of a started sub-machine's current states.
func (m *Machine) exitState(sl *stateSlot, ec *primitives.EventContext, insp inspect.Inspector) error {
	id := sl.cfg.ID
	insp.OnStateExit(id)
	if sl.cfg.Exit != nil {
		if err := sl.cfg.Exit(ec, sl.cfg.Data); err != nil {
			return fmt.Errorf("exit %s: %w", id, err)
		}
	}
	m.cancelTimers(sl)

	if sl.sub != nil && m.history.Started(id) {
		m.history.RecordExit(id, sl.sub.store.Current())
		if err := sl.sub.exitCurrent(insp.ForSubMachine(id)); err != nil {
			return fmt.Errorf("sub-machine %s: %w", id, err)
		}
	}
	return nil
}

// exitCurrent exits the current state of every region.
func (m *Machine) exitCurrent(insp inspect.Inspector) error {
	ev := primitives.NoEvent()
	var errs []error
	for r, cur := range m.store.current {
		if cur == "" {
			continue
		}
		if err := m.exitState(m.store.slots[cur], m.eventContext(ev, r), insp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// startTimers arms the timers declared by sl. A timer that cannot be armed
// is reported and does not abort the entry.
func (m *Machine) startTimers(sl *stateSlot, ec *primitives.EventContext, insp inspect.Inspector) {
	for i := range sl.cfg.Timers {
		tc := &sl.cfg.Timers[i]
		settings := tc.Settings
		if tc.Setup != nil {
			tc.Setup(ec, &settings)
		}
		sl.cancelOnExit[tc.ID] = settings.CancelOnStateExit
		if err := m.timers.Create(tc.ID, settings); err != nil {
			insp.OnError("timer not armed", err)
			m.logger.Warn("timer not armed", "state", sl.cfg.ID, "timer", tc.ID, "error", err)
		}
	}
}

func (m *Machine) cancelTimers(sl *stateSlot) {
	for _, tc := range sl.cfg.Timers {
		if !sl.cancelOnExit[tc.ID] {
			continue
		}
		if err := m.timers.Cancel(tc.ID); err != nil && !errors.Is(err, primitives.ErrTimerNotStarted) {
			m.logger.Debug("timer cancel failed", "state", sl.cfg.ID, "timer", tc.ID, "error", err)
		}
	}
}
