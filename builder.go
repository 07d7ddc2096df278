package tickfsm

import (
	"errors"
	"fmt"
	"time"
)

// MachineBuilder provides a fluent API for declaring a machine. States are
// created on first mention; State adds them to the first region, and further
// regions are declared with Region.
type MachineBuilder struct {
	config  *MachineConfig
	states  map[StateID]*StateConfig
	regions map[StateID]int
	subs    map[StateID]*MachineBuilder
	errs    []error
}

// StateBuilder provides fluent methods for configuring individual states.
type StateBuilder struct {
	b     *MachineBuilder
	state *StateConfig
}

// TransitionBuilder configures the transition most recently added.
type TransitionBuilder struct {
	b   *MachineBuilder
	idx int
}

// RegionBuilder adds states to one region.
type RegionBuilder struct {
	b   *MachineBuilder
	idx int
}

// NewMachineBuilder creates a builder whose first region starts in initial.
func NewMachineBuilder(id, initial string) *MachineBuilder {
	b := &MachineBuilder{
		config:  &MachineConfig{ID: id},
		states:  make(map[StateID]*StateConfig),
		regions: make(map[StateID]int),
		subs:    make(map[StateID]*MachineBuilder),
	}
	b.config.Regions = append(b.config.Regions, RegionConfig{Name: "main", Initial: StateID(initial)})
	b.state(StateID(initial), 0)
	return b
}

// State creates or retrieves a state of the first region.
func (b *MachineBuilder) State(name string) *StateBuilder {
	return &StateBuilder{b: b, state: b.state(StateID(name), 0)}
}

// Region declares an additional orthogonal region starting in initial.
func (b *MachineBuilder) Region(name, initial string) *RegionBuilder {
	b.config.Regions = append(b.config.Regions, RegionConfig{Name: name, Initial: StateID(initial)})
	idx := len(b.config.Regions) - 1
	b.state(StateID(initial), idx)
	return &RegionBuilder{b: b, idx: idx}
}

// State creates or retrieves a state of this region.
func (rb *RegionBuilder) State(name string) *StateBuilder {
	return &StateBuilder{b: rb.b, state: rb.b.state(StateID(name), rb.idx)}
}

// Interrupt marks state as an interrupt state of this region. While it is
// current, only events listed in resume are dispatched.
func (rb *RegionBuilder) Interrupt(state string, resume ...EventKey) *RegionBuilder {
	rb.b.state(StateID(state), rb.idx)
	r := &rb.b.config.Regions[rb.idx]
	r.Interrupts = append(r.Interrupts, InterruptConfig{State: StateID(state), Resume: resume})
	return rb
}

// Interrupt marks a state of the first region as an interrupt state.
func (b *MachineBuilder) Interrupt(state string, resume ...EventKey) *MachineBuilder {
	(&RegionBuilder{b: b}).Interrupt(state, resume...)
	return b
}

func (b *MachineBuilder) state(id StateID, region int) *StateConfig {
	if st, ok := b.states[id]; ok {
		if b.regions[id] != region {
			b.errs = append(b.errs, fmt.Errorf("state %s is already declared in region %d", id, b.regions[id]))
		}
		return st
	}
	st := NewStateConfig(id)
	b.states[id] = st
	b.regions[id] = region
	b.config.States = append(b.config.States, st)
	r := &b.config.Regions[region]
	r.States = append(r.States, id)
	return st
}

// On adds an external transition. Source and target are created in the
// source's region if not yet declared.
func (b *MachineBuilder) On(source, event, target string) *TransitionBuilder {
	return b.add(TransitionConfig{Source: StateID(source), Event: EventKey(event), Target: StateID(target)})
}

// OnInternal adds an internal transition: its self action runs without
// exit or entry.
func (b *MachineBuilder) OnInternal(source, event string, action SelfAction) *TransitionBuilder {
	return b.add(TransitionConfig{
		Source:     StateID(source),
		Event:      EventKey(event),
		Target:     StateID(source),
		Kind:       Internal,
		SelfAction: action,
	})
}

// OnStart adds an eventless transition, taken right after source is entered.
func (b *MachineBuilder) OnStart(source, target string) *TransitionBuilder {
	return b.add(TransitionConfig{Source: StateID(source), Event: NoEventKey, Target: StateID(target)})
}

// OnTimer adds a transition taken when timer id of source fires.
func (b *MachineBuilder) OnTimer(source string, id TimerID, target string) *TransitionBuilder {
	return b.add(TransitionConfig{Source: StateID(source), Event: TimerKey(id), Target: StateID(target)})
}

func (b *MachineBuilder) add(t TransitionConfig) *TransitionBuilder {
	region := 0
	if st, ok := b.states[t.Source]; ok {
		region = b.regions[st.ID]
	}
	b.state(t.Source, region)
	b.state(t.Target, region)
	b.config.Transitions = append(b.config.Transitions, t)
	return &TransitionBuilder{b: b, idx: len(b.config.Transitions) - 1}
}

// Config returns the declaration, with sub-machine builders resolved.
func (b *MachineBuilder) Config() (*MachineConfig, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for id, sub := range b.subs {
		cfg, err := sub.Config()
		if err != nil {
			return nil, fmt.Errorf("sub-machine of %s: %w", id, err)
		}
		b.states[id].Sub = cfg
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	return b.config, nil
}

// Build validates the declaration and constructs the Machine. A builder
// should build one machine: state data is shared with the declaration.
func (b *MachineBuilder) Build(opts ...Option) (*Machine, error) {
	cfg, err := b.Config()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// TransitionBuilder fluent methods

func (tb *TransitionBuilder) t() *TransitionConfig { return &tb.b.config.Transitions[tb.idx] }

// Name labels the transition for inspection.
func (tb *TransitionBuilder) Name(name string) *TransitionBuilder {
	tb.t().Name = name
	return tb
}

// Guard sets the guard. name labels it for inspection and may be empty.
func (tb *TransitionBuilder) Guard(name string, guard Guard) *TransitionBuilder {
	tb.t().Guard, tb.t().GuardName = guard, name
	return tb
}

// GuardNamed references a guard by name, resolved at Build through the
// Resolver option.
func (tb *TransitionBuilder) GuardNamed(name string) *TransitionBuilder {
	tb.t().GuardName = name
	return tb
}

// Action sets the source/target action.
func (tb *TransitionBuilder) Action(name string, action Action) *TransitionBuilder {
	tb.t().Action, tb.t().ActionName = action, name
	return tb
}

// SelfAction sets the action of a transition whose source is its target.
func (tb *TransitionBuilder) SelfAction(name string, action SelfAction) *TransitionBuilder {
	tb.t().SelfAction, tb.t().ActionName = action, name
	return tb
}

// ActionNamed references an action by name, resolved at Build.
func (tb *TransitionBuilder) ActionNamed(name string) *TransitionBuilder {
	tb.t().ActionName = name
	return tb
}

// Priority orders transitions sharing a source and event; higher first.
func (tb *TransitionBuilder) Priority(p int) *TransitionBuilder {
	tb.t().Priority = p
	return tb
}

// ShallowHistory resumes the target sub-machine in its last states instead
// of restarting it.
func (tb *TransitionBuilder) ShallowHistory() *TransitionBuilder {
	tb.t().ShallowHistory = true
	return tb
}

// StateBuilder fluent methods

// Data attaches the state's data value, passed to hooks and actions.
func (sb *StateBuilder) Data(v any) *StateBuilder {
	sb.state.Data = v
	return sb
}

// Entry sets the entry hook.
func (sb *StateBuilder) Entry(h Hook) *StateBuilder {
	sb.state.Entry = h
	return sb
}

// Exit sets the exit hook.
func (sb *StateBuilder) Exit(h Hook) *StateBuilder {
	sb.state.Exit = h
	return sb
}

// Timer adds a timer armed on entry.
func (sb *StateBuilder) Timer(tc TimerConfig) *StateBuilder {
	sb.state.AddTimer(tc)
	return sb
}

// After adds a one-shot timer that dispatches event after d.
func (sb *StateBuilder) After(id TimerID, d time.Duration, event string) *StateBuilder {
	return sb.Timer(TimerConfig{ID: id, Settings: DefaultTimerSettings(d), Trigger: emit(event)})
}

// Every adds a renewing timer that dispatches event every d.
func (sb *StateBuilder) Every(id TimerID, d time.Duration, event string) *StateBuilder {
	settings := DefaultTimerSettings(d)
	settings.Renew = true
	return sb.Timer(TimerConfig{ID: id, Settings: settings, Trigger: emit(event)})
}

// Sub nests the machine declared by sub inside this state.
func (sb *StateBuilder) Sub(sub *MachineBuilder) *StateBuilder {
	sb.b.subs[sb.state.ID] = sub
	return sb
}

func emit(event string) func(*EventContext, any) (Event, bool) {
	return func(*EventContext, any) (Event, bool) {
		return NewEvent(event, nil), true
	}
}
