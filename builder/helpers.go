// Package builder offers option-style helpers for declaring states and
// transitions without the fluent MachineBuilder, plus guard combinators.
package builder

import (
	"time"

	"github.com/comalice/tickfsm"
)

// ID shortcut
type ID = tickfsm.StateID

// New creates a state configured by opts.
func New(id ID, opts ...Option) *tickfsm.StateConfig {
	s := tickfsm.NewStateConfig(id)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Machine assembles a single-region machine; the first state is initial.
func Machine(id string, states []*tickfsm.StateConfig, transitions ...tickfsm.TransitionConfig) *tickfsm.MachineConfig {
	cfg := &tickfsm.MachineConfig{ID: id, States: states, Transitions: transitions}
	if len(states) > 0 {
		cfg.Regions = []tickfsm.RegionConfig{{Initial: states[0].ID}}
	}
	return cfg
}

// Option pattern for configuring states
type Option func(*tickfsm.StateConfig)

// OnEntry sets the hook run when the state is entered.
func OnEntry(h tickfsm.Hook) Option {
	return func(s *tickfsm.StateConfig) { s.Entry = h }
}

// OnExit sets the hook run when the state is exited.
func OnExit(h tickfsm.Hook) Option {
	return func(s *tickfsm.StateConfig) { s.Exit = h }
}

// WithData attaches the state's data value.
func WithData(v any) Option {
	return func(s *tickfsm.StateConfig) { s.Data = v }
}

// WithTimeout arms a one-shot timer on entry that dispatches event.
func WithTimeout(id tickfsm.TimerID, d time.Duration, event string) Option {
	return func(s *tickfsm.StateConfig) {
		s.AddTimer(tickfsm.TimerConfig{
			ID:       id,
			Settings: tickfsm.DefaultTimerSettings(d),
			Trigger: func(*tickfsm.EventContext, any) (tickfsm.Event, bool) {
				return tickfsm.NewEvent(event, nil), true
			},
		})
	}
}

// On declares an external transition.
func On(source ID, event string, target ID, opts ...TransOption) tickfsm.TransitionConfig {
	t := tickfsm.TransitionConfig{Source: source, Event: tickfsm.EventKey(event), Target: target}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Internal declares an internal transition running act.
func Internal(state ID, event string, act tickfsm.SelfAction, opts ...TransOption) tickfsm.TransitionConfig {
	t := tickfsm.TransitionConfig{
		Source:     state,
		Event:      tickfsm.EventKey(event),
		Target:     state,
		Kind:       tickfsm.Internal,
		SelfAction: act,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

type TransOption func(*tickfsm.TransitionConfig)

func WithGuard(g tickfsm.Guard) TransOption {
	return func(t *tickfsm.TransitionConfig) { t.Guard = g }
}

func WithAction(act tickfsm.Action) TransOption {
	return func(t *tickfsm.TransitionConfig) { t.Action = act }
}

func WithPriority(p int) TransOption {
	return func(t *tickfsm.TransitionConfig) { t.Priority = p }
}

// And passes when every guard passes. Evaluation stops at the first failure.
func And(guards ...tickfsm.Guard) tickfsm.Guard {
	return func(ec *tickfsm.EventContext) bool {
		for _, g := range guards {
			if !g(ec) {
				return false
			}
		}
		return true
	}
}

// Or passes when any guard passes.
func Or(guards ...tickfsm.Guard) tickfsm.Guard {
	return func(ec *tickfsm.EventContext) bool {
		for _, g := range guards {
			if g(ec) {
				return true
			}
		}
		return false
	}
}

func Not(g tickfsm.Guard) tickfsm.Guard {
	return func(ec *tickfsm.EventContext) bool { return !g(ec) }
}

// InState passes while id is current in any region.
func InState(id ID) tickfsm.Guard {
	return func(ec *tickfsm.EventContext) bool { return ec.States.IsActive(id) }
}
