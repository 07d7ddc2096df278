// StateConfig declares one state: its persisted data, entry/exit hooks, the
// timers started on entry, and optionally the sub-machine it embeds.
package primitives

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// StateID identifies a declared state.
type StateID string

// Hook runs on state entry or exit. data is the state's persisted data.
type Hook func(ec *EventContext, data any) error

// TimerSettings configure a timer when its state is entered.
type TimerSettings struct {
	Enabled           bool          `yaml:"enabled"`
	Timeout           time.Duration `yaml:"timeout"`
	Renew             bool          `yaml:"renew"`
	CancelOnStateExit bool          `yaml:"cancelOnStateExit"`
}

// DefaultTimerSettings returns an enabled one-shot timer cancelled on exit.
func DefaultTimerSettings(timeout time.Duration) TimerSettings {
	return TimerSettings{
		Enabled:           true,
		Timeout:           timeout,
		CancelOnStateExit: true,
	}
}

// TimerConfig declares a timer owned by a state.
type TimerConfig struct {
	ID       TimerID       `yaml:"id"`
	Settings TimerSettings `yaml:"settings"`
	// Setup may adjust Settings on every entry, e.g. from the machine context.
	Setup func(ec *EventContext, settings *TimerSettings) `yaml:"-"`
	// Trigger produces the event dispatched when the timer fires. When nil or
	// when it reports false, only transitions keyed on TimerKey(ID) can match.
	Trigger func(ec *EventContext, data any) (Event, bool) `yaml:"-"`
}

// StateConfig defines a state.
type StateConfig struct {
	ID     StateID        `yaml:"id"`
	Data   any            `yaml:"-"`
	Entry  Hook           `yaml:"-"`
	Exit   Hook           `yaml:"-"`
	Timers []TimerConfig  `yaml:"timers,omitempty"`
	Sub    *MachineConfig `yaml:"sub,omitempty"`
}

// NewStateConfig creates a new StateConfig with ID.
func NewStateConfig(id StateID) *StateConfig {
	return &StateConfig{ID: id}
}

// WithData sets the persisted state data. Use a pointer so actions can mutate it.
func (s *StateConfig) WithData(data any) *StateConfig {
	s.Data = data
	return s
}

// WithEntry sets the entry hook.
func (s *StateConfig) WithEntry(h Hook) *StateConfig {
	s.Entry = h
	return s
}

// WithExit sets the exit hook.
func (s *StateConfig) WithExit(h Hook) *StateConfig {
	s.Exit = h
	return s
}

// AddTimer declares a timer started on entry.
func (s *StateConfig) AddTimer(timer TimerConfig) *StateConfig {
	s.Timers = append(s.Timers, timer)
	return s
}

// WithSubMachine turns the state into a sub-machine slot.
func (s *StateConfig) WithSubMachine(sub *MachineConfig) *StateConfig {
	s.Sub = sub
	return s
}

// IsSubMachine reports whether the state embeds a machine.
func (s *StateConfig) IsSubMachine() bool {
	return s.Sub != nil
}

// Validate checks the state declaration. Sub-machines are validated recursively.
func (s *StateConfig) Validate() error {
	if strings.TrimSpace(string(s.ID)) == "" {
		return errors.New("state ID is required")
	}
	if strings.Contains(string(s.ID), "/") {
		return fmt.Errorf("state ID %q: '/' is reserved for sub-machine timer ids", s.ID)
	}
	seen := make(map[TimerID]struct{}, len(s.Timers))
	for i, timer := range s.Timers {
		if timer.ID == "" {
			return fmt.Errorf("timer %d of state %s has no ID", i, s.ID)
		}
		if strings.Contains(string(timer.ID), "/") {
			return fmt.Errorf("timer %q of state %s: '/' is reserved for sub-machine ids", timer.ID, s.ID)
		}
		if _, dup := seen[timer.ID]; dup {
			return fmt.Errorf("duplicate timer %q in state %s", timer.ID, s.ID)
		}
		seen[timer.ID] = struct{}{}
		if timer.Settings.Timeout < 0 {
			return fmt.Errorf("timer %q of state %s has negative timeout", timer.ID, s.ID)
		}
	}
	if s.Sub != nil {
		if err := s.Sub.Validate(); err != nil {
			return fmt.Errorf("sub-machine of %s: %w", s.ID, err)
		}
	}
	return nil
}
