// MachineConfig is the statically resolved declaration consumed by the
// dispatch engine: the states in declaration order, the regions with their
// member states, initial state and interrupt table, and the transition table.
// Validation ensures ID presence, unique states, region membership and
// transition endpoints within one region.

package primitives

import (
	"errors"
	"fmt"
)

// InterruptConfig makes State an interrupt state: while it is current, only
// events whose key is in Resume are dispatched.
type InterruptConfig struct {
	State  StateID    `yaml:"state"`
	Resume []EventKey `yaml:"resume,omitempty"`
}

// RegionConfig declares one orthogonal region.
type RegionConfig struct {
	Name       string            `yaml:"name,omitempty"`
	Initial    StateID           `yaml:"initial"`
	States     []StateID         `yaml:"states"`
	Interrupts []InterruptConfig `yaml:"interrupts,omitempty"`
}

// MachineConfig defines the complete machine declaration.
type MachineConfig struct {
	ID          string             `yaml:"id"`
	States      []*StateConfig     `yaml:"states"`
	Regions     []RegionConfig     `yaml:"regions"`
	Transitions []TransitionConfig `yaml:"transitions,omitempty"`
}

// Normalize fills derivable fields: a single region without an explicit
// member list owns every declared state. Applied recursively to sub-machines.
func (m *MachineConfig) Normalize() {
	if len(m.Regions) == 1 && len(m.Regions[0].States) == 0 {
		for _, s := range m.States {
			m.Regions[0].States = append(m.Regions[0].States, s.ID)
		}
	}
	for _, s := range m.States {
		if s.Sub != nil {
			s.Sub.Normalize()
		}
	}
}

// Validate validates the entire machine configuration:
// - Non-empty ID, at least one state and one region
// - Unique state IDs, each state valid (recursively for sub-machines)
// - Timer IDs unique across the machine's states
// - Every state in exactly one region, every region's initial among its states
// - Transition endpoints exist and share a region
// - Interrupt states belong to their region
func (m *MachineConfig) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: machine ID is required", ErrInvalidConfig)
	}
	if len(m.States) == 0 {
		return fmt.Errorf("%w: machine %s declares no states", ErrInvalidConfig, m.ID)
	}
	if len(m.Regions) == 0 {
		return fmt.Errorf("%w: machine %s declares no regions", ErrInvalidConfig, m.ID)
	}

	states := make(map[StateID]*StateConfig, len(m.States))
	timerOwner := make(map[TimerID]StateID)
	for i, s := range m.States {
		if s == nil {
			return fmt.Errorf("%w: state %d is nil", ErrInvalidConfig, i)
		}
		if _, dup := states[s.ID]; dup {
			return fmt.Errorf("%w: duplicate state %q", ErrInvalidConfig, s.ID)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: state %q: %w", ErrInvalidConfig, s.ID, err)
		}
		for _, tc := range s.Timers {
			if owner, dup := timerOwner[tc.ID]; dup {
				return fmt.Errorf("%w: timer %q declared by states %q and %q", ErrInvalidConfig, tc.ID, owner, s.ID)
			}
			timerOwner[tc.ID] = s.ID
		}
		states[s.ID] = s
	}

	regionOf := make(map[StateID]int, len(m.States))
	for r, region := range m.Regions {
		for _, id := range region.States {
			if _, ok := states[id]; !ok {
				return fmt.Errorf("%w: region %d lists unknown state %q", ErrInvalidConfig, r, id)
			}
			if prev, dup := regionOf[id]; dup {
				return fmt.Errorf("%w: state %q in regions %d and %d", ErrInvalidConfig, id, prev, r)
			}
			regionOf[id] = r
		}
		if region.Initial == "" {
			return fmt.Errorf("%w: region %d has no initial state", ErrInvalidConfig, r)
		}
		if got, ok := regionOf[region.Initial]; !ok || got != r {
			return fmt.Errorf("%w: initial state %q is not a member of region %d", ErrInvalidConfig, region.Initial, r)
		}
		for _, intr := range region.Interrupts {
			if got, ok := regionOf[intr.State]; !ok || got != r {
				return fmt.Errorf("%w: interrupt state %q is not a member of region %d", ErrInvalidConfig, intr.State, r)
			}
		}
	}
	for id := range states {
		if _, ok := regionOf[id]; !ok {
			return fmt.Errorf("%w: state %q belongs to no region", ErrInvalidConfig, id)
		}
	}

	for i := range m.Transitions {
		t := &m.Transitions[i]
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: transition %d: %w", ErrInvalidConfig, i, err)
		}
		src, ok := regionOf[t.Source]
		if !ok {
			return fmt.Errorf("%w: transition %s from unknown state", ErrInvalidConfig, t.Label())
		}
		dst, ok := regionOf[t.Target]
		if !ok {
			return fmt.Errorf("%w: transition %s to unknown state", ErrInvalidConfig, t.Label())
		}
		if src != dst {
			return fmt.Errorf("%w: transition %s crosses regions %d and %d", ErrInvalidConfig, t.Label(), src, dst)
		}
		if t.ShallowHistory && !states[t.Target].IsSubMachine() {
			return fmt.Errorf("%w: transition %s: shallow history requires a sub-machine target", ErrInvalidConfig, t.Label())
		}
	}
	return nil
}

// FindState resolves a declared state by ID.
func (m *MachineConfig) FindState(id StateID) (*StateConfig, error) {
	if id == "" {
		return nil, errors.New("state id cannot be empty")
	}
	for _, s := range m.States {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownState, id)
}

// RegionOf returns the index of the region owning id.
func (m *MachineConfig) RegionOf(id StateID) (int, bool) {
	for r, region := range m.Regions {
		for _, member := range region.States {
			if member == id {
				return r, true
			}
		}
	}
	return 0, false
}

// TimerIDs enumerates every timer id in declaration order: the timers of each
// state in state order, with a sub-machine's ids flattened in place as
// "<state>/<sub timer id>".
func (m *MachineConfig) TimerIDs() []TimerID {
	var ids []TimerID
	for _, s := range m.States {
		for _, timer := range s.Timers {
			ids = append(ids, timer.ID)
		}
		if s.Sub != nil {
			for _, sub := range s.Sub.TimerIDs() {
				ids = append(ids, SubTimerID(s.ID, sub))
			}
		}
	}
	return ids
}

// SubTimerID qualifies a sub-machine timer id with the owning state.
func SubTimerID(owner StateID, id TimerID) TimerID {
	return TimerID(string(owner) + "/" + string(id))
}
