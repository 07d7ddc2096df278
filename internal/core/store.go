package core

import (
	"fmt"
	"slices"

	"github.com/comalice/tickfsm/internal/primitives"
)

// stateSlot is the runtime storage of one declared state.
type stateSlot struct {
	cfg    *primitives.StateConfig
	region int
	sub    *Machine
	// CancelOnStateExit as evaluated by the timer setup on the last entry.
	cancelOnExit map[primitives.TimerID]bool
}

// Store is the State/Region Store: one slot per declared state, alive for the
// machine lifetime, and the current-state vector with one entry per region.
// It is the primitives.StateView handed to guards, actions and hooks.
type Store struct {
	order   []primitives.StateID
	slots   map[primitives.StateID]*stateSlot
	current []primitives.StateID
}

var _ primitives.StateView = (*Store)(nil)

func newStore(config *primitives.MachineConfig) *Store {
	s := &Store{
		slots:   make(map[primitives.StateID]*stateSlot, len(config.States)),
		current: make([]primitives.StateID, len(config.Regions)),
	}
	for _, st := range config.States {
		region, _ := config.RegionOf(st.ID)
		s.order = append(s.order, st.ID)
		s.slots[st.ID] = &stateSlot{
			cfg:          st,
			region:       region,
			cancelOnExit: make(map[primitives.TimerID]bool, len(st.Timers)),
		}
	}
	return s
}

func (s *Store) slot(id primitives.StateID) (*stateSlot, error) {
	sl, ok := s.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", primitives.ErrUnknownState, id)
	}
	return sl, nil
}

// Current returns a copy of the current-state vector.
func (s *Store) Current() []primitives.StateID {
	return slices.Clone(s.current)
}

// IsActive reports whether id is current in any region.
func (s *Store) IsActive(id primitives.StateID) bool {
	return slices.Contains(s.current, id)
}

// Data returns the persisted data of a declared state.
func (s *Store) Data(id primitives.StateID) (any, bool) {
	sl, ok := s.slots[id]
	if !ok {
		return nil, false
	}
	return sl.cfg.Data, true
}

// States lists the declared states in declaration order.
func (s *Store) States() []primitives.StateID {
	return slices.Clone(s.order)
}
