package timers

import (
	"time"

	"github.com/comalice/tickfsm/internal/primitives"
)

// Scoped is the timer view handed to a sub-machine. Its ids are qualified with
// the owning state so they live in the parent's id space. The parent ticks
// and pops fired ids; the scoped view neither ticks nor yields them.
type Scoped struct {
	parent Timers
	owner  primitives.StateID
}

// NewScoped returns the view of parent for the sub-machine held by owner.
func NewScoped(parent Timers, owner primitives.StateID) *Scoped {
	return &Scoped{parent: parent, owner: owner}
}

func (s *Scoped) qualify(id primitives.TimerID) primitives.TimerID {
	return primitives.SubTimerID(s.owner, id)
}

func (s *Scoped) Create(id primitives.TimerID, settings primitives.TimerSettings) error {
	return s.parent.Create(s.qualify(id), settings)
}

func (s *Scoped) Cancel(id primitives.TimerID) error {
	return s.parent.Cancel(s.qualify(id))
}

func (s *Scoped) Remaining(id primitives.TimerID) (time.Duration, error) {
	return s.parent.Remaining(s.qualify(id))
}

func (s *Scoped) Tick(time.Duration) {}

func (s *Scoped) Triggered() (primitives.TimerID, bool) { return "", false }
