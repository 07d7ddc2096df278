// Package timers implements the countdown timer subsystem. Timers are driven
// by the caller through Tick; there is no goroutine and no wall clock here.
package timers

import (
	"fmt"
	"time"

	"github.com/comalice/tickfsm/internal/primitives"
)

// DefaultPendingCapacity bounds the triggered-but-undispatched list when no
// capacity is configured.
const DefaultPendingCapacity = 16

// Timers is the timer subsystem contract.
type Timers interface {
	// Create arms id with settings, replacing any running timer with that id.
	Create(id primitives.TimerID, settings primitives.TimerSettings) error
	// Cancel disarms id.
	Cancel(id primitives.TimerID) error
	// Remaining reports the time until id next fires.
	Remaining(id primitives.TimerID) (time.Duration, error)
	// Tick advances every armed timer by elapsed.
	Tick(elapsed time.Duration)
	// Triggered pops the oldest fired timer id.
	Triggered() (primitives.TimerID, bool)
}

type shape uint8

const (
	idle shape = iota
	timeout
	interval
)

type slot struct {
	shape     shape
	remaining time.Duration
	period    time.Duration
}

// Core holds one slot per declared timer id and a bounded pending list.
type Core struct {
	ids     []primitives.TimerID
	index   map[primitives.TimerID]int
	slots   []slot
	pending []primitives.TimerID
	limit   int
}

// NewCore creates timers for ids, visited by Tick in the given order.
// pendingCap <= 0 selects max(DefaultPendingCapacity, len(ids)).
func NewCore(ids []primitives.TimerID, pendingCap int) *Core {
	if pendingCap <= 0 {
		pendingCap = max(DefaultPendingCapacity, len(ids))
	}
	c := &Core{
		ids:     append([]primitives.TimerID(nil), ids...),
		index:   make(map[primitives.TimerID]int, len(ids)),
		slots:   make([]slot, len(ids)),
		pending: make([]primitives.TimerID, 0, pendingCap),
		limit:   pendingCap,
	}
	for i, id := range ids {
		c.index[id] = i
	}
	return c
}

func (c *Core) lookup(id primitives.TimerID) (*slot, error) {
	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", primitives.ErrUnknownTimer, id)
	}
	return &c.slots[i], nil
}

func (c *Core) Create(id primitives.TimerID, settings primitives.TimerSettings) error {
	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	*s = slot{}
	if !settings.Enabled {
		return nil
	}
	if settings.Renew {
		*s = slot{shape: interval, remaining: settings.Timeout, period: settings.Timeout}
	} else {
		*s = slot{shape: timeout, remaining: settings.Timeout}
	}
	return nil
}

func (c *Core) Cancel(id primitives.TimerID) error {
	s, err := c.lookup(id)
	if err != nil {
		return err
	}
	if s.shape == idle {
		return fmt.Errorf("cancel %q: %w", id, primitives.ErrTimerNotStarted)
	}
	*s = slot{}
	return nil
}

func (c *Core) Remaining(id primitives.TimerID) (time.Duration, error) {
	s, err := c.lookup(id)
	if err != nil {
		return 0, err
	}
	if s.shape == idle {
		return 0, fmt.Errorf("remaining %q: %w", id, primitives.ErrTimerNotStarted)
	}
	return s.remaining, nil
}

// Tick visits ids in declaration order. A timer whose remaining time is at
// most elapsed fires: it is appended to the pending list, a one-shot becomes
// idle and an interval restarts its full period. The overshoot is not carried
// into the next period. Tick panics when the pending list overflows, which
// means triggered timers are not being dispatched.
func (c *Core) Tick(elapsed time.Duration) {
	for i := range c.slots {
		s := &c.slots[i]
		if s.shape == idle {
			continue
		}
		if s.remaining > elapsed {
			s.remaining -= elapsed
			continue
		}
		if len(c.pending) == c.limit {
			panic(fmt.Sprintf("timers: pending list full (%d) while firing %q; DispatchTimerEvents is not keeping up", c.limit, c.ids[i]))
		}
		c.pending = append(c.pending, c.ids[i])
		if s.shape == interval {
			s.remaining = s.period
		} else {
			*s = slot{}
		}
	}
}

func (c *Core) Triggered() (primitives.TimerID, bool) {
	if len(c.pending) == 0 {
		return "", false
	}
	id := c.pending[0]
	copy(c.pending, c.pending[1:])
	c.pending = c.pending[:len(c.pending)-1]
	return id, true
}

// IDs returns the declared ids in tick order.
func (c *Core) IDs() []primitives.TimerID {
	return append([]primitives.TimerID(nil), c.ids...)
}

// Null is the disabled timer backend.
type Null struct{}

func (Null) Create(id primitives.TimerID, _ primitives.TimerSettings) error {
	return fmt.Errorf("create timer %q: %w", id, primitives.ErrNotSupported)
}

func (Null) Cancel(id primitives.TimerID) error {
	return fmt.Errorf("cancel timer %q: %w", id, primitives.ErrNotSupported)
}

func (Null) Remaining(id primitives.TimerID) (time.Duration, error) {
	return 0, fmt.Errorf("timer %q: %w", id, primitives.ErrNotSupported)
}

func (Null) Tick(time.Duration)                    {}
func (Null) Triggered() (primitives.TimerID, bool) { return "", false }
