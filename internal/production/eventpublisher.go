package production

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/comalice/tickfsm/internal/inspect"
	"github.com/comalice/tickfsm/internal/primitives"
)

// TransitionRecord describes one completed state change.
type TransitionRecord struct {
	MachineID  string
	SubMachine string
	Event      primitives.Event
	Transition string
	From       primitives.StateID
	To         primitives.StateID
	Timestamp  time.Time
}

type publisherShared struct {
	ch      chan TransitionRecord
	dropped atomic.Uint64
	closed  atomic.Bool
}

// ChannelPublisher is an Inspector that forwards every transition to a
// channel. Publishing never blocks the machine: records are dropped when the
// channel is full.
type ChannelPublisher struct {
	shared     *publisherShared
	machineID  string
	subMachine string
	event      primitives.Event
	transition string
}

var _ inspect.Inspector = (*ChannelPublisher)(nil)

// NewChannelPublisher creates a publisher with a buffered channel of the given size.
func NewChannelPublisher(machineID string, buffer int) *ChannelPublisher {
	return &ChannelPublisher{
		shared:    &publisherShared{ch: make(chan TransitionRecord, buffer)},
		machineID: machineID,
	}
}

// Records is the receiving side.
func (p *ChannelPublisher) Records() <-chan TransitionRecord { return p.shared.ch }

// Dropped reports how many records were discarded on backpressure.
func (p *ChannelPublisher) Dropped() uint64 { return p.shared.dropped.Load() }

// Publish sends rec, blocking until there is room or ctx ends.
func (p *ChannelPublisher) Publish(ctx context.Context, rec TransitionRecord) error {
	if p.shared.closed.Load() {
		return nil
	}
	select {
	case p.shared.ch <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the channel. Later transitions are not published.
func (p *ChannelPublisher) Close() error {
	if p.shared.closed.CompareAndSwap(false, true) {
		close(p.shared.ch)
	}
	return nil
}

func (p *ChannelPublisher) NewEvent(ev primitives.Event, _ []primitives.StateID) inspect.Inspector {
	cp := *p
	cp.event = ev
	cp.transition = ""
	return &cp
}

func (p *ChannelPublisher) ForTransition(t *primitives.TransitionConfig) inspect.Inspector {
	cp := *p
	cp.transition = t.Label()
	return &cp
}

func (p *ChannelPublisher) ForSubMachine(state primitives.StateID) inspect.Inspector {
	cp := *p
	if cp.subMachine == "" {
		cp.subMachine = string(state)
	} else {
		cp.subMachine += "/" + string(state)
	}
	return &cp
}

func (p *ChannelPublisher) ForTimer(primitives.TimerID) inspect.Inspector { return p }

func (p *ChannelPublisher) OnTransition(from, to primitives.StateID) {
	if p.shared.closed.Load() {
		return
	}
	rec := TransitionRecord{
		MachineID:  p.machineID,
		SubMachine: p.subMachine,
		Event:      p.event,
		Transition: p.transition,
		From:       from,
		To:         to,
		Timestamp:  time.Now(),
	}
	select {
	case p.shared.ch <- rec:
	default:
		p.shared.dropped.Add(1)
	}
}

func (p *ChannelPublisher) OnGuard(string, bool)                   {}
func (p *ChannelPublisher) OnStateExit(primitives.StateID)         {}
func (p *ChannelPublisher) OnAction(string)                        {}
func (p *ChannelPublisher) OnStateEnter(primitives.StateID)        {}
func (p *ChannelPublisher) OnNoTransition(int, primitives.StateID) {}
func (p *ChannelPublisher) OnError(string, error)                  {}
func (p *ChannelPublisher) EventDone([]primitives.StateID)         {}
func (p *ChannelPublisher) Info(string)                            {}
