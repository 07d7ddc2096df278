package inspect

import "github.com/comalice/tickfsm/internal/primitives"

// Chain fans every milestone out to its members in order.
type Chain []Inspector

var _ Inspector = Chain(nil)

// NewChain drops nil members; a chain of one returns that member.
func NewChain(members ...Inspector) Inspector {
	var c Chain
	for _, m := range members {
		if m != nil {
			c = append(c, m)
		}
	}
	switch len(c) {
	case 0:
		return Null{}
	case 1:
		return c[0]
	}
	return c
}

func (c Chain) scope(f func(Inspector) Inspector) Inspector {
	next := make(Chain, len(c))
	for i, m := range c {
		next[i] = f(m)
	}
	return next
}

func (c Chain) NewEvent(event primitives.Event, states []primitives.StateID) Inspector {
	return c.scope(func(m Inspector) Inspector { return m.NewEvent(event, states) })
}

func (c Chain) ForTransition(t *primitives.TransitionConfig) Inspector {
	return c.scope(func(m Inspector) Inspector { return m.ForTransition(t) })
}

func (c Chain) ForSubMachine(state primitives.StateID) Inspector {
	return c.scope(func(m Inspector) Inspector { return m.ForSubMachine(state) })
}

func (c Chain) ForTimer(id primitives.TimerID) Inspector {
	return c.scope(func(m Inspector) Inspector { return m.ForTimer(id) })
}

func (c Chain) OnGuard(guard string, result bool) {
	for _, m := range c {
		m.OnGuard(guard, result)
	}
}

func (c Chain) OnStateExit(state primitives.StateID) {
	for _, m := range c {
		m.OnStateExit(state)
	}
}

func (c Chain) OnAction(action string) {
	for _, m := range c {
		m.OnAction(action)
	}
}

func (c Chain) OnStateEnter(state primitives.StateID) {
	for _, m := range c {
		m.OnStateEnter(state)
	}
}

func (c Chain) OnTransition(from, to primitives.StateID) {
	for _, m := range c {
		m.OnTransition(from, to)
	}
}

func (c Chain) OnNoTransition(region int, state primitives.StateID) {
	for _, m := range c {
		m.OnNoTransition(region, state)
	}
}

func (c Chain) OnError(msg string, err error) {
	for _, m := range c {
		m.OnError(msg, err)
	}
}

func (c Chain) EventDone(states []primitives.StateID) {
	for _, m := range c {
		m.EventDone(states)
	}
}

func (c Chain) Info(msg string) {
	for _, m := range c {
		m.Info(msg)
	}
}
