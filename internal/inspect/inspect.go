// Package inspect defines the inspection chain: observers notified at each
// milestone of a dispatch. Scoping calls (NewEvent, ForTransition,
// ForSubMachine, ForTimer) return a new Inspector carrying the extra context
// and never mutate the receiver. Inspectors cannot change a dispatch outcome.
package inspect

import "github.com/comalice/tickfsm/internal/primitives"

// Inspector observes dispatch milestones. Per dispatch the order is
// NewEvent, scoping and OnGuard, OnStateExit, OnAction, OnStateEnter,
// OnTransition, OnNoTransition or OnError on failure, EventDone.
type Inspector interface {
	NewEvent(event primitives.Event, states []primitives.StateID) Inspector
	ForTransition(t *primitives.TransitionConfig) Inspector
	ForSubMachine(state primitives.StateID) Inspector
	ForTimer(id primitives.TimerID) Inspector

	OnGuard(guard string, result bool)
	OnStateExit(state primitives.StateID)
	OnAction(action string)
	OnStateEnter(state primitives.StateID)
	OnTransition(from, to primitives.StateID)
	OnNoTransition(region int, state primitives.StateID)
	OnError(msg string, err error)
	EventDone(states []primitives.StateID)
	Info(msg string)
}

// Null discards everything.
type Null struct{}

var _ Inspector = Null{}

func (n Null) NewEvent(primitives.Event, []primitives.StateID) Inspector { return n }
func (n Null) ForTransition(*primitives.TransitionConfig) Inspector      { return n }
func (n Null) ForSubMachine(primitives.StateID) Inspector                { return n }
func (n Null) ForTimer(primitives.TimerID) Inspector                     { return n }
func (Null) OnGuard(string, bool)                                        {}
func (Null) OnStateExit(primitives.StateID)                              {}
func (Null) OnAction(string)                                             {}
func (Null) OnStateEnter(primitives.StateID)                             {}
func (Null) OnTransition(primitives.StateID, primitives.StateID)         {}
func (Null) OnNoTransition(int, primitives.StateID)                      {}
func (Null) OnError(string, error)                                       {}
func (Null) EventDone([]primitives.StateID)                              {}
func (Null) Info(string)                                                 {}
