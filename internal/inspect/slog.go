package inspect

import (
	"context"
	"log/slog"

	"github.com/comalice/tickfsm/internal/primitives"
)

// Slog logs milestones through a structured logger. Each scope is a child
// logger, so the event, starting states, transition, sub-machine and timer
// travel as attributes on every later line.
type Slog struct {
	logger *slog.Logger
	level  slog.Level
}

var _ Inspector = (*Slog)(nil)

// NewSlog logs milestones at level. A nil logger discards.
func NewSlog(logger *slog.Logger, level slog.Level) *Slog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Slog{logger: logger, level: level}
}

func (s *Slog) with(args ...any) *Slog {
	return &Slog{logger: s.logger.With(args...), level: s.level}
}

func (s *Slog) log(msg string, args ...any) {
	s.logger.Log(context.Background(), s.level, msg, args...)
}

func (s *Slog) NewEvent(event primitives.Event, states []primitives.StateID) Inspector {
	next := s.with("event", event.String(), "start_state", states)
	next.log("dispatching")
	return next
}

func (s *Slog) ForTransition(t *primitives.TransitionConfig) Inspector {
	next := s.with("transition", t.Label())
	next.log("matched transition")
	return next
}

func (s *Slog) ForSubMachine(state primitives.StateID) Inspector {
	next := s.with("sub_fsm", string(state))
	next.log("dispatching to sub-machine")
	return next
}

func (s *Slog) ForTimer(id primitives.TimerID) Inspector {
	return s.with("timer_id", string(id))
}

func (s *Slog) OnGuard(guard string, result bool) {
	s.log("guard evaluated", "guard", guard, "result", result)
}

func (s *Slog) OnStateExit(state primitives.StateID) {
	s.log("exiting state", "state", string(state))
}

func (s *Slog) OnAction(action string) {
	s.log("executing action", "action", action)
}

func (s *Slog) OnStateEnter(state primitives.StateID) {
	s.log("entering state", "state", string(state))
}

func (s *Slog) OnTransition(from, to primitives.StateID) {
	s.log("transitioned", "from", string(from), "to", string(to))
}

func (s *Slog) OnNoTransition(region int, state primitives.StateID) {
	s.log("no transition", "region", region, "state", string(state))
}

func (s *Slog) OnError(msg string, err error) {
	s.logger.Error(msg, "error", err)
}

func (s *Slog) EventDone(states []primitives.StateID) {
	s.log("dispatch done", "stop_state", states)
}

func (s *Slog) Info(msg string) {
	s.logger.Info(msg)
}
