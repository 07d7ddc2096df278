package inspect

import (
	"sync"

	"github.com/comalice/tickfsm/internal/primitives"
)

// Milestone names a recorded inspection call.
type Milestone string

const (
	MilestoneNewEvent     Milestone = "new_event"
	MilestoneTransition   Milestone = "for_transition"
	MilestoneSubMachine   Milestone = "for_sub_machine"
	MilestoneTimer        Milestone = "for_timer"
	MilestoneGuard        Milestone = "guard"
	MilestoneStateExit    Milestone = "state_exit"
	MilestoneAction       Milestone = "action"
	MilestoneStateEnter   Milestone = "state_enter"
	MilestoneTransitioned Milestone = "transitioned"
	MilestoneNoTransition Milestone = "no_transition"
	MilestoneError        Milestone = "error"
	MilestoneEventDone    Milestone = "event_done"
	MilestoneInfo         Milestone = "info"
)

// Call is one recorded milestone with its subject rendered as text.
type Call struct {
	Milestone Milestone
	Subject   string
	Err       error
}

type record struct {
	mu    sync.Mutex
	calls []Call
}

// Recorder keeps every milestone in call order. Scoped copies share the
// record. Safe for concurrent readers.
type Recorder struct {
	rec *record
}

var _ Inspector = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{rec: &record{}}
}

func (r *Recorder) add(m Milestone, subject string, err error) {
	r.rec.mu.Lock()
	r.rec.calls = append(r.rec.calls, Call{Milestone: m, Subject: subject, Err: err})
	r.rec.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.rec.mu.Lock()
	defer r.rec.mu.Unlock()
	return append([]Call(nil), r.rec.calls...)
}

// Count returns how often m was recorded.
func (r *Recorder) Count(m Milestone) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Milestone == m {
			n++
		}
	}
	return n
}

// Trace renders the calls of the given milestones as "milestone:subject",
// or of every milestone when none are given.
func (r *Recorder) Trace(only ...Milestone) []string {
	keep := make(map[Milestone]bool, len(only))
	for _, m := range only {
		keep[m] = true
	}
	var out []string
	for _, c := range r.Calls() {
		if len(only) == 0 || keep[c.Milestone] {
			out = append(out, string(c.Milestone)+":"+c.Subject)
		}
	}
	return out
}

// Last returns the most recent call of m.
func (r *Recorder) Last(m Milestone) (Call, bool) {
	calls := r.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Milestone == m {
			return calls[i], true
		}
	}
	return Call{}, false
}

// Reset forgets every call.
func (r *Recorder) Reset() {
	r.rec.mu.Lock()
	r.rec.calls = nil
	r.rec.mu.Unlock()
}

func (r *Recorder) NewEvent(event primitives.Event, _ []primitives.StateID) Inspector {
	r.add(MilestoneNewEvent, event.String(), nil)
	return r
}

func (r *Recorder) ForTransition(t *primitives.TransitionConfig) Inspector {
	r.add(MilestoneTransition, t.Label(), nil)
	return r
}

func (r *Recorder) ForSubMachine(state primitives.StateID) Inspector {
	r.add(MilestoneSubMachine, string(state), nil)
	return r
}

func (r *Recorder) ForTimer(id primitives.TimerID) Inspector {
	r.add(MilestoneTimer, string(id), nil)
	return r
}

func (r *Recorder) OnGuard(guard string, result bool) {
	subject := guard + "=false"
	if result {
		subject = guard + "=true"
	}
	r.add(MilestoneGuard, subject, nil)
}

func (r *Recorder) OnStateExit(state primitives.StateID) {
	r.add(MilestoneStateExit, string(state), nil)
}

func (r *Recorder) OnAction(action string) { r.add(MilestoneAction, action, nil) }

func (r *Recorder) OnStateEnter(state primitives.StateID) {
	r.add(MilestoneStateEnter, string(state), nil)
}

func (r *Recorder) OnTransition(from, to primitives.StateID) {
	r.add(MilestoneTransitioned, string(from)+"->"+string(to), nil)
}

func (r *Recorder) OnNoTransition(_ int, state primitives.StateID) {
	r.add(MilestoneNoTransition, string(state), nil)
}

func (r *Recorder) OnError(msg string, err error) { r.add(MilestoneError, msg, err) }

func (r *Recorder) EventDone(states []primitives.StateID) {
	subject := ""
	for i, s := range states {
		if i > 0 {
			subject += ","
		}
		subject += string(s)
	}
	r.add(MilestoneEventDone, subject, nil)
}

func (r *Recorder) Info(msg string) { r.add(MilestoneInfo, msg, nil) }
