// Event provides the immutable event primitive for FSM dispatch.
//
// An Event is a closed tagged union over domain events (identified by Type),
// the synthetic NoEvent used at start and for eventless transitions, and the
// synthetic timer event carrying the id of an expired timer.
//
// Events are value types. Once created they must not be mutated; the engine
// copies them into every region and sub-machine it dispatches to.
package primitives

import "fmt"

// EventKind discriminates the variants of Event.
type EventKind uint8

const (
	// EventDomain is an application event identified by its Type.
	EventDomain EventKind = iota
	// EventNone is the synthetic "no event", used for eventless transitions.
	EventNone
	// EventTimer is synthesized when a timer expires.
	EventTimer
)

func (k EventKind) String() string {
	switch k {
	case EventDomain:
		return "domain"
	case EventNone:
		return "none"
	case EventTimer:
		return "timer"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// TimerID identifies a declared timer. Timers of sub-machines live in the
// parent's id space as "<sub-machine state>/<timer>".
type TimerID string

// EventKey is the event discriminant used as transition table key.
type EventKey string

// NoEventKey is the key of NoEvent; transitions declared on it are eventless.
const NoEventKey EventKey = "$none"

const timerKeyPrefix = "$timer:"

// TimerKey returns the key matching the timer event of id.
func TimerKey(id TimerID) EventKey {
	return EventKey(timerKeyPrefix + string(id))
}

// Event carries data through the state machine.
type Event struct {
	Type  string
	Data  any
	Kind  EventKind
	Timer TimerID
}

// NewEvent creates a domain event.
//
// This is zero-heap-allocation when Data is a stack value (small structs, primitives).
func NewEvent(eventType string, data any) Event {
	return Event{
		Type: eventType,
		Data: data,
		Kind: EventDomain,
	}
}

// NoEvent returns the synthetic event used at start and for eventless transitions.
func NoEvent() Event {
	return Event{Kind: EventNone}
}

// TimerEvent returns the synthetic event for an expired timer.
func TimerEvent(id TimerID) Event {
	return Event{Kind: EventTimer, Timer: id}
}

// Key returns the discriminant of the event.
func (e Event) Key() EventKey {
	switch e.Kind {
	case EventNone:
		return NoEventKey
	case EventTimer:
		return TimerKey(e.Timer)
	default:
		return EventKey(e.Type)
	}
}

// IsNone reports whether e is the synthetic NoEvent.
func (e Event) IsNone() bool { return e.Kind == EventNone }

// IsTimer reports whether e is a timer event.
func (e Event) IsTimer() bool { return e.Kind == EventTimer }

func (e Event) String() string {
	switch e.Kind {
	case EventNone:
		return "NoEvent"
	case EventTimer:
		return fmt.Sprintf("Timer(%s)", e.Timer)
	default:
		if e.Data == nil {
			return e.Type
		}
		return fmt.Sprintf("%s(%v)", e.Type, e.Data)
	}
}
