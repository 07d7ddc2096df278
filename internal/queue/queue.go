// Package queue holds the event queue backends a machine buffers
// action-generated events in. All backends drain in FIFO order and none of
// them drops events silently: a rejected enqueue is always an error.
package queue

import (
	"fmt"

	"github.com/comalice/tickfsm/internal/primitives"
)

// Queue is the event queue contract.
type Queue interface {
	// Enqueue appends an event. Fails with primitives.ErrQueueOverCapacity
	// or primitives.ErrNotSupported.
	Enqueue(event primitives.Event) error
	// Dequeue removes the oldest event.
	Dequeue() (primitives.Event, bool)
	// Len is the number of buffered events.
	Len() int
	// Cap is the capacity, -1 when unbounded.
	Cap() int
}

// Kind names a backend for configuration.
type Kind string

const (
	KindArray Kind = "array"
	KindVec   Kind = "vec"
	KindNull  Kind = "null"
)

// New builds a backend by kind. capacity is used by KindArray and as the
// initial allocation of KindVec.
func New(kind Kind, capacity int) (Queue, error) {
	switch kind {
	case KindArray:
		if capacity <= 0 {
			return nil, fmt.Errorf("array queue capacity must be positive, got %d", capacity)
		}
		return NewArray(capacity), nil
	case KindVec, "":
		return NewVec(capacity), nil
	case KindNull:
		return Null{}, nil
	default:
		return nil, fmt.Errorf("unknown queue kind %q", kind)
	}
}

// Array is a fixed-capacity ring buffer, allocated once.
type Array struct {
	buf  []primitives.Event
	head int
	size int
}

// NewArray creates a ring buffer holding up to capacity events.
func NewArray(capacity int) *Array {
	return &Array{buf: make([]primitives.Event, capacity)}
}

func (a *Array) Enqueue(event primitives.Event) error {
	if a.size == len(a.buf) {
		return fmt.Errorf("enqueue %s: %w", event, primitives.ErrQueueOverCapacity)
	}
	a.buf[(a.head+a.size)%len(a.buf)] = event
	a.size++
	return nil
}

func (a *Array) Dequeue() (primitives.Event, bool) {
	if a.size == 0 {
		return primitives.Event{}, false
	}
	ev := a.buf[a.head]
	a.buf[a.head] = primitives.Event{}
	a.head = (a.head + 1) % len(a.buf)
	a.size--
	return ev, true
}

func (a *Array) Len() int { return a.size }
func (a *Array) Cap() int { return len(a.buf) }

// Vec is a growable FIFO; it never fails for capacity. Dequeued slots are
// reclaimed once the queue drains or the consumed prefix outgrows the rest.
type Vec struct {
	events []primitives.Event
	head   int
}

// NewVec creates a growable queue with an initial allocation hint.
func NewVec(hint int) *Vec {
	if hint < 0 {
		hint = 0
	}
	return &Vec{events: make([]primitives.Event, 0, hint)}
}

func (v *Vec) Enqueue(event primitives.Event) error {
	if v.head > 0 && v.head >= len(v.events)-v.head {
		n := copy(v.events, v.events[v.head:])
		clear(v.events[n:])
		v.events = v.events[:n]
		v.head = 0
	}
	v.events = append(v.events, event)
	return nil
}

func (v *Vec) Dequeue() (primitives.Event, bool) {
	if v.head == len(v.events) {
		return primitives.Event{}, false
	}
	ev := v.events[v.head]
	v.events[v.head] = primitives.Event{}
	v.head++
	if v.head == len(v.events) {
		v.events = v.events[:0]
		v.head = 0
	}
	return ev, true
}

func (v *Vec) Len() int { return len(v.events) - v.head }
func (v *Vec) Cap() int { return -1 }

// Null is the disabled queue; actions that try to enqueue get ErrNotSupported.
type Null struct{}

func (Null) Enqueue(event primitives.Event) error {
	return fmt.Errorf("enqueue %s: %w", event, primitives.ErrNotSupported)
}

func (Null) Dequeue() (primitives.Event, bool) { return primitives.Event{}, false }
func (Null) Len() int                          { return 0 }
func (Null) Cap() int                          { return 0 }
