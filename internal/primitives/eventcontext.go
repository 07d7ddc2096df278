package primitives

// Enqueuer accepts events for later dispatch. Actions use it to fire further
// events; the engine drains them according to its drain policy.
type Enqueuer interface {
	Enqueue(event Event) error
}

// StateView is the read-only view of the State/Region Store given to guards,
// actions and hooks. It spans every region of the machine.
type StateView interface {
	// Current returns the current-state vector, one slot per region.
	Current() []StateID
	// IsActive reports whether id is the current state of any region.
	IsActive(id StateID) bool
	// Data returns the persisted data of a declared state.
	Data(id StateID) (any, bool)
}

// EventContext is handed to every guard, action, hook and timer callback.
type EventContext struct {
	Event   Event
	Context *Context
	Queue   Enqueuer
	States  StateView
	// Region is the index of the region being evaluated.
	Region int
}
