package primitives

import (
	"errors"
	"fmt"
)

// Dispatch and queue errors. All are recoverable and returned as values.
var (
	// ErrNoTransition is returned when no region matched the event.
	ErrNoTransition = errors.New("no transition")
	// ErrInterrupted is returned when an active interrupt state blocked the event.
	ErrInterrupted = errors.New("interrupted")
	// ErrQueueOverCapacity is returned by a bounded queue that is full.
	ErrQueueOverCapacity = errors.New("queue over capacity")
	// ErrNotSupported is returned when the configured backend cannot serve the operation.
	ErrNotSupported = errors.New("not supported")
	// ErrTimerNotStarted is returned for operations on a timer that is not armed.
	ErrTimerNotStarted = errors.New("timer not started")
)

// Configuration and lifecycle errors.
var (
	ErrUnknownTimer      = errors.New("unknown timer")
	ErrUnknownState      = errors.New("unknown state")
	ErrNotStarted        = errors.New("machine not started")
	ErrReentrantDispatch = errors.New("re-entrant dispatch; enqueue the event instead")
	ErrInvalidConfig     = errors.New("invalid machine config")
)

// TransitionError wraps a failure raised by a hook or action while a region
// was transitioning.
type TransitionError struct {
	Region int
	From   StateID
	To     StateID
	Stage  string
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("region %d %s -> %s: %s failed: %v", e.Region, e.From, e.To, e.Stage, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// IsNoTransition reports whether err is (or wraps) ErrNoTransition.
func IsNoTransition(err error) bool {
	return errors.Is(err, ErrNoTransition)
}

// IsInterrupted reports whether err is (or wraps) ErrInterrupted.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}

// IsRecoverable reports whether err belongs to the recoverable dispatch taxonomy.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrNoTransition) ||
		errors.Is(err, ErrInterrupted) ||
		errors.Is(err, ErrQueueOverCapacity) ||
		errors.Is(err, ErrNotSupported) ||
		errors.Is(err, ErrTimerNotStarted)
}
