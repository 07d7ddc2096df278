// Options for configuring Machine instances.

package core

import (
	"log/slog"

	"github.com/comalice/tickfsm/internal/inspect"
	"github.com/comalice/tickfsm/internal/primitives"
	"github.com/comalice/tickfsm/internal/queue"
	"github.com/comalice/tickfsm/internal/timers"
)

// DefaultMaxAnonymousSteps bounds eventless transition resolution after Start.
const DefaultMaxAnonymousSteps = 64

// Option applies configuration to Machine via functional options pattern.
type Option func(*Machine)

// Resolver turns guard and action names declared in a MachineConfig into
// callables. Used for transitions that carry a name but no function.
type Resolver interface {
	Guard(name string) (primitives.Guard, error)
	Action(name string) (primitives.Action, error)
	SelfAction(name string) (primitives.SelfAction, error)
}

// WithID overrides the generated instance ID.
func WithID(id string) Option {
	return func(m *Machine) {
		m.id = id
	}
}

// WithQueue configures the event queue backend.
func WithQueue(q queue.Queue) Option {
	return func(m *Machine) {
		m.queue = q
	}
}

// WithTimers replaces the timer backend. The backend must know every id of
// MachineConfig.TimerIDs.
func WithTimers(t timers.Timers) Option {
	return func(m *Machine) {
		m.timers = t
	}
}

// WithoutTimers disables timers; states declaring timers report ErrNotSupported.
func WithoutTimers() Option {
	return WithTimers(timers.Null{})
}

// WithTimerPendingCapacity bounds the fired-but-undispatched timer list of the
// default timer backend.
func WithTimerPendingCapacity(n int) Option {
	return func(m *Machine) {
		m.pendingCap = n
	}
}

// WithInspector configures the inspection chain.
func WithInspector(i inspect.Inspector) Option {
	return func(m *Machine) {
		m.inspector = i
	}
}

// WithLogger configures the machine logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

// WithContext provides the machine context instead of an empty one.
func WithContext(ctx *primitives.Context) Option {
	return func(m *Machine) {
		m.ctx = ctx
	}
}

// WithDrain sets the queue drain policy: pre drains queued events before each
// Dispatch, post drains them after. Defaults are pre on, post off.
func WithDrain(pre, post bool) Option {
	return func(m *Machine) {
		m.drainPre = pre
		m.drainPost = post
	}
}

// WithMaxAnonymousSteps bounds eventless transition resolution after Start.
func WithMaxAnonymousSteps(n int) Option {
	return func(m *Machine) {
		m.maxAnonymous = n
	}
}

// WithResolver configures name resolution for guards and actions.
func WithResolver(r Resolver) Option {
	return func(m *Machine) {
		m.resolver = r
	}
}
