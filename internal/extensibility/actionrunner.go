package extensibility

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/comalice/tickfsm/internal/core"
	"github.com/comalice/tickfsm/internal/primitives"
)

// Registry maps guard and action names used in declarations to callables.
// Unregistered guard names are compiled as expressions (see ParseExpression).
type Registry struct {
	mu          sync.RWMutex
	guards      map[string]primitives.Guard
	actions     map[string]primitives.Action
	selfActions map[string]primitives.SelfAction
}

var _ core.Resolver = (*Registry)(nil)

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		guards:      make(map[string]primitives.Guard),
		actions:     make(map[string]primitives.Action),
		selfActions: make(map[string]primitives.SelfAction),
	}
}

// RegisterGuard binds name to g.
func (r *Registry) RegisterGuard(name string, g primitives.Guard) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards[name] = g
	return r
}

// RegisterAction binds name to a source/target action.
func (r *Registry) RegisterAction(name string, a primitives.Action) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = a
	return r
}

// RegisterSelfAction binds name to an action for transitions within one state.
func (r *Registry) RegisterSelfAction(name string, a primitives.SelfAction) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selfActions[name] = a
	return r
}

// Guard resolves a registered guard, falling back to an expression.
func (r *Registry) Guard(name string) (primitives.Guard, error) {
	r.mu.RLock()
	g, ok := r.guards[name]
	r.mu.RUnlock()
	if ok {
		return g, nil
	}
	g, err := ParseExpression(name)
	if err != nil {
		return nil, fmt.Errorf("guard %q not registered: %w", name, err)
	}
	return g, nil
}

// Action resolves a registered source/target action.
func (r *Registry) Action(name string) (primitives.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("action %q not registered", name)
	}
	return a, nil
}

// SelfAction resolves a registered self action.
func (r *Registry) SelfAction(name string) (primitives.SelfAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.selfActions[name]
	if !ok {
		return nil, fmt.Errorf("self action %q not registered", name)
	}
	return a, nil
}

// LoggedAction wraps a with debug logging around execution.
func LoggedAction(logger *slog.Logger, name string, a primitives.Action) primitives.Action {
	return func(ec *primitives.EventContext, source, target any) error {
		logger.Debug("executing action", "action", name, "event", ec.Event.String())
		start := time.Now()
		err := a(ec, source, target)
		logger.Debug("action completed", "action", name, "duration", time.Since(start), "error", err)
		return err
	}
}

// LoggedSelfAction is LoggedAction for self actions.
func LoggedSelfAction(logger *slog.Logger, name string, a primitives.SelfAction) primitives.SelfAction {
	return func(ec *primitives.EventContext, state any) error {
		logger.Debug("executing action", "action", name, "event", ec.Event.String())
		start := time.Now()
		err := a(ec, state)
		logger.Debug("action completed", "action", name, "duration", time.Since(start), "error", err)
		return err
	}
}
