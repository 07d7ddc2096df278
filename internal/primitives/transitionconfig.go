// TransitionConfig declares one row of the transition table:
// (source, event key, optional guard, action, target, kind).
// Transitions are static; the engine evaluates them and never mutates them.
package primitives

import (
	"errors"
	"fmt"
	"sort"
)

// TransitionKind selects whether exit/entry hooks run.
type TransitionKind uint8

const (
	// External transitions exit the source and enter the target.
	External TransitionKind = iota
	// Internal transitions keep the state and skip exit/entry hooks.
	Internal
)

func (k TransitionKind) String() string {
	if k == Internal {
		return "internal"
	}
	return "external"
}

// MarshalYAML renders the kind by name.
func (k TransitionKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Guard gates a transition. Guards may read every region's state through
// ec.States but must not mutate anything.
type Guard func(ec *EventContext) bool

// Action runs when source and target differ. source and target are the
// persisted data of the two states.
type Action func(ec *EventContext, source, target any) error

// SelfAction runs when source equals target (self-loops and internal transitions).
type SelfAction func(ec *EventContext, state any) error

// TransitionConfig defines a single transition.
type TransitionConfig struct {
	Name   string         `yaml:"name,omitempty"`
	Source StateID        `yaml:"source"`
	Event  EventKey       `yaml:"event"`
	Target StateID        `yaml:"target"`
	Kind   TransitionKind `yaml:"kind"`

	Guard      Guard      `yaml:"-"`
	GuardName  string     `yaml:"guard,omitempty"`
	Action     Action     `yaml:"-"`
	SelfAction SelfAction `yaml:"-"`
	ActionName string     `yaml:"action,omitempty"`

	// ShallowHistory re-enters a sub-machine target without restarting it.
	ShallowHistory bool `yaml:"shallowHistory,omitempty"`
	// Priority orders transitions sharing (source, event): higher first,
	// declaration order otherwise.
	Priority int `yaml:"priority,omitempty"`
}

// SameState reports whether the action takes the self form.
func (t *TransitionConfig) SameState() bool {
	return t.Source == t.Target
}

// Label names the transition for inspection.
func (t *TransitionConfig) Label() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Kind == Internal {
		return fmt.Sprintf("%s --%s--> (internal)", t.Source, t.Event)
	}
	return fmt.Sprintf("%s --%s--> %s", t.Source, t.Event, t.Target)
}

// GuardLabel names the guard for inspection.
func (t *TransitionConfig) GuardLabel() string {
	if t.GuardName != "" {
		return t.GuardName
	}
	return "guard(" + t.Label() + ")"
}

// ActionLabel names the action for inspection.
func (t *TransitionConfig) ActionLabel() string {
	if t.ActionName != "" {
		return t.ActionName
	}
	return "action(" + t.Label() + ")"
}

// Validate checks TransitionConfig fields.
func (t *TransitionConfig) Validate() error {
	if t.Source == "" {
		return errors.New("source is required")
	}
	if t.Event == "" {
		return errors.New("event is required")
	}
	if t.Target == "" {
		return errors.New("target is required")
	}
	if t.Kind == Internal && t.Source != t.Target {
		return fmt.Errorf("internal transition %s must target its source", t.Label())
	}
	if t.Action != nil && t.SelfAction != nil {
		return fmt.Errorf("transition %s declares both action forms", t.Label())
	}
	if t.SelfAction != nil && !t.SameState() {
		return fmt.Errorf("transition %s: self action requires source == target", t.Label())
	}
	if t.Action != nil && t.SameState() {
		return fmt.Errorf("transition %s: source == target requires the self action form", t.Label())
	}
	if t.Priority < 0 {
		return errors.New("priority must be non-negative")
	}
	return nil
}

// SortTransitions sorts the slice in place by Priority descending, keeping
// declaration order for equal priorities.
func SortTransitions(transitions []*TransitionConfig) {
	sort.SliceStable(transitions, func(i, j int) bool {
		return transitions[i].Priority > transitions[j].Priority
	})
}
