// Helper functions for machine precomputation: transition table, timer
// ownership and interrupt lookup, built once at construction.

package core

import (
	"fmt"
	"strings"

	"github.com/comalice/tickfsm/internal/primitives"
)

type tableKey struct {
	state primitives.StateID
	event primitives.EventKey
}

type timerDecl struct {
	state primitives.StateID
	cfg   *primitives.TimerConfig
}

// buildTable indexes resolved copies of the transitions by (source, event),
// ordered by priority then declaration.
func buildTable(config *primitives.MachineConfig, r Resolver) (map[tableKey][]*primitives.TransitionConfig, error) {
	table := make(map[tableKey][]*primitives.TransitionConfig)
	for i := range config.Transitions {
		t := config.Transitions[i]
		if err := resolve(&t, r); err != nil {
			return nil, fmt.Errorf("transition %s: %w", t.Label(), err)
		}
		k := tableKey{state: t.Source, event: t.Event}
		table[k] = append(table[k], &t)
	}
	for _, ts := range table {
		primitives.SortTransitions(ts)
	}
	return table, nil
}

func resolve(t *primitives.TransitionConfig, r Resolver) error {
	needGuard := t.Guard == nil && t.GuardName != ""
	needAction := t.Action == nil && t.SelfAction == nil && t.ActionName != ""
	if !needGuard && !needAction {
		return nil
	}
	if r == nil {
		return fmt.Errorf("%w: named guard or action without a resolver", primitives.ErrInvalidConfig)
	}
	if needGuard {
		g, err := r.Guard(t.GuardName)
		if err != nil {
			return err
		}
		t.Guard = g
	}
	if needAction {
		if t.SameState() {
			a, err := r.SelfAction(t.ActionName)
			if err != nil {
				return err
			}
			t.SelfAction = a
		} else {
			a, err := r.Action(t.ActionName)
			if err != nil {
				return err
			}
			t.Action = a
		}
	}
	return nil
}

// indexTimers maps the machine's own timer ids to their owning state.
func indexTimers(config *primitives.MachineConfig) map[primitives.TimerID]timerDecl {
	decls := make(map[primitives.TimerID]timerDecl)
	for _, s := range config.States {
		for i := range s.Timers {
			decls[s.Timers[i].ID] = timerDecl{state: s.ID, cfg: &s.Timers[i]}
		}
	}
	return decls
}

// indexInterrupts maps each interrupt state to its resume whitelist.
func indexInterrupts(config *primitives.MachineConfig) map[primitives.StateID]map[primitives.EventKey]bool {
	out := make(map[primitives.StateID]map[primitives.EventKey]bool)
	for _, region := range config.Regions {
		for _, intr := range region.Interrupts {
			resume := make(map[primitives.EventKey]bool, len(intr.Resume))
			for _, k := range intr.Resume {
				resume[k] = true
			}
			out[intr.State] = resume
		}
	}
	return out
}

// splitSubTimer splits "<state>/<id>" into the owning sub-machine state and
// the id inside it.
func splitSubTimer(id primitives.TimerID) (primitives.StateID, primitives.TimerID, bool) {
	owner, inner, ok := strings.Cut(string(id), "/")
	if !ok {
		return "", "", false
	}
	return primitives.StateID(owner), primitives.TimerID(inner), true
}
