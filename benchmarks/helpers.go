// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"
	"time"

	"github.com/comalice/tickfsm/internal/primitives"
)

func stateIDs(prefix string, n int) []primitives.StateID {
	ids := make([]primitives.StateID, n)
	for i := range ids {
		ids[i] = primitives.StateID(fmt.Sprintf("%s%d", prefix, i))
	}
	return ids
}

// GenFlatConfig creates a single-region machine with n states cycling via "tick" events.
func GenFlatConfig(n int) *primitives.MachineConfig {
	if n < 1 {
		n = 1
	}
	ids := stateIDs("s", n)
	config := &primitives.MachineConfig{
		ID:      fmt.Sprintf("flat_%d", n),
		Regions: []primitives.RegionConfig{{Initial: ids[0], States: ids}},
	}
	for i, id := range ids {
		config.States = append(config.States, primitives.NewStateConfig(id))
		config.Transitions = append(config.Transitions, primitives.TransitionConfig{
			Source: id, Event: "tick", Target: ids[(i+1)%n],
		})
	}
	return config
}

// GenRegionsConfig creates n orthogonal regions, each flipping between two
// states on "tick".
func GenRegionsConfig(n int) *primitives.MachineConfig {
	if n < 1 {
		n = 1
	}
	config := &primitives.MachineConfig{ID: fmt.Sprintf("regions_%d", n)}
	for r := range n {
		a := primitives.StateID(fmt.Sprintf("r%d_a", r))
		b := primitives.StateID(fmt.Sprintf("r%d_b", r))
		config.States = append(config.States, primitives.NewStateConfig(a), primitives.NewStateConfig(b))
		config.Regions = append(config.Regions, primitives.RegionConfig{Initial: a, States: []primitives.StateID{a, b}})
		config.Transitions = append(config.Transitions,
			primitives.TransitionConfig{Source: a, Event: "tick", Target: b},
			primitives.TransitionConfig{Source: b, Event: "tick", Target: a},
		)
	}
	return config
}

// GenWideTransitions creates one main state with many prioritized outgoing
// "tick" transitions; only the lowest priority guard passes, so every
// dispatch evaluates all of them.
func GenWideTransitions(numTransitions int) *primitives.MachineConfig {
	if numTransitions < 1 {
		numTransitions = 1
	}
	ids := append([]primitives.StateID{"main"}, stateIDs("target", numTransitions)...)
	config := &primitives.MachineConfig{
		ID:      fmt.Sprintf("wide_%d", numTransitions),
		Regions: []primitives.RegionConfig{{Initial: "main", States: ids}},
	}
	for i, id := range ids {
		config.States = append(config.States, primitives.NewStateConfig(id))
		if i == 0 {
			continue
		}
		last := i == numTransitions
		config.Transitions = append(config.Transitions,
			primitives.TransitionConfig{
				Source:   "main",
				Event:    "tick",
				Target:   id,
				Priority: numTransitions - i,
				Guard:    func(*primitives.EventContext) bool { return last },
			},
			primitives.TransitionConfig{Source: id, Event: "tick", Target: "main"},
		)
	}
	return config
}

// GenSubMachineConfig nests a two-state "tick" flipper inside a container
// state, so every dispatch is forwarded once.
func GenSubMachineConfig() *primitives.MachineConfig {
	sub := GenFlatConfig(2)
	sub.ID = "inner"
	return &primitives.MachineConfig{
		ID:      "outer",
		States:  []*primitives.StateConfig{primitives.NewStateConfig("container").WithSubMachine(sub)},
		Regions: []primitives.RegionConfig{{Initial: "container"}},
	}
}

// GenTimersConfig creates one state with n renewing timers of the given period.
func GenTimersConfig(n int, period time.Duration) *primitives.MachineConfig {
	st := primitives.NewStateConfig("timed")
	for i := range n {
		settings := primitives.DefaultTimerSettings(period)
		settings.Renew = true
		st.AddTimer(primitives.TimerConfig{ID: primitives.TimerID(fmt.Sprintf("t%d", i)), Settings: settings})
	}
	return &primitives.MachineConfig{
		ID:      fmt.Sprintf("timers_%d", n),
		States:  []*primitives.StateConfig{st},
		Regions: []primitives.RegionConfig{{Initial: "timed"}},
	}
}
