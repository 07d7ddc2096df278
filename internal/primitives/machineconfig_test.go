package primitives

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func twoStateMachine() *MachineConfig {
	return &MachineConfig{
		ID: "machine",
		States: []*StateConfig{
			NewStateConfig("a"),
			NewStateConfig("b"),
		},
		Regions: []RegionConfig{{Initial: "a"}},
		Transitions: []TransitionConfig{
			{Source: "a", Event: "go", Target: "b"},
		},
	}
}

func TestMachineConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(m *MachineConfig)
		errContains string
	}{
		{
			name:   "minimal valid",
			mutate: func(m *MachineConfig) {},
		},
		{
			name:        "missing machine ID",
			mutate:      func(m *MachineConfig) { m.ID = "" },
			errContains: "machine ID is required",
		},
		{
			name:        "no states",
			mutate:      func(m *MachineConfig) { m.States = nil; m.Regions[0].States = nil },
			errContains: "declares no states",
		},
		{
			name:        "no regions",
			mutate:      func(m *MachineConfig) { m.Regions = nil },
			errContains: "declares no regions",
		},
		{
			name:        "duplicate state",
			mutate:      func(m *MachineConfig) { m.States = append(m.States, NewStateConfig("a")) },
			errContains: "duplicate state",
		},
		{
			name:        "initial not member",
			mutate:      func(m *MachineConfig) { m.Regions[0].Initial = "zzz" },
			errContains: "not a member",
		},
		{
			name: "state outside every region",
			mutate: func(m *MachineConfig) {
				m.States = append(m.States, NewStateConfig("c"))
			},
			errContains: "belongs to no region",
		},
		{
			name: "transition to unknown state",
			mutate: func(m *MachineConfig) {
				m.Transitions = append(m.Transitions, TransitionConfig{Source: "a", Event: "x", Target: "nope"})
			},
			errContains: "unknown state",
		},
		{
			name: "transition crossing regions",
			mutate: func(m *MachineConfig) {
				m.States = append(m.States, NewStateConfig("c"))
				m.Regions = append(m.Regions, RegionConfig{Initial: "c", States: []StateID{"c"}})
				m.Transitions = append(m.Transitions, TransitionConfig{Source: "a", Event: "x", Target: "c"})
			},
			errContains: "crosses regions",
		},
		{
			name: "interrupt outside region",
			mutate: func(m *MachineConfig) {
				m.Regions[0].Interrupts = []InterruptConfig{{State: "ghost"}}
			},
			errContains: "interrupt state",
		},
		{
			name: "shallow history on plain state",
			mutate: func(m *MachineConfig) {
				m.Transitions[0].ShallowHistory = true
			},
			errContains: "shallow history",
		},
		{
			name: "timer shared by two states",
			mutate: func(m *MachineConfig) {
				m.States[0].AddTimer(TimerConfig{ID: "t", Settings: DefaultTimerSettings(time.Second)})
				m.States[1].AddTimer(TimerConfig{ID: "t", Settings: DefaultTimerSettings(time.Second)})
			},
			errContains: `timer "t" declared by states "a" and "b"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := twoStateMachine()
			m.Normalize()
			tt.mutate(m)
			err := m.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.errContains)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err, tt.errContains)
			}
		})
	}
}

func TestMachineConfigNormalize(t *testing.T) {
	m := twoStateMachine()
	m.Normalize()
	if got := m.Regions[0].States; !reflect.DeepEqual(got, []StateID{"a", "b"}) {
		t.Fatalf("region states = %v", got)
	}

	// Multiple regions are never guessed.
	multi := &MachineConfig{
		ID:      "m",
		States:  []*StateConfig{NewStateConfig("a"), NewStateConfig("b")},
		Regions: []RegionConfig{{Initial: "a"}, {Initial: "b"}},
	}
	multi.Normalize()
	if len(multi.Regions[0].States) != 0 || len(multi.Regions[1].States) != 0 {
		t.Fatal("Normalize filled a multi-region machine")
	}
}

func TestMachineConfigFindState(t *testing.T) {
	m := twoStateMachine()
	s, err := m.FindState("b")
	if err != nil || s.ID != "b" {
		t.Fatalf("FindState(b) = %v, %v", s, err)
	}
	if _, err := m.FindState("zzz"); !errors.Is(err, ErrUnknownState) {
		t.Fatalf("FindState(zzz) err = %v", err)
	}
	if _, err := m.FindState(""); err == nil {
		t.Fatal("FindState(\"\") should fail")
	}
}

func TestMachineConfigRegionOf(t *testing.T) {
	m := &MachineConfig{
		ID:     "m",
		States: []*StateConfig{NewStateConfig("a"), NewStateConfig("b")},
		Regions: []RegionConfig{
			{Initial: "a", States: []StateID{"a"}},
			{Initial: "b", States: []StateID{"b"}},
		},
	}
	if r, ok := m.RegionOf("b"); !ok || r != 1 {
		t.Fatalf("RegionOf(b) = %d, %v", r, ok)
	}
	if _, ok := m.RegionOf("c"); ok {
		t.Fatal("RegionOf(c) should be false")
	}
}

func TestMachineConfigTimerIDs(t *testing.T) {
	blinker := &MachineConfig{
		ID: "blinker",
		States: []*StateConfig{
			NewStateConfig("on").AddTimer(TimerConfig{ID: "blink"}),
			NewStateConfig("off"),
		},
		Regions: []RegionConfig{{Initial: "on"}},
	}
	m := &MachineConfig{
		ID: "m",
		States: []*StateConfig{
			NewStateConfig("idle").
				AddTimer(TimerConfig{ID: "t1"}).
				AddTimer(TimerConfig{ID: "t2"}),
			NewStateConfig("blinking").WithSubMachine(blinker),
			NewStateConfig("done").AddTimer(TimerConfig{ID: "t3"}),
		},
		Regions: []RegionConfig{{Initial: "idle"}},
	}
	want := []TimerID{"t1", "t2", "blinking/blink", "t3"}
	if got := m.TimerIDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("TimerIDs() = %v, want %v", got, want)
	}
}

func TestFingerprint(t *testing.T) {
	a := twoStateMachine()
	b := twoStateMachine()
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatal("identical structures must share a fingerprint")
	}
	b.Transitions[0].Priority = 3
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatal("priority change must alter the fingerprint")
	}
	// Behavior closures are not structural.
	b = twoStateMachine()
	b.Transitions[0].Action = func(*EventContext, any, any) error { return nil }
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatal("closures must not alter the fingerprint")
	}
}
