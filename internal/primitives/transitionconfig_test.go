package primitives

import (
	"strings"
	"testing"
)

func TestTransitionConfigValidate(t *testing.T) {
	self := func(*EventContext, any) error { return nil }
	action := func(*EventContext, any, any) error { return nil }

	tests := []struct {
		name        string
		config      TransitionConfig
		errContains string
	}{
		{
			name:   "valid external",
			config: TransitionConfig{Source: "a", Event: "e", Target: "b", Action: action},
		},
		{
			name:   "valid internal",
			config: TransitionConfig{Source: "a", Event: "e", Target: "a", Kind: Internal, SelfAction: self},
		},
		{
			name:        "missing source",
			config:      TransitionConfig{Event: "e", Target: "b"},
			errContains: "source is required",
		},
		{
			name:        "missing event",
			config:      TransitionConfig{Source: "a", Target: "b"},
			errContains: "event is required",
		},
		{
			name:        "missing target",
			config:      TransitionConfig{Source: "a", Event: "e"},
			errContains: "target is required",
		},
		{
			name:        "internal to other state",
			config:      TransitionConfig{Source: "a", Event: "e", Target: "b", Kind: Internal},
			errContains: "must target its source",
		},
		{
			name:        "both action forms",
			config:      TransitionConfig{Source: "a", Event: "e", Target: "a", Action: action, SelfAction: self},
			errContains: "both action forms",
		},
		{
			name:        "self action across states",
			config:      TransitionConfig{Source: "a", Event: "e", Target: "b", SelfAction: self},
			errContains: "requires source == target",
		},
		{
			name:        "plain action on self-loop",
			config:      TransitionConfig{Source: "a", Event: "e", Target: "a", Action: action},
			errContains: "self action form",
		},
		{
			name:        "negative priority",
			config:      TransitionConfig{Source: "a", Event: "e", Target: "b", Priority: -1},
			errContains: "non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

func TestTransitionLabels(t *testing.T) {
	tr := TransitionConfig{Source: "a", Event: "go", Target: "b"}
	if got := tr.Label(); got != "a --go--> b" {
		t.Errorf("Label() = %q", got)
	}
	if got := tr.GuardLabel(); got != "guard(a --go--> b)" {
		t.Errorf("GuardLabel() = %q", got)
	}
	in := TransitionConfig{Source: "a", Event: "tick", Target: "a", Kind: Internal}
	if got := in.Label(); got != "a --tick--> (internal)" {
		t.Errorf("internal Label() = %q", got)
	}
	named := TransitionConfig{Name: "launch", ActionName: "ignite"}
	if named.Label() != "launch" || named.ActionLabel() != "ignite" {
		t.Errorf("named labels = %q, %q", named.Label(), named.ActionLabel())
	}
}

func TestSortTransitions(t *testing.T) {
	ts := []*TransitionConfig{
		{Name: "first", Priority: 0},
		{Name: "high", Priority: 5},
		{Name: "second", Priority: 0},
		{Name: "mid", Priority: 2},
	}
	SortTransitions(ts)
	var names []string
	for _, tr := range ts {
		names = append(names, tr.Name)
	}
	if got := strings.Join(names, ","); got != "high,mid,first,second" {
		t.Fatalf("order = %s", got)
	}
}
