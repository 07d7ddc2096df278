// Tests for ChannelPublisher delivery and Machine integration.
package production

import (
	"context"
	"testing"

	"github.com/comalice/tickfsm/internal/core"
	"github.com/comalice/tickfsm/internal/primitives"
)

func TestChannelPublisher_Publish(t *testing.T) {
	p := NewChannelPublisher("m", 1)
	rec := TransitionRecord{MachineID: "m", From: "a", To: "b"}
	if err := p.Publish(context.Background(), rec); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Publish(ctx, rec); err == nil {
		t.Error("expected context error on a full channel")
	}
	got := <-p.Records()
	if got.From != "a" || got.To != "b" {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestChannelPublisher_DropsWhenFull(t *testing.T) {
	p := NewChannelPublisher("m", 1)
	p.OnTransition("a", "b")
	p.OnTransition("b", "c")
	if p.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", p.Dropped())
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	// closing twice and publishing after close are harmless
	_ = p.Close()
	p.OnTransition("c", "d")
}

func TestChannelPublisher_MachineIntegration(t *testing.T) {
	cfg := twoStateConfig()
	cfg.Transitions[0].GuardName = ""

	p := NewChannelPublisher("sm-1", 8)
	m, err := core.NewMachine(cfg, core.WithID("sm-1"), core.WithInspector(p))
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Dispatch(primitives.NewEvent("e1", nil)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	select {
	case rec := <-p.Records():
		if rec.MachineID != "sm-1" || rec.From != "s1" || rec.To != "s2" {
			t.Errorf("unexpected record %+v", rec)
		}
		if rec.Event.Type != "e1" {
			t.Errorf("event = %v", rec.Event)
		}
		if rec.Transition == "" || rec.Timestamp.IsZero() {
			t.Errorf("record missing context: %+v", rec)
		}
	default:
		t.Fatal("no record published")
	}
}
