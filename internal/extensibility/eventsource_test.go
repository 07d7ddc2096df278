package extensibility

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/comalice/tickfsm/internal/primitives"
)

func collect(t *testing.T, src EventSource) []primitives.Event {
	t.Helper()
	var out []primitives.Event
	deadline := time.After(time.Second)
	for {
		select {
		case ev, ok := <-src.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatal("source did not close within 1s")
		}
	}
}

func TestChannelEventSource(t *testing.T) {
	ch := make(chan primitives.Event, 1)
	s := NewChannelEventSource(ch, WithPriority(5))
	ch <- primitives.NewEvent("ping", nil)
	close(ch)

	got := collect(t, s)
	if len(got) != 1 || got[0].Type != "ping" {
		t.Errorf("got %v want [ping]", got)
	}
	if s.Priority() != 5 {
		t.Errorf("priority = %d", s.Priority())
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want primitives.Event
		ok   bool
	}{
		{"fault", primitives.NewEvent("fault", nil), true},
		{"  code 1234  ", primitives.NewEvent("code", "1234"), true},
		{"say hello world", primitives.NewEvent("say", "hello world"), true},
		{"", primitives.Event{}, false},
		{"   ", primitives.Event{}, false},
		{"# comment", primitives.Event{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseLine(tt.line)
		if ok != tt.ok || got.Type != tt.want.Type || got.Data != tt.want.Data {
			t.Errorf("ParseLine(%q) = %v, %v; want %v, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLineEventSource(t *testing.T) {
	input := "repair\n\n# skipped\ncode 42\nfault\n"
	s := NewLineEventSource(context.Background(), strings.NewReader(input), WithPriority(-1))

	var types []string
	for _, ev := range collect(t, s) {
		types = append(types, ev.Type)
	}
	if !slices.Equal(types, []string{"repair", "code", "fault"}) {
		t.Errorf("types = %v", types)
	}
	<-s.Done()
	if err := s.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
	if s.Priority() != -1 {
		t.Errorf("priority = %d", s.Priority())
	}
}

func TestLineEventSource_ReadError(t *testing.T) {
	boom := errors.New("boom")
	s := NewLineEventSource(context.Background(), iotest.ErrReader(boom))
	if got := collect(t, s); len(got) != 0 {
		t.Errorf("unexpected events %v", got)
	}
	if err := s.Err(); !errors.Is(err, boom) {
		t.Errorf("Err() = %v, want boom", err)
	}
}

func TestLineEventSource_ContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	// Unbuffered and never read: the first event blocks until ctx ends.
	s := NewLineEventSource(ctx, strings.NewReader("a\nb\n"), WithBuffer(0))
	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("source still running after cancel")
	}
}

func TestHeartbeatSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewHeartbeatSource(ctx, "beat", 10*time.Millisecond, WithPriority(3))

	for want := uint64(1); want <= 2; want++ {
		select {
		case ev := <-s.Events():
			if ev.Type != "beat" || ev.Data != want {
				t.Errorf("beat %d: got %v %v", want, ev.Type, ev.Data)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("beat %d not received", want)
		}
	}
	cancel()
	collect(t, s)
	if s.Priority() != 3 {
		t.Errorf("priority = %d", s.Priority())
	}
}

func TestHeartbeatSource_DropsWhenFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewHeartbeatSource(ctx, "beat", 2*time.Millisecond, WithBuffer(1))

	deadline := time.Now().Add(time.Second)
	for s.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no beat dropped with a full buffer")
		}
		time.Sleep(5 * time.Millisecond)
	}
	ev := <-s.Events()
	if ev.Data != uint64(1) {
		t.Errorf("first buffered beat = %v, want 1", ev.Data)
	}
}
