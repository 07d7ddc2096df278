package extensibility

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/comalice/tickfsm/internal/primitives"
)

// EventSource feeds external events into a realtime runtime. Every event of
// a source is batched at the source's priority, so a higher-priority source
// dispatches first within a tick. A source ends by closing its channel.
type EventSource interface {
	Events() <-chan primitives.Event
	Priority() int
}

type sourceOptions struct {
	priority int
	buffer   int
}

// SourceOption configures the sources built in this package.
type SourceOption func(*sourceOptions)

// WithPriority sets the batch priority of the source's events.
func WithPriority(p int) SourceOption {
	return func(o *sourceOptions) { o.priority = p }
}

// WithBuffer sets the channel buffer of sources that own their channel.
func WithBuffer(n int) SourceOption {
	return func(o *sourceOptions) {
		if n >= 0 {
			o.buffer = n
		}
	}
}

func applySourceOptions(opts []SourceOption) sourceOptions {
	o := sourceOptions{buffer: 16}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ChannelEventSource adapts a caller-owned channel. The caller closes it.
type ChannelEventSource struct {
	ch       <-chan primitives.Event
	priority int
}

// NewChannelEventSource wraps ch. WithBuffer is ignored.
func NewChannelEventSource(ch <-chan primitives.Event, opts ...SourceOption) *ChannelEventSource {
	o := applySourceOptions(opts)
	return &ChannelEventSource{ch: ch, priority: o.priority}
}

func (s *ChannelEventSource) Events() <-chan primitives.Event { return s.ch }
func (s *ChannelEventSource) Priority() int                   { return s.priority }

// ParseLine turns a text line into an event: the first field is the event
// type, the trimmed remainder (if any) its string payload. Blank lines and
// lines starting with '#' yield false.
func ParseLine(line string) (primitives.Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return primitives.Event{}, false
	}
	name, rest, _ := strings.Cut(line, " ")
	if rest = strings.TrimSpace(rest); rest != "" {
		return primitives.NewEvent(name, rest), true
	}
	return primitives.NewEvent(name, nil), true
}

// LineEventSource reads events line by line from a reader, see ParseLine.
type LineEventSource struct {
	ch       chan primitives.Event
	done     chan struct{}
	priority int
	err      error
}

// NewLineEventSource starts reading r. The channel closes at EOF, on a read
// error or when ctx ends; Done is closed right after.
func NewLineEventSource(ctx context.Context, r io.Reader, opts ...SourceOption) *LineEventSource {
	o := applySourceOptions(opts)
	s := &LineEventSource{
		ch:       make(chan primitives.Event, o.buffer),
		done:     make(chan struct{}),
		priority: o.priority,
	}
	go s.run(ctx, r)
	return s
}

func (s *LineEventSource) run(ctx context.Context, r io.Reader) {
	defer close(s.done)
	defer close(s.ch)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		ev, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		select {
		case s.ch <- ev:
		case <-ctx.Done():
			return
		}
	}
	s.err = scanner.Err()
}

func (s *LineEventSource) Events() <-chan primitives.Event { return s.ch }
func (s *LineEventSource) Priority() int                   { return s.priority }

// Done is closed once the reader is exhausted.
func (s *LineEventSource) Done() <-chan struct{} { return s.done }

// Err returns the read error that ended the source. Valid after Done.
func (s *LineEventSource) Err() error {
	<-s.done
	return s.err
}

// HeartbeatSource emits eventType every period with the beat number (from 1)
// as uint64 payload. Beats that find the buffer full are dropped and counted;
// a late heartbeat is worthless. State timers are the tool for per-state
// timeouts.
type HeartbeatSource struct {
	ch        chan primitives.Event
	eventType string
	priority  int
	dropped   atomic.Uint64
}

// NewHeartbeatSource starts beating until ctx ends, then closes the channel.
func NewHeartbeatSource(ctx context.Context, eventType string, period time.Duration, opts ...SourceOption) *HeartbeatSource {
	o := applySourceOptions(opts)
	h := &HeartbeatSource{
		ch:        make(chan primitives.Event, o.buffer),
		eventType: eventType,
		priority:  o.priority,
	}
	go h.run(ctx, time.NewTicker(period))
	return h
}

func (h *HeartbeatSource) run(ctx context.Context, ticker *time.Ticker) {
	defer close(h.ch)
	defer ticker.Stop()

	var beat uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			beat++
			select {
			case h.ch <- primitives.NewEvent(h.eventType, beat):
			default:
				h.dropped.Add(1)
			}
		}
	}
}

func (h *HeartbeatSource) Events() <-chan primitives.Event { return h.ch }
func (h *HeartbeatSource) Priority() int                   { return h.priority }

// Dropped is the number of beats lost to a full buffer.
func (h *HeartbeatSource) Dropped() uint64 { return h.dropped.Load() }
