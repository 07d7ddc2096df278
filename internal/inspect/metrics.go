package inspect

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/tickfsm/internal/primitives"
)

// MetricsCollectors holds the Prometheus collectors shared by every scope of
// a Metrics inspector.
type MetricsCollectors struct {
	Dispatches  *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	Errors      *prometheus.CounterVec
	Guards      *prometheus.CounterVec
	Entries     *prometheus.CounterVec
	Duration    prometheus.Histogram
}

// NewMetricsCollectors creates and registers the collectors. machine is
// attached as a constant label so several machines can share a registry.
func NewMetricsCollectors(reg prometheus.Registerer, machine string) (*MetricsCollectors, error) {
	labels := prometheus.Labels{"machine": machine}
	c := &MetricsCollectors{
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "tickfsm_dispatches_total",
			Help:        "Total number of dispatched events by event key",
			ConstLabels: labels,
		}, []string{"event"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "tickfsm_transitions_total",
			Help:        "Total number of completed transitions",
			ConstLabels: labels,
		}, []string{"from", "to"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "tickfsm_dispatch_errors_total",
			Help:        "Dispatch errors by kind",
			ConstLabels: labels,
		}, []string{"kind"}),
		Guards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "tickfsm_guard_evaluations_total",
			Help:        "Guard evaluations by guard and result",
			ConstLabels: labels,
		}, []string{"guard", "result"}),
		Entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "tickfsm_state_entries_total",
			Help:        "State entries by state",
			ConstLabels: labels,
		}, []string{"state"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "tickfsm_dispatch_duration_seconds",
			Help:        "Duration of top-level dispatches",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
	for _, col := range []prometheus.Collector{c.Dispatches, c.Transitions, c.Errors, c.Guards, c.Entries, c.Duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Metrics records dispatch milestones as Prometheus metrics.
type Metrics struct {
	c       *MetricsCollectors
	started time.Time
	nested  bool
}

var _ Inspector = (*Metrics)(nil)

// NewMetrics registers collectors on reg and returns the root inspector.
func NewMetrics(reg prometheus.Registerer, machine string) (*Metrics, error) {
	c, err := NewMetricsCollectors(reg, machine)
	if err != nil {
		return nil, err
	}
	return &Metrics{c: c}, nil
}

// Collectors exposes the underlying collectors.
func (m *Metrics) Collectors() *MetricsCollectors { return m.c }

func (m *Metrics) NewEvent(event primitives.Event, _ []primitives.StateID) Inspector {
	m.c.Dispatches.WithLabelValues(string(event.Key())).Inc()
	return &Metrics{c: m.c, started: time.Now(), nested: m.nested}
}

func (m *Metrics) ForTransition(*primitives.TransitionConfig) Inspector { return m }

// Sub-machine dispatches are counted but not timed separately.
func (m *Metrics) ForSubMachine(primitives.StateID) Inspector {
	return &Metrics{c: m.c, nested: true}
}

func (m *Metrics) ForTimer(primitives.TimerID) Inspector { return m }

func (m *Metrics) OnGuard(guard string, result bool) {
	value := "false"
	if result {
		value = "true"
	}
	m.c.Guards.WithLabelValues(guard, value).Inc()
}

func (m *Metrics) OnStateExit(primitives.StateID) {}
func (m *Metrics) OnAction(string)                {}

func (m *Metrics) OnStateEnter(state primitives.StateID) {
	m.c.Entries.WithLabelValues(string(state)).Inc()
}

func (m *Metrics) OnTransition(from, to primitives.StateID) {
	m.c.Transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) OnNoTransition(int, primitives.StateID) {}

func (m *Metrics) OnError(_ string, err error) {
	m.c.Errors.WithLabelValues(ErrorKind(err)).Inc()
}

func (m *Metrics) EventDone([]primitives.StateID) {
	if m.nested || m.started.IsZero() {
		return
	}
	m.c.Duration.Observe(time.Since(m.started).Seconds())
}

func (m *Metrics) Info(string) {}

// ErrorKind classifies err into a low-cardinality label value.
func ErrorKind(err error) string {
	var te *primitives.TransitionError
	switch {
	case errors.Is(err, primitives.ErrNoTransition):
		return "no_transition"
	case errors.Is(err, primitives.ErrInterrupted):
		return "interrupted"
	case errors.Is(err, primitives.ErrQueueOverCapacity):
		return "queue_over_capacity"
	case errors.Is(err, primitives.ErrNotSupported):
		return "not_supported"
	case errors.Is(err, primitives.ErrTimerNotStarted):
		return "timer_not_started"
	case errors.Is(err, primitives.ErrReentrantDispatch):
		return "reentrant"
	case errors.As(err, &te):
		return te.Stage
	default:
		return "other"
	}
}
