package config

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/tickfsm/internal/core"
	"github.com/comalice/tickfsm/internal/inspect"
	"github.com/comalice/tickfsm/internal/queue"
)

// Wiring is the result of MachineOptions. Recorder and Metrics are set when
// the matching inspector is enabled.
type Wiring struct {
	Options  []core.Option
	Recorder *inspect.Recorder
	Metrics  *inspect.Metrics
}

// MachineOptions translates the settings into core options. logger receives
// machine logs and the slog inspector output; reg is required only when the
// metrics inspector is enabled. extra inspectors are chained after the
// configured ones.
func (c *Config) MachineOptions(logger *slog.Logger, reg prometheus.Registerer, extra ...inspect.Inspector) (*Wiring, error) {
	q, err := queue.New(queue.Kind(c.QueueKind), c.QueueCapacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	w := &Wiring{
		Options: []core.Option{
			core.WithQueue(q),
			core.WithDrain(c.PreDrain, c.PostDrain),
			core.WithMaxAnonymousSteps(c.MaxAnonymous),
			core.WithLogger(logger),
		},
	}
	if c.MachineID != "" {
		w.Options = append(w.Options, core.WithID(c.MachineID))
	}
	if c.TimerPending > 0 {
		w.Options = append(w.Options, core.WithTimerPendingCapacity(c.TimerPending))
	}

	var members []inspect.Inspector
	for _, name := range c.Inspectors {
		switch name {
		case InspectorSlog:
			members = append(members, inspect.NewSlog(logger, slog.LevelDebug))
		case InspectorMetrics:
			if reg == nil {
				return nil, fmt.Errorf("%w: metrics inspector needs a registerer", ErrInvalidConfig)
			}
			machine := c.MachineID
			if machine == "" {
				machine = "default"
			}
			m, err := inspect.NewMetrics(reg, machine)
			if err != nil {
				return nil, fmt.Errorf("register metrics: %w", err)
			}
			w.Metrics = m
			members = append(members, m)
		case InspectorRecorder:
			w.Recorder = inspect.NewRecorder()
			members = append(members, w.Recorder)
		}
	}
	members = append(members, extra...)
	w.Options = append(w.Options, core.WithInspector(inspect.NewChain(members...)))
	return w, nil
}
