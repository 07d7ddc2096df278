package testutil

import (
	"context"
	"time"

	"github.com/comalice/tickfsm"
	"github.com/comalice/tickfsm/realtime"
)

// Driver provides a common interface over the synchronous machine and the
// tick runtime, so one scenario runs against both.
type Driver interface {
	Start(ctx context.Context) error
	Stop() error
	// SendEvent submits an event. It takes effect by the next Advance at the
	// latest.
	SendEvent(event tickfsm.Event) error
	// Advance moves time forward by elapsed and processes everything due.
	Advance(elapsed time.Duration) error
	CurrentStates() []tickfsm.StateID
	IsInState(id tickfsm.StateID) bool
}

// MachineDriver dispatches directly on a machine.
type MachineDriver struct {
	m *tickfsm.Machine
}

// NewMachineDriver wraps m.
func NewMachineDriver(m *tickfsm.Machine) *MachineDriver {
	return &MachineDriver{m: m}
}

func (d *MachineDriver) Start(context.Context) error { return d.m.Start() }

func (d *MachineDriver) Stop() error { return d.m.Stop() }

// SendEvent dispatches immediately. Unhandled events are not an error, to
// match the runtime's batching.
func (d *MachineDriver) SendEvent(event tickfsm.Event) error {
	if err := d.m.Dispatch(event); err != nil && !tickfsm.IsNoTransition(err) {
		return err
	}
	return nil
}

func (d *MachineDriver) Advance(elapsed time.Duration) error {
	d.m.Tick(elapsed)
	if err := d.m.DispatchTimerEvents(); err != nil {
		return err
	}
	return d.m.ExecuteQueuedEvents()
}

func (d *MachineDriver) CurrentStates() []tickfsm.StateID { return d.m.CurrentStates() }

func (d *MachineDriver) IsInState(id tickfsm.StateID) bool { return d.m.States().IsActive(id) }

// StepDriver drives a realtime.Runtime with Step, so ticks are deterministic.
type StepDriver struct {
	rt  *realtime.Runtime
	err error
}

// NewStepDriver wraps m in a runtime. Dispatch errors surface from Advance.
func NewStepDriver(m *tickfsm.Machine) *StepDriver {
	d := &StepDriver{}
	d.rt = realtime.NewRuntime(m, realtime.Config{
		OnError: func(_ string, err error) {
			if d.err == nil {
				d.err = err
			}
		},
	})
	return d
}

func (d *StepDriver) Start(context.Context) error { return d.rt.Step(0) }

func (d *StepDriver) Stop() (err error) {
	d.rt.Inspect(func(m *tickfsm.Machine) { err = m.Stop() })
	return err
}

func (d *StepDriver) SendEvent(event tickfsm.Event) error { return d.rt.SendEvent(event) }

func (d *StepDriver) Advance(elapsed time.Duration) error {
	if err := d.rt.Step(elapsed); err != nil {
		return err
	}
	err := d.err
	d.err = nil
	return err
}

func (d *StepDriver) CurrentStates() []tickfsm.StateID { return d.rt.CurrentStates() }

func (d *StepDriver) IsInState(id tickfsm.StateID) bool {
	for _, s := range d.rt.CurrentStates() {
		if s == id {
			return true
		}
	}
	return false
}
