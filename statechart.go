// Package tickfsm is an embeddable finite state machine runtime with
// orthogonal regions, sub-machines, interrupt states and tick-driven state
// timers.
//
// A machine is declared as data (MachineConfig) and run by a single-threaded
// Machine: every Dispatch runs to completion, in declaration order across
// regions. Time only advances through Tick, so timer behavior is fully
// deterministic; realtime.Runtime drives a machine from a wall-clock ticker.
//
//	m, err := tickfsm.NewMachineBuilder("door", "closed").
//		On("closed", "open", "opened").
//		On("opened", "close", "closed").
//		Build()
//	if err != nil {
//		return err
//	}
//	if err := m.Start(); err != nil {
//		return err
//	}
//	err = m.Dispatch(tickfsm.NewEvent("open", nil))
package tickfsm

import (
	"fmt"

	"github.com/comalice/tickfsm/internal/core"
	"github.com/comalice/tickfsm/internal/primitives"
)

type (
	Machine          = core.Machine
	Option           = core.Option
	Resolver         = core.Resolver
	MachineConfig    = primitives.MachineConfig
	StateConfig      = primitives.StateConfig
	RegionConfig     = primitives.RegionConfig
	InterruptConfig  = primitives.InterruptConfig
	TransitionConfig = primitives.TransitionConfig
	TransitionKind   = primitives.TransitionKind
	TimerConfig      = primitives.TimerConfig
	TimerSettings    = primitives.TimerSettings
	TransitionError  = primitives.TransitionError

	Event        = primitives.Event
	EventKey     = primitives.EventKey
	StateID      = primitives.StateID
	TimerID      = primitives.TimerID
	EventContext = primitives.EventContext
	StateView    = primitives.StateView
	Enqueuer     = primitives.Enqueuer
	Context      = primitives.Context

	Guard      = primitives.Guard
	Action     = primitives.Action
	SelfAction = primitives.SelfAction
	Hook       = primitives.Hook
)

const (
	External   = primitives.External
	Internal   = primitives.Internal
	NoEventKey = primitives.NoEventKey
)

var (
	ErrNoTransition      = primitives.ErrNoTransition
	ErrInterrupted       = primitives.ErrInterrupted
	ErrNotStarted        = primitives.ErrNotStarted
	ErrReentrantDispatch = primitives.ErrReentrantDispatch
	ErrInvalidConfig     = primitives.ErrInvalidConfig
	ErrUnknownState      = primitives.ErrUnknownState
	ErrQueueOverCapacity = primitives.ErrQueueOverCapacity
)

var (
	NewEvent             = primitives.NewEvent
	NoEvent              = primitives.NoEvent
	TimerEvent           = primitives.TimerEvent
	TimerKey             = primitives.TimerKey
	DefaultTimerSettings = primitives.DefaultTimerSettings
	NewStateConfig       = primitives.NewStateConfig
	NewContext           = primitives.NewContext
	IsNoTransition       = primitives.IsNoTransition
	IsInterrupted        = primitives.IsInterrupted
)

var (
	WithID                   = core.WithID
	WithQueue                = core.WithQueue
	WithTimers               = core.WithTimers
	WithoutTimers            = core.WithoutTimers
	WithTimerPendingCapacity = core.WithTimerPendingCapacity
	WithInspector            = core.WithInspector
	WithLogger               = core.WithLogger
	WithContext              = core.WithContext
	WithDrain                = core.WithDrain
	WithMaxAnonymousSteps    = core.WithMaxAnonymousSteps
	WithResolver             = core.WithResolver
)

// New validates config and builds a machine. The machine is not started.
func New(config *MachineConfig, opts ...Option) (*Machine, error) {
	return core.NewMachine(config, opts...)
}

// StateData returns the data attached to state id, typed as T. Declare state
// data as a pointer to read the live value.
func StateData[T any](m *Machine, id StateID) (T, error) {
	var zero T
	data, err := m.StateData(id)
	if err != nil {
		return zero, err
	}
	v, ok := data.(T)
	if !ok {
		return zero, fmt.Errorf("state %q holds %T, not %T", id, data, zero)
	}
	return v, nil
}

// MustStateData is StateData for tests and setup code; it panics on error.
func MustStateData[T any](m *Machine, id StateID) T {
	v, err := StateData[T](m, id)
	if err != nil {
		panic(err)
	}
	return v
}
