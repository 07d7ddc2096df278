package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/comalice/tickfsm"
	"github.com/comalice/tickfsm/internal/config"
	"github.com/comalice/tickfsm/internal/extensibility"
	"github.com/comalice/tickfsm/internal/production"
	"github.com/comalice/tickfsm/realtime"
)

// trafficLight cycles red, green, yellow on state timers. The "maintenance"
// region can interrupt everything with "fault" until "repair".
func trafficLight() (*tickfsm.MachineConfig, error) {
	b := tickfsm.NewMachineBuilder("traffic-light", "red")
	b.State("red").After("red_timer", 3*time.Second, "next")
	b.State("green").After("green_timer", 3*time.Second, "next")
	b.State("yellow").After("yellow_timer", time.Second, "next")
	b.On("red", "next", "green").ActionNamed("count")
	b.On("green", "next", "yellow").ActionNamed("count")
	b.On("yellow", "next", "red").ActionNamed("count")

	b.Region("maintenance", "normal").Interrupt("flashing", "repair")
	b.On("normal", "fault", "flashing")
	b.On("flashing", "repair", "normal")
	return b.Config()
}

func loadDefinition(path string) (*tickfsm.MachineConfig, error) {
	if path == "" {
		return trafficLight()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return production.LoadYAML(data)
}

// registry holds the behavior machine documents can reference by name.
// Guards not registered here are parsed as expressions.
func registry(logger *slog.Logger) *extensibility.Registry {
	return extensibility.NewRegistry().
		RegisterAction("count", extensibility.LoggedAction(logger, "count",
			func(ec *tickfsm.EventContext, _, _ any) error {
				ec.Context.Add("transitions", 1)
				return nil
			})).
		RegisterSelfAction("count", extensibility.LoggedSelfAction(logger, "count",
			func(ec *tickfsm.EventContext, _ any) error {
				ec.Context.Add("transitions", 1)
				return nil
			}))
}

// app is everything a command needs to drive one machine.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	publisher *production.ChannelPublisher
	machine   *tickfsm.Machine
	runtime   *realtime.Runtime
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	file, _ := cmd.Flags().GetString("file")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	def, err := loadDefinition(file)
	if err != nil {
		return nil, fmt.Errorf("load machine: %w", err)
	}
	return buildApp(cfg, def)
}

func buildApp(cfg *config.Config, def *tickfsm.MachineConfig) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   cfg.Logger(),
		registry: prometheus.NewRegistry(),
	}
	id := cfg.MachineID
	if id == "" {
		id = def.ID
	}
	a.publisher = production.NewChannelPublisher(id, 64)

	w, err := cfg.MachineOptions(a.logger, a.registry, a.publisher)
	if err != nil {
		return nil, err
	}
	opts := append(w.Options, tickfsm.WithID(id), tickfsm.WithResolver(registry(a.logger)))
	a.machine, err = tickfsm.New(def, opts...)
	if err != nil {
		return nil, err
	}
	a.runtime = realtime.NewRuntime(a.machine, realtime.Config{
		TickRate:         cfg.TickRate,
		MaxEventsPerTick: cfg.MaxEventsPerTick,
		Logger:           a.logger,
	})
	return a, nil
}
