package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/tickfsm/internal/core"
	"github.com/comalice/tickfsm/internal/inspect"
	"github.com/comalice/tickfsm/internal/logging"
	"github.com/comalice/tickfsm/internal/primitives"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickfsm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, `
queue: array
queue_capacity: 8
post_drain: true
tick_rate: 25ms
inspectors: slog,recorder
log_level: debug
`)
	t.Setenv("TICKFSM_QUEUE_CAPACITY", "32")
	t.Setenv("TICKFSM_MACHINE_ID", "door")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "array", cfg.QueueKind)
	assert.Equal(t, 32, cfg.QueueCapacity, "env overrides the file")
	assert.Equal(t, "door", cfg.MachineID)
	assert.True(t, cfg.PreDrain, "default kept")
	assert.True(t, cfg.PostDrain)
	assert.Equal(t, 25*time.Millisecond, cfg.TickRate)
	assert.Equal(t, []string{"slog", "recorder"}, cfg.Inspectors)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrReadingFile)

	_, err = Load(writeFile(t, "queue: [unclosed"))
	assert.ErrorIs(t, err, ErrParsingConfig)

	_, err = Load(writeFile(t, "unknown_key: 1"))
	assert.ErrorIs(t, err, ErrParsingConfig)

	_, err = Load(writeFile(t, "tick_rate: soon"))
	assert.ErrorIs(t, err, ErrParsingConfig)

	t.Setenv("TICKFSM_MAX_ANONYMOUS", "many")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrParsingConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown queue", func(c *Config) { c.QueueKind = "heap" }},
		{"array without capacity", func(c *Config) { c.QueueKind = "array"; c.QueueCapacity = 0 }},
		{"negative pending", func(c *Config) { c.TimerPending = -1 }},
		{"zero anonymous steps", func(c *Config) { c.MaxAnonymous = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
		{"unknown inspector", func(c *Config) { c.Inspectors = []string{"tracing"} }},
		{"zero tick", func(c *Config) { c.TickRate = 0 }},
		{"zero batch", func(c *Config) { c.MaxEventsPerTick = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestMachineOptions(t *testing.T) {
	cfg := Default()
	cfg.MachineID = "door"
	cfg.QueueKind = "array"
	cfg.QueueCapacity = 4
	cfg.Inspectors = []string{InspectorSlog, InspectorMetrics, InspectorRecorder}

	reg := prometheus.NewRegistry()
	w, err := cfg.MachineOptions(logging.NewNop(), reg)
	require.NoError(t, err)
	require.NotNil(t, w.Recorder)
	require.NotNil(t, w.Metrics)

	def := &primitives.MachineConfig{
		ID:          "door",
		States:      []*primitives.StateConfig{primitives.NewStateConfig("closed"), primitives.NewStateConfig("open")},
		Regions:     []primitives.RegionConfig{{Initial: "closed"}},
		Transitions: []primitives.TransitionConfig{{Source: "closed", Event: "open", Target: "open"}},
	}
	m, err := core.NewMachine(def, w.Options...)
	require.NoError(t, err)
	assert.Equal(t, "door", m.ID())
	require.NoError(t, m.Start())
	require.NoError(t, m.Dispatch(primitives.NewEvent("open", nil)))

	assert.Equal(t, 1, w.Recorder.Count(inspect.MilestoneTransitioned))
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMachineOptions_MetricsNeedRegisterer(t *testing.T) {
	cfg := Default()
	cfg.Inspectors = []string{InspectorMetrics}
	_, err := cfg.MachineOptions(logging.NewNop(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
