package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/comalice/tickfsm/internal/logging"
	"github.com/comalice/tickfsm/internal/queue"
)

// Inspector names accepted in Config.Inspectors.
const (
	InspectorSlog     = "slog"
	InspectorMetrics  = "metrics"
	InspectorRecorder = "recorder"
)

// Config holds the runtime settings of one machine.
type Config struct {
	MachineID string `env:"MACHINE_ID" mapstructure:"machine_id"`

	QueueKind     string `env:"QUEUE" mapstructure:"queue"`
	QueueCapacity int    `env:"QUEUE_CAPACITY" mapstructure:"queue_capacity"`
	TimerPending  int    `env:"TIMER_PENDING" mapstructure:"timer_pending"`

	PreDrain     bool `env:"PRE_DRAIN" mapstructure:"pre_drain"`
	PostDrain    bool `env:"POST_DRAIN" mapstructure:"post_drain"`
	MaxAnonymous int  `env:"MAX_ANONYMOUS" mapstructure:"max_anonymous"`

	LogLevel   string   `env:"LOG_LEVEL" mapstructure:"log_level"`
	LogFormat  string   `env:"LOG_FORMAT" mapstructure:"log_format"`
	Inspectors []string `env:"INSPECTORS" envSeparator:"," mapstructure:"inspectors"`

	TickRate         time.Duration `env:"TICK_RATE" mapstructure:"tick_rate"`
	MaxEventsPerTick int           `env:"MAX_EVENTS_PER_TICK" mapstructure:"max_events_per_tick"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		QueueKind:        string(queue.KindVec),
		QueueCapacity:    16,
		PreDrain:         true,
		MaxAnonymous:     64,
		LogLevel:         "info",
		LogFormat:        string(logging.FormatText),
		Inspectors:       []string{InspectorSlog},
		TickRate:         10 * time.Millisecond,
		MaxEventsPerTick: 1000,
	}
}

// Load layers the YAML file at path (skipped when empty) and TICKFSM_*
// environment variables over Default, then validates the result.
func Load(path string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Join(ErrReadingFile, err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, err
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TICKFSM_"}); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	if err := dec.Decode(raw); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch queue.Kind(c.QueueKind) {
	case queue.KindArray, queue.KindVec, queue.KindNull:
	default:
		return fmt.Errorf("%w: queue %q", ErrInvalidConfig, c.QueueKind)
	}
	if c.QueueKind == string(queue.KindArray) && c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: array queue needs a positive capacity", ErrInvalidConfig)
	}
	if c.QueueCapacity < 0 || c.TimerPending < 0 {
		return fmt.Errorf("%w: capacities must be non-negative", ErrInvalidConfig)
	}
	if c.MaxAnonymous <= 0 {
		return fmt.Errorf("%w: max_anonymous must be positive", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if f := logging.Format(strings.ToLower(c.LogFormat)); f != logging.FormatText && f != logging.FormatJSON {
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	known := []string{InspectorSlog, InspectorMetrics, InspectorRecorder}
	for _, name := range c.Inspectors {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w: inspector %q", ErrInvalidConfig, name)
		}
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalidConfig)
	}
	if c.MaxEventsPerTick <= 0 {
		return fmt.Errorf("%w: max_events_per_tick must be positive", ErrInvalidConfig)
	}
	return nil
}

// Logger builds the application logger from LogLevel and LogFormat.
func (c *Config) Logger() *slog.Logger {
	level, _ := logging.ParseLevel(c.LogLevel)
	return logging.New(level, logging.Format(strings.ToLower(c.LogFormat)))
}
