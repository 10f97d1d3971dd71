package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/smazurov/ledcycle/internal/led"
	"github.com/smazurov/ledcycle/internal/logging"
)

// ErrInvalidOption is wrapped by every conversion error returned from Options.
var ErrInvalidOption = errors.New("invalid option")

// Options holds every daemon setting. Field tags drive the humacli flags
// (help, short, default), TOML lookup (toml) and environment overrides (env,
// prefixed with EnvPrefix).
type Options struct {
	Config string `help:"Path to TOML configuration file" short:"c" default:"ledcycle.toml"`

	// Engine
	EngineStepInterval string `help:"Pause after every crossfade pass" default:"80ms" toml:"engine.step_interval" env:"ENGINE_STEP_INTERVAL"`
	EngineHoldInterval string `help:"How long a converged preset is held" default:"9001ms" toml:"engine.hold_interval" env:"ENGINE_HOLD_INTERVAL"`
	EngineInitialLevel int    `help:"Level every channel starts at (0-255)" default:"255" toml:"engine.initial_level" env:"ENGINE_INITIAL_LEVEL"`

	// Output
	OutputBackend     string `help:"Output backend: auto, leds, pwm or noop" default:"auto" toml:"output.backend" env:"OUTPUT_BACKEND"`
	OutputLeds        string `help:"Comma-separated sysfs LED names, one per channel" default:"red,green,blue" toml:"output.leds" env:"OUTPUT_LEDS"`
	OutputPwmChip     int    `help:"sysfs pwmchip number" default:"0" toml:"output.pwm_chip" env:"OUTPUT_PWM_CHIP"`
	OutputPwmChannels string `help:"Comma-separated PWM channel indexes, one per channel" default:"0,1,2" toml:"output.pwm_channels" env:"OUTPUT_PWM_CHANNELS"`
	OutputPwmPeriodNs int    `help:"PWM period in nanoseconds" default:"1000000" toml:"output.pwm_period_ns" env:"OUTPUT_PWM_PERIOD_NS"`
	OutputInverted    bool   `help:"Invert levels for active-low wiring" default:"false" toml:"output.inverted" env:"OUTPUT_INVERTED"`

	// Server
	Port          string `help:"Port to listen on" short:"p" default:":8091" toml:"server.port" env:"PORT"`
	ServerEnabled bool   `help:"Serve the read-only status API" default:"true" toml:"server.enabled" env:"SERVER_ENABLED"`

	// Authentication
	AuthUsername string `help:"Basic auth username (empty disables auth)" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging
	LoggingLevel  string `help:"Global log level" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Log format: text or json" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingEngine string `help:"Engine module log level" default:"" toml:"logging.engine" env:"LOGGING_ENGINE"`
	LoggingOutput string `help:"Output module log level" default:"" toml:"logging.output" env:"LOGGING_OUTPUT"`
	LoggingAPI    string `help:"API module log level" default:"" toml:"logging.api" env:"LOGGING_API"`
	LoggingConfig string `help:"Config module log level" default:"" toml:"logging.config" env:"LOGGING_CONFIG"`
}

// DefaultOptions returns Options populated from the `default` tags, the same
// values humacli assigns before flags are parsed.
func DefaultOptions() *Options {
	opts := &Options{}
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if def, ok := t.Field(i).Tag.Lookup("default"); ok && def != "" {
			if err := setFieldValueFromString(v.Field(i), t.Field(i).Name, def); err != nil {
				panic(err)
			}
		}
	}
	return opts
}

// Engine carries the parsed engine timing and start level.
type Engine struct {
	StepInterval time.Duration
	HoldInterval time.Duration
	InitialLevel uint8
}

// Engine parses the engine settings.
func (o *Options) Engine() (Engine, error) {
	step, err := parseInterval("engine.step_interval", o.EngineStepInterval)
	if err != nil {
		return Engine{}, err
	}
	hold, err := parseInterval("engine.hold_interval", o.EngineHoldInterval)
	if err != nil {
		return Engine{}, err
	}
	if o.EngineInitialLevel < 0 || o.EngineInitialLevel > 255 {
		return Engine{}, fmt.Errorf("%w: engine.initial_level %d outside 0-255", ErrInvalidOption, o.EngineInitialLevel)
	}
	return Engine{
		StepInterval: step,
		HoldInterval: hold,
		InitialLevel: uint8(o.EngineInitialLevel),
	}, nil
}

// Output builds the LED output configuration.
func (o *Options) Output() (led.Config, error) {
	cfg := led.Config{
		Backend:     strings.TrimSpace(o.OutputBackend),
		LEDs:        splitList(o.OutputLeds),
		PWMChip:     o.OutputPwmChip,
		PWMPeriodNs: o.OutputPwmPeriodNs,
		Inverted:    o.OutputInverted,
	}

	switch cfg.Backend {
	case "", led.BackendAuto, led.BackendLEDs, led.BackendPWM, led.BackendNoop:
	default:
		return led.Config{}, fmt.Errorf("%w: unknown output.backend %q", ErrInvalidOption, cfg.Backend)
	}

	for _, field := range splitList(o.OutputPwmChannels) {
		ch, err := strconv.Atoi(field)
		if err != nil || ch < 0 {
			return led.Config{}, fmt.Errorf("%w: output.pwm_channels entry %q", ErrInvalidOption, field)
		}
		cfg.PWMChannels = append(cfg.PWMChannels, ch)
	}
	if cfg.Backend == led.BackendPWM && cfg.PWMPeriodNs <= 0 {
		return led.Config{}, fmt.Errorf("%w: output.pwm_period_ns must be positive", ErrInvalidOption)
	}
	if cfg.ChannelCount() == 0 {
		return led.Config{}, fmt.Errorf("%w: no output channels configured", ErrInvalidOption)
	}
	return cfg, nil
}

// Logging builds the logging configuration. Empty module levels inherit
// the global level.
func (o *Options) Logging() logging.Config {
	modules := make(map[string]string)
	for module, level := range map[string]string{
		"engine": o.LoggingEngine,
		"output": o.LoggingOutput,
		"api":    o.LoggingAPI,
		"config": o.LoggingConfig,
	} {
		if level != "" {
			modules[module] = level
		}
	}
	return logging.Config{
		Level:   o.LoggingLevel,
		Format:  o.LoggingFormat,
		Modules: modules,
	}
}

func parseInterval(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidOption, key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidOption, key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
