package crossfade

import (
	"log/slog"
	"time"

	"github.com/smazurov/ledcycle/internal/events"
)

// Defaults used when no option overrides them.
const (
	DefaultStepInterval       = 80 * time.Millisecond
	DefaultHoldInterval       = 9001 * time.Millisecond
	DefaultInitialLevel uint8 = 255
)

// Sleeper blocks the calling goroutine for roughly d.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(d time.Duration)

// Sleep calls f(d).
func (f SleeperFunc) Sleep(d time.Duration) { f(d) }

// Option configures an Engine.
type Option func(*Engine)

// WithStepInterval sets the pause after every crossfade pass.
func WithStepInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.step = d
	}
}

// WithHoldInterval sets how long a converged preset is displayed.
func WithHoldInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.hold = d
	}
}

// WithInitialLevel sets the level every channel starts at. It decides the
// direction and length of the very first crossfade.
func WithInitialLevel(level uint8) Option {
	return func(e *Engine) {
		e.initial = level
	}
}

// WithSleeper replaces time.Sleep, mostly for tests and simulations.
func WithSleeper(s Sleeper) Option {
	return func(e *Engine) {
		e.sleeper = s
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEventBus publishes phase events on bus.
func WithEventBus(bus *events.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}
