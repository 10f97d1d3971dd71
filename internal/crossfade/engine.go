package crossfade

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smazurov/ledcycle/internal/events"
	"github.com/smazurov/ledcycle/internal/led"
	"github.com/smazurov/ledcycle/internal/preset"
)

// Configuration errors returned by New.
var (
	ErrNoTable          = errors.New("preset table is required")
	ErrNoOutput         = errors.New("output is required")
	ErrChannelMismatch  = errors.New("output channel count does not match preset arity")
	ErrNegativeInterval = errors.New("interval must not be negative")
)

type channel struct {
	level   uint8
	matched bool
}

// Engine owns the per-channel levels and the active preset index.
type Engine struct {
	table    *preset.Table
	out      led.Output
	sleeper  Sleeper
	step     time.Duration
	hold     time.Duration
	initial  uint8
	channels []channel
	active   int
	logger   *slog.Logger
	bus      *events.Bus
	seq      events.Seq
}

// New validates the configuration and returns an engine positioned on the
// first preset with every channel at the initial level.
func New(table *preset.Table, out led.Output, opts ...Option) (*Engine, error) {
	if table == nil {
		return nil, ErrNoTable
	}
	if out == nil {
		return nil, ErrNoOutput
	}

	e := &Engine{
		table:   table,
		out:     out,
		sleeper: SleeperFunc(time.Sleep),
		step:    DefaultStepInterval,
		hold:    DefaultHoldInterval,
		initial: DefaultInitialLevel,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	if out.Channels() != table.Channels() {
		return nil, fmt.Errorf("%w: output has %d, presets have %d",
			ErrChannelMismatch, out.Channels(), table.Channels())
	}
	if e.step < 0 || e.hold < 0 {
		return nil, fmt.Errorf("%w: step %s, hold %s", ErrNegativeInterval, e.step, e.hold)
	}

	e.channels = make([]channel, table.Channels())
	for i := range e.channels {
		e.channels[i].level = e.initial
	}
	return e, nil
}

// Run writes the initial levels and then cycles through the presets forever.
func (e *Engine) Run() {
	e.logger.Info("Crossfade engine started",
		"channels", len(e.channels),
		"presets", e.table.Len(),
		"step", e.step,
		"hold", e.hold,
		"initial_level", e.initial)

	for ch := range e.channels {
		e.out.SetLevel(ch, e.channels[ch].level)
	}

	for {
		e.Next()
	}
}

// Next crossfades to the active preset, holds it, and advances the active
// index. It returns the number of passes the crossfade took.
func (e *Engine) Next() int {
	index := e.active
	p := e.table.At(index)

	e.publish(events.CrossfadeStartedEvent{
		Seq:         e.nextSeq(),
		PresetIndex: index,
		PresetName:  p.Name,
		From:        events.Levels(e.Levels()),
		Targets:     events.Levels(p.Levels),
		Timestamp:   now(),
	})
	e.logger.Debug("Crossfade started", "preset", index, "name", p.Name, "targets", events.Levels(p.Levels))

	passes := e.converge(index)

	e.publish(events.PresetHeldEvent{
		Seq:         e.nextSeq(),
		PresetIndex: index,
		PresetName:  p.Name,
		Passes:      passes,
		Levels:      events.Levels(e.Levels()),
		HoldMs:      e.hold.Milliseconds(),
		Timestamp:   now(),
	})
	e.logger.Info("Preset held", "preset", index, "name", p.Name, "passes", passes)

	e.sleeper.Sleep(e.hold)

	e.active = (index + 1) % e.table.Len()
	e.publish(events.PresetAdvancedEvent{
		Seq:       e.nextSeq(),
		From:      index,
		To:        e.active,
		Wrapped:   e.active == 0,
		Timestamp: now(),
	})

	return passes
}

// converge steps every unmatched channel toward the preset until none is left.
func (e *Engine) converge(index int) int {
	unmatched := len(e.channels)
	for ch := range e.channels {
		e.channels[ch].matched = false
	}

	passes := 0
	for unmatched > 0 {
		for ch := range e.channels {
			c := &e.channels[ch]
			if c.matched {
				continue
			}

			target := e.table.Target(index, ch)
			switch {
			case c.level < target:
				c.level++
			case c.level > target:
				c.level--
			default:
				c.matched = true
				unmatched--
			}
			e.out.SetLevel(ch, c.level)
		}

		passes++
		e.sleeper.Sleep(e.step)
	}
	return passes
}

// Levels returns a copy of the current channel levels.
func (e *Engine) Levels() []uint8 {
	levels := make([]uint8, len(e.channels))
	for i, c := range e.channels {
		levels[i] = c.level
	}
	return levels
}

// Active returns the index of the preset the next call to Next fades to.
func (e *Engine) Active() int {
	return e.active
}

func (e *Engine) publish(ev events.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func (e *Engine) nextSeq() events.Seq {
	e.seq++
	return e.seq
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
