// Package preset holds the immutable table of per-channel target levels
// the crossfade engine cycles through.
package preset

import "fmt"

// Preset is one combination of target levels, one per channel.
type Preset struct {
	Name   string  `json:"name,omitempty" doc:"Optional display name"`
	Levels []uint8 `json:"levels" doc:"Target level per channel, 0..255"`
}

// Table is a validated, non-empty sequence of presets of equal arity.
// It is never modified after New returns.
type Table struct {
	channels int
	presets  []Preset
}

// New validates presets against the channel count and returns a table
// holding private copies of them.
func New(channels int, presets ...Preset) (*Table, error) {
	if channels < 1 {
		return nil, ErrNoChannels
	}
	if len(presets) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		channels: channels,
		presets:  make([]Preset, len(presets)),
	}
	for i, p := range presets {
		if len(p.Levels) != channels {
			return nil, &Error{
				Index: i,
				Name:  p.Name,
				Cause: fmt.Errorf("%w: got %d levels, want %d", ErrArityMismatch, len(p.Levels), channels),
			}
		}
		t.presets[i] = clonePreset(p)
	}
	return t, nil
}

// Default returns the built-in three channel table (red, green, blue).
func Default() []Preset {
	return []Preset{
		{Name: "warm red", Levels: []uint8{255, 80, 80}},
		{Name: "soft green", Levels: []uint8{80, 255, 80}},
		{Name: "lime", Levels: []uint8{50, 255, 0}},
		{Name: "red", Levels: []uint8{255, 0, 0}},
		{Name: "pink", Levels: []uint8{255, 0, 120}},
	}
}

// Len returns the number of presets.
func (t *Table) Len() int { return len(t.presets) }

// Channels returns the arity shared by every preset.
func (t *Table) Channels() int { return t.channels }

// Target returns the level preset i wants on channel ch.
func (t *Table) Target(i, ch int) uint8 {
	return t.presets[i].Levels[ch]
}

// At returns a copy of preset i.
func (t *Table) At(i int) Preset {
	return clonePreset(t.presets[i])
}

// All returns copies of every preset in table order.
func (t *Table) All() []Preset {
	out := make([]Preset, len(t.presets))
	for i, p := range t.presets {
		out[i] = clonePreset(p)
	}
	return out
}

func clonePreset(p Preset) Preset {
	levels := make([]uint8, len(p.Levels))
	copy(levels, p.Levels)
	return Preset{Name: p.Name, Levels: levels}
}
