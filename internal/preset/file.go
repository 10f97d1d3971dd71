package preset

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// file is the part of the configuration file describing presets.
//
//	[[presets]]
//	name = "warm red"
//	levels = [255, 80, 80]
type file struct {
	Presets []filePreset `toml:"presets"`
}

type filePreset struct {
	Name   string `toml:"name"`
	Levels []int  `toml:"levels"`
}

// LoadFile reads the [[presets]] array from a TOML file and validates it
// against the channel count. A missing file or a file without presets
// yields the Default table.
func LoadFile(path string, channels int) (*Table, error) {
	if path == "" {
		return New(channels, Default()...)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(channels, Default()...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preset config: %w", err)
	}

	return Parse(data, channels)
}

// Parse decodes TOML preset definitions. See LoadFile.
func Parse(data []byte, channels int) (*Table, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse preset config: %w", err)
	}

	if len(f.Presets) == 0 {
		return New(channels, Default()...)
	}

	presets := make([]Preset, len(f.Presets))
	for i, fp := range f.Presets {
		levels := make([]uint8, len(fp.Levels))
		for ch, level := range fp.Levels {
			if level < 0 || level > 255 {
				return nil, &Error{
					Index: i,
					Name:  fp.Name,
					Cause: fmt.Errorf("%w: channel %d has %d", ErrLevelRange, ch, level),
				}
			}
			levels[ch] = uint8(level)
		}
		presets[i] = Preset{Name: fp.Name, Levels: levels}
	}

	return New(channels, presets...)
}
