package led

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Output using the Linux LED class interface.
// Channel i maps to /sys/class/leds/<names[i]>.
type sysfs struct {
	paths  []string // brightness attribute per channel
	max    []int    // max_brightness per channel
	faults faults
}

// newSysfs opens the named LEDs under root, switches their trigger to
// manual control and reads their brightness range.
func newSysfs(root string, names []string, logger *slog.Logger) (*sysfs, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no LED names configured")
	}

	s := &sysfs{
		paths:  make([]string, len(names)),
		max:    make([]int, len(names)),
		faults: newFaults(len(names), logger),
	}

	for i, name := range names {
		ledPath := filepath.Join(root, name)

		if _, err := os.Stat(ledPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("LED %q not found at %s", name, ledPath)
		}

		// Any kernel trigger would fight our writes
		triggerPath := filepath.Join(ledPath, "trigger")
		if err := writeAttr(triggerPath, "none"); err != nil {
			return nil, fmt.Errorf("failed to set LED %q trigger to none: %w", name, err)
		}

		s.max[i] = readMaxBrightness(filepath.Join(ledPath, "max_brightness"))
		s.paths[i] = filepath.Join(ledPath, "brightness")

		logger.Debug("LED channel opened", "channel", i, "led", name, "max_brightness", s.max[i])
	}

	return s, nil
}

// SetLevel writes level scaled to the LED's brightness range.
func (s *sysfs) SetLevel(channel int, level uint8) {
	value := scaleLevel(level, s.max[channel])
	err := writeAttr(s.paths[channel], strconv.Itoa(value))
	s.faults.record(channel, s.paths[channel], err)
}

// Channels returns the number of configured LEDs.
func (s *sysfs) Channels() int {
	return len(s.paths)
}

// readMaxBrightness returns the LED's max_brightness, or 255 when it cannot be read.
func readMaxBrightness(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 255
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || value <= 0 {
		return 255
	}
	return value
}

// scaleLevel maps 0..255 onto 0..limit, rounding to nearest.
func scaleLevel(level uint8, limit int) int {
	return (int(level)*limit + 127) / 255
}

// ledsExist reports whether every named LED is present under root.
func ledsExist(root string, names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			return false
		}
	}
	return true
}
