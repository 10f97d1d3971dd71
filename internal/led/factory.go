package led

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// Backend names accepted by Config.Backend.
const (
	BackendAuto = "auto"
	BackendLEDs = "leds"
	BackendPWM  = "pwm"
	BackendNoop = "noop"
)

// Config selects and parameterizes the output backend.
type Config struct {
	Backend     string
	LEDs        []string // LED class names, one per channel
	PWMChip     int
	PWMChannels []int // PWM indexes on PWMChip, one per channel
	PWMPeriodNs int
	Inverted    bool // active-low wiring

	// Sysfs roots and the device tree model file, overridable for tests.
	LEDRoot   string
	PWMRoot   string
	ModelPath string
}

// boardLEDs lists the user-controllable LEDs of known boards, matched by a
// substring of the device tree model.
var boardLEDs = []struct {
	model string
	leds  []string
}{
	{"NanoPC-T6", []string{"usr_led", "sys_led"}},
	{"Orange Pi", []string{"blue_led", "green_led"}},
	{"Raspberry Pi", []string{"ACT", "PWR"}},
}

// BoardLEDs returns the LED names known for a board model, or nil.
func BoardLEDs(model string) []string {
	for _, b := range boardLEDs {
		if strings.Contains(model, b.model) {
			return b.leds
		}
	}
	return nil
}

// ChannelCount returns how many channels the configured backend drives.
func (c Config) ChannelCount() int {
	if c.Backend == BackendPWM {
		return len(c.PWMChannels)
	}
	return len(c.LEDs)
}

// New creates the configured LED output. With BackendAuto it detects the
// board and falls back to a no-op output when the configured LEDs are not
// present.
func New(cfg Config, logger *slog.Logger) (Output, error) {
	if cfg.LEDRoot == "" {
		cfg.LEDRoot = sysfsLEDPath
	}
	if cfg.PWMRoot == "" {
		cfg.PWMRoot = sysfsPWMPath
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = deviceTreeModelPath
	}

	out, err := newBackend(cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Inverted {
		logger.Info("LED output inverted for active-low wiring")
		out = Inverted(out)
	}
	return out, nil
}

func newBackend(cfg Config, logger *slog.Logger) (Output, error) {
	if cfg.ChannelCount() == 0 {
		return nil, fmt.Errorf("%s backend has no channels configured", cfg.Backend)
	}

	switch cfg.Backend {
	case BackendLEDs:
		return newSysfs(cfg.LEDRoot, cfg.LEDs, logger)

	case BackendPWM:
		return newPWM(cfg.PWMRoot, cfg.PWMChip, cfg.PWMChannels, cfg.PWMPeriodNs, logger)

	case BackendNoop:
		return newNoop(cfg.ChannelCount(), logger), nil

	case BackendAuto, "":
		boardModel := detectBoard(cfg.ModelPath)
		logger.Info("Detecting board for LED output", "board_model", boardModel)

		if ledsExist(cfg.LEDRoot, cfg.LEDs) {
			logger.Info("Configured LEDs found, using sysfs LED output", "leds", cfg.LEDs)
			return newSysfs(cfg.LEDRoot, cfg.LEDs, logger)
		}

		// The board's own LEDs stand in when they cover every channel
		if leds := BoardLEDs(boardModel); len(leds) == cfg.ChannelCount() && ledsExist(cfg.LEDRoot, leds) {
			logger.Info("Configured LEDs not present, using board LEDs",
				"board_model", boardModel,
				"leds", leds)
			return newSysfs(cfg.LEDRoot, leds, logger)
		}

		logger.Info("No usable LEDs found, using no-op output",
			"board_model", boardModel,
			"leds", cfg.LEDs)
		return newNoop(cfg.ChannelCount(), logger), nil

	default:
		return nil, fmt.Errorf("unknown LED backend %q", cfg.Backend)
	}
}

// detectBoard reads the device tree model to identify the board.
func detectBoard(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}

	// Device tree model contains null bytes, trim them
	return strings.TrimRight(string(data), "\x00")
}
