package led

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

const sysfsPWMPath = "/sys/class/pwm"

// pwm implements Output using the Linux PWM class interface.
// Channel i maps to /sys/class/pwm/pwmchip<chip>/pwm<channels[i]>.
type pwm struct {
	paths    []string // duty_cycle attribute per channel
	periodNs int
	faults   faults
}

// newPWM exports the PWM channels if needed, programs their period and
// enables them with a zero duty cycle.
func newPWM(root string, chip int, channels []int, periodNs int, logger *slog.Logger) (*pwm, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("no PWM channels configured")
	}
	if periodNs <= 0 {
		return nil, fmt.Errorf("PWM period must be positive, got %d", periodNs)
	}

	chipPath := filepath.Join(root, fmt.Sprintf("pwmchip%d", chip))
	if _, err := os.Stat(chipPath); err != nil {
		return nil, fmt.Errorf("PWM chip %d not found at %s: %w", chip, chipPath, err)
	}

	p := &pwm{
		paths:    make([]string, len(channels)),
		periodNs: periodNs,
		faults:   newFaults(len(channels), logger),
	}

	for i, index := range channels {
		channelPath := filepath.Join(chipPath, fmt.Sprintf("pwm%d", index))

		if _, err := os.Stat(channelPath); os.IsNotExist(err) {
			if exportErr := writeAttr(filepath.Join(chipPath, "export"), strconv.Itoa(index)); exportErr != nil {
				return nil, fmt.Errorf("failed to export PWM channel %d: %w", index, exportErr)
			}
			if _, statErr := os.Stat(channelPath); statErr != nil {
				return nil, fmt.Errorf("PWM channel %d not available after export: %w", index, statErr)
			}
		}

		// duty_cycle must never exceed period, so clear it before changing the period
		dutyPath := filepath.Join(channelPath, "duty_cycle")
		if err := writeAttr(dutyPath, "0"); err != nil {
			return nil, fmt.Errorf("failed to reset PWM channel %d duty cycle: %w", index, err)
		}
		if err := writeAttr(filepath.Join(channelPath, "period"), strconv.Itoa(periodNs)); err != nil {
			return nil, fmt.Errorf("failed to set PWM channel %d period: %w", index, err)
		}
		if err := writeAttr(filepath.Join(channelPath, "enable"), "1"); err != nil {
			return nil, fmt.Errorf("failed to enable PWM channel %d: %w", index, err)
		}

		p.paths[i] = dutyPath
		logger.Debug("PWM channel opened", "channel", i, "pwm", channelPath, "period_ns", periodNs)
	}

	return p, nil
}

// SetLevel writes the duty cycle proportional to level.
func (p *pwm) SetLevel(channel int, level uint8) {
	duty := int64(p.periodNs) * int64(level) / 255
	err := writeAttr(p.paths[channel], strconv.FormatInt(duty, 10))
	p.faults.record(channel, p.paths[channel], err)
}

// Channels returns the number of configured PWM channels.
func (p *pwm) Channels() int {
	return len(p.paths)
}
