package led

import (
	"log/slog"
	"os"
)

// faults logs the first write failure of a channel and its recovery,
// keeping a failing output from flooding the log at every step.
type faults struct {
	failing []bool
	logger  *slog.Logger
}

func newFaults(channels int, logger *slog.Logger) faults {
	return faults{
		failing: make([]bool, channels),
		logger:  logger,
	}
}

func (f *faults) record(channel int, path string, err error) {
	if err != nil {
		if !f.failing[channel] {
			f.failing[channel] = true
			f.logger.Warn("Failed to write LED level", "channel", channel, "path", path, "error", err)
		}
		return
	}
	if f.failing[channel] {
		f.failing[channel] = false
		f.logger.Info("LED output recovered", "channel", channel, "path", path)
	}
}

// writeAttr writes a sysfs attribute.
func writeAttr(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}
