package led

import "log/slog"

// noop implements Output for systems without LED support
type noop struct {
	channels int
	logger   *slog.Logger
}

// newNoop creates a new no-op output with the given channel count
func newNoop(channels int, logger *slog.Logger) *noop {
	return &noop{
		channels: channels,
		logger:   logger,
	}
}

// SetLevel logs the request but performs no actual LED control
func (n *noop) SetLevel(channel int, level uint8) {
	n.logger.Debug("LED output not available (no-op)",
		"channel", channel,
		"level", level)
}

// Channels returns the configured channel count
func (n *noop) Channels() int {
	return n.channels
}
