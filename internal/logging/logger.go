package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

const defaultBufferSize = 1000

// Config holds the global level, output format and per-module overrides.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// registry tracks every module logger so levels can change after creation.
type registry struct {
	mu          sync.RWMutex
	config      Config
	initialized bool
	loggers     map[string]*slog.Logger
	levels      map[string]*slog.LevelVar
	global      slog.LevelVar
	buffer      *RingBuffer
}

var std = newRegistry()

func newRegistry() *registry {
	return &registry{
		loggers: make(map[string]*slog.Logger),
		levels:  make(map[string]*slog.LevelVar),
	}
}

// Initialize applies config, creates the log ring buffer and rebuilds every
// module logger handed out so far with the configured format.
func Initialize(config Config) {
	std.mu.Lock()
	defer std.mu.Unlock()

	std.config = config
	std.initialized = true
	std.buffer = NewRingBuffer(defaultBufferSize)
	std.global.Set(levelOrDefault(config.Level, slog.LevelInfo))

	for module, levelVar := range std.levels {
		levelVar.Set(config.moduleLevel(module))
		std.loggers[module] = slog.New(newHandler(config.Format, levelVar)).With("module", module)
	}
	slog.SetDefault(slog.New(newHandler(config.Format, &std.global)))
}

// UpdateLevels changes the global and module levels of existing loggers in
// place. The format only changes on the next Initialize.
func UpdateLevels(config Config) {
	std.mu.Lock()
	defer std.mu.Unlock()

	std.config.Level = config.Level
	std.config.Modules = config.Modules
	std.global.Set(levelOrDefault(config.Level, slog.LevelInfo))
	for module, levelVar := range std.levels {
		levelVar.Set(std.config.moduleLevel(module))
	}
}

// GetBuffer returns the ring buffer, or nil before Initialize.
func GetBuffer() *RingBuffer {
	std.mu.RLock()
	defer std.mu.RUnlock()
	return std.buffer
}

// GetLogger returns the logger for module, creating it on first use.
// Loggers created before Initialize log text at info until it runs.
func GetLogger(module string) *slog.Logger {
	std.mu.RLock()
	logger, ok := std.loggers[module]
	std.mu.RUnlock()
	if ok {
		return logger
	}

	std.mu.Lock()
	defer std.mu.Unlock()
	if logger, ok := std.loggers[module]; ok {
		return logger
	}

	levelVar := &slog.LevelVar{}
	format := "text"
	if std.initialized {
		levelVar.Set(std.config.moduleLevel(module))
		format = std.config.Format
	}

	logger = slog.New(newHandler(format, levelVar)).With("module", module)
	std.loggers[module] = logger
	std.levels[module] = levelVar
	return logger
}

func (c Config) moduleLevel(module string) slog.Level {
	level := levelOrDefault(c.Level, slog.LevelInfo)
	if override, ok := parseLevel(c.Modules[module]); ok {
		level = override
	}
	return level
}

func levelOrDefault(name string, def slog.Level) slog.Level {
	if level, ok := parseLevel(name); ok {
		return level
	}
	return def
}

// parseLevel accepts debug, info, warn (or warning) and error in any case.
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}

// newHandler fans out to stdout (when connected), the journal (when
// running under systemd) and the ring buffer.
func newHandler(format string, level slog.Leveler) slog.Handler {
	var handlers []slog.Handler
	if stdoutConnected() {
		handlers = append(handlers, streamHandler(os.Stdout, format, level))
	}
	if IsJournalAvailable() {
		handlers = append(handlers, NewJournalHandler(level))
	}
	handlers = append(handlers, NewBufferHandler(level))

	if len(handlers) == 1 {
		return handlers[0]
	}
	return NewMultiHandler(handlers...)
}

func streamHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// stdoutConnected is false for /dev/null and closed descriptors.
func stdoutConnected() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return mode&os.ModeCharDevice != 0 || mode&os.ModeNamedPipe != 0 || mode&os.ModeSocket != 0 || mode.IsRegular()
}
