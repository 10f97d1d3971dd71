package logging

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"
)

// BufferHandler records entries into the package ring buffer. The buffer is
// looked up per record, so handlers built before Initialize start filling it
// once Initialize runs.
type BufferHandler struct {
	attrSet
}

// NewBufferHandler creates a buffer handler filtering at level.
func NewBufferHandler(level slog.Leveler) *BufferHandler {
	return &BufferHandler{attrSet{level: level}}
}

func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	buffer := GetBuffer()
	if buffer == nil {
		return nil
	}

	entry := LogEntry{
		Timestamp:  r.Time,
		Level:      levelName(r.Level),
		Module:     "app",
		Message:    r.Message,
		Attributes: make(map[string]any),
	}
	h.each(r, ".", func(key string, v slog.Value) {
		if key == "module" {
			entry.Module = v.String()
			return
		}
		entry.Attributes[key] = bufferValue(v)
	})

	buffer.Write(entry)
	return nil
}

func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BufferHandler{h.withAttrs(attrs)}
}

func (h *BufferHandler) WithGroup(name string) slog.Handler {
	return &BufferHandler{h.withGroup(name)}
}

// bufferValue keeps numbers and strings as-is for JSON and renders times,
// durations and errors as text. Byte slices are channel levels here, so they
// become number lists instead of base64.
func bufferValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		switch a := v.Any().(type) {
		case error:
			return a.Error()
		case []byte:
			levels := make([]int, len(a))
			for i, b := range a {
				levels[i] = int(b)
			}
			return levels
		}
	}
	return v.Any()
}

// FormatLogLine renders an entry the way the text handler would print it:
// timestamp, level, module, message and sorted key=value attributes.
func FormatLogLine(entry LogEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] [%s] %s",
		entry.Timestamp.Format(time.RFC3339Nano),
		strings.ToUpper(entry.Level),
		entry.Module,
		entry.Message,
	)
	for _, key := range slices.Sorted(maps.Keys(entry.Attributes)) {
		fmt.Fprintf(&sb, " %s=%v", key, entry.Attributes[key])
	}
	return sb.String()
}
