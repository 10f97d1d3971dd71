package logging

import (
	"log/slog"
	"slices"
	"strings"
)

// attrSet carries the level and the WithAttrs/WithGroup state shared by the
// journal and buffer handlers.
type attrSet struct {
	level  slog.Leveler
	attrs  []groupedAttr
	groups []string
}

// groupedAttr remembers the groups open when WithAttrs was called.
type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

func (s attrSet) enabled(level slog.Level) bool {
	return level >= s.level.Level()
}

func (s attrSet) withAttrs(attrs []slog.Attr) attrSet {
	grouped := slices.Clip(s.attrs)
	for _, a := range attrs {
		grouped = append(grouped, groupedAttr{groups: s.groups, attr: a})
	}
	s.attrs = grouped
	return s
}

func (s attrSet) withGroup(name string) attrSet {
	if name != "" {
		s.groups = append(slices.Clip(s.groups), name)
	}
	return s
}

// each visits every leaf attribute of the handler and then of r. Group names
// prefix the key, joined by sep.
func (s attrSet) each(r slog.Record, sep string, fn func(key string, v slog.Value)) {
	for _, ga := range s.attrs {
		walkAttr(ga.groups, sep, ga.attr, fn)
	}
	r.Attrs(func(a slog.Attr) bool {
		walkAttr(s.groups, sep, a, fn)
		return true
	})
}

func walkAttr(groups []string, sep string, a slog.Attr, fn func(string, slog.Value)) {
	if a.Equal(slog.Attr{}) {
		return
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		inner := groups
		if a.Key != "" {
			inner = append(slices.Clip(groups), a.Key)
		}
		for _, ga := range v.Group() {
			walkAttr(inner, sep, ga, fn)
		}
		return
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, sep) + sep + key
	}
	fn(key, v)
}

// levelName maps a slog level onto one of debug, info, warn or error.
func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
