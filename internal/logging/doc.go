// Package logging configures log/slog for the daemon with one logger per
// module (engine, output, api, config) and a level that can be changed per
// module at runtime.
//
// Every logger fans out to up to three places: stdout when it is connected,
// the systemd journal when journald is listening, and an in-memory ring
// buffer that backs GET /api/logs.
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "json",
//		Modules: map[string]string{"engine": "debug"},
//	})
//	logger := logging.GetLogger("engine")
//	logger.Debug("Crossfade started", "preset", 2)
//
// In the TOML file the module overrides sit next to the global settings:
//
//	[logging]
//	level = "info"
//	engine = "debug"
//
// Journal entries carry SYSLOG_IDENTIFIER=ledcycle and one uppercase field
// per attribute:
//
//	journalctl -t ledcycle MODULE=output -p warning
//
// [UpdateLevels] is called by the config watcher when the file changes.
package logging
