package models

import (
	"time"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2026-01-27T10:30:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"42" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go runtime version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Status models
type StatusData struct {
	Phase       string    `json:"phase" example:"holding" doc:"starting, crossfading or holding"`
	PresetIndex int       `json:"preset_index" example:"2" doc:"Index of the preset being faded to or held"`
	PresetName  string    `json:"preset_name,omitempty" example:"lime" doc:"Preset display name"`
	Targets     []int     `json:"targets" doc:"Target levels of the active preset"`
	Levels      []int     `json:"levels" doc:"Last level written to each channel"`
	LastPasses  int       `json:"last_passes" example:"176" doc:"Passes taken by the last completed crossfade"`
	PresetsHeld uint64    `json:"presets_held" example:"42" doc:"Presets held since start"`
	Cycles      uint64    `json:"cycles" example:"8" doc:"Completed passes over the whole preset table"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Time of the last engine event"`
}

type StatusResponse struct {
	Body StatusData
}

// Preset models
type PresetInfo struct {
	Index  int    `json:"index" example:"0" doc:"Position in the cycle"`
	Name   string `json:"name,omitempty" example:"warm red" doc:"Preset display name"`
	Levels []int  `json:"levels" doc:"Target level per channel (0-255)"`
}

type PresetListData struct {
	Channels int          `json:"channels" example:"3" doc:"Number of output channels"`
	Presets  []PresetInfo `json:"presets" doc:"Presets in cycle order"`
	Count    int          `json:"count" example:"5" doc:"Number of presets"`
}

type PresetListResponse struct {
	Body PresetListData
}

// Log models
type LogEntry struct {
	Timestamp  time.Time      `json:"timestamp" doc:"When the record was logged"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module,omitempty" example:"engine" doc:"Logging module"`
	Message    string         `json:"message" example:"Preset held" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
	Line       string         `json:"line" doc:"Preformatted log line"`
}

type LogsInput struct {
	Limit int    `query:"limit" minimum:"0" maximum:"1000" default:"0" doc:"Return only the newest N entries (0 for all)"`
	Level string `query:"level" default:"" doc:"Minimum level to include"`
}

type LogsData struct {
	Entries []LogEntry `json:"entries" doc:"Buffered log entries, oldest first"`
	Count   int        `json:"count" example:"120" doc:"Number of entries returned"`
}

type LogsResponse struct {
	Body LogsData
}
