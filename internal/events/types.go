package events

// Event type constants for kelindar/event.
const (
	TypeCrossfadeStarted uint32 = iota + 1
	TypePresetHeld
	TypePresetAdvanced
)

// Levels converts channel levels to the integer form carried by events.
func Levels(levels []uint8) []int {
	out := make([]int, len(levels))
	for i, l := range levels {
		out[i] = int(l)
	}
	return out
}

// Seq orders the events of one engine. Each handler runs on its own
// subscription, so delivery order across event types is not guaranteed;
// consumers compare Seq to drop stale events. Zero means unsequenced.
type Seq = uint64

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// CrossfadeStartedEvent is published when the engine begins converging on a preset.
type CrossfadeStartedEvent struct {
	Seq         Seq    `json:"seq" example:"12" doc:"Engine event sequence number"`
	PresetIndex int    `json:"preset_index" example:"1" doc:"Index of the preset being faded to"`
	PresetName  string `json:"preset_name,omitempty" example:"soft green" doc:"Preset display name"`
	From        []int  `json:"from" doc:"Channel levels when the crossfade started"`
	Targets     []int  `json:"targets" doc:"Target level per channel"`
	Timestamp   string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CrossfadeStartedEvent.
func (e CrossfadeStartedEvent) Type() uint32 { return TypeCrossfadeStarted }

// PresetHeldEvent is published once every channel matches the preset,
// right before the hold interval starts.
type PresetHeldEvent struct {
	Seq         Seq    `json:"seq" example:"12" doc:"Engine event sequence number"`
	PresetIndex int    `json:"preset_index" example:"1" doc:"Index of the converged preset"`
	PresetName  string `json:"preset_name,omitempty" example:"soft green" doc:"Preset display name"`
	Passes      int    `json:"passes" example:"176" doc:"Step passes the crossfade took, including the final confirming pass"`
	Levels      []int  `json:"levels" doc:"Channel levels being held"`
	HoldMs      int64  `json:"hold_ms" example:"9001" doc:"Hold duration in milliseconds"`
	Timestamp   string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PresetHeldEvent.
func (e PresetHeldEvent) Type() uint32 { return TypePresetHeld }

// PresetAdvancedEvent is published after the hold interval when the active
// preset index moves on.
type PresetAdvancedEvent struct {
	Seq       Seq    `json:"seq" example:"12" doc:"Engine event sequence number"`
	From      int    `json:"from" example:"4" doc:"Preset index that was held"`
	To        int    `json:"to" example:"0" doc:"Preset index that becomes active"`
	Wrapped   bool   `json:"wrapped" example:"true" doc:"Whether the table wrapped back to the first preset"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PresetAdvancedEvent.
func (e PresetAdvancedEvent) Type() uint32 { return TypePresetAdvanced }
