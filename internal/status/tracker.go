// Package status keeps a read-only snapshot of the crossfade engine's progress
// by listening to its events.
package status

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/smazurov/ledcycle/internal/events"
)

// Phase names reported in snapshots.
const (
	PhaseStarting    = "starting"
	PhaseCrossfading = "crossfading"
	PhaseHolding     = "holding"
)

// Snapshot is the engine state as last reported.
type Snapshot struct {
	Phase       string    `json:"phase" example:"holding" doc:"starting, crossfading or holding"`
	PresetIndex int       `json:"preset_index" example:"2" doc:"Index of the preset being faded to or held"`
	PresetName  string    `json:"preset_name,omitempty" example:"lime" doc:"Preset display name"`
	Targets     []int     `json:"targets,omitempty" doc:"Target levels of the active preset"`
	LastPasses  int       `json:"last_passes" example:"176" doc:"Passes taken by the last completed crossfade"`
	PresetsHeld uint64    `json:"presets_held" example:"42" doc:"Presets held since start"`
	Cycles      uint64    `json:"cycles" example:"8" doc:"Completed passes over the whole preset table"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Time of the last engine event"`
}

// Tracker subscribes to engine events and maintains a Snapshot.
type Tracker struct {
	eventBus     *events.Bus
	unsubscribes []func()
	logger       *slog.Logger
	state        Snapshot
	lastSeq      events.Seq
	stateMux     sync.RWMutex
}

// NewTracker creates a tracker for the given bus. Call Start to subscribe.
func NewTracker(eventBus *events.Bus, logger *slog.Logger) *Tracker {
	return &Tracker{
		eventBus: eventBus,
		logger:   logger,
		state:    Snapshot{Phase: PhaseStarting},
	}
}

// Start begins listening for engine events
func (t *Tracker) Start() {
	t.unsubscribes = append(t.unsubscribes,
		t.eventBus.Subscribe(t.handleStarted),
		t.eventBus.Subscribe(t.handleHeld),
		t.eventBus.Subscribe(t.handleAdvanced),
	)
	t.logger.Debug("Status tracker started")
}

// Stop unsubscribes from engine events
func (t *Tracker) Stop() {
	for _, unsubscribe := range t.unsubscribes {
		unsubscribe()
	}
	t.unsubscribes = nil
	t.logger.Debug("Status tracker stopped")
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.stateMux.RLock()
	defer t.stateMux.RUnlock()

	s := t.state
	s.Targets = slices.Clone(t.state.Targets)
	return s
}

// stale reports whether seq is older than the last applied phase event and
// otherwise records it. Callers hold stateMux.
func (t *Tracker) stale(seq events.Seq) bool {
	if seq == 0 {
		return false
	}
	if seq <= t.lastSeq {
		return true
	}
	t.lastSeq = seq
	return false
}

func (t *Tracker) handleStarted(e events.CrossfadeStartedEvent) {
	t.stateMux.Lock()
	defer t.stateMux.Unlock()

	if t.stale(e.Seq) {
		t.logger.Debug("Dropping stale crossfade event", "seq", e.Seq, "last_seq", t.lastSeq)
		return
	}

	t.state.Phase = PhaseCrossfading
	t.state.PresetIndex = e.PresetIndex
	t.state.PresetName = e.PresetName
	t.state.Targets = slices.Clone(e.Targets)
	t.state.UpdatedAt = time.Now()
}

func (t *Tracker) handleHeld(e events.PresetHeldEvent) {
	t.stateMux.Lock()
	defer t.stateMux.Unlock()

	t.state.PresetsHeld++
	if t.stale(e.Seq) {
		t.logger.Debug("Dropping stale held event", "seq", e.Seq, "last_seq", t.lastSeq)
		return
	}
	t.state.Phase = PhaseHolding
	t.state.LastPasses = e.Passes
	t.state.PresetIndex = e.PresetIndex
	t.state.PresetName = e.PresetName
	t.state.UpdatedAt = time.Now()
}

func (t *Tracker) handleAdvanced(e events.PresetAdvancedEvent) {
	if !e.Wrapped {
		return
	}

	t.stateMux.Lock()
	t.state.Cycles++
	t.stateMux.Unlock()

	t.logger.Debug("Preset table wrapped", "from", e.From)
}
