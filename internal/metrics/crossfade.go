// Package metrics provides Prometheus metrics for the crossfade engine and its outputs.
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/smazurov/ledcycle/internal/events"
)

var (
	channelLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ledcycle",
		Subsystem: "channel",
		Name:      "level",
		Help:      "Last level written to the channel, 0..255",
	}, []string{"channel"})

	channelWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledcycle",
		Subsystem: "channel",
		Name:      "writes_total",
		Help:      "Level writes issued to the channel",
	}, []string{"channel"})

	activePreset = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ledcycle",
		Subsystem: "engine",
		Name:      "active_preset",
		Help:      "Index of the preset being faded to or held",
	})

	crossfadePasses = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ledcycle",
		Subsystem: "engine",
		Name:      "last_crossfade_passes",
		Help:      "Step passes the most recent crossfade took",
	})

	presetsHeld = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledcycle",
		Subsystem: "engine",
		Name:      "presets_held_total",
		Help:      "Presets that converged and entered the hold phase",
	})

	cycles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledcycle",
		Subsystem: "engine",
		Name:      "cycles_total",
		Help:      "Times the preset table wrapped back to its first preset",
	})

	// Local cache for API access.
	levelCache   = make(map[int]uint8)
	levelCacheMu sync.RWMutex
)

// SetChannelLevel records a level written to a channel.
func SetChannelLevel(channel int, level uint8) {
	label := strconv.Itoa(channel)
	channelLevel.WithLabelValues(label).Set(float64(level))
	channelWrites.WithLabelValues(label).Inc()

	levelCacheMu.Lock()
	levelCache[channel] = level
	levelCacheMu.Unlock()
}

// GetChannelLevels returns the last written level of every channel seen so far,
// indexed by channel. Channels never written read as 0.
func GetChannelLevels() []uint8 {
	levelCacheMu.RLock()
	defer levelCacheMu.RUnlock()

	size := 0
	for ch := range levelCache {
		if ch+1 > size {
			size = ch + 1
		}
	}
	levels := make([]uint8, size)
	for ch, level := range levelCache {
		levels[ch] = level
	}
	return levels
}

// Subscribe keeps the engine metrics in step with engine events.
// Returns a function that removes the subscriptions.
func Subscribe(bus *events.Bus) func() {
	unsubStarted := bus.Subscribe(func(e events.CrossfadeStartedEvent) {
		activePreset.Set(float64(e.PresetIndex))
	})
	unsubHeld := bus.Subscribe(func(e events.PresetHeldEvent) {
		crossfadePasses.Set(float64(e.Passes))
		presetsHeld.Inc()
	})
	unsubAdvanced := bus.Subscribe(func(e events.PresetAdvancedEvent) {
		if e.Wrapped {
			cycles.Inc()
		}
	})

	return func() {
		unsubStarted()
		unsubHeld()
		unsubAdvanced()
	}
}
