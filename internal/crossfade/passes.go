package crossfade

import "time"

// Passes returns how many passes Next takes to fade from one set of levels
// to another: the largest per-channel distance plus the pass that finds the
// last channel matched. from and to must have the same length.
func Passes(from, to []uint8) int {
	maxDelta := 0
	for ch := range from {
		d := int(from[ch]) - int(to[ch])
		if d < 0 {
			d = -d
		}
		maxDelta = max(maxDelta, d)
	}
	return maxDelta + 1
}

// Duration returns the nominal wall time of a crossfade of the given
// passes followed by the hold, ignoring output write latency.
func Duration(passes int, step, hold time.Duration) time.Duration {
	return time.Duration(passes)*step + hold
}
