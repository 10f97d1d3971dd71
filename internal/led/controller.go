package led

// Output abstracts the hardware that turns a channel level into light.
// Implementations handle board-specific naming, scaling and polarity.
//
// SetLevel is fire-and-forget: implementations deal with write failures
// themselves (log, retry on the next call) and never block indefinitely.
type Output interface {
	// SetLevel drives channel (0-based) to level, 0 is off and 255 is full.
	SetLevel(channel int, level uint8)

	// Channels returns how many channels this output drives.
	Channels() int
}

// inverted flips levels for active-low wiring.
type inverted struct {
	Output
}

// Inverted wraps out so that level L is written as 255-L.
func Inverted(out Output) Output {
	return &inverted{Output: out}
}

func (i *inverted) SetLevel(channel int, level uint8) {
	i.Output.SetLevel(channel, 255-level)
}
