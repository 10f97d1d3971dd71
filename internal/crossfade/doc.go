// Package crossfade cycles a set of output channels through a preset table.
//
// For every preset the engine walks each channel one level per pass toward
// its target, sleeping the step interval after every pass, until all
// channels match. It then sleeps the hold interval and moves on to the next
// preset, wrapping to the first one after the last. This never ends.
//
// A preset whose largest channel delta is D takes D+1 passes: D passes that
// move levels and a final pass in which the remaining channels are found on
// target. A channel is written on every pass up to and including the pass in
// which it is found matching, and not again until the next preset starts. A
// preset equal to the current levels therefore takes exactly one pass.
//
// Engine is not safe for concurrent use; a single goroutine owns it. Progress
// is reported to other goroutines through the events bus.
package crossfade
