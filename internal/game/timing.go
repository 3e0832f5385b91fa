package game

import "time"

const TickRate = 20 // ticks per second

// TickInterval is the wall-clock length of one tick. Timed intervals are
// whole multiples of it.
const TickInterval = time.Second / TickRate

// SecsToTicks converts a duration in seconds to game ticks.
func SecsToTicks(s float64) int {
	t := int(s * TickRate)
	if t < 1 {
		t = 1
	}
	return t
}

// DurationToTicks converts a duration to game ticks, never less than one.
func DurationToTicks(d time.Duration) int {
	return SecsToTicks(d.Seconds())
}

// DefaultFallInterval is how long a piece waits between automatic drops.
const DefaultFallInterval = 500 * time.Millisecond
