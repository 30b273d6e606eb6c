package audio

import "math"

// EqualPowerGains returns the outgoing and incoming gains at progress t in
// [0, 1] through a crossfade window. The sine/cosine pair keeps summed power
// roughly constant across the window, avoiding the dip a linear ramp causes.
func EqualPowerGains(t float64) (out, in float64) {
	if t <= 0 {
		return 1, 0
	}
	if t >= 1 {
		return 0, 1
	}
	return math.Cos(t * math.Pi / 2), math.Sin(t * math.Pi / 2)
}
