package common

import "math"

// Epsilon absorbs float drift when frame deltas are summed into phase timers
// (0.05 added three times is not exactly 0.15).
const Epsilon = 1e-9

const (
	BaseWidth  = 1280
	BaseHeight = 720
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp01 clamps v into [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ApproxGE reports a >= b within Epsilon.
func ApproxGE(a, b float64) bool {
	return a >= b-Epsilon
}

// SanitizeDelta turns an unreliable host delta into a usable one.
func SanitizeDelta(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return 0
	}
	return dt
}
