package lib

import "math"

// Sigmoid computes the standard logistic function:
//
//	f(x) = 1 / (1 + e^(-x))
//
// Behavior:
//   - f(0) = 0.5 exactly.
//   - f is strictly increasing and maps ℝ into the open interval (0,1).
//   - Large |x| saturates towards the bounds but never reaches them
//     (within float64 precision the result is clamped away from 0 and 1).
//
// The scoring pipeline uses this in two distinct places with different
// arguments (log-sum of influence observations vs. a raw linear rank
// combination); both rely on the open-interval guarantee.
func Sigmoid(x float64) float64 {
	v := 1 / (1 + math.Exp(-x))

	// Guard against float64 saturation at the extremes so callers can
	// rely on scores staying inside (0,1).
	if v <= 0 {
		return math.SmallestNonzeroFloat64
	}
	if v >= 1 {
		return 1 - 1e-15
	}
	return v
}

// Clamp01 clamps v into the closed interval [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
