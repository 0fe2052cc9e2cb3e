package common

import "math"

// Epsilon is the tolerance used for geometric comparisons.
const Epsilon = 1e-6

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func NearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
