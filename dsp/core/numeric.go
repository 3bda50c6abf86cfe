package core

import "math"

// Clamp limits value to the inclusive range [min, max].
// NaN is mapped to min so clamped outputs are always finite.
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min || math.IsNaN(value) {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * mathLog10(linear)
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// FlooredDB converts a linear amplitude to dB with a silence floor.
//
// Amplitudes at or below threshold map to floorDB. Everything else is
// 20*log10(amplitude) clamped to [floorDB, ceilDB].
func FlooredDB(amplitude, threshold, floorDB, ceilDB float64) float64 {
	if !(amplitude > threshold) {
		return floorDB
	}

	return Clamp(LinearToDB(amplitude), floorDB, ceilDB)
}

// WrapPhase folds an angle in radians into (-pi, pi] by repeated 2*pi steps.
func WrapPhase(phase float64) float64 {
	if !IsFinite(phase) {
		return 0
	}

	for phase <= -math.Pi {
		phase += 2 * math.Pi
	}

	for phase > math.Pi {
		phase -= 2 * math.Pi
	}

	return phase
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
