package cluster

import "math"

// Threshold converts a variant density into the minimum inter-variant
// spacing (in bases) below which two calls are too close to be incidental.
//
// Spacing under a random Poisson process with the given rate is
// exponentially distributed; the spacing d at which the cumulative
// probability of a random gap reaches p is d = -ln(1-p)/density. The result
// never drops below minThreshold, which guards against degenerate near-zero
// thresholds on very sparse regions.
func Threshold(density, p float64, minThreshold int64) int64 {
	if density <= negligibleDensity {
		return minThreshold
	}

	calc := int64(-math.Log(1-p) / density)
	if calc < minThreshold {
		return minThreshold
	}
	return calc
}
