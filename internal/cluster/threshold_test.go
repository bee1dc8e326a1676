package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreshold_FloorsAtMinimum(t *testing.T) {
	// High density drives the raw threshold toward zero; the floor holds.
	assert.Equal(t, int64(10), Threshold(0.1, 0.05, 10))
	assert.GreaterOrEqual(t, Threshold(1.0, 0.05, 10), int64(10))
}

func TestThreshold_NegligibleDensity(t *testing.T) {
	assert.Equal(t, int64(10), Threshold(0, 0.05, 10))
	assert.Equal(t, int64(10), Threshold(1e-10, 0.05, 10))
	assert.Equal(t, int64(25), Threshold(negligibleDensity, 0.05, 25))
}

func TestThreshold_MonotonicInDensity(t *testing.T) {
	densities := []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 0.1, 1}

	var last int64 = 1 << 62
	for _, d := range densities {
		thresh := Threshold(d, 0.05, 1)
		assert.LessOrEqual(t, thresh, last, "threshold must not increase with density (d=%g)", d)
		assert.GreaterOrEqual(t, thresh, int64(1))
		last = thresh
	}
}

func TestThreshold_MonotonicInFloor(t *testing.T) {
	var last int64 = -1
	for _, m := range []int64{0, 1, 10, 100, 100000} {
		thresh := Threshold(1e-4, 0.05, m)
		assert.GreaterOrEqual(t, thresh, last)
		assert.GreaterOrEqual(t, thresh, m)
		last = thresh
	}
}

func TestThreshold_KnownValue(t *testing.T) {
	// -ln(0.95) / 1e-4 ≈ 512.9 bases.
	assert.Equal(t, int64(512), Threshold(1e-4, 0.05, 10))
}
