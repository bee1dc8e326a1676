package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestWriteAndListRuns(t *testing.T) {
	s := openInMemory(t)

	first := RunSummary{
		RunAt:           time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Input:           "old.vcf.gz",
		TargetChrom:     "Chr1_RagTag",
		PValue:          0.05,
		MinThreshold:    10,
		DensityTarget:   0.01,
		DensityOther:    0.0002,
		ThresholdTarget: 10,
		ThresholdOther:  256,
		Kept:            9000,
		Removed:         1200,
	}
	second := first
	second.RunAt = time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	second.Input = "new.vcf.gz"
	second.Kept = 9100

	require.NoError(t, s.WriteRunSummary(first))
	require.NoError(t, s.WriteRunSummary(second))

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Most recent first.
	assert.Equal(t, "new.vcf.gz", runs[0].Input)
	assert.Equal(t, int64(9100), runs[0].Kept)
	assert.Equal(t, "old.vcf.gz", runs[1].Input)
	assert.Equal(t, int64(256), runs[1].ThresholdOther)
	assert.InDelta(t, 0.01, runs[1].DensityTarget, 1e-12)
}

func TestListRuns_Empty(t *testing.T) {
	s := openInMemory(t)

	runs, err := s.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
}
