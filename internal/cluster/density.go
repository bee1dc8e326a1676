// Package cluster implements adaptive proximity-based variant filtering.
// A first pass over the input estimates a per-region variant density, that
// density is converted into a minimum safe inter-variant spacing, and a
// second pass removes chains of variants packed more tightly than the
// spacing allows.
package cluster

import (
	"fmt"

	"go.uber.org/zap"

	"vcfclean/internal/genome"
	"vcfclean/internal/vcf"
)

const (
	// fallbackTargetLength stands in for the target chromosome length when
	// neither the length table nor the data offer one.
	fallbackTargetLength = 1_000_000

	// fallbackGenomeLength is the empirical background genome size used
	// when the length table has no non-target chromosomes.
	fallbackGenomeLength = 372_000_000

	// minDensity floors a computed density of exactly zero so threshold
	// math never divides by zero.
	minDensity = 1e-6

	// negligibleDensity is the cutoff below which Threshold skips the
	// exponential inversion entirely.
	negligibleDensity = 1e-9
)

// RecordSource yields VCF records in file order. nil, nil signals end of input.
type RecordSource interface {
	Next() (*vcf.Record, error)
}

// Estimator accumulates per-region variant counts over a full scan of the
// input and derives region densities from them.
type Estimator struct {
	target  string
	lengths genome.LengthTable
	logger  *zap.Logger

	countTarget  int64
	countOther   int64
	maxPosTarget int64
	maxPosOther  int64
}

// NewEstimator creates an estimator for the given target chromosome.
func NewEstimator(target string, lengths genome.LengthTable) *Estimator {
	return &Estimator{
		target:  target,
		lengths: lengths,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for fallback warnings.
func (e *Estimator) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Scan consumes the full record stream, classifying each record by whether
// its chromosome is the target.
func (e *Estimator) Scan(src RecordSource) error {
	for {
		rec, err := src.Next()
		if err != nil {
			return fmt.Errorf("density scan: %w", err)
		}
		if rec == nil {
			return nil
		}
		if rec.IsComment {
			continue
		}

		if rec.Chrom == e.target {
			e.countTarget++
			if rec.Pos > e.maxPosTarget {
				e.maxPosTarget = rec.Pos
			}
		} else {
			e.countOther++
			if rec.Pos > e.maxPosOther {
				e.maxPosOther = rec.Pos
			}
		}
	}
}

// Counts returns the number of records seen per region.
func (e *Estimator) Counts() (target, other int64) {
	return e.countTarget, e.countOther
}

// Densities converts the scan counts into per-region variant densities
// (variants per base). Missing lengths fall back to the observed maximum
// position, then to fixed constants; a density of exactly zero is floored
// to a small positive value.
func (e *Estimator) Densities() (target, other float64) {
	lenTarget := e.lengths[e.target]
	if lenTarget == 0 {
		if e.maxPosTarget > 0 {
			e.logger.Warn("target chromosome length unknown, estimating from max position",
				zap.String("chrom", e.target),
				zap.Int64("max_pos", e.maxPosTarget))
			lenTarget = e.maxPosTarget
		} else {
			lenTarget = fallbackTargetLength
		}
	}

	lenOther := e.lengths.SumExcept(e.target)
	if lenOther == 0 {
		e.logger.Warn("no background chromosome lengths available, using empirical genome size",
			zap.Int64("fallback_bases", fallbackGenomeLength))
		lenOther = fallbackGenomeLength
	}

	target = float64(e.countTarget) / float64(lenTarget)
	other = float64(e.countOther) / float64(lenOther)

	if target == 0 {
		target = minDensity
	}
	if other == 0 {
		other = minDensity
	}
	return target, other
}
