// Package depth computes per-record depth-of-coverage statistics and
// recommends DP filter thresholds.
package depth

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"vcfclean/internal/vcf"
)

// minDPFloor is the absolute lower bound on the recommended minDP, guarding
// against near-zero cutoffs on very shallow sequencing.
const minDPFloor = 5

// maxBalancedRatio is the largest DR/DV imbalance accepted when summing
// supporting reads in SV mode.
const maxBalancedRatio = 3.0

// Collector extracts usable depth values from records.
type Collector struct {
	sv     bool
	values []int
}

// NewCollector creates a depth collector. With sv set, records lacking a
// usable FORMAT/DP fall back to balanced DR+DV extraction (cuteSV and
// Sniffles2 style callers report supporting reads instead of DP).
func NewCollector(sv bool) *Collector {
	return &Collector{sv: sv}
}

// Add extracts a depth value from the record's first sample, if present.
func (c *Collector) Add(rec *vcf.Record) {
	if rec.IsComment {
		return
	}
	fields := rec.Fields()
	if len(fields) < 10 {
		return
	}

	keys := strings.Split(fields[8], ":")
	vals := strings.Split(fields[9], ":")

	if dp, ok := lookupInt(keys, vals, "DP"); ok {
		if !c.sv {
			c.values = append(c.values, dp)
			return
		}
		if dp > 0 {
			c.values = append(c.values, dp)
			return
		}
	}

	if !c.sv {
		return
	}

	// Balanced DR+DV: only counted when both are nonzero and the imbalance
	// stays within maxBalancedRatio, which excludes homozygous calls and
	// heavily skewed supporting-read counts.
	dr, okDR := lookupInt(keys, vals, "DR")
	dv, okDV := lookupInt(keys, vals, "DV")
	if !okDR || !okDV || dr <= 0 || dv <= 0 {
		return
	}
	ratio := float64(max(dr, dv)) / float64(min(dr, dv))
	if ratio <= maxBalancedRatio {
		c.values = append(c.values, dr+dv)
	}
}

// Values returns the collected depth values.
func (c *Collector) Values() []int {
	return c.values
}

func lookupInt(keys, vals []string, key string) (int, bool) {
	for i, k := range keys {
		if k != key {
			continue
		}
		if i >= len(vals) || vals[i] == "." {
			return 0, false
		}
		n, err := strconv.Atoi(vals[i])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Stats holds an immutable, sorted sample of depth values.
type Stats struct {
	sorted []int
}

// ErrNoValues reports that the input contained no usable depth fields.
var ErrNoValues = errors.New("no usable DP values found")

// NewStats sorts the values and wraps them for quantile queries.
func NewStats(values []int) (*Stats, error) {
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	return &Stats{sorted: sorted}, nil
}

// Count returns the number of values.
func (s *Stats) Count() int { return len(s.sorted) }

// Min returns the smallest value.
func (s *Stats) Min() int { return s.sorted[0] }

// Max returns the largest value.
func (s *Stats) Max() int { return s.sorted[len(s.sorted)-1] }

// Mean returns the arithmetic mean.
func (s *Stats) Mean() float64 {
	var sum int64
	for _, v := range s.sorted {
		sum += int64(v)
	}
	return float64(sum) / float64(len(s.sorted))
}

// Median returns the 0.5 quantile.
func (s *Stats) Median() float64 { return s.Quantile(0.5) }

// Quantile returns the q-th quantile with linear interpolation between
// adjacent order statistics.
func (s *Stats) Quantile(q float64) float64 {
	if q <= 0 {
		return float64(s.sorted[0])
	}
	if q >= 1 {
		return float64(s.sorted[len(s.sorted)-1])
	}
	idx := q * float64(len(s.sorted)-1)
	lo := int(math.Floor(idx))
	frac := idx - float64(lo)
	if lo+1 >= len(s.sorted) {
		return float64(s.sorted[lo])
	}
	return float64(s.sorted[lo]) + frac*float64(s.sorted[lo+1]-s.sorted[lo])
}

// Recommendation is the strict high-confidence DP window.
type Recommendation struct {
	MinDP int
	MaxDP int
}

// Recommend anchors the filter window on the median: [0.5x, 2.0x], with the
// lower bound floored at minDPFloor.
func (s *Stats) Recommend() Recommendation {
	median := s.Median()
	minDP := int(median * 0.5)
	if minDP < minDPFloor {
		minDP = minDPFloor
	}
	return Recommendation{MinDP: minDP, MaxDP: int(median * 2.0)}
}
