package depth

import (
	"fmt"
	"io"
	"strings"
)

const (
	histogramBins  = 60
	histogramWidth = 50
)

var quantileLevels = []struct {
	name string
	q    float64
}{
	{"P1", 0.01},
	{"P5", 0.05},
	{"P10", 0.10},
	{"P25", 0.25},
	{"Median(P50)", 0.50},
	{"P75", 0.75},
	{"P90", 0.90},
	{"P95", 0.95},
	{"P99", 0.99},
	{"P99.5", 0.995},
}

// displayMax picks the histogram's upper edge: wide enough to show the max
// cutoff and the P99 tail, but capped so an extreme tail cannot flatten the
// main peak.
func (s *Stats) displayMax(rec Recommendation) float64 {
	median := s.Median()
	m := float64(rec.MaxDP) * 1.5
	if p99 := s.Quantile(0.99); p99 > m {
		m = p99
	}
	if m > median*5 {
		m = median * 5
	}
	return m
}

// Histogram bins the values into bins equal-width buckets over [0, upper].
// The final bucket is closed on the right so a value sitting exactly on the
// upper edge still shows in the plot; values beyond upper are dropped.
func (s *Stats) Histogram(bins int, upper float64) []int {
	counts := make([]int, bins)
	if upper <= 0 {
		return counts
	}
	width := upper / float64(bins)
	for _, v := range s.sorted {
		fv := float64(v)
		if fv < 0 || fv > upper {
			continue
		}
		bin := int(fv / width)
		if bin >= bins {
			bin = bins - 1
		}
		counts[bin]++
	}
	return counts
}

// WriteReport renders the full depth report: summary stats, quantiles, the
// recommended strict filter window, an ASCII histogram with median and
// cutoff markers, and an example bcftools command.
func WriteReport(w io.Writer, s *Stats, inputPath string) {
	rec := s.Recommend()
	median := s.Median()

	fmt.Fprintf(w, "==== DP Statistics ====\n")
	fmt.Fprintf(w, "Total variants : %d\n", s.Count())
	fmt.Fprintf(w, "Min DP         : %d\n", s.Min())
	fmt.Fprintf(w, "Mean DP        : %.2f\n", s.Mean())
	fmt.Fprintf(w, "Max DP         : %d\n", s.Max())

	fmt.Fprintf(w, "\n---- Quantiles Distribution ----\n")
	for _, ql := range quantileLevels {
		fmt.Fprintf(w, "%-12s: %.2f\n", ql.name, s.Quantile(ql.q))
	}

	fmt.Fprintf(w, "\n==== Recommended Filters (Strict / High Confidence) ====\n")
	fmt.Fprintf(w, "Anchor (Median): %.2f\n", median)
	fmt.Fprintf(w, "Strategy       : [ 0.5 * Median, 2.0 * Median ]\n")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "Suggested minDP : %d\n", rec.MinDP)
	fmt.Fprintf(w, "Suggested maxDP : %d\n", rec.MaxDP)
	fmt.Fprintln(w, strings.Repeat("-", 40))

	fmt.Fprintf(w, "\n==== DP Histogram (Cutoff Preview: %d-%d) ====\n", rec.MinDP, rec.MaxDP)
	upper := s.displayMax(rec)
	counts := s.Histogram(histogramBins, upper)

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	scale := 1.0
	if maxCount > 0 {
		scale = float64(histogramWidth) / float64(maxCount)
	}

	binWidth := upper / float64(histogramBins)
	for i, c := range counts {
		lowEdge := int(float64(i) * binWidth)
		highEdge := int(float64(i+1) * binWidth)
		bar := strings.Repeat("*", int(float64(c)*scale))

		var mark string
		if float64(lowEdge) <= median && median < float64(highEdge) {
			mark += " <--- Median"
		}
		if lowEdge <= rec.MinDP && rec.MinDP < highEdge {
			mark += " [Min Cutoff]"
		}
		if lowEdge <= rec.MaxDP && rec.MaxDP < highEdge {
			mark += " [Max Cutoff]"
		}

		fmt.Fprintf(w, "%3d-%3d | %s%s\n", lowEdge, highEdge, bar, mark)
	}

	fmt.Fprintf(w, "\n==== Example bcftools command ====\n")
	base := strings.TrimSuffix(inputPath, ".vcf.gz")
	base = strings.TrimSuffix(base, ".vcf")
	fmt.Fprintf(w, "bcftools filter -i 'FORMAT/DP>=%d && FORMAT/DP<=%d' \\\n", rec.MinDP, rec.MaxDP)
	fmt.Fprintf(w, "    %s -Oz -o %s.filtered.vcf.gz\n", inputPath, base)
}
