package cluster

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcfclean/internal/genome"
	"vcfclean/internal/vcf"
)

func TestEstimator_Densities(t *testing.T) {
	lengths := genome.LengthTable{"ChrX": 100, "Chr2": 1000, "Chr3": 1000}
	e := NewEstimator("ChrX", lengths)

	var recs []*vcf.Record
	for pos := int64(10); pos <= 100; pos += 10 {
		recs = append(recs, rec("ChrX", pos))
	}
	recs = append(recs, rec("Chr2", 500))

	require.NoError(t, e.Scan(&sliceSource{recs: recs}))

	target, other := e.Densities()
	assert.InDelta(t, 0.1, target, 1e-12)
	assert.InDelta(t, 1.0/2000.0, other, 1e-12)

	countTarget, countOther := e.Counts()
	assert.Equal(t, int64(10), countTarget)
	assert.Equal(t, int64(1), countOther)
}

func TestEstimator_MaxPositionFallback(t *testing.T) {
	// No length table entry for the target: fall back to the observed
	// maximum position.
	e := NewEstimator("ChrX", genome.LengthTable{})

	recs := []*vcf.Record{rec("ChrX", 100), rec("ChrX", 5000)}
	require.NoError(t, e.Scan(&sliceSource{recs: recs}))

	target, _ := e.Densities()
	assert.InDelta(t, 2.0/5000.0, target, 1e-12)
}

func TestEstimator_ConstantFallbacks(t *testing.T) {
	// Empty input and empty table: fixed constants keep densities finite
	// and strictly positive.
	e := NewEstimator("ChrX", genome.LengthTable{})
	require.NoError(t, e.Scan(&sliceSource{}))

	target, other := e.Densities()
	assert.Equal(t, minDensity, target)
	assert.Equal(t, minDensity, other)
}

func TestEstimator_SkipsComments(t *testing.T) {
	e := NewEstimator("ChrX", genome.LengthTable{"ChrX": 100})

	recs := []*vcf.Record{
		{Raw: "#stray", IsComment: true},
		rec("ChrX", 50),
	}
	require.NoError(t, e.Scan(&sliceSource{recs: recs}))

	countTarget, countOther := e.Counts()
	assert.Equal(t, int64(1), countTarget)
	assert.Equal(t, int64(0), countOther)
}

// TestEvenlySpacedTargetAllRemoved walks the whole pipeline: 10 variants
// spaced exactly 10 bases apart on a 100-base target chromosome produce a
// density of 0.1/base, whose raw threshold (≈0.51) is floored to 10; every
// adjacent gap equals the floor, so the entire chromosome is one chain.
func TestEvenlySpacedTargetAllRemoved(t *testing.T) {
	var b strings.Builder
	b.WriteString("##fileformat=VCFv4.2\n")
	b.WriteString("##contig=<ID=ChrX,length=100>\n")
	b.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	for pos := 10; pos <= 100; pos += 10 {
		b.WriteString(rec("ChrX", int64(pos)).Raw + "\n")
	}
	input := b.String()

	// Pass 1: density estimation.
	r1, err := vcf.NewReaderFrom(strings.NewReader(input))
	require.NoError(t, err)
	lengths := genome.Merge(nil, vcf.ContigLengths(r1.Header()))
	est := NewEstimator("ChrX", lengths)
	require.NoError(t, est.Scan(r1))

	target, other := est.Densities()
	assert.InDelta(t, 0.1, target, 1e-12)

	threshTarget := Threshold(target, 0.05, 10)
	threshOther := Threshold(other, 0.05, 10)
	assert.Equal(t, int64(10), threshTarget)

	// Pass 2: filtering.
	r2, err := vcf.NewReaderFrom(strings.NewReader(input))
	require.NoError(t, err)

	var out bytes.Buffer
	engine := NewEngine(&out, "ChrX", threshTarget, threshOther)
	require.NoError(t, engine.Run(r2))

	assert.Equal(t, Summary{Kept: 0, Removed: 10}, engine.Summary())
	assert.Empty(t, out.String())
}
