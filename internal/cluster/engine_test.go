package cluster

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcfclean/internal/vcf"
)

// sliceSource feeds records from a slice, mimicking a VCF reader.
type sliceSource struct {
	recs []*vcf.Record
	i    int
}

func (s *sliceSource) Next() (*vcf.Record, error) {
	if s.i >= len(s.recs) {
		return nil, nil
	}
	r := s.recs[s.i]
	s.i++
	return r, nil
}

func rec(chrom string, pos int64) *vcf.Record {
	return &vcf.Record{
		Chrom: chrom,
		Pos:   pos,
		Raw:   fmt.Sprintf("%s\t%d\t.\tA\tT\t30\tPASS\t.", chrom, pos),
	}
}

func runEngine(t *testing.T, recs []*vcf.Record, target string, threshTarget, threshOther int64) ([]string, Summary) {
	t.Helper()
	var out bytes.Buffer
	e := NewEngine(&out, target, threshTarget, threshOther)
	require.NoError(t, e.Run(&sliceSource{recs: recs}))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if out.Len() == 0 {
		lines = nil
	}
	return lines, e.Summary()
}

func TestEngine_ChainRemoval(t *testing.T) {
	// 10 and 15 conflict (distance 5 <= 20); 100 is independent.
	recs := []*vcf.Record{rec("Chr1", 10), rec("Chr1", 15), rec("Chr1", 100)}

	lines, sum := runEngine(t, recs, "Chr1", 20, 20)

	require.Len(t, lines, 1)
	assert.Equal(t, rec("Chr1", 100).Raw, lines[0])
	assert.Equal(t, Summary{Kept: 1, Removed: 2}, sum)
}

func TestEngine_BoundaryDistanceConflicts(t *testing.T) {
	// Distance exactly equal to the threshold is a conflict, not safe.
	recs := []*vcf.Record{rec("Chr1", 100), rec("Chr1", 110)}

	_, sum := runEngine(t, recs, "Chr1", 10, 10)

	assert.Equal(t, Summary{Kept: 0, Removed: 2}, sum)
}

func TestEngine_OrderPreserved(t *testing.T) {
	recs := []*vcf.Record{
		rec("Chr1", 100), rec("Chr1", 500), rec("Chr1", 900),
		rec("Chr2", 50), rec("Chr2", 800),
	}

	lines, sum := runEngine(t, recs, "Chr1", 50, 50)

	require.Len(t, lines, 5)
	for i, r := range recs {
		assert.Equal(t, r.Raw, lines[i])
	}
	assert.Equal(t, Summary{Kept: 5, Removed: 0}, sum)
}

func TestEngine_CrossChromosomeIndependence(t *testing.T) {
	// Interleaved chromosomes with overlapping positions never compare,
	// even with a threshold wider than every gap.
	recs := []*vcf.Record{
		rec("Chr1", 100), rec("Chr2", 102), rec("Chr1", 104), rec("Chr2", 106),
	}

	lines, sum := runEngine(t, recs, "Chr1", 1000, 1000)

	assert.Len(t, lines, 4)
	assert.Equal(t, Summary{Kept: 4, Removed: 0}, sum)
}

func TestEngine_TargetThresholdSelected(t *testing.T) {
	// Same spacing on both chromosomes; only the target's wide threshold
	// condemns its pair.
	recs := []*vcf.Record{
		rec("ChrSDR", 100), rec("ChrSDR", 200),
		rec("Chr2", 100), rec("Chr2", 200),
	}

	lines, sum := runEngine(t, recs, "ChrSDR", 150, 10)

	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Chr2\t"))
	assert.Equal(t, Summary{Kept: 2, Removed: 2}, sum)
}

func TestEngine_CommentPassThrough(t *testing.T) {
	recs := []*vcf.Record{
		rec("Chr1", 10),
		{Raw: "#stray", IsComment: true},
		rec("Chr1", 15),
	}

	lines, sum := runEngine(t, recs, "Chr1", 20, 20)

	require.Len(t, lines, 1)
	assert.Equal(t, "#stray", lines[0])
	assert.Equal(t, Summary{Kept: 0, Removed: 2}, sum)
}

func TestEngine_Idempotent(t *testing.T) {
	recs := []*vcf.Record{
		rec("Chr1", 10), rec("Chr1", 15), rec("Chr1", 100),
		rec("Chr1", 180), rec("Chr1", 185), rec("Chr1", 400),
		rec("Chr2", 30), rec("Chr2", 500),
	}

	first, _ := runEngine(t, recs, "Chr1", 20, 20)

	// Re-feed the surviving lines through a fresh engine.
	var again []*vcf.Record
	for _, line := range first {
		fields := strings.Split(line, "\t")
		var pos int64
		_, err := fmt.Sscanf(fields[1], "%d", &pos)
		require.NoError(t, err)
		again = append(again, &vcf.Record{Chrom: fields[0], Pos: pos, Raw: line})
	}

	second, sum := runEngine(t, again, "Chr1", 20, 20)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(0), sum.Removed)
}

func TestEngine_EmptyInput(t *testing.T) {
	lines, sum := runEngine(t, nil, "Chr1", 20, 20)

	assert.Empty(t, lines)
	assert.Equal(t, Summary{}, sum)
}
