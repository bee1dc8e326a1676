// Package genome provides chromosome length lookup for density estimation.
package genome

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LengthTable maps chromosome names to their length in bases.
type LengthTable map[string]int64

// ReadFai reads chromosome lengths from a samtools faidx index file.
// Each line is name<TAB>length<TAB>...; rows with a malformed length are
// skipped. A missing or unreadable file is an error — when a fai path is
// given explicitly it is a configuration problem, not something to paper
// over with header fallbacks.
func ReadFai(path string) (LengthTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fai index: %w", err)
	}
	defer f.Close()

	table := make(LengthTable)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		length, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		table[parts[0]] = length
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read fai index: %w", err)
	}

	return table, nil
}

// Merge combines a fai-derived table with header-derived contig lengths.
// Fai entries win; header entries only fill chromosomes the index lacks.
func Merge(fai, header LengthTable) LengthTable {
	merged := make(LengthTable, len(fai)+len(header))
	for chrom, length := range fai {
		merged[chrom] = length
	}
	for chrom, length := range header {
		if _, ok := merged[chrom]; !ok {
			merged[chrom] = length
		}
	}
	return merged
}

// SumExcept returns the total length of every chromosome except the named one.
func (t LengthTable) SumExcept(chrom string) int64 {
	var total int64
	for c, l := range t {
		if c != chrom {
			total += l
		}
	}
	return total
}
