package vcf

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	contigIDRe  = regexp.MustCompile(`ID=([^,>]+)`)
	contigLenRe = regexp.MustCompile(`length=(\d+)`)
)

// ContigLengths extracts chromosome lengths from ##contig header lines.
// Lines declaring only an ID, or with a malformed length, are ignored.
func ContigLengths(header []string) map[string]int64 {
	lengths := make(map[string]int64)

	for _, line := range header {
		if !strings.HasPrefix(line, "##contig") {
			continue
		}

		idMatch := contigIDRe.FindStringSubmatch(line)
		lenMatch := contigLenRe.FindStringSubmatch(line)
		if idMatch == nil || lenMatch == nil {
			continue
		}

		length, err := strconv.ParseInt(lenMatch[1], 10, 64)
		if err != nil {
			continue
		}
		lengths[idMatch[1]] = length
	}

	return lengths
}
