// Package vcf provides streaming access to VCF files.
package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Record is a single data line from a VCF file. Only the chromosome and
// position are parsed; the rest of the line is carried verbatim in Raw so
// kept records can be re-emitted byte for byte.
type Record struct {
	Chrom     string
	Pos       int64 // 1-based genomic position
	Raw       string
	IsComment bool // a '#'-prefixed line seen after the header block
}

// Fields splits the raw line on tabs.
func (r *Record) Fields() []string {
	return strings.Split(r.Raw, "\t")
}

// Reader streams records from a VCF file.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     []string
	skipped    int
}

// NewReader opens a VCF reader for the given path.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files; use "-" for stdin.
func NewReader(path string) (*Reader, error) {
	if path == "-" {
		return NewReaderFrom(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	r := &Reader{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Seek back to beginning
	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	if buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}

	if err := r.readHeader(); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

// NewReaderFrom creates a reader from an io.Reader (e.g., stdin).
func NewReaderFrom(rd io.Reader) (*Reader, error) {
	r := &Reader{
		reader: bufio.NewReader(rd),
	}

	if err := r.readHeader(); err != nil {
		return nil, err
	}

	return r, nil
}

// readHeader consumes the leading '#'-prefixed lines. The header is assumed
// contiguous at the top of the file; scanning stops at the first data line,
// which is left in the buffer for Next.
func (r *Reader) readHeader() error {
	for {
		peek, err := r.reader.Peek(1)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read header: %w", err)
		}
		if peek[0] != '#' {
			return nil
		}

		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read header: %w", err)
		}
		r.lineNumber++
		r.header = append(r.header, strings.TrimRight(line, "\r\n"))
		if err == io.EOF {
			return nil
		}
	}
}

// Next returns the next record from the stream, or nil at end of input.
// Malformed data lines (fewer than two tab-separated fields, non-integer
// position) are skipped silently and counted; '#'-prefixed lines appearing
// after the header block come back with IsComment set so callers can pass
// them through untouched.
func (r *Reader) Next() (*Record, error) {
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read record line: %w", err)
		}
		atEOF := err == io.EOF

		if line != "" {
			r.lineNumber++
		}

		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			if atEOF {
				return nil, nil
			}
			continue
		}

		if trimmed[0] == '#' {
			return &Record{Raw: trimmed, IsComment: true}, nil
		}

		fields := strings.SplitN(trimmed, "\t", 3)
		if len(fields) < 2 {
			r.skipped++
			if atEOF {
				return nil, nil
			}
			continue
		}

		pos, perr := strconv.ParseInt(fields[1], 10, 64)
		if perr != nil {
			r.skipped++
			if atEOF {
				return nil, nil
			}
			continue
		}

		return &Record{Chrom: fields[0], Pos: pos, Raw: trimmed}, nil
	}
}

// Header returns the leading header lines, verbatim and in order.
func (r *Reader) Header() []string {
	return r.header
}

// Skipped returns the number of malformed data lines dropped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
