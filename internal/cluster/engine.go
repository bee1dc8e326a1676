package cluster

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"vcfclean/internal/vcf"
)

// pending is a record whose keep/discard fate is not yet settled. keep only
// ever flips true to false.
type pending struct {
	chrom string
	pos   int64
	raw   string
	keep  bool
}

// Summary reports the outcome of a filtering run.
type Summary struct {
	Kept    int64
	Removed int64
}

// Engine streams records through the proximity filter. It holds the pending
// buffer for the chromosome currently being scanned; records are emitted in
// arrival order as soon as nothing still in flight can conflict with them.
// Input must arrive in non-decreasing position order within each chromosome.
type Engine struct {
	out          io.Writer
	target       string
	threshTarget int64
	threshOther  int64
	logger       *zap.Logger

	buffer  []*pending
	kept    int64
	removed int64
}

// NewEngine creates a filter engine writing kept records to out.
func NewEngine(out io.Writer, target string, threshTarget, threshOther int64) *Engine {
	return &Engine{
		out:          out,
		target:       target,
		threshTarget: threshTarget,
		threshOther:  threshOther,
		logger:       zap.NewNop(),
	}
}

// SetLogger sets the logger for diagnostic messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Process feeds one record through the filter. Comment lines pass through
// immediately and are not counted.
func (e *Engine) Process(rec *vcf.Record) error {
	if rec.IsComment {
		return e.emit(rec.Raw)
	}

	thresh := e.threshOther
	if rec.Chrom == e.target {
		thresh = e.threshTarget
	}

	cur := &pending{chrom: rec.Chrom, pos: rec.Pos, raw: rec.Raw, keep: true}

	next := make([]*pending, 0, len(e.buffer)+1)
	for _, prev := range e.buffer {
		if prev.chrom != cur.chrom {
			// Chromosome closed; nothing later can conflict with prev.
			if err := e.resolve(prev); err != nil {
				return err
			}
			continue
		}

		dist := cur.pos - prev.pos
		if dist > thresh {
			if err := e.resolve(prev); err != nil {
				return err
			}
			continue
		}

		// Conflict: both members of the chain are condemned, but prev stays
		// buffered in case it also conflicts with later records.
		if prev.keep {
			e.logger.Debug("cluster conflict",
				zap.String("chrom", cur.chrom),
				zap.Int64("pos", cur.pos),
				zap.Int64("prev_pos", prev.pos),
				zap.Int64("dist", dist))
		}
		prev.keep = false
		cur.keep = false
		next = append(next, prev)
	}

	e.buffer = append(next, cur)
	return nil
}

// Flush drains the pending buffer at end of input.
func (e *Engine) Flush() error {
	for _, p := range e.buffer {
		if err := e.resolve(p); err != nil {
			return err
		}
	}
	e.buffer = nil
	return nil
}

// Run streams every record from src through the filter and flushes.
func (e *Engine) Run(src RecordSource) error {
	for {
		rec, err := src.Next()
		if err != nil {
			return fmt.Errorf("filter pass: %w", err)
		}
		if rec == nil {
			break
		}
		if err := e.Process(rec); err != nil {
			return err
		}
	}
	return e.Flush()
}

// Summary returns the kept/removed totals accumulated so far.
func (e *Engine) Summary() Summary {
	return Summary{Kept: e.kept, Removed: e.removed}
}

func (e *Engine) resolve(p *pending) error {
	if !p.keep {
		e.removed++
		return nil
	}
	if err := e.emit(p.raw); err != nil {
		return err
	}
	e.kept++
	return nil
}

func (e *Engine) emit(line string) error {
	if _, err := io.WriteString(e.out, line+"\n"); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
