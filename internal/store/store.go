// Package store records cluster-filter run summaries in DuckDB so thresholds
// and removal rates can be compared across runs (queryable, append-only).
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for run summaries.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create stats directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS run_summaries (
		run_at TIMESTAMP,
		input VARCHAR,
		target_chrom VARCHAR,
		p_value DOUBLE,
		min_threshold BIGINT,
		density_target DOUBLE,
		density_other DOUBLE,
		threshold_target BIGINT,
		threshold_other BIGINT,
		kept BIGINT,
		removed BIGINT
	)`)
	return err
}

// RunSummary is one recorded cluster-filter invocation.
type RunSummary struct {
	RunAt           time.Time
	Input           string
	TargetChrom     string
	PValue          float64
	MinThreshold    int64
	DensityTarget   float64
	DensityOther    float64
	ThresholdTarget int64
	ThresholdOther  int64
	Kept            int64
	Removed         int64
}

// WriteRunSummary appends one run summary.
func (s *Store) WriteRunSummary(r RunSummary) error {
	_, err := s.db.Exec(`INSERT INTO run_summaries (
		run_at, input, target_chrom, p_value, min_threshold,
		density_target, density_other, threshold_target, threshold_other,
		kept, removed
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunAt, r.Input, r.TargetChrom, r.PValue, r.MinThreshold,
		r.DensityTarget, r.DensityOther, r.ThresholdTarget, r.ThresholdOther,
		r.Kept, r.Removed)
	if err != nil {
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

// ListRuns returns recorded runs, most recent first.
func (s *Store) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(`SELECT
		run_at, input, target_chrom, p_value, min_threshold,
		density_target, density_other, threshold_target, threshold_other,
		kept, removed
		FROM run_summaries ORDER BY run_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(
			&r.RunAt, &r.Input, &r.TargetChrom, &r.PValue, &r.MinThreshold,
			&r.DensityTarget, &r.DensityOther, &r.ThresholdTarget, &r.ThresholdOther,
			&r.Kept, &r.Removed,
		); err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
