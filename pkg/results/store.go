// Package results persists stage results to SQLite so long pipelines can be
// inspected after the fact.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/astrofit-go/pkg/analysis"
	"github.com/XiaoConstantine/astrofit-go/pkg/errors"
)

// Store is a SQLite-backed result log. It implements pipeline.Recorder.
type Store struct {
	db *sql.DB
}

// Record is one persisted stage result.
type Record struct {
	ID          int64
	Pipeline    string
	Stage       string
	RunID       string
	Score       float64
	Evaluations int
	Entities    string // JSON summary of the reconstructed entities
	CreatedAt   time.Time
}

// Open creates or opens a store at the given path. ":memory:" works for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ResourceNotFound, "opening results database")
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS stage_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pipeline TEXT NOT NULL,
		stage TEXT NOT NULL,
		run_id TEXT NOT NULL,
		score REAL NOT NULL,
		evaluations INTEGER NOT NULL,
		entities TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_stage_results_pipeline ON stage_results(pipeline);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.Unknown, "initializing results schema")
	}

	return &Store{db: db}, nil
}

type entitySummary struct {
	LensGalaxies    []any `json:"lens_galaxies"`
	SourceGalaxies  []any `json:"source_galaxies"`
	Pixelization    any   `json:"pixelization,omitempty"`
	Instrumentation any   `json:"instrumentation,omitempty"`
}

// Record persists one stage result.
func (s *Store) Record(ctx context.Context, pipeline, stage string, result *analysis.Result) error {
	summary, err := json.Marshal(entitySummary{
		LensGalaxies:    result.LensGalaxies,
		SourceGalaxies:  result.SourceGalaxies,
		Pixelization:    result.Pixelization,
		Instrumentation: result.Instrumentation,
	})
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "encoding entity summary")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO stage_results (pipeline, stage, run_id, score, evaluations, entities) VALUES (?, ?, ?, ?, ?, ?)`,
		pipeline, stage, result.RunID, result.Score, result.Evaluations, string(summary))
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "inserting stage result")
	}
	return nil
}

// ListByPipeline returns every record for a pipeline in insertion order.
func (s *Store) ListByPipeline(ctx context.Context, pipeline string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pipeline, stage, run_id, score, evaluations, entities, created_at
		 FROM stage_results WHERE pipeline = ? ORDER BY id`, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "querying stage results")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Pipeline, &r.Stage, &r.RunID, &r.Score, &r.Evaluations, &r.Entities, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.Unknown, "scanning stage result")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Best returns the highest-scoring record for a pipeline.
func (s *Store) Best(ctx context.Context, pipeline string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, pipeline, stage, run_id, score, evaluations, entities, created_at
		 FROM stage_results WHERE pipeline = ? ORDER BY score DESC, id LIMIT 1`, pipeline)

	var r Record
	err := row.Scan(&r.ID, &r.Pipeline, &r.Stage, &r.RunID, &r.Score, &r.Evaluations, &r.Entities, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "no results recorded for pipeline"),
			errors.Fields{"pipeline": pipeline})
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "scanning best result")
	}
	return &r, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
