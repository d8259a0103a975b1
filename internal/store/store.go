// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps a history of QC report runs in SQLite. Each run
// records which project was reported on, the kind of report, and the rows
// it produced. History is write-and-browse only; extraction never reads it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/naccdata/nacc-common/pkg/types"
)

const dbFile = "qc.db"

// Kind names the report a run produced.
type Kind string

const (
	KindErrors Kind = "errors"
	KindStatus Kind = "status"
)

// Run describes one saved report.
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	Project   string    `json:"project" yaml:"project"`
	Kind      Kind      `json:"kind" yaml:"kind"`
	Source    string    `json:"source" yaml:"source"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	RowCount  int       `json:"row_count" yaml:"row_count"`
}

// Store manages the history database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates the history database at cfg.Dir/qc.db.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating store directory")
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			project TEXT NOT NULL,
			kind TEXT NOT NULL,
			source TEXT,
			created_ns INTEGER NOT NULL,
			row_count INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project, kind, created_ns)`,
		`CREATE TABLE IF NOT EXISTS run_rows (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			file_id TEXT,
			file_name TEXT,
			gear TEXT,
			status TEXT,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_run ON run_rows(run_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_gear ON run_rows(gear)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(err, "executing schema statement")
		}
	}
	return nil
}

// Save records a run and its rows in one transaction and returns the run.
func (s *Store) Save(ctx context.Context, project string, kind Kind, source string, rows []types.Row) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Project:   project,
		Kind:      kind,
		Source:    source,
		CreatedAt: s.now().UTC(),
		RowCount:  len(rows),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, project, kind, source, created_ns, row_count) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Project, string(run.Kind), run.Source, run.CreatedAt.UnixNano(), run.RowCount,
	); err != nil {
		return Run{}, errors.Wrap(err, "inserting run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_rows (run_id, seq, file_id, file_name, gear, status, data) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, errors.Wrap(err, "preparing row insert")
	}
	defer stmt.Close()

	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return Run{}, errors.Wrapf(err, "encoding row %d", i)
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, i,
			stringField(row, "id"), stringField(row, "name"),
			stringField(row, "gear"), nullableField(row, "status"),
			string(data),
		); err != nil {
			return Run{}, errors.Wrapf(err, "inserting row %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, errors.Wrap(err, "committing run")
	}
	return run, nil
}

// RunQuery selects runs. Empty fields match everything.
type RunQuery struct {
	Project string
	Kind    Kind
	// Limit defaults to the store's configured maximum.
	Limit int
}

// Runs lists runs newest first.
func (s *Store) Runs(ctx context.Context, q RunQuery) ([]Run, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	var conds []string
	var args []any
	if q.Project != "" {
		conds = append(conds, "project = ?")
		args = append(args, q.Project)
	}
	if q.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(q.Kind))
	}
	query := `SELECT id, project, kind, source, created_ns, row_count FROM runs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_ns DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Run returns the run with the given ID, or nil if there is none.
func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project, kind, source, created_ns, row_count FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Latest returns the newest run for project and kind, or nil if there is
// none.
func (s *Store) Latest(ctx context.Context, project string, kind Kind) (*Run, error) {
	runs, err := s.Runs(ctx, RunQuery{Project: project, Kind: kind, Limit: 1})
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// RowFilter narrows the rows returned for a run. Empty fields match
// everything.
type RowFilter struct {
	Gear   string
	FileID string
	Status types.QCStatus
}

// Rows returns a run's rows in the order they were saved. Numbers decode
// as float64.
func (s *Store) Rows(ctx context.Context, runID string, f RowFilter) ([]types.Row, error) {
	conds := []string{"run_id = ?"}
	args := []any{runID}
	if f.Gear != "" {
		conds = append(conds, "gear = ?")
		args = append(args, f.Gear)
	}
	if f.FileID != "" {
		conds = append(conds, "file_id = ?")
		args = append(args, f.FileID)
	}
	if f.Status != types.StatusUnset {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM run_rows WHERE `+strings.Join(conds, " AND ")+` ORDER BY seq`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying rows")
	}
	defer rows.Close()

	var out []types.Row
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "scanning row")
		}
		var row types.Row
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			return nil, errors.Wrap(err, "decoding row")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run       Run
		kind      string
		source    sql.NullString
		createdNS int64
	)
	if err := sc.Scan(&run.ID, &run.Project, &kind, &source, &createdNS, &run.RowCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, errors.Wrap(err, "scanning run")
	}
	run.Kind = Kind(kind)
	run.Source = source.String
	run.CreatedAt = time.Unix(0, createdNS).UTC()
	return run, nil
}

func stringField(row types.Row, key string) string {
	s, _ := row[key].(string)
	return s
}

func nullableField(row types.Row, key string) sql.NullString {
	switch v := row[key].(type) {
	case string:
		return sql.NullString{String: v, Valid: true}
	case types.QCStatus:
		return sql.NullString{String: string(v), Valid: v.IsSet()}
	default:
		return sql.NullString{}
	}
}
