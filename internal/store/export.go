// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.yaml.in/yaml/v3"

	"github.com/naccdata/nacc-common/pkg/types"
)

const exportsDir = "exports"

// ExportEntry is a run together with its rows.
type ExportEntry struct {
	Run  Run         `json:"run" yaml:"run"`
	Rows []types.Row `json:"rows" yaml:"rows"`
}

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Export loads a run with all of its rows.
func (s *Store) Export(ctx context.Context, runID string) (*ExportEntry, error) {
	run, err := s.Run(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, errors.Wrapf(ErrRunNotFound, "run %s", runID)
	}
	rows, err := s.Rows(ctx, runID, RowFilter{})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []types.Row{}
	}
	return &ExportEntry{Run: *run, Rows: rows}, nil
}

// ExportYAML writes the run to <dir>/exports/<run-id>.yaml and returns the
// path written.
func (s *Store) ExportYAML(ctx context.Context, runID string) (string, error) {
	entry, err := s.Export(ctx, runID)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(entry)
	if err != nil {
		return "", errors.Wrap(err, "marshaling YAML")
	}
	return s.writeExport(runID+".yaml", data)
}

// ExportJSON writes the run to <dir>/exports/<run-id>.json and returns the
// path written.
func (s *Store) ExportJSON(ctx context.Context, runID string) (string, error) {
	entry, err := s.Export(ctx, runID)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshaling JSON")
	}
	return s.writeExport(runID+".json", data)
}

func (s *Store) writeExport(name string, data []byte) (string, error) {
	dir := filepath.Join(s.dir, exportsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating exports directory")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	return path, nil
}
