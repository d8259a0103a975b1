// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot reads and writes project exports: YAML documents holding
// a project's files and their custom metadata. A snapshot stands in for the
// platform when reports are produced offline.
package snapshot

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"github.com/naccdata/nacc-common/pkg/types"
)

// Snapshot is a point-in-time export of one project.
type Snapshot struct {
	Group      string             `yaml:"group" json:"group"`
	Project    string             `yaml:"project" json:"project"`
	ProjectID  string             `yaml:"project_id,omitempty" json:"project_id,omitempty"`
	ExportedAt time.Time          `yaml:"exported_at" json:"exported_at"`
	Info       map[string]any     `yaml:"info,omitempty" json:"info,omitempty"`
	Files      []types.FileRecord `yaml:"files" json:"files"`
}

// Path returns the group/project path of the snapshot.
func (s *Snapshot) Path() string {
	return s.Group + "/" + s.Project
}

// Load reads a snapshot from name on fsys. JSON exports are accepted too.
func Load(fsys afero.Fs, name string) (*Snapshot, error) {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading snapshot %s", name)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(err, "parsing snapshot %s", name)
	}
	return &snap, nil
}

// Write stores snap at name on fsys, creating parent directories.
func Write(fsys afero.Fs, name string, snap *Snapshot) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshaling snapshot")
	}
	if err := afero.WriteFile(fsys, name, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing snapshot %s", name)
	}
	return nil
}

// FileName returns the conventional file name for a project export.
func FileName(group, project string) string {
	return group + "_" + project + ".yaml"
}

// Project serves a snapshot file as a qc.Project. The file is re-read on
// every call so edits between calls are observed.
type Project struct {
	fsys afero.Fs
	name string
}

// NewProject returns a Project backed by the snapshot at name.
func NewProject(fsys afero.Fs, name string) *Project {
	return &Project{fsys: fsys, name: name}
}

// Files returns the snapshot's files.
func (p *Project) Files(ctx context.Context) ([]types.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := Load(p.fsys, p.name)
	if err != nil {
		return nil, err
	}
	return snap.Files, nil
}

// Dir resolves lookup paths against snapshots in a directory, so that
// group/project is read from group_project.yaml. It satisfies
// centers.MetadataReader.
type Dir struct {
	Fs   afero.Fs
	Root string
}

// LookupInfo returns the project info of the snapshot for lookupPath.
func (d Dir) LookupInfo(ctx context.Context, lookupPath string) (map[string]any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	group, project, ok := strings.Cut(path.Clean(lookupPath), "/")
	if !ok || group == "" || project == "" {
		return nil, false, errors.Newf("lookup path %q is not group/project", lookupPath)
	}
	name := filepath.Join(d.Root, FileName(group, project))
	snap, err := Load(d.Fs, name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return snap.Info, true, nil
}
