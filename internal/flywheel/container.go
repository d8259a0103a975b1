// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flywheel

import (
	"context"

	"github.com/naccdata/nacc-common/pkg/types"
)

// Container types returned by the platform.
const (
	TypeGroup   = "group"
	TypeProject = "project"
	TypeSubject = "subject"
	TypeSession = "session"
	TypeAcq     = "acquisition"
)

// Container is the subset of a platform container record the tools read.
type Container struct {
	ID    string         `json:"_id"`
	Type  string         `json:"container_type,omitempty"`
	Label string         `json:"label"`
	Group string         `json:"group,omitempty"`
	Info  map[string]any `json:"info"`
	Files []File         `json:"files"`
}

// File is a file attached to a container.
type File struct {
	FileID string         `json:"file_id"`
	ID     string         `json:"_id"`
	Name   string         `json:"name"`
	Info   map[string]any `json:"info"`
}

// Record converts f to the platform-neutral file record. Older API versions
// report the identifier as _id rather than file_id.
func (f File) Record() types.FileRecord {
	id := f.FileID
	if id == "" {
		id = f.ID
	}
	return types.FileRecord{ID: id, Name: f.Name, Info: f.Info}
}

// Project is a project container bound to the client that loaded it. It
// satisfies qc.Project.
type Project struct {
	client    *Client
	container Container
}

// ID returns the project's container ID.
func (p *Project) ID() string { return p.container.ID }

// Label returns the project's label.
func (p *Project) Label() string { return p.container.Label }

// Group returns the ID of the group owning the project.
func (p *Project) Group() string { return p.container.Group }

// Files reloads the project and returns its current files.
func (p *Project) Files(ctx context.Context) ([]types.FileRecord, error) {
	current, err := p.client.Reload(ctx, &p.container)
	if err != nil {
		return nil, err
	}
	p.container = *current
	p.client.logger.Debugw("reloaded project",
		"project", p.container.Label, "id", p.container.ID, "files", len(current.Files))

	records := make([]types.FileRecord, 0, len(current.Files))
	for _, f := range current.Files {
		records = append(records, f.Record())
	}
	return records, nil
}

// Info returns the project's custom metadata as of the last reload.
func (p *Project) Info() map[string]any { return p.container.Info }

func collection(containerType string) string {
	return containerType + "s"
}

func typeForDepth(depth int) string {
	switch depth {
	case 1:
		return TypeGroup
	case 2:
		return TypeProject
	case 3:
		return TypeSubject
	case 4:
		return TypeSession
	default:
		return TypeAcq
	}
}
