// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package qc

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/naccdata/nacc-common/pkg/types"
)

// Project is a platform project whose files carry QC metadata.
type Project interface {
	// Files returns the project's files as currently stored on the
	// platform. Implementations refresh their state on every call.
	Files(ctx context.Context) ([]types.FileRecord, error)
}

// Options controls error row extraction.
type Options struct {
	// IncludePassed keeps the error entries of gears whose status is pass.
	// By default a passing gear contributes no error rows.
	IncludePassed bool
}

// ErrorRows flattens the error entries of every gear in the file's QC
// metadata into rows of the form {name, id, gear} plus the entry fields.
// Entry fields take precedence over the file fields on key collisions.
func ErrorRows(file types.FileRecord, opts Options) []types.Row {
	section := SectionOf(file)
	var rows []types.Row
	for _, gear := range section.Gears() {
		validation := section.Validation(gear)
		if validation.Status() == types.StatusPass && !opts.IncludePassed {
			continue
		}
		for _, entry := range validation.Entries() {
			row := types.Row{
				"name": file.Name,
				"id":   file.ID,
				"gear": gear,
			}
			for k, v := range entry.Flatten() {
				row[k] = v
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// StatusRows returns one status row per gear in the file's QC metadata.
func StatusRows(file types.FileRecord) []types.StatusRow {
	section := SectionOf(file)
	rows := make([]types.StatusRow, 0, len(section))
	for _, gear := range section.Gears() {
		rows = append(rows, types.StatusRow{
			Name:   file.Name,
			ID:     file.ID,
			Gear:   gear,
			Status: section.Validation(gear).Status(),
		})
	}
	return rows
}

// ExtractErrorRows returns the error rows of every file in the project
// that has QC metadata.
func ExtractErrorRows(ctx context.Context, project Project, opts Options) ([]types.Row, error) {
	files, err := qcFiles(ctx, project)
	if err != nil {
		return nil, err
	}
	var rows []types.Row
	for _, f := range files {
		rows = append(rows, ErrorRows(f, opts)...)
	}
	return rows, nil
}

// ExtractStatusRows returns the status rows of every file in the project
// that has QC metadata.
func ExtractStatusRows(ctx context.Context, project Project) ([]types.StatusRow, error) {
	files, err := qcFiles(ctx, project)
	if err != nil {
		return nil, err
	}
	var rows []types.StatusRow
	for _, f := range files {
		rows = append(rows, StatusRows(f)...)
	}
	return rows, nil
}

// qcFiles lists the project's files and keeps those with QC metadata.
func qcFiles(ctx context.Context, project Project) ([]types.FileRecord, error) {
	files, err := project.Files(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing project files")
	}
	var kept []types.FileRecord
	for _, f := range files {
		if !SectionOf(f).IsEmpty() {
			kept = append(kept, f)
		}
	}
	return kept, nil
}
