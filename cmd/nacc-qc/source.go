// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/naccdata/nacc-common/internal/flywheel"
	"github.com/naccdata/nacc-common/internal/logging"
	"github.com/naccdata/nacc-common/internal/qc"
	"github.com/naccdata/nacc-common/internal/report"
	"github.com/naccdata/nacc-common/internal/snapshot"
	"github.com/naccdata/nacc-common/internal/store"
	"github.com/naccdata/nacc-common/pkg/types"
)

const (
	sourcePlatform = "platform"
	sourceSnapshot = "snapshot"
)

// osFs is the filesystem used for snapshots and report files.
var osFs = afero.NewOsFs()

func newPlatformClient(cfg types.Config) (*flywheel.Client, error) {
	var opts []flywheel.Option
	if cfg.Platform.BaseURL != "" {
		opts = append(opts, flywheel.WithBaseURL(cfg.Platform.BaseURL))
	}
	return flywheel.NewClient(cfg.Platform, logging.Logger, opts...)
}

// reportSource is a project to report on and where it came from.
type reportSource struct {
	project qc.Project
	path    string
	kind    string
}

// openSource resolves the project named by args, the project with the
// container ID given by --project-id, or the snapshot given with --input.
func openSource(ctx context.Context, cmd *cobra.Command, args []string, cfg types.Config) (*reportSource, error) {
	input, _ := cmd.Flags().GetString("input")
	if input != "" {
		snap, err := snapshot.Load(osFs, input)
		if err != nil {
			return nil, err
		}
		path := snap.Path()
		if len(args) > 0 {
			path = args[0]
		}
		logging.Logger.Infow("reading project export", "file", input, "project", path)
		return &reportSource{project: snapshot.NewProject(osFs, input), path: path, kind: sourceSnapshot}, nil
	}

	projectID, _ := cmd.Flags().GetString("project-id")
	if len(args) == 0 && projectID == "" {
		return nil, errors.WithHint(
			errors.New("no project given"),
			"pass group/project, --project-id <id> or --input <export.yaml>",
		)
	}
	client, err := newPlatformClient(cfg)
	if err != nil {
		return nil, err
	}
	if projectID != "" {
		project, err := client.Project(ctx, projectID)
		if err != nil {
			return nil, err
		}
		path := project.Group() + "/" + project.Label()
		logging.Logger.Infow("reading project", "project", path, "id", projectID)
		return &reportSource{project: project, path: path, kind: sourcePlatform}, nil
	}
	project, err := client.LookupProject(ctx, args[0])
	if err != nil {
		return nil, err
	}
	logging.Logger.Infow("reading project", "project", args[0], "id", project.ID())
	return &reportSource{project: project, path: args[0], kind: sourcePlatform}, nil
}

// reportFormat returns the --format flag, or the configured format.
func reportFormat(cmd *cobra.Command, cfg types.Config) types.ReportFormat {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		return types.ReportFormat(strings.ToLower(f))
	}
	return cfg.Report.Format
}

// writeReport renders table to --output, or stdout when unset or "-".
func writeReport(cmd *cobra.Command, cfg types.Config, table *report.Table) error {
	format := reportFormat(cmd, cfg)
	output, _ := cmd.Flags().GetString("output")
	registry := report.DefaultRegistry()

	if output == "" || output == "-" {
		if format == types.FormatXLSX {
			return errors.WithHint(
				errors.New("xlsx output needs a file"),
				"pass --output report.xlsx",
			)
		}
		return registry.Render(format, cmd.OutOrStdout(), table)
	}

	err := writeFile(output, func(w io.Writer) error {
		return registry.Render(format, w, table)
	})
	if err != nil {
		return err
	}
	logging.Logger.Infow("wrote report", "file", output, "format", format, "rows", len(table.Rows))
	return nil
}

// writeFile creates path and its parent directory and writes it with
// write. A failure to close the file is returned.
func writeFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := osFs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	f, err := osFs.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", path)
		}
	}()
	return write(f)
}

// saveRun records rows in the history store when --save is set.
func saveRun(ctx context.Context, cmd *cobra.Command, cfg types.Config, src *reportSource, kind store.Kind, rows []types.Row) error {
	save, _ := cmd.Flags().GetBool("save")
	if !save {
		return nil
	}
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.Save(ctx, src.path, kind, src.kind, rows)
	if err != nil {
		return err
	}
	logging.Logger.Infow("saved run", "id", run.ID, "project", run.Project, "kind", run.Kind, "rows", run.RowCount)
	return nil
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", "output format: csv, json, yaml, xlsx, table (default from config)")
	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	cmd.Flags().String("input", "", "read a project export instead of the platform")
	cmd.Flags().String("project-id", "", "platform container ID of the project, instead of group/project")
	cmd.Flags().Bool("save", false, "record the report in the history database")
}
