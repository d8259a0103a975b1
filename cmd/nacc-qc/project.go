// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/naccdata/nacc-common/internal/logging"
	"github.com/naccdata/nacc-common/internal/snapshot"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Work with platform projects",
}

var projectExportCmd = &cobra.Command{
	Use:   "export <group/project>",
	Short: "Export a project's files and metadata for offline reports",
	Long: `Export fetches the project and writes its files with their custom
metadata, together with the project's own metadata, to a YAML file. The
file can be passed to errors and status with --input, and a directory of
exports can be passed to center with --input-dir.

The default file name is <group>_<project>.yaml in --dir.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectExport,
}

func runProjectExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	group, label, ok := strings.Cut(args[0], "/")
	if !ok || group == "" || label == "" {
		return errors.WithHint(
			errors.Newf("invalid project path %q", args[0]),
			"paths take the form group/project",
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newPlatformClient(cfg)
	if err != nil {
		return err
	}
	project, err := client.LookupProject(ctx, args[0])
	if err != nil {
		return err
	}
	files, err := project.Files(ctx)
	if err != nil {
		return err
	}

	snap := &snapshot.Snapshot{
		Group:      group,
		Project:    label,
		ProjectID:  project.ID(),
		ExportedAt: time.Now().UTC(),
		Info:       project.Info(),
		Files:      files,
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		dir, _ := cmd.Flags().GetString("dir")
		output = filepath.Join(dir, snapshot.FileName(group, label))
	}
	if err := snapshot.Write(osFs, output, snap); err != nil {
		return err
	}
	logging.Logger.Infow("exported project", "project", args[0], "files", len(files), "file", output)
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func init() {
	projectExportCmd.Flags().StringP("output", "o", "", "output file (overrides --dir)")
	projectExportCmd.Flags().String("dir", "exports", "directory for the export file")

	projectCmd.AddCommand(projectExportCmd)
	rootCmd.AddCommand(projectCmd)
}
