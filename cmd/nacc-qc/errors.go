// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/naccdata/nacc-common/internal/logging"
	"github.com/naccdata/nacc-common/internal/qc"
	"github.com/naccdata/nacc-common/internal/report"
	"github.com/naccdata/nacc-common/internal/store"
)

var errorsCmd = &cobra.Command{
	Use:   "errors [group/project]",
	Short: "Report the QC errors recorded on a project's files",
	Long: `Errors lists one row per error entry that a gear recorded under
info.qc of each file in the project. Location fields are merged into the
row. Gears whose status is pass contribute no rows unless --include-passed
is given.

Columns follow the standard error header order; any other fields found in
the entries are appended as extra columns.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runErrors,
}

func runErrors(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, err := openSource(ctx, cmd, args, cfg)
	if err != nil {
		return err
	}

	opts := qc.Options{IncludePassed: cfg.Report.IncludePassed}
	if cmd.Flags().Changed("include-passed") {
		opts.IncludePassed, _ = cmd.Flags().GetBool("include-passed")
	}

	rows, err := qc.ExtractErrorRows(ctx, src.project, opts)
	if err != nil {
		return err
	}
	logging.Logger.Infow("extracted error rows", "project", src.path, "rows", len(rows))

	if err := writeReport(cmd, cfg, report.ErrorTable(rows)); err != nil {
		return err
	}
	return saveRun(ctx, cmd, cfg, src, store.KindErrors, rows)
}

func init() {
	addReportFlags(errorsCmd)
	errorsCmd.Flags().Bool("include-passed", false, "keep errors recorded by gears whose status is pass")

	rootCmd.AddCommand(errorsCmd)
}
