// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/naccdata/nacc-common/internal/logging"
	"github.com/naccdata/nacc-common/internal/qc"
	"github.com/naccdata/nacc-common/internal/report"
	"github.com/naccdata/nacc-common/internal/store"
	"github.com/naccdata/nacc-common/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status [group/project]",
	Short: "Report the QC status each gear recorded on a project's files",
	Long: `Status lists one row per file and gear with the normalized status
(pass or fail) the gear recorded under info.qc. A status that is missing or
not a string is reported empty.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, err := openSource(ctx, cmd, args, cfg)
	if err != nil {
		return err
	}

	statusRows, err := qc.ExtractStatusRows(ctx, src.project)
	if err != nil {
		return err
	}
	logging.Logger.Infow("extracted status rows", "project", src.path, "rows", len(statusRows))

	if err := writeReport(cmd, cfg, report.StatusTable(statusRows)); err != nil {
		return err
	}
	return saveRun(ctx, cmd, cfg, src, store.KindStatus, types.StatusRowsToRows(statusRows))
}

func init() {
	addReportFlags(statusCmd)

	rootCmd.AddCommand(statusCmd)
}
