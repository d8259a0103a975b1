// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/naccdata/nacc-common/internal/report"
	"github.com/naccdata/nacc-common/internal/store"
	"github.com/naccdata/nacc-common/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse reports saved with --save",
	Long: `History manages the local SQLite database of saved reports. Each run
of errors or status with --save records the project, the kind of report,
and every row it produced.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved report runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	project, _ := cmd.Flags().GetString("project")
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	runs, err := s.Runs(cmd.Context(), store.RunQuery{Project: project, Kind: store.Kind(kind), Limit: limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved runs.")
		return nil
	}

	table := &report.Table{
		Name:    "runs",
		Headers: []string{"id", "project", "kind", "source", "created_at", "rows"},
	}
	for _, r := range runs {
		table.Rows = append(table.Rows, types.Row{
			"id":         r.ID,
			"project":    r.Project,
			"kind":       string(r.Kind),
			"source":     r.Source,
			"created_at": r.CreatedAt.Local().Format(time.DateTime),
			"rows":       r.RowCount,
		})
	}
	return report.NewTableRenderer().Render(cmd.OutOrStdout(), table)
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Print the rows of a saved run",
	Long: `Show prints the rows of a saved run in any report format. Without a run
ID it shows the latest run for --project and --kind.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	var run *store.Run
	if len(args) == 1 {
		run, err = s.Run(ctx, args[0])
	} else {
		project, _ := cmd.Flags().GetString("project")
		kind, _ := cmd.Flags().GetString("kind")
		if project == "" {
			return errors.New("run ID or --project required")
		}
		run, err = s.Latest(ctx, project, store.Kind(kind))
	}
	if err != nil {
		return err
	}
	if run == nil {
		return store.ErrRunNotFound
	}

	gear, _ := cmd.Flags().GetString("gear")
	fileID, _ := cmd.Flags().GetString("file")
	statusFlag, _ := cmd.Flags().GetString("status")
	status := types.ParseQCStatus(statusFlag)
	if statusFlag != "" && !status.IsSet() {
		return errors.WithHint(
			errors.Newf("unknown status %q", statusFlag),
			"use --status pass or --status fail",
		)
	}
	rows, err := s.Rows(ctx, run.ID, store.RowFilter{
		Gear:   gear,
		FileID: fileID,
		Status: status,
	})
	if err != nil {
		return err
	}

	table := report.ErrorTable(rows)
	if run.Kind == store.KindStatus {
		table = &report.Table{Name: "status", Headers: types.StatusHeaderNames, Rows: rows}
	}
	return writeReport(cmd, cfg, table)
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a saved run with its rows to YAML or JSON",
	Long: `Export writes a saved run and its rows to <store-dir>/exports/<run-id>.yaml
or .json and prints the path written.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(cmd.Context(), args[0])
	case "json":
		path, err = s.ExportJSON(cmd.Context(), args[0])
	default:
		return errors.Newf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Exported to", path)
	return nil
}

// --- shared helpers ---

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewStore(cfg.Store)
}

func init() {
	historyCmd.PersistentFlags().String("project", "", "filter by group/project")
	historyCmd.PersistentFlags().String("kind", "", "filter by report kind: errors or status")

	historyListCmd.Flags().Int("limit", 0, "maximum runs listed (0 = use default)")

	historyShowCmd.Flags().StringP("format", "f", "", "output format: csv, json, yaml, xlsx, table (default from config)")
	historyShowCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	historyShowCmd.Flags().String("gear", "", "only rows from this gear")
	historyShowCmd.Flags().String("file", "", "only rows for this file ID")
	historyShowCmd.Flags().String("status", "", "only rows with this status (status runs)")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
