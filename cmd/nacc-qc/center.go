// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naccdata/nacc-common/internal/centers"
	"github.com/naccdata/nacc-common/internal/report"
	"github.com/naccdata/nacc-common/internal/snapshot"
	"github.com/naccdata/nacc-common/pkg/types"
)

var centerCmd = &cobra.Command{
	Use:   "center <adcid>",
	Short: "Print the platform group ID of the center with an ADCID",
	Long: `Center looks up the ADCID in the centers table kept in the custom
metadata of the nacc/metadata project and prints the center's group ID.

Use --input-dir to resolve against a directory of project exports instead
of the platform.`,
	Args: cobra.ExactArgs(1),
	RunE: runCenter,
}

var centerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every center with its group ID",
	Args:  cobra.NoArgs,
	RunE:  runCenterList,
}

func centerLookup(cmd *cobra.Command) (centers.Lookup, error) {
	cfg, err := loadConfig()
	if err != nil {
		return centers.Lookup{}, err
	}
	lookup := centers.Lookup{Path: cfg.Platform.MetadataPath}

	if dir, _ := cmd.Flags().GetString("input-dir"); dir != "" {
		lookup.Reader = snapshot.Dir{Fs: osFs, Root: dir}
		return lookup, nil
	}
	client, err := newPlatformClient(cfg)
	if err != nil {
		return centers.Lookup{}, err
	}
	lookup.Reader = client
	return lookup, nil
}

func runCenter(cmd *cobra.Command, args []string) error {
	lookup, err := centerLookup(cmd)
	if err != nil {
		return err
	}
	group, err := lookup.CenterID(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), group)
	return nil
}

func runCenterList(cmd *cobra.Command, args []string) error {
	lookup, err := centerLookup(cmd)
	if err != nil {
		return err
	}
	list, err := lookup.Centers(cmd.Context())
	if err != nil {
		return err
	}

	table := &report.Table{Name: "centers", Headers: []string{"adcid", "group"}}
	for _, c := range list {
		table.Rows = append(table.Rows, types.Row{"adcid": c.ADCID, "group": c.Group})
	}
	format, _ := cmd.Flags().GetString("format")
	return report.DefaultRegistry().Render(types.ReportFormat(format), cmd.OutOrStdout(), table)
}

func init() {
	centerCmd.PersistentFlags().String("input-dir", "", "resolve against project exports in this directory")
	centerListCmd.Flags().StringP("format", "f", string(types.FormatTable), "output format: csv, json, yaml, table")

	centerCmd.AddCommand(centerListCmd)
	rootCmd.AddCommand(centerCmd)
}
