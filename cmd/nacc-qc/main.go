// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the nacc-qc CLI, which reports the
// QC results recorded in platform file metadata and resolves centers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naccdata/nacc-common/internal/logging"
	"github.com/naccdata/nacc-common/internal/secrets"
	"github.com/naccdata/nacc-common/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the nacc-qc CLI.
var rootCmd = &cobra.Command{
	Use:   "nacc-qc",
	Short: "Report QC results recorded in platform file metadata",
	Long: `nacc-qc reads the QC results that pipeline gears record in the custom
metadata of files on the data platform and flattens them into error and
status reports.

Reports can be read live from a group/project on the platform or offline
from a project export. Centers are resolved from their ADCID through the
nacc/metadata record.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs := viper.GetBool("log_json")
		verbose := viper.GetBool("verbose")
		if err := logging.Initialize(logging.Options{JSON: jsonLogs, Verbose: verbose}); err != nil {
			return errors.Wrap(err, "initializing logger")
		}
		if f := viper.ConfigFileUsed(); f != "" {
			logging.Logger.Debugw("using config file", "path", f)
		}

		envFile, _ := cmd.Flags().GetString("env-file")
		if err := secrets.LoadDotEnv(envFile); err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logging.Logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logging.Logger.Debugw("loaded secrets", "keys", keys)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./nacc-qc.yaml or ~/.config/nacc-qc/config.yaml)")
	flags.String("api-key", "", "platform API key (host:key); defaults to $FW_API_KEY or .secrets/flywheel-api-key")
	flags.String("secrets-dir", ".secrets", "directory of secret key files")
	flags.String("env-file", ".env", "dotenv file to load before reading the environment")
	flags.Bool("log-json", false, "write logs as JSON")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("platform.api_key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nacc-qc")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nacc-qc"))
		}
	}

	setDefaults(types.DefaultConfig())

	viper.SetEnvPrefix("NACC_QC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

// setDefaults registers every config key with viper so environment
// variables are seen by Unmarshal.
func setDefaults(d types.Config) {
	viper.SetDefault("platform.timeout", d.Platform.Timeout)
	viper.SetDefault("platform.user_agent", d.Platform.UserAgent)
	viper.SetDefault("platform.max_retries", d.Platform.MaxRetries)
	viper.SetDefault("platform.api_key", d.Platform.APIKey)
	viper.SetDefault("platform.base_url", d.Platform.BaseURL)
	viper.SetDefault("platform.metadata_path", d.Platform.MetadataPath)
	viper.SetDefault("report.format", string(d.Report.Format))
	viper.SetDefault("report.include_passed", d.Report.IncludePassed)
	viper.SetDefault("store.dir", d.Store.Dir)
	viper.SetDefault("store.max_results", d.Store.MaxResults)
}

// loadConfig reads the effective configuration and fills in the API key
// from the environment or secrets when it was not configured.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "decoding config")
	}
	cfg.Platform.APIKey = secrets.APIKey(cfg.Platform.APIKey, loadedSecrets)
	if cfg.Platform.UserAgent == "" || cfg.Platform.UserAgent == "nacc-qc/dev" {
		cfg.Platform.UserAgent = "nacc-qc/" + version
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		stop()
		os.Exit(1)
	}
}
