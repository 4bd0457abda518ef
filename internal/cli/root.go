// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli provides the command-line interface for dsb.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/magpierre/fyne-datatable/internal/config"
	"github.com/magpierre/fyne-datatable/internal/logging"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// Launcher starts the desktop application. path is a file to open at
// startup and may be empty.
type Launcher func(cfg *config.Config, path string) error

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates the root command. Running it without a subcommand
// starts the desktop application through launch.
func NewRootCmd(launch Launcher) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "dsb",
		Short: "dsb - data browser",
		Long: `dsb browses tabular data from CSV, Parquet and JSON files and from
Delta Sharing servers in a searchable, sortable table.

Without a subcommand the desktop application is started.`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, cfg.LogFormat)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launch(GetConfig(cmd.Context()), "")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./dsb.yaml)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")
	flags.String("border", "", "Table border style (none|right|full)")
	flags.Float64("min-column-width", 0, "Minimum column width in the table")
	flags.Duration("api-timeout", 60*time.Second, "Timeout for Delta Sharing requests")
	flags.String("profile", "", "Delta Sharing profile to open at startup")

	_ = rootCmd.RegisterFlagCompletionFunc("border", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"none", "right", "full"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newOpenCommand(launch))
	rootCmd.AddCommand(newPrintCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute(launch Launcher) error {
	rootCmd := NewRootCmd(launch)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
			return c
		}
	}
	cfg, err := config.Load("", nil)
	if err != nil {
		return &config.Config{LogLevel: "info", LogFormat: "text", APITimeout: 60 * time.Second}
	}
	return cfg
}
