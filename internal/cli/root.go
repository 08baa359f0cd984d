// Package cli implements the sqlgenius command line: the HTTP service and
// a one-shot terminal assistant.
package cli

import (
	"fmt"
	"os"

	"github.com/koustreak/sqlgenius/internal/config"
	"github.com/koustreak/sqlgenius/internal/connector"
	"github.com/koustreak/sqlgenius/internal/executor"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/koustreak/sqlgenius/internal/nl2sql"
	"github.com/koustreak/sqlgenius/internal/session"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "0.0.0-dev"

var (
	configPath string
	envFiles   []string
)

// NewRootCommand wires every subcommand.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "sqlgenius",
		Short:         "Turn business questions into SQL and run it",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $"+config.EnvConfigPath+")")
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading configuration (default .env)")

	root.AddCommand(newServeCommand(), newAskCommand(), newVersionCommand())
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logger.Mask(err.Error()))
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sqlgenius %s\n", Version)
		},
	}
}

// loadConfig loads dotenv files, then YAML and environment overrides.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDeps(cfg *config.Config) *session.Deps {
	return &session.Deps{
		Connector: connector.New(cfg.Database.SQLitePath),
		Executor:  executor.New(cfg.Executor.MaxRows),
		Models: nl2sql.NewFactory(nl2sql.Options{
			Timeout: cfg.Model.Timeout,
			IAMURL:  cfg.Model.IAMURL,
		}),
		DefaultModelID: cfg.Model.ModelID,
		ModelTimeout:   cfg.Model.Timeout,
		ExecTimeout:    cfg.Executor.Timeout,
	}
}
