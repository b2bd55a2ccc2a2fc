package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkpaas/workloads/config"
	"github.com/bkpaas/workloads/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bkwl",
		Short:   "BlueKing application workloads CLI",
		Long:    "BlueKing application workloads CLI",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultDB := os.Getenv(config.EnvDatabaseURL)
	if defaultDB == "" {
		defaultDB = "sqlite://workloads.db"
	}
	cmd.PersistentFlags().String("db-url", defaultDB, "Database URL (env PAAS_WL_DATABASE_URL) (sqlite:/path/to.db | memory:)")
	cmd.PersistentFlags().String("kv-url", os.Getenv(config.EnvKVURL), "KV store URL (env PAAS_WL_KV_URL) (badger:/path/to/dir, empty for in-memory)")
	cmd.PersistentFlags().String("settings", "", "Path to the platform settings YAML file")
	cmd.PersistentFlags().String("log-format", "human", "Log format (human|text|json) (env PAAS_WL_LOG_FORMAT)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		format, _ := c.Flags().GetString("log-format")
		if env := os.Getenv("PAAS_WL_LOG_FORMAT"); env != "" { // env overrides flag
			format = env
		}
		l, err := logging.New(format, logging.LevelFromEnv())
		if err != nil {
			return err
		}
		ctx := logging.WithLogger(c.Context(), l)
		c.SetContext(ctx)
		return nil
	}

	// Add subcommands
	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdCluster())
	cmd.AddCommand(newCmdApp())
	cmd.AddCommand(newCmdProcess())
	cmd.AddCommand(newCmdBuild())
	cmd.AddCommand(newCmdRelease())
	cmd.AddCommand(newCmdCNative())
	cmd.AddCommand(newCmdSandbox())
	cmd.AddCommand(newCmdWorker())
	return cmd
}

func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	executed, err := root.ExecuteC()
	if err != nil {
		ctx := root.Context()
		if executed != nil {
			ctx = executed.Context()
		}
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
		os.Exit(1)
	}
}
