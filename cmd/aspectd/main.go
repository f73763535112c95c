package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const configFlag = "config"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "aspectd",
		Short:         "Aspect-scoped social stream server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String(configFlag, "/etc/aspectd/config.yaml", "path to the yaml config file (empty for environment only)")
	return cmd
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rootCmd := newRootCommand()
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newUserCommand())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()), slog.String("module", "main"))
		os.Exit(1)
	}
}
