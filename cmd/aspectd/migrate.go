package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/totegamma/concrnt-aspects/internal/infra/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.Migrate(a.db); err != nil {
				return err
			}
			slog.Info("migration complete", slog.String("driver", a.config.Server.Driver), slog.String("module", "main"))
			return nil
		},
	}
}
