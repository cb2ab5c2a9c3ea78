package cli

import (
	"fmt"

	"github.com/SscSPs/dental_lab_app/internal/platform/config"
	"github.com/SscSPs/dental_lab_app/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var path string
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if path == "" {
				path = cfg.MigrationsPath
			}

			applied, err := database.RunMigrations(cfg.DatabaseURL, path)
			if err != nil {
				return err
			}
			if applied {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no new migrations")
			}
			return nil
		},
	}
	up.Flags().StringVar(&path, "path", "", "migrations source URL (defaults to MIGRATIONS_PATH)")

	cmd.AddCommand(up)
	return cmd
}
