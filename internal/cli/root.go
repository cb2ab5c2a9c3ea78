package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/dental_lab_app/internal/platform/config"
	"github.com/SscSPs/dental_lab_app/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// cliUserID is recorded as the actor of changes made from the command line.
const cliUserID = "dlabctl"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dlabctl",
		Short:         "Operate the dental lab billing backend",
		Long:          "dlabctl runs database migrations and the periodic billing jobs (statements, balance reports) outside the HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newStatementsCmd())
	cmd.AddCommand(newBalancesCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	err := newRootCmd().Execute()
	if err != nil {
		slog.Error("Command failed", slog.String("error", err.Error()))
	}
	return err
}

// openPool loads the configuration and connects to the database.
func openPool(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return cfg, pool, nil
}
