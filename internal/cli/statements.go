package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/core/services"
	"github.com/SscSPs/dental_lab_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/dental_lab_app/internal/utils/accounting"
	"github.com/SscSPs/dental_lab_app/pkg/database"
	"github.com/spf13/cobra"
)

// previousPeriod is the month before now, the usual target of a run on the 1st.
func previousPeriod(now time.Time) string {
	start, _ := accounting.MonthWindow(now.UTC())
	return start.AddDate(0, -1, 0).Format(accounting.PeriodLayout)
}

func newStatementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Work with client statements",
	}

	var period string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Build or refresh the statements of a billing period",
		Long:  "Creates one statement per client with open invoices due in the period. Rerunning refreshes amounts and keeps statement numbers.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if period == "" {
				period = previousPeriod(time.Now())
			}
			if _, _, err := accounting.ParsePeriod(period); err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer database.ClosePgxPool(pool)

			repos := pgsql.NewRepositoryProvider(pool)
			svc := services.NewStatementService(repos.StatementRepo, repos.InvoiceRepo, cfg.StatementNumberPrefix)

			statements, err := svc.GenerateStatements(ctx, period, cliUserID)
			if err != nil {
				return fmt.Errorf("generating statements for %s: %w", period, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(statements)
		},
	}
	generate.Flags().StringVar(&period, "period", "", "billing period YYYY-MM (defaults to last month)")

	cmd.AddCommand(generate)
	return cmd
}
