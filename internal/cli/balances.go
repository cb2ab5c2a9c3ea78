package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/SscSPs/dental_lab_app/internal/core/services"
	"github.com/SscSPs/dental_lab_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/dental_lab_app/internal/utils"
	"github.com/SscSPs/dental_lab_app/internal/utils/accounting"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
	"github.com/SscSPs/dental_lab_app/pkg/database"
	"github.com/spf13/cobra"
)

const balancesPageSize = 100

func newBalancesCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Print the aging report of all active clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != "" {
				if _, _, err := accounting.ParsePeriod(month); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			_, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer database.ClosePgxPool(pool)

			repos := pgsql.NewRepositoryProvider(pool)
			svc := services.NewBalanceService(repos.ClientRepo, repos.InvoiceRepo)

			var all []domain.BalanceSummary
			state := listview.New("client_name").WithPageSize(balancesPageSize)
			for {
				page, total, err := svc.ListBalances(ctx, month, state, cliUserID)
				if err != nil {
					return fmt.Errorf("listing balances: %w", err)
				}
				all = append(all, page...)
				if len(page) == 0 || len(all) >= total {
					break
				}
				state = state.WithPage(state.Page + 1)
			}

			return writeBalances(cmd, all)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (defaults to the current month)")
	return cmd
}

func writeBalances(cmd *cobra.Command, balances []domain.BalanceSummary) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "CLIENT\tOUTSTANDING\tCREDIT\tTHIS MONTH\tLAST MONTH\t30+\t60+\t90+\t")
	for _, b := range balances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			b.ClientName,
			utils.FormatAmount(b.OutstandingBalance),
			utils.FormatAmount(b.Credit),
			utils.FormatAmount(b.ThisMonth),
			utils.FormatAmount(b.LastMonth),
			utils.FormatAmount(b.Days30Plus),
			utils.FormatAmount(b.Days60Plus),
			utils.FormatAmount(b.Days90Plus),
		)
	}
	return w.Flush()
}
