package accounting

import (
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PeriodLayout is the format of a billing period, e.g. "2026-09".
const PeriodLayout = "2006-01"

// ParsePeriod turns "YYYY-MM" into the UTC window [first of month, first of next month).
func ParsePeriod(period string) (time.Time, time.Time, error) {
	start, err := time.Parse(PeriodLayout, period)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period %q, expected YYYY-MM: %w", period, err)
	}
	periodStart, periodEnd := MonthWindow(start)
	return periodStart, periodEnd, nil
}

// StatementNumber formats the number of the seq-th statement of a period.
func StatementNumber(prefix string, periodStart time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, periodStart.Format("200601"), seq)
}

// SummarizeStatements groups the unpaid and partially paid invoices due in
// [periodStart, periodEnd) by client. Results are ordered by client ID.
func SummarizeStatements(invoices []domain.Invoice, periodStart, periodEnd time.Time) []domain.StatementSummary {
	byClient := make(map[string]*domain.StatementSummary)

	for _, inv := range invoices {
		if inv.Status != domain.InvoiceUnpaid && inv.Status != domain.InvoicePartiallyPaid {
			continue
		}
		if inv.DueDate.Before(periodStart) || !inv.DueDate.Before(periodEnd) {
			continue
		}

		s, ok := byClient[inv.ClientID]
		if !ok {
			s = &domain.StatementSummary{
				ClientID:    inv.ClientID,
				TotalAmount: decimal.Zero,
				TotalDue:    decimal.Zero,
			}
			byClient[inv.ClientID] = s
		}
		s.TotalAmount = s.TotalAmount.Add(inv.Amount)
		s.TotalDue = s.TotalDue.Add(inv.DueAmount)
		if inv.UpdatedAt.After(s.LastSent) {
			s.LastSent = inv.UpdatedAt
		}
	}

	summaries := make([]domain.StatementSummary, 0, len(byClient))
	for _, s := range byClient {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ClientID < summaries[j].ClientID
	})
	return summaries
}
