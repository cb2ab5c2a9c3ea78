package accounting

import (
	"time"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// MonthWindow returns the calendar month containing asOf as [start, end), where end is
// the first instant of the next month.
func MonthWindow(asOf time.Time) (time.Time, time.Time) {
	start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	return start, start.AddDate(0, 1, 0)
}

// AgeInDays is the number of whole days between createdAt and endDate.
func AgeInDays(createdAt, endDate time.Time) int {
	return int(endDate.Sub(createdAt) / day)
}

// SummarizeBalance buckets a client's invoices for the month window [startDate, endDate).
//
// Every open invoice lands in exactly one aging band by its age at endDate (<=30,
// 31-60, >60 days). Independently, invoices created inside the window count towards
// ThisMonth and those created in the previous calendar month towards LastMonth. Credit
// rows add their full amount to Credit. Invoices created at or after endDate are ignored.
func SummarizeBalance(clientID string, invoices []domain.Invoice, startDate, endDate time.Time) domain.BalanceSummary {
	summary := domain.BalanceSummary{
		ClientID:    clientID,
		Credit:      decimal.Zero,
		ThisMonth:   decimal.Zero,
		LastMonth:   decimal.Zero,
		Days30Plus:  decimal.Zero,
		Days60Plus:  decimal.Zero,
		Days90Plus:  decimal.Zero,
		PeriodStart: startDate,
		PeriodEnd:   endDate,
	}
	lastMonthStart := startDate.AddDate(0, -1, 0)

	for _, inv := range invoices {
		if !inv.CreatedAt.Before(endDate) {
			continue
		}

		if inv.Status == domain.InvoiceCredit {
			summary.Credit = summary.Credit.Add(inv.Amount)
			continue
		}
		if !inv.DueAmount.IsPositive() {
			continue
		}

		switch days := AgeInDays(inv.CreatedAt, endDate); {
		case days <= 30:
			summary.Days30Plus = summary.Days30Plus.Add(inv.DueAmount)
		case days <= 60:
			summary.Days60Plus = summary.Days60Plus.Add(inv.DueAmount)
		default:
			summary.Days90Plus = summary.Days90Plus.Add(inv.DueAmount)
		}

		switch {
		case !inv.CreatedAt.Before(startDate):
			summary.ThisMonth = summary.ThisMonth.Add(inv.DueAmount)
		case !inv.CreatedAt.Before(lastMonthStart):
			summary.LastMonth = summary.LastMonth.Add(inv.DueAmount)
		}
	}

	summary.OutstandingBalance = summary.ThisMonth.
		Add(summary.LastMonth).
		Add(summary.Days30Plus).
		Add(summary.Days60Plus).
		Add(summary.Days90Plus).
		Sub(summary.Credit)

	return summary
}
