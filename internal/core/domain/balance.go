package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSummary is a client's receivable position for one month window.
// The aging fields are mutually exclusive bands: <=30, 31-60 and >60 days.
type BalanceSummary struct {
	ClientID           string          `json:"clientID"`
	ClientName         string          `json:"clientName,omitempty"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	Credit             decimal.Decimal `json:"credit"`
	ThisMonth          decimal.Decimal `json:"thisMonth"`
	LastMonth          decimal.Decimal `json:"lastMonth"`
	Days30Plus         decimal.Decimal `json:"days30Plus"`
	Days60Plus         decimal.Decimal `json:"days60Plus"`
	Days90Plus         decimal.Decimal `json:"days90Plus"`
	PeriodStart        time.Time       `json:"periodStart"`
	PeriodEnd          time.Time       `json:"periodEnd"`
}
