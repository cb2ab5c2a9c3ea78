package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementSummary is the per-client aggregate of open invoices due in a period.
type StatementSummary struct {
	ClientID    string
	TotalAmount decimal.Decimal
	TotalDue    decimal.Decimal
	LastSent    time.Time
}

// Statement is the stored snapshot sent to a client for collection.
type Statement struct {
	StatementID     string          `json:"statementID"`
	StatementNumber string          `json:"statementNumber"`
	ClientID        string          `json:"clientID"`
	Period          string          `json:"period"` // YYYY-MM
	PeriodStart     time.Time       `json:"periodStart"`
	PeriodEnd       time.Time       `json:"periodEnd"`
	Amount          decimal.Decimal `json:"amount"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	LastSent        time.Time       `json:"lastSent"`         // latest update among the statement's invoices
	SentAt          *time.Time      `json:"sentAt,omitempty"` // set when the statement is marked sent
	CreatedAt       time.Time       `json:"createdAt"`
}
