package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentType is the direction of a manual balance adjustment.
type AdjustmentType string

const (
	AdjustmentCredit AdjustmentType = "credit"
	AdjustmentDebit  AdjustmentType = "debit"
)

// CreditMode decides where a credit goes.
type CreditMode string

const (
	CreditApply   CreditMode = "apply"   // Reduce the due amount of the referenced invoices
	CreditAccount CreditMode = "account" // Keep as client credit
)

// Adjustment is a credit or debit entered by billing staff.
type Adjustment struct {
	AdjustmentID    string          `json:"adjustmentID"`
	ClientID        string          `json:"clientID"`
	AdjustmentDate  time.Time       `json:"adjustmentDate"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Type            AdjustmentType  `json:"type"`
	CreditMode      CreditMode      `json:"creditMode,omitempty"`
	AppliedInvoices []string        `json:"appliedInvoices"`
	AuditFields
}
