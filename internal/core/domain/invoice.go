package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the collection state of an invoice.
type InvoiceStatus string

const (
	InvoiceUnpaid        InvoiceStatus = "unpaid"
	InvoicePartiallyPaid InvoiceStatus = "partially_paid"
	InvoicePaid          InvoiceStatus = "paid"
	InvoiceCredit        InvoiceStatus = "credit" // Client credit (overpayment or account credit)
)

// Invoice is a charge against a client, usually for a case.
// Invariant: 0 <= DueAmount <= Amount.
type Invoice struct {
	InvoiceID     string          `json:"invoiceID"`
	InvoiceNumber string          `json:"invoiceNumber"`
	ClientID      string          `json:"clientID"`
	CaseID        string          `json:"caseID"` // Empty for debits and credits
	Amount        decimal.Decimal `json:"amount"`
	DueAmount     decimal.Decimal `json:"dueAmount"`
	Status        InvoiceStatus   `json:"status"`
	DueDate       time.Time       `json:"dueDate"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	CreatedBy     string          `json:"createdBy"`
}

// IsOpen reports whether the invoice still has an amount to collect.
func (i Invoice) IsOpen() bool {
	return i.Status != InvoiceCredit && i.DueAmount.IsPositive()
}

// StatusForDue derives the status an invoice of the given amount has once its due amount
// is due. Credit rows keep their status.
func StatusForDue(amount, due decimal.Decimal) InvoiceStatus {
	switch {
	case due.IsZero() || due.IsNegative():
		return InvoicePaid
	case due.LessThan(amount):
		return InvoicePartiallyPaid
	default:
		return InvoiceUnpaid
	}
}
