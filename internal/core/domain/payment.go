package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the client paid.
type PaymentMethod string

const (
	MethodCash  PaymentMethod = "cash"
	MethodCheck PaymentMethod = "check"
	MethodCard  PaymentMethod = "card"
	MethodACH   PaymentMethod = "ach"
	MethodOther PaymentMethod = "other"
)

// PaymentAllocation is the part of a payment applied to one invoice.
type PaymentAllocation struct {
	InvoiceID string          `json:"invoiceID"`
	Amount    decimal.Decimal `json:"amount"`
}

// Payment is money received from a client.
// Invariant: sum(Allocations) <= Amount; the rest is Overpayment.
type Payment struct {
	PaymentID   string              `json:"paymentID"`
	ClientID    string              `json:"clientID"`
	PaymentDate time.Time           `json:"paymentDate"`
	Method      PaymentMethod       `json:"method"`
	Memo        string              `json:"memo"`
	Amount      decimal.Decimal     `json:"amount"`
	Overpayment decimal.Decimal     `json:"overpayment"`
	Allocations []PaymentAllocation `json:"allocations"`
	AuditFields
}

// AllocatedTotal sums the allocation amounts.
func (p Payment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}
