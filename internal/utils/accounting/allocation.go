package accounting

import (
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceAllocation is the share of a payment or credit applied to one invoice.
type InvoiceAllocation struct {
	InvoiceID       string          `json:"invoiceID"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	BalanceBefore   decimal.Decimal `json:"balanceBefore"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
}

// AllocationResult is the outcome of distributing a payment over invoices.
type AllocationResult struct {
	Allocations      []InvoiceAllocation `json:"allocations"`
	TotalDue         decimal.Decimal     `json:"totalDue"`
	TotalAllocated   decimal.Decimal     `json:"totalAllocated"`
	Overpayment      decimal.Decimal     `json:"overpayment"`
	RemainingBalance decimal.Decimal     `json:"remainingBalance"`
}

// AllocatePayment distributes paymentAmount over the selected invoices.
//
// A payment covering the total due pays every invoice in full and the excess is
// overpayment. A smaller payment is split proportionally to each due amount and rounded
// to cents per invoice; the rounded shares are not reconciled, so their sum may differ
// from paymentAmount by a few cents.
func AllocatePayment(paymentAmount decimal.Decimal, invoices []domain.Invoice) AllocationResult {
	totalDue := decimal.Zero
	for _, inv := range invoices {
		totalDue = totalDue.Add(inv.DueAmount)
	}

	result := AllocationResult{
		Allocations:      make([]InvoiceAllocation, 0, len(invoices)),
		TotalDue:         totalDue,
		TotalAllocated:   decimal.Zero,
		Overpayment:      decimal.Zero,
		RemainingBalance: decimal.Zero,
	}

	switch {
	case paymentAmount.GreaterThan(totalDue):
		result.Overpayment = paymentAmount.Sub(totalDue)
		for _, inv := range invoices {
			result.add(inv, inv.DueAmount)
		}
	case paymentAmount.LessThan(totalDue):
		result.RemainingBalance = totalDue.Sub(paymentAmount)
		ratio := paymentAmount.Div(totalDue)
		for _, inv := range invoices {
			result.add(inv, Round2(inv.DueAmount.Mul(ratio)))
		}
	default:
		for _, inv := range invoices {
			result.add(inv, inv.DueAmount)
		}
	}

	return result
}

func (r *AllocationResult) add(inv domain.Invoice, amount decimal.Decimal) {
	r.Allocations = append(r.Allocations, InvoiceAllocation{
		InvoiceID:       inv.InvoiceID,
		InvoiceNumber:   inv.InvoiceNumber,
		AllocatedAmount: amount,
		BalanceBefore:   inv.DueAmount,
		BalanceAfter:    inv.DueAmount.Sub(amount),
	})
	r.TotalAllocated = r.TotalAllocated.Add(amount)
}

// ApplyInOrder applies amount to the invoices in the order given, paying each one as far
// as the remaining amount allows. Invoices with nothing due are skipped. It returns the
// allocations and whatever could not be applied.
func ApplyInOrder(amount decimal.Decimal, invoices []domain.Invoice) ([]InvoiceAllocation, decimal.Decimal) {
	remaining := amount
	allocations := make([]InvoiceAllocation, 0, len(invoices))

	for _, inv := range invoices {
		if !remaining.IsPositive() {
			break
		}
		if !inv.DueAmount.IsPositive() {
			continue
		}

		applied := decimal.Min(remaining, inv.DueAmount)
		allocations = append(allocations, InvoiceAllocation{
			InvoiceID:       inv.InvoiceID,
			InvoiceNumber:   inv.InvoiceNumber,
			AllocatedAmount: applied,
			BalanceBefore:   inv.DueAmount,
			BalanceAfter:    inv.DueAmount.Sub(applied),
		})
		remaining = remaining.Sub(applied)
	}

	return allocations, remaining
}
