package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/utils/accounting"
	"github.com/SscSPs/dental_lab_app/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type paymentService struct {
	BaseService
	paymentRepo portsrepo.PaymentRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	clientRepo  portsrepo.ClientReader
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	paymentRepo portsrepo.PaymentRepositoryFacade,
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	clientRepo portsrepo.ClientReader,
	opts ...BaseOption,
) portssvc.PaymentSvcFacade {
	svc := &paymentService{paymentRepo: paymentRepo, invoiceRepo: invoiceRepo, clientRepo: clientRepo}
	svc.apply(opts)
	return svc
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// PreviewAllocation shows the proportional split without storing anything. Rounded shares may
// add up to a cent or two more than amount; RecordPayment trims those cents, so the stored
// allocations can be slightly lower than the preview.
func (s *paymentService) PreviewAllocation(ctx context.Context, clientID string, amount decimal.Decimal, invoiceIDs []string, userID string) (*accounting.AllocationResult, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.FindClientByID(ctx, clientID); err != nil {
		return nil, err
	}

	invoices, err := loadOpenInvoices(ctx, s.invoiceRepo, clientID, invoiceIDs)
	if err != nil {
		return nil, err
	}

	result := accounting.AllocatePayment(amount, invoices)
	return &result, nil
}

// RecordPayment stores the payment and lowers the balances of the invoices it pays. Without
// explicit allocations the amount is split like PreviewAllocation, except that rounding cents
// above the payment are taken back from the last invoices. Any remainder becomes a credit.
func (s *paymentService) RecordPayment(ctx context.Context, clientID string, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleBilling); err != nil {
		s.LogError(ctx, err, "User not authorized to record payment", slog.String("user_id", userID))
		return nil, err
	}
	if _, err := s.clientRepo.FindClientByID(ctx, clientID); err != nil {
		return nil, err
	}

	paymentDate, err := dto.ParseDate(req.PaymentDate, s.Today())
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}

	amount := accounting.Round2(req.Amount)
	var (
		invoices    []domain.Invoice
		allocations []accounting.InvoiceAllocation
	)
	if len(req.Allocations) > 0 {
		invoices, allocations, err = s.explicitAllocations(ctx, clientID, amount, req.Allocations)
		if err != nil {
			return nil, err
		}
	} else {
		invoices, err = loadOpenInvoices(ctx, s.invoiceRepo, clientID, req.InvoiceIDs)
		if err != nil {
			return nil, err
		}
		allocations = trimOvershoot(accounting.AllocatePayment(amount, invoices).Allocations, amount)
	}

	now := s.Now()
	payment := domain.Payment{
		PaymentID:   uuid.NewString(),
		ClientID:    clientID,
		PaymentDate: paymentDate,
		Method:      domain.PaymentMethod(req.Method),
		Memo:        req.Memo,
		Amount:      amount,
		Allocations: make([]domain.PaymentAllocation, 0, len(allocations)),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	for _, a := range allocations {
		if a.AllocatedAmount.IsPositive() {
			payment.Allocations = append(payment.Allocations, domain.PaymentAllocation{InvoiceID: a.InvoiceID, Amount: a.AllocatedAmount})
		}
	}
	payment.Overpayment = amount.Sub(payment.AllocatedTotal())

	record := portsrepo.PaymentRecord{
		Payment:        payment,
		BalanceChanges: balanceChanges(invoices, allocations),
	}
	if payment.Overpayment.IsPositive() {
		record.CreditInvoice = newCreditRow(clientID, payment.Overpayment, paymentDate, now, userID)
	}

	if err := s.paymentRepo.RecordPayment(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to record payment", slog.String("client_id", clientID))
		return nil, err
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("client_id", clientID),
		slog.String("amount", amount.String()),
		slog.String("overpayment", payment.Overpayment.String()),
		slog.Int("invoices", len(payment.Allocations)))
	return &payment, nil
}

// explicitAllocations validates caller-chosen amounts: each at most the invoice's due amount
// and together at most the payment.
func (s *paymentService) explicitAllocations(ctx context.Context, clientID string, amount decimal.Decimal, reqs []dto.PaymentAllocationRequest) ([]domain.Invoice, []accounting.InvoiceAllocation, error) {
	ids := make([]string, len(reqs))
	for i, r := range reqs {
		ids[i] = r.InvoiceID
	}
	invoices, err := loadOpenInvoices(ctx, s.invoiceRepo, clientID, ids)
	if err != nil {
		return nil, nil, err
	}

	total := decimal.Zero
	allocations := make([]accounting.InvoiceAllocation, 0, len(reqs))
	for i, r := range reqs {
		inv := invoices[i]
		applied := accounting.Round2(r.Amount)
		if applied.GreaterThan(inv.DueAmount) {
			return nil, nil, fmt.Errorf("allocation %s exceeds the %s due on invoice %s: %w",
				applied, inv.DueAmount, inv.InvoiceID, apperrors.ErrValidation)
		}
		total = total.Add(applied)
		allocations = append(allocations, accounting.InvoiceAllocation{
			InvoiceID:       inv.InvoiceID,
			InvoiceNumber:   inv.InvoiceNumber,
			AllocatedAmount: applied,
			BalanceBefore:   inv.DueAmount,
			BalanceAfter:    inv.DueAmount.Sub(applied),
		})
	}
	if total.GreaterThan(amount) {
		return nil, nil, fmt.Errorf("allocations total %s exceeds payment %s: %w", total, amount, apperrors.ErrValidation)
	}
	return invoices, allocations, nil
}

// trimOvershoot takes back rounding cents from the last allocations when proportional shares
// add up to more than the money received.
func trimOvershoot(allocations []accounting.InvoiceAllocation, amount decimal.Decimal) []accounting.InvoiceAllocation {
	excess := accounting.Sum(allocatedAmounts(allocations)...).Sub(amount)
	for i := len(allocations) - 1; i >= 0 && excess.IsPositive(); i-- {
		take := decimal.Min(excess, allocations[i].AllocatedAmount)
		allocations[i].AllocatedAmount = allocations[i].AllocatedAmount.Sub(take)
		allocations[i].BalanceAfter = allocations[i].BalanceAfter.Add(take)
		excess = excess.Sub(take)
	}
	return allocations
}

func allocatedAmounts(allocations []accounting.InvoiceAllocation) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(allocations))
	for i, a := range allocations {
		amounts[i] = a.AllocatedAmount
	}
	return amounts
}

func (s *paymentService) GetPaymentByID(ctx context.Context, paymentID string, userID string) (*domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find payment", slog.String("payment_id", paymentID))
		}
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, clientID string, limit int, nextToken string, userID string) ([]domain.Payment, string, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, "", err
	}

	var after *pagination.Cursor
	if nextToken != "" {
		cursor, err := pagination.DecodeToken(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
		}
		after = &cursor
	}

	// One extra row tells whether another page exists.
	payments, err := s.paymentRepo.FindPaymentsByClient(ctx, clientID, limit+1, after)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments", slog.String("client_id", clientID))
		return nil, "", err
	}

	if len(payments) <= limit {
		return payments, "", nil
	}
	payments = payments[:limit]
	last := payments[len(payments)-1]
	token := pagination.EncodeToken(pagination.Cursor{Date: last.PaymentDate, CreatedAt: last.CreatedAt, ID: last.PaymentID})
	return payments, token, nil
}
