package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type invoiceService struct {
	BaseService
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	clientRepo  portsrepo.ClientReader
	caseRepo    portsrepo.CaseRepositoryFacade
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	clientRepo portsrepo.ClientReader,
	caseRepo portsrepo.CaseRepositoryFacade,
	opts ...BaseOption,
) portssvc.InvoiceSvcFacade {
	svc := &invoiceService{invoiceRepo: invoiceRepo, clientRepo: clientRepo, caseRepo: caseRepo}
	svc.apply(opts)
	return svc
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleBilling); err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.FindClientByID(ctx, req.ClientID); err != nil {
		return nil, err
	}
	if req.CaseID != "" {
		labCase, err := s.caseRepo.FindCaseByID(ctx, req.CaseID)
		if err != nil {
			return nil, err
		}
		if labCase.ClientID != req.ClientID {
			return nil, fmt.Errorf("case %s belongs to another client: %w", req.CaseID, apperrors.ErrValidation)
		}
	}

	dueDate, err := dto.ParseDate(req.DueDate, s.Today())
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}

	amount := accounting.Round2(req.Amount)
	now := s.Now()
	invoice := domain.Invoice{
		InvoiceID: uuid.NewString(),
		ClientID:  req.ClientID,
		CaseID:    req.CaseID,
		Amount:    amount,
		DueAmount: amount,
		Status:    domain.InvoiceUnpaid,
		DueDate:   dueDate,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: userID,
	}

	number, err := s.invoiceRepo.SaveInvoice(ctx, invoice)
	if err != nil {
		s.LogError(ctx, err, "Failed to save invoice", slog.String("client_id", req.ClientID))
		return nil, err
	}
	invoice.InvoiceNumber = number

	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("invoice_number", number),
		slog.String("amount", amount.String()))
	return &invoice, nil
}

func (s *invoiceService) GetInvoiceByID(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
}

func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams, userID string) ([]domain.Invoice, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	filter := portsrepo.InvoiceFilter{
		ClientID: params.ClientID,
		Limit:    params.PageSize,
		Offset:   (params.Page - 1) * params.PageSize,
	}
	switch params.Status {
	case "":
	case "open":
		filter.Statuses = []domain.InvoiceStatus{domain.InvoiceUnpaid, domain.InvoicePartiallyPaid}
	default:
		filter.Statuses = []domain.InvoiceStatus{domain.InvoiceStatus(params.Status)}
	}

	dueFrom, err := dto.ParseOptionalDate(params.DueFrom)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}
	dueTo, err := dto.ParseOptionalDate(params.DueTo)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}
	filter.DueFrom = dueFrom
	if dueTo != nil {
		// dueTo is inclusive for callers.
		end := dueTo.AddDate(0, 0, 1)
		filter.DueTo = &end
	}

	invoices, err := s.invoiceRepo.FindInvoices(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices")
		return nil, err
	}
	return invoices, nil
}

// loadOpenInvoices fetches the invoices in the given order and checks that each belongs to
// the client and still has an amount due.
func loadOpenInvoices(ctx context.Context, repo portsrepo.InvoiceRepositoryFacade, clientID string, invoiceIDs []string) ([]domain.Invoice, error) {
	if len(invoiceIDs) == 0 {
		return []domain.Invoice{}, nil
	}

	seen := make(map[string]bool, len(invoiceIDs))
	for _, id := range invoiceIDs {
		if seen[id] {
			return nil, fmt.Errorf("invoice %s selected twice: %w", id, apperrors.ErrValidation)
		}
		seen[id] = true
	}

	found, err := repo.FindInvoicesByIDs(ctx, invoiceIDs)
	if err != nil {
		return nil, err
	}

	invoices := make([]domain.Invoice, 0, len(invoiceIDs))
	for _, id := range invoiceIDs {
		inv, ok := found[id]
		switch {
		case !ok:
			return nil, fmt.Errorf("invoice %s not found: %w", id, apperrors.ErrValidation)
		case inv.ClientID != clientID:
			return nil, fmt.Errorf("invoice %s belongs to another client: %w", id, apperrors.ErrValidation)
		case !inv.IsOpen():
			return nil, fmt.Errorf("invoice %s has nothing due: %w", id, apperrors.ErrValidation)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// balanceChanges turns allocations into guarded due amount updates.
func balanceChanges(invoices []domain.Invoice, allocations []accounting.InvoiceAllocation) []portsrepo.InvoiceBalanceChange {
	byID := make(map[string]domain.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.InvoiceID] = inv
	}

	changes := make([]portsrepo.InvoiceBalanceChange, 0, len(allocations))
	for _, a := range allocations {
		if !a.AllocatedAmount.IsPositive() {
			continue
		}
		inv := byID[a.InvoiceID]
		changes = append(changes, portsrepo.InvoiceBalanceChange{
			InvoiceID:   a.InvoiceID,
			Applied:     a.AllocatedAmount,
			ExpectedDue: inv.DueAmount,
			NewStatus:   domain.StatusForDue(inv.Amount, a.BalanceAfter),
		})
	}
	return changes
}

// newCreditRow builds the invoice row that keeps money as client credit.
func newCreditRow(clientID string, amount decimal.Decimal, date, now time.Time, userID string) *domain.Invoice {
	return &domain.Invoice{
		InvoiceID: uuid.NewString(),
		ClientID:  clientID,
		Amount:    amount,
		DueAmount: decimal.Zero,
		Status:    domain.InvoiceCredit,
		DueDate:   date,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: userID,
	}
}
