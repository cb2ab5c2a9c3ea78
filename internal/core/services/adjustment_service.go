package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/utils/accounting"
	"github.com/google/uuid"
)

type adjustmentService struct {
	BaseService
	adjustmentRepo portsrepo.AdjustmentRepositoryFacade
	invoiceRepo    portsrepo.InvoiceRepositoryFacade
	clientRepo     portsrepo.ClientReader
}

// NewAdjustmentService creates a new adjustment service.
func NewAdjustmentService(
	adjustmentRepo portsrepo.AdjustmentRepositoryFacade,
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	clientRepo portsrepo.ClientReader,
	opts ...BaseOption,
) portssvc.AdjustmentSvcFacade {
	svc := &adjustmentService{adjustmentRepo: adjustmentRepo, invoiceRepo: invoiceRepo, clientRepo: clientRepo}
	svc.apply(opts)
	return svc
}

var _ portssvc.AdjustmentSvcFacade = (*adjustmentService)(nil)

// CreateAdjustment enters a manual debit or credit.
//
// A debit becomes a new unpaid invoice. A credit in apply mode pays down the referenced
// invoices in the given order and keeps any surplus as client credit; in account mode the
// whole amount is kept as client credit. A credit without a mode applies when invoices are
// referenced and goes to the account otherwise.
func (s *adjustmentService) CreateAdjustment(ctx context.Context, clientID string, req dto.CreateAdjustmentRequest, userID string) (*domain.Adjustment, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleBilling); err != nil {
		s.LogError(ctx, err, "User not authorized to create adjustment", slog.String("user_id", userID))
		return nil, err
	}
	if _, err := s.clientRepo.FindClientByID(ctx, clientID); err != nil {
		return nil, err
	}

	adjustmentDate, err := dto.ParseDate(req.AdjustmentDate, s.Today())
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}

	now := s.Now()
	amount := accounting.Round2(req.Amount)
	adjustment := domain.Adjustment{
		AdjustmentID:    uuid.NewString(),
		ClientID:        clientID,
		AdjustmentDate:  adjustmentDate,
		Description:     req.Description,
		Amount:          amount,
		Type:            domain.AdjustmentType(req.Type),
		AppliedInvoices: []string{},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	record := portsrepo.AdjustmentRecord{}

	switch adjustment.Type {
	case domain.AdjustmentDebit:
		dueDate, err := dto.ParseDate(req.DueDate, adjustmentDate)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
		}
		record.NewInvoice = &domain.Invoice{
			InvoiceID: uuid.NewString(),
			ClientID:  clientID,
			Amount:    amount,
			DueAmount: amount,
			Status:    domain.InvoiceUnpaid,
			DueDate:   dueDate,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: userID,
		}

	case domain.AdjustmentCredit:
		mode := domain.CreditMode(req.CreditMode)
		if mode == "" {
			mode = domain.CreditAccount
			if len(req.AppliedInvoices) > 0 {
				mode = domain.CreditApply
			}
		}
		adjustment.CreditMode = mode

		if mode == domain.CreditAccount {
			record.NewInvoice = newCreditRow(clientID, amount, adjustmentDate, now, userID)
			break
		}

		if len(req.AppliedInvoices) == 0 {
			return nil, fmt.Errorf("a credit applied to invoices must reference at least one invoice: %w", apperrors.ErrValidation)
		}
		invoices, err := loadOpenInvoices(ctx, s.invoiceRepo, clientID, req.AppliedInvoices)
		if err != nil {
			return nil, err
		}

		allocations, surplus := accounting.ApplyInOrder(amount, invoices)
		record.BalanceChanges = balanceChanges(invoices, allocations)
		for _, a := range allocations {
			adjustment.AppliedInvoices = append(adjustment.AppliedInvoices, a.InvoiceID)
		}
		if surplus.IsPositive() {
			record.NewInvoice = newCreditRow(clientID, surplus, adjustmentDate, now, userID)
		}

	default:
		return nil, fmt.Errorf("unknown adjustment type %q: %w", req.Type, apperrors.ErrValidation)
	}

	record.Adjustment = adjustment
	if err := s.adjustmentRepo.RecordAdjustment(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to record adjustment", slog.String("client_id", clientID))
		return nil, err
	}

	s.LogInfo(ctx, "Adjustment recorded",
		slog.String("adjustment_id", adjustment.AdjustmentID),
		slog.String("type", string(adjustment.Type)),
		slog.String("credit_mode", string(adjustment.CreditMode)),
		slog.String("amount", amount.String()))
	return &adjustment, nil
}

func (s *adjustmentService) ListAdjustments(ctx context.Context, clientID string, limit, offset int, userID string) ([]domain.Adjustment, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.FindClientByID(ctx, clientID); err != nil {
		return nil, err
	}

	adjustments, err := s.adjustmentRepo.FindAdjustmentsByClient(ctx, clientID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list adjustments", slog.String("client_id", clientID))
		return nil, err
	}
	return adjustments, nil
}
