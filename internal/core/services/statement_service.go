package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/utils/accounting"
	"github.com/google/uuid"
)

type statementService struct {
	BaseService
	statementRepo portsrepo.StatementRepositoryFacade
	invoiceRepo   portsrepo.InvoiceRepositoryFacade
	numberPrefix  string
}

// NewStatementService creates a new statement service. Statement numbers start with numberPrefix.
func NewStatementService(
	statementRepo portsrepo.StatementRepositoryFacade,
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	numberPrefix string,
	opts ...BaseOption,
) portssvc.StatementSvcFacade {
	svc := &statementService{statementRepo: statementRepo, invoiceRepo: invoiceRepo, numberPrefix: numberPrefix}
	svc.apply(opts)
	return svc
}

var _ portssvc.StatementSvcFacade = (*statementService)(nil)

// GenerateStatements is safe to rerun: clients that already have a statement for the period
// keep its ID, number and sent time while the amounts and last sent time are refreshed.
// New clients get the next free sequence numbers in client ID order.
func (s *statementService) GenerateStatements(ctx context.Context, period string, userID string) ([]domain.Statement, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleBilling); err != nil {
		s.LogError(ctx, err, "User not authorized to generate statements", slog.String("user_id", userID))
		return nil, err
	}

	start, end, err := accounting.ParsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}

	invoices, err := s.invoiceRepo.FindInvoices(ctx, portsrepo.InvoiceFilter{
		Statuses: []domain.InvoiceStatus{domain.InvoiceUnpaid, domain.InvoicePartiallyPaid},
		DueFrom:  &start,
		DueTo:    &end,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to load invoices for statements", slog.String("period", period))
		return nil, err
	}

	summaries := accounting.SummarizeStatements(invoices, start, end)
	if len(summaries) == 0 {
		s.LogInfo(ctx, "No open invoices due in period, no statements generated", slog.String("period", period))
		return []domain.Statement{}, nil
	}

	existing, err := s.statementRepo.FindStatementsByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	byClient := make(map[string]domain.Statement, len(existing))
	nextSeq := 1
	for _, st := range existing {
		byClient[st.ClientID] = st
		if seq := sequenceOf(st.StatementNumber); seq >= nextSeq {
			nextSeq = seq + 1
		}
	}

	now := s.Now()
	statements := make([]domain.Statement, 0, len(summaries))
	for _, sum := range summaries {
		st, ok := byClient[sum.ClientID]
		if !ok {
			st = domain.Statement{
				StatementID:     uuid.NewString(),
				StatementNumber: accounting.StatementNumber(s.numberPrefix, start, nextSeq),
				ClientID:        sum.ClientID,
				Period:          period,
				PeriodStart:     start,
				PeriodEnd:       end,
				CreatedAt:       now,
			}
			nextSeq++
		}
		st.Amount = sum.TotalAmount
		st.Outstanding = sum.TotalDue
		st.LastSent = sum.LastSent
		statements = append(statements, st)
	}

	if err := s.statementRepo.UpsertStatements(ctx, statements); err != nil {
		s.LogError(ctx, err, "Failed to store statements", slog.String("period", period))
		return nil, err
	}

	s.LogInfo(ctx, "Statements generated",
		slog.String("period", period),
		slog.Int("statements", len(statements)),
		slog.Int("new", len(statements)-countExisting(statements, byClient)))
	return statements, nil
}

// sequenceOf extracts the trailing sequence number of a statement number, or 0.
func sequenceOf(number string) int {
	idx := strings.LastIndex(number, "-")
	if idx < 0 {
		return 0
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0
	}
	return seq
}

func countExisting(statements []domain.Statement, existing map[string]domain.Statement) int {
	n := 0
	for _, st := range statements {
		if _, ok := existing[st.ClientID]; ok {
			n++
		}
	}
	return n
}

func (s *statementService) ListStatements(ctx context.Context, period string, userID string) ([]domain.Statement, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, _, err := accounting.ParsePeriod(period); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}
	return s.statementRepo.FindStatementsByPeriod(ctx, period)
}

func (s *statementService) GetStatement(ctx context.Context, statementID string, userID string) (*domain.Statement, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.statementRepo.FindStatementByID(ctx, statementID)
}

func (s *statementService) MarkStatementSent(ctx context.Context, statementID string, userID string) (*domain.Statement, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleBilling); err != nil {
		return nil, err
	}

	if err := s.statementRepo.MarkStatementSent(ctx, statementID, s.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to mark statement sent", slog.String("statement_id", statementID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Statement marked sent", slog.String("statement_id", statementID))
	return s.statementRepo.FindStatementByID(ctx, statementID)
}
