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
	"github.com/SscSPs/dental_lab_app/internal/utils/accounting"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
)

type balanceService struct {
	BaseService
	clientRepo  portsrepo.ClientReader
	invoiceRepo portsrepo.InvoiceRepositoryFacade
}

// NewBalanceService creates a new balance service.
func NewBalanceService(clientRepo portsrepo.ClientReader, invoiceRepo portsrepo.InvoiceRepositoryFacade, opts ...BaseOption) portssvc.BalanceSvcFacade {
	svc := &balanceService{clientRepo: clientRepo, invoiceRepo: invoiceRepo}
	svc.apply(opts)
	return svc
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// window resolves a YYYY-MM month, or the current month when empty.
func (s *balanceService) window(month string) (time.Time, time.Time, error) {
	if month == "" {
		start, end := accounting.MonthWindow(s.Now())
		return start, end, nil
	}
	start, end, err := accounting.ParsePeriod(month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
	}
	return start, end, nil
}

func (s *balanceService) GetClientBalance(ctx context.Context, clientID string, month string, userID string) (*domain.BalanceSummary, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	start, end, err := s.window(month)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindInvoicesForBalance(ctx, []string{clientID}, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to load invoices for balance", slog.String("client_id", clientID))
		return nil, err
	}

	summary := accounting.SummarizeBalance(clientID, invoices, start, end)
	summary.ClientName = client.ClientName
	return &summary, nil
}

func (s *balanceService) ListBalances(ctx context.Context, month string, state listview.State, userID string) ([]domain.BalanceSummary, int, error) {
	if err := s.AuthorizeUser(ctx, userID, domain.RoleReadOnly); err != nil {
		return nil, 0, err
	}

	start, end, err := s.window(month)
	if err != nil {
		return nil, 0, err
	}

	state = state.WithFilter("active", "true").WithPage(state.Page)
	state = state.Normalize(portsrepo.ClientSortColumns, "client_name")
	clients, total, err := s.clientRepo.FindClients(ctx, state)
	if err != nil {
		s.LogError(ctx, err, "Failed to list clients for balances")
		return nil, 0, err
	}
	if len(clients) == 0 {
		return []domain.BalanceSummary{}, total, nil
	}

	clientIDs := make([]string, len(clients))
	for i, c := range clients {
		clientIDs[i] = c.ClientID
	}
	invoices, err := s.invoiceRepo.FindInvoicesForBalance(ctx, clientIDs, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to load invoices for balances")
		return nil, 0, err
	}

	byClient := make(map[string][]domain.Invoice, len(clients))
	for _, inv := range invoices {
		byClient[inv.ClientID] = append(byClient[inv.ClientID], inv)
	}

	summaries := make([]domain.BalanceSummary, 0, len(clients))
	for _, c := range clients {
		summary := accounting.SummarizeBalance(c.ClientID, byClient[c.ClientID], start, end)
		summary.ClientName = c.ClientName
		summaries = append(summaries, summary)
	}
	return summaries, total, nil
}
