package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/utils/accounting"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) RegisterUser(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) FindOrCreateGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) AuthorizeUserAction(ctx context.Context, userID string, requiredRole domain.UserRole) error {
	args := m.Called(ctx, userID, requiredRole)
	return args.Error(0)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock TokenService ---
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

var _ portssvc.TokenSvcFacade = (*MockTokenService)(nil)

// --- Mock GoogleOAuthService ---
type MockGoogleOAuthService struct {
	mock.Mock
}

func (m *MockGoogleOAuthService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}
func (m *MockGoogleOAuthService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	args := m.Called(ctx, idTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*idtoken.Payload), args.Error(1)
}

var _ portssvc.GoogleOAuthSvcFacade = (*MockGoogleOAuthService)(nil)

// --- Mock ClientService ---
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) GetClientByID(ctx context.Context, clientID string, userID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientService) ListClients(ctx context.Context, state listview.State, userID string) ([]domain.Client, int, error) {
	args := m.Called(ctx, state, userID)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Client), args.Int(1), args.Error(2)
}
func (m *MockClientService) CreateClient(ctx context.Context, req dto.CreateClientRequest, userID string) (*domain.Client, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientService) UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest, userID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientService) DeactivateClient(ctx context.Context, clientID string, userID string) error {
	args := m.Called(ctx, clientID, userID)
	return args.Error(0)
}

var _ portssvc.ClientSvcFacade = (*MockClientService)(nil)

// --- Mock CaseService ---
type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) CreateCase(ctx context.Context, clientID string, req dto.CreateCaseRequest, userID string) (*domain.Case, error) {
	args := m.Called(ctx, clientID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}
func (m *MockCaseService) GetCaseByID(ctx context.Context, caseID string, userID string) (*domain.Case, error) {
	args := m.Called(ctx, caseID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}
func (m *MockCaseService) ListCasesByClient(ctx context.Context, clientID string, limit, offset int, userID string) ([]domain.Case, error) {
	args := m.Called(ctx, clientID, limit, offset, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Case), args.Error(1)
}

var _ portssvc.CaseSvcFacade = (*MockCaseService)(nil)

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) GetInvoiceByID(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams, userID string) ([]domain.Invoice, error) {
	args := m.Called(ctx, params, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) GetPaymentByID(ctx context.Context, paymentID string, userID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) ListPayments(ctx context.Context, clientID string, limit int, nextToken string, userID string) ([]domain.Payment, string, error) {
	args := m.Called(ctx, clientID, limit, nextToken, userID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.Payment), args.String(1), args.Error(2)
}
func (m *MockPaymentService) PreviewAllocation(ctx context.Context, clientID string, amount decimal.Decimal, invoiceIDs []string, userID string) (*accounting.AllocationResult, error) {
	args := m.Called(ctx, clientID, amount, invoiceIDs, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.AllocationResult), args.Error(1)
}
func (m *MockPaymentService) RecordPayment(ctx context.Context, clientID string, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error) {
	args := m.Called(ctx, clientID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock AdjustmentService ---
type MockAdjustmentService struct {
	mock.Mock
}

func (m *MockAdjustmentService) CreateAdjustment(ctx context.Context, clientID string, req dto.CreateAdjustmentRequest, userID string) (*domain.Adjustment, error) {
	args := m.Called(ctx, clientID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Adjustment), args.Error(1)
}
func (m *MockAdjustmentService) ListAdjustments(ctx context.Context, clientID string, limit, offset int, userID string) ([]domain.Adjustment, error) {
	args := m.Called(ctx, clientID, limit, offset, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Adjustment), args.Error(1)
}

var _ portssvc.AdjustmentSvcFacade = (*MockAdjustmentService)(nil)

// --- Mock BalanceService ---
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetClientBalance(ctx context.Context, clientID string, month string, userID string) (*domain.BalanceSummary, error) {
	args := m.Called(ctx, clientID, month, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSummary), args.Error(1)
}
func (m *MockBalanceService) ListBalances(ctx context.Context, month string, state listview.State, userID string) ([]domain.BalanceSummary, int, error) {
	args := m.Called(ctx, month, state, userID)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.BalanceSummary), args.Int(1), args.Error(2)
}

var _ portssvc.BalanceSvcFacade = (*MockBalanceService)(nil)

// --- Mock StatementService ---
type MockStatementService struct {
	mock.Mock
}

func (m *MockStatementService) GenerateStatements(ctx context.Context, period string, userID string) ([]domain.Statement, error) {
	args := m.Called(ctx, period, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Statement), args.Error(1)
}
func (m *MockStatementService) ListStatements(ctx context.Context, period string, userID string) ([]domain.Statement, error) {
	args := m.Called(ctx, period, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Statement), args.Error(1)
}
func (m *MockStatementService) GetStatement(ctx context.Context, statementID string, userID string) (*domain.Statement, error) {
	args := m.Called(ctx, statementID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}
func (m *MockStatementService) MarkStatementSent(ctx context.Context, statementID string, userID string) (*domain.Statement, error) {
	args := m.Called(ctx, statementID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}

var _ portssvc.StatementSvcFacade = (*MockStatementService)(nil)

// --- Mock SearchService ---
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, term string, limit int, userID string) ([]domain.SearchResult, error) {
	args := m.Called(ctx, term, limit, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

var _ portssvc.SearchSvc = (*MockSearchService)(nil)
