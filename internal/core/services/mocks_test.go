package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
	"github.com/SscSPs/dental_lab_app/internal/utils/pagination"
	"github.com/stretchr/testify/mock"
)

// --- User repository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByProvider(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	args := m.Called(ctx, provider, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

// --- Client repository ---

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) FindClients(ctx context.Context, state listview.State) ([]domain.Client, int, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Client), args.Int(1), args.Error(2)
}

func (m *MockClientRepository) SearchClients(ctx context.Context, term string, limit int) ([]domain.Client, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

func (m *MockClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *MockClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *MockClientRepository) DeactivateClient(ctx context.Context, clientID string, userID string, now time.Time) error {
	return m.Called(ctx, clientID, userID, now).Error(0)
}

// --- Case repository ---

type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) SaveCase(ctx context.Context, c domain.Case) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCaseRepository) FindCaseByID(ctx context.Context, caseID string) (*domain.Case, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseRepository) FindCasesByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Case, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Case), args.Error(1)
}

func (m *MockCaseRepository) SearchCases(ctx context.Context, term string, limit int) ([]domain.Case, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Case), args.Error(1)
}

// --- Invoice repository ---

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) (string, error) {
	args := m.Called(ctx, invoice)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoicesByIDs(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error) {
	args := m.Called(ctx, invoiceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoices(ctx context.Context, filter portsrepo.InvoiceFilter) ([]domain.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoicesForBalance(ctx context.Context, clientIDs []string, createdBefore time.Time) ([]domain.Invoice, error) {
	args := m.Called(ctx, clientIDs, createdBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

// --- Payment repository ---

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) RecordPayment(ctx context.Context, record portsrepo.PaymentRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentsByClient(ctx context.Context, clientID string, limit int, after *pagination.Cursor) ([]domain.Payment, error) {
	args := m.Called(ctx, clientID, limit, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// --- Adjustment repository ---

type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) RecordAdjustment(ctx context.Context, record portsrepo.AdjustmentRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockAdjustmentRepository) FindAdjustmentsByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Adjustment, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Adjustment), args.Error(1)
}

// --- Statement repository ---

type MockStatementRepository struct {
	mock.Mock
}

func (m *MockStatementRepository) UpsertStatements(ctx context.Context, statements []domain.Statement) error {
	return m.Called(ctx, statements).Error(0)
}

func (m *MockStatementRepository) FindStatementByID(ctx context.Context, statementID string) (*domain.Statement, error) {
	args := m.Called(ctx, statementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}

func (m *MockStatementRepository) FindStatementsByPeriod(ctx context.Context, period string) ([]domain.Statement, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Statement), args.Error(1)
}

func (m *MockStatementRepository) MarkStatementSent(ctx context.Context, statementID string, sentAt time.Time) error {
	return m.Called(ctx, statementID, sentAt).Error(0)
}

var (
	_ portsrepo.UserRepositoryFacade       = (*MockUserRepository)(nil)
	_ portsrepo.ClientRepositoryFacade     = (*MockClientRepository)(nil)
	_ portsrepo.CaseRepositoryFacade       = (*MockCaseRepository)(nil)
	_ portsrepo.InvoiceRepositoryFacade    = (*MockInvoiceRepository)(nil)
	_ portsrepo.PaymentRepositoryFacade    = (*MockPaymentRepository)(nil)
	_ portsrepo.AdjustmentRepositoryFacade = (*MockAdjustmentRepository)(nil)
	_ portsrepo.StatementRepositoryFacade  = (*MockStatementRepository)(nil)
)
