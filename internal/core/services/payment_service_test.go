package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/dental_lab_app/internal/core/ports/services"
	"github.com/SscSPs/dental_lab_app/internal/core/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var fixedNow = time.Date(2026, time.September, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openInvoice(id, clientID, amount, due string) domain.Invoice {
	a, d := dec(amount), dec(due)
	return domain.Invoice{
		InvoiceID:     id,
		InvoiceNumber: "INV-" + id,
		ClientID:      clientID,
		Amount:        a,
		DueAmount:     d,
		Status:        domain.StatusForDue(a, d),
		DueDate:       fixedNow,
		CreatedAt:     fixedNow.AddDate(0, 0, -10),
	}
}

type PaymentServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	paymentRepo *MockPaymentRepository
	invoiceRepo *MockInvoiceRepository
	clientRepo  *MockClientRepository
	service     portssvc.PaymentSvcFacade
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.paymentRepo = new(MockPaymentRepository)
	suite.invoiceRepo = new(MockInvoiceRepository)
	suite.clientRepo = new(MockClientRepository)
	suite.service = services.NewPaymentService(suite.paymentRepo, suite.invoiceRepo, suite.clientRepo, services.WithClock(fixedClock))

	suite.clientRepo.On("FindClientByID", mock.Anything, "client-1").
		Return(&domain.Client{ClientID: "client-1", ClientName: "Bright Smiles", IsActive: true}, nil).Maybe()
}

func (suite *PaymentServiceTestSuite) givenInvoices(invoices ...domain.Invoice) {
	ids := make([]string, len(invoices))
	found := make(map[string]domain.Invoice, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.InvoiceID
		found[inv.InvoiceID] = inv
	}
	suite.invoiceRepo.On("FindInvoicesByIDs", mock.Anything, ids).Return(found, nil).Once()
}

func (suite *PaymentServiceTestSuite) captureRecord() *portsrepo.PaymentRecord {
	var captured portsrepo.PaymentRecord
	suite.paymentRepo.On("RecordPayment", mock.Anything, mock.AnythingOfType("repositories.PaymentRecord")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(portsrepo.PaymentRecord)
		}).
		Return(nil).Once()
	return &captured
}

func (suite *PaymentServiceTestSuite) TestPreviewAllocation_Proportional() {
	suite.givenInvoices(openInvoice("a", "client-1", "100", "100"), openInvoice("b", "client-1", "300", "300"))

	result, err := suite.service.PreviewAllocation(suite.ctx, "client-1", dec("200"), []string{"a", "b"}, "user-1")

	suite.Require().NoError(err)
	suite.Require().Len(result.Allocations, 2)
	suite.True(dec("50").Equal(result.Allocations[0].AllocatedAmount))
	suite.True(dec("150").Equal(result.Allocations[1].AllocatedAmount))
	suite.True(dec("200").Equal(result.RemainingBalance))
	suite.True(result.Overpayment.IsZero())
	suite.paymentRepo.AssertNotCalled(suite.T(), "RecordPayment", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_PartialPaymentUpdatesStatuses() {
	suite.givenInvoices(openInvoice("a", "client-1", "100", "100"), openInvoice("b", "client-1", "300", "300"))
	record := suite.captureRecord()

	payment, err := suite.service.RecordPayment(suite.ctx, "client-1", dto.RecordPaymentRequest{
		Method:     "check",
		Amount:     dec("200"),
		InvoiceIDs: []string{"a", "b"},
	}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(fixedNow.Truncate(24*time.Hour), payment.PaymentDate)
	suite.True(payment.Overpayment.IsZero())
	suite.Len(payment.Allocations, 2)
	suite.Nil(record.CreditInvoice)

	suite.Require().Len(record.BalanceChanges, 2)
	suite.Equal(domain.InvoicePartiallyPaid, record.BalanceChanges[0].NewStatus)
	suite.True(dec("100").Equal(record.BalanceChanges[0].ExpectedDue))
	suite.True(dec("50").Equal(record.BalanceChanges[0].Applied))
	suite.Equal(domain.InvoicePartiallyPaid, record.BalanceChanges[1].NewStatus)
	suite.paymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_OverpaymentBecomesCredit() {
	suite.givenInvoices(openInvoice("a", "client-1", "100", "40"), openInvoice("b", "client-1", "300", "60"))
	record := suite.captureRecord()

	payment, err := suite.service.RecordPayment(suite.ctx, "client-1", dto.RecordPaymentRequest{
		Method:     "cash",
		Amount:     dec("150"),
		InvoiceIDs: []string{"a", "b"},
	}, "user-1")

	suite.Require().NoError(err)
	suite.True(dec("50").Equal(payment.Overpayment))
	suite.Require().NotNil(record.CreditInvoice)
	suite.Equal(domain.InvoiceCredit, record.CreditInvoice.Status)
	suite.True(dec("50").Equal(record.CreditInvoice.Amount))
	suite.True(record.CreditInvoice.DueAmount.IsZero())
	for _, change := range record.BalanceChanges {
		suite.Equal(domain.InvoicePaid, change.NewStatus)
	}
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_RoundingNeverExceedsPayment() {
	suite.givenInvoices(
		openInvoice("a", "client-1", "0.01", "0.01"),
		openInvoice("b", "client-1", "0.01", "0.01"),
		openInvoice("c", "client-1", "0.01", "0.01"),
	)
	record := suite.captureRecord()

	payment, err := suite.service.RecordPayment(suite.ctx, "client-1", dto.RecordPaymentRequest{
		Method:     "card",
		Amount:     dec("0.02"),
		InvoiceIDs: []string{"a", "b", "c"},
	}, "user-1")

	suite.Require().NoError(err)
	suite.True(dec("0.02").Equal(payment.AllocatedTotal()))
	suite.True(payment.Overpayment.IsZero())
	suite.Len(record.BalanceChanges, 2)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_StoresLessThanRoundedPreview() {
	invoices := []domain.Invoice{
		openInvoice("a", "client-1", "0.01", "0.01"),
		openInvoice("b", "client-1", "0.01", "0.01"),
		openInvoice("c", "client-1", "0.01", "0.01"),
	}
	suite.givenInvoices(invoices...)
	suite.givenInvoices(invoices...)
	record := suite.captureRecord()

	preview, err := suite.service.PreviewAllocation(suite.ctx, "client-1", dec("0.02"), []string{"a", "b", "c"}, "user-1")
	suite.Require().NoError(err)
	previewTotal := decimal.Zero
	for _, a := range preview.Allocations {
		previewTotal = previewTotal.Add(a.AllocatedAmount)
	}
	suite.True(dec("0.03").Equal(previewTotal))

	payment, err := suite.service.RecordPayment(suite.ctx, "client-1", dto.RecordPaymentRequest{
		Method:     "card",
		Amount:     dec("0.02"),
		InvoiceIDs: []string{"a", "b", "c"},
	}, "user-1")

	suite.Require().NoError(err)
	suite.True(dec("0.02").Equal(payment.AllocatedTotal()))
	suite.True(payment.AllocatedTotal().LessThan(previewTotal))
	suite.Len(record.Payment.Allocations, 2)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_ExplicitAllocations() {
	suite.givenInvoices(openInvoice("b", "client-1", "300", "300"), openInvoice("a", "client-1", "100", "100"))
	record := suite.captureRecord()

	payment, err := suite.service.RecordPayment(suite.ctx, "client-1", dto.RecordPaymentRequest{
		Method: "ach",
		Amount: dec("250"),
		Allocations: []dto.PaymentAllocationRequest{
			{InvoiceID: "b", Amount: dec("150")},
			{InvoiceID: "a", Amount: dec("100")},
		},
	}, "user-1")

	suite.Require().NoError(err)
	suite.True(payment.Overpayment.IsZero())
	suite.Require().Len(record.BalanceChanges, 2)
	suite.Equal(domain.InvoicePartiallyPaid, record.BalanceChanges[0].NewStatus)
	suite.Equal(domain.InvoicePaid, record.BalanceChanges[1].NewStatus)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_ExplicitAllocationAboveDue() {
	suite.givenInvoices(openInvoice("a", "client-1", "100", "80"))

	_, err := suite.service.RecordPayment(suite.ctx, "client-1", dto.RecordPaymentRequest{
		Method:      "cash",
		Amount:      dec("100"),
		Allocations: []dto.PaymentAllocationRequest{{InvoiceID: "a", Amount: dec("90")}},
	}, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.paymentRepo.AssertNotCalled(suite.T(), "RecordPayment", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_RejectsForeignAndSettledInvoices() {
	tests := []struct {
		name    string
		invoice domain.Invoice
	}{
		{name: "other client", invoice: openInvoice("x", "client-2", "100", "100")},
		{name: "already paid", invoice: openInvoice("x", "client-1", "100", "0")},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.givenInvoices(tt.invoice)

			_, err := suite.service.RecordPayment(suite.ctx, "client-1", dto.RecordPaymentRequest{
				Method:     "cash",
				Amount:     dec("10"),
				InvoiceIDs: []string{"x"},
			}, "user-1")

			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.paymentRepo.AssertNotCalled(suite.T(), "RecordPayment", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_ConcurrentUpdateSurfacesRepositoryError() {
	suite.givenInvoices(openInvoice("a", "client-1", "100", "100"))
	suite.paymentRepo.On("RecordPayment", mock.Anything, mock.Anything).Return(apperrors.ErrValidation).Once()

	_, err := suite.service.RecordPayment(suite.ctx, "client-1", dto.RecordPaymentRequest{
		Method:     "cash",
		Amount:     dec("100"),
		InvoiceIDs: []string{"a"},
	}, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PaymentServiceTestSuite) TestRecordPayment_ReadOnlyUserIsForbidden() {
	userRepo := new(MockUserRepository)
	userRepo.On("FindUserByID", mock.Anything, "viewer").
		Return(&domain.User{UserID: "viewer", Role: domain.RoleReadOnly}, nil).Once()
	svc := services.NewPaymentService(suite.paymentRepo, suite.invoiceRepo, suite.clientRepo,
		services.WithAuthorizer(services.NewUserService(userRepo)))

	_, err := svc.RecordPayment(suite.ctx, "client-1", dto.RecordPaymentRequest{Method: "cash", Amount: dec("1")}, "viewer")

	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.invoiceRepo.AssertNotCalled(suite.T(), "FindInvoicesByIDs", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestListPayments_NextToken() {
	payments := []domain.Payment{
		{PaymentID: "p3", PaymentDate: fixedNow, AuditFields: domain.AuditFields{CreatedAt: fixedNow}},
		{PaymentID: "p2", PaymentDate: fixedNow.AddDate(0, 0, -1), AuditFields: domain.AuditFields{CreatedAt: fixedNow.Add(-time.Hour)}},
		{PaymentID: "p1", PaymentDate: fixedNow.AddDate(0, 0, -2), AuditFields: domain.AuditFields{CreatedAt: fixedNow.Add(-2 * time.Hour)}},
	}
	suite.paymentRepo.On("FindPaymentsByClient", mock.Anything, "client-1", 3, (*pagination.Cursor)(nil)).Return(payments, nil).Once()

	page, token, err := suite.service.ListPayments(suite.ctx, "client-1", 2, "", "user-1")

	suite.Require().NoError(err)
	suite.Len(page, 2)
	suite.Require().NotEmpty(token)
	cursor, err := pagination.DecodeToken(token)
	suite.Require().NoError(err)
	suite.Equal("p2", cursor.ID)
	suite.True(cursor.Date.Equal(payments[1].PaymentDate))
}

func (suite *PaymentServiceTestSuite) TestListPayments_LastPageHasNoToken() {
	suite.paymentRepo.On("FindPaymentsByClient", mock.Anything, "client-1", 21, (*pagination.Cursor)(nil)).
		Return([]domain.Payment{{PaymentID: "p1"}}, nil).Once()

	page, token, err := suite.service.ListPayments(suite.ctx, "client-1", 20, "", "user-1")

	suite.Require().NoError(err)
	suite.Len(page, 1)
	suite.Empty(token)
}

func (suite *PaymentServiceTestSuite) TestListPayments_InvalidToken() {
	_, _, err := suite.service.ListPayments(suite.ctx, "client-1", 20, "%%%", "user-1")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
