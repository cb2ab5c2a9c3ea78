package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	"github.com/SscSPs/dental_lab_app/internal/core/services"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adjustmentFixture struct {
	adjustmentRepo *MockAdjustmentRepository
	invoiceRepo    *MockInvoiceRepository
	clientRepo     *MockClientRepository
	record         portsrepo.AdjustmentRecord
}

func newAdjustmentFixture(t *testing.T) *adjustmentFixture {
	t.Helper()
	f := &adjustmentFixture{
		adjustmentRepo: new(MockAdjustmentRepository),
		invoiceRepo:    new(MockInvoiceRepository),
		clientRepo:     new(MockClientRepository),
	}
	f.clientRepo.On("FindClientByID", mock.Anything, "client-1").
		Return(&domain.Client{ClientID: "client-1", IsActive: true}, nil).Maybe()
	f.adjustmentRepo.On("RecordAdjustment", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			f.record = args.Get(1).(portsrepo.AdjustmentRecord)
		}).
		Return(nil).Maybe()
	return f
}

func (f *adjustmentFixture) create(req dto.CreateAdjustmentRequest) (*domain.Adjustment, error) {
	svc := services.NewAdjustmentService(f.adjustmentRepo, f.invoiceRepo, f.clientRepo, services.WithClock(fixedClock))
	return svc.CreateAdjustment(context.Background(), "client-1", req, "user-1")
}

func TestCreateAdjustment_DebitCreatesUnpaidInvoice(t *testing.T) {
	f := newAdjustmentFixture(t)

	adj, err := f.create(dto.CreateAdjustmentRequest{Description: "Rush fee", Amount: dec("25"), Type: "debit"})

	require.NoError(t, err)
	assert.Equal(t, domain.AdjustmentDebit, adj.Type)
	assert.Empty(t, adj.CreditMode)
	require.NotNil(t, f.record.NewInvoice)
	assert.Equal(t, domain.InvoiceUnpaid, f.record.NewInvoice.Status)
	assert.True(t, dec("25").Equal(f.record.NewInvoice.DueAmount))
	assert.Empty(t, f.record.BalanceChanges)
}

func TestCreateAdjustment_CreditAppliesInGivenOrder(t *testing.T) {
	f := newAdjustmentFixture(t)
	f.invoiceRepo.On("FindInvoicesByIDs", mock.Anything, []string{"b", "a"}).Return(map[string]domain.Invoice{
		"a": openInvoice("a", "client-1", "100", "100"),
		"b": openInvoice("b", "client-1", "50", "30"),
	}, nil).Once()

	adj, err := f.create(dto.CreateAdjustmentRequest{
		Description:     "Remake courtesy",
		Amount:          dec("60"),
		Type:            "credit",
		CreditMode:      "apply",
		AppliedInvoices: []string{"b", "a"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.CreditApply, adj.CreditMode)
	assert.Equal(t, []string{"b", "a"}, adj.AppliedInvoices)
	require.Len(t, f.record.BalanceChanges, 2)
	assert.True(t, dec("30").Equal(f.record.BalanceChanges[0].Applied))
	assert.Equal(t, domain.InvoicePaid, f.record.BalanceChanges[0].NewStatus)
	assert.True(t, dec("30").Equal(f.record.BalanceChanges[1].Applied))
	assert.Equal(t, domain.InvoicePartiallyPaid, f.record.BalanceChanges[1].NewStatus)
	assert.Nil(t, f.record.NewInvoice)
}

func TestCreateAdjustment_CreditSurplusKeptAsCredit(t *testing.T) {
	f := newAdjustmentFixture(t)
	f.invoiceRepo.On("FindInvoicesByIDs", mock.Anything, []string{"a"}).Return(map[string]domain.Invoice{
		"a": openInvoice("a", "client-1", "100", "20"),
	}, nil).Once()

	_, err := f.create(dto.CreateAdjustmentRequest{Description: "Refund", Amount: dec("50"), Type: "credit", AppliedInvoices: []string{"a"}})

	require.NoError(t, err)
	require.NotNil(t, f.record.NewInvoice)
	assert.Equal(t, domain.InvoiceCredit, f.record.NewInvoice.Status)
	assert.True(t, dec("30").Equal(f.record.NewInvoice.Amount))
}

func TestCreateAdjustment_CreditApplyNeedsOpenInvoice(t *testing.T) {
	f := newAdjustmentFixture(t)

	_, err := f.create(dto.CreateAdjustmentRequest{Description: "x", Amount: dec("10"), Type: "credit", CreditMode: "apply"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	f.invoiceRepo.On("FindInvoicesByIDs", mock.Anything, []string{"paid"}).Return(map[string]domain.Invoice{
		"paid": openInvoice("paid", "client-1", "100", "0"),
	}, nil).Once()
	_, err = f.create(dto.CreateAdjustmentRequest{Description: "x", Amount: dec("10"), Type: "credit", CreditMode: "apply", AppliedInvoices: []string{"paid"}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	f.adjustmentRepo.AssertNotCalled(t, "RecordAdjustment", mock.Anything, mock.Anything)
}

func TestCreateAdjustment_AccountCredit(t *testing.T) {
	f := newAdjustmentFixture(t)

	adj, err := f.create(dto.CreateAdjustmentRequest{Description: "Goodwill", Amount: dec("15"), Type: "credit"})

	require.NoError(t, err)
	assert.Equal(t, domain.CreditAccount, adj.CreditMode)
	require.NotNil(t, f.record.NewInvoice)
	assert.Equal(t, domain.InvoiceCredit, f.record.NewInvoice.Status)
	assert.True(t, dec("15").Equal(f.record.NewInvoice.Amount))
	f.invoiceRepo.AssertNotCalled(t, "FindInvoicesByIDs", mock.Anything, mock.Anything)
}
