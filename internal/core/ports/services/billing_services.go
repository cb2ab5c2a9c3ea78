package services

import (
	"context"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/SscSPs/dental_lab_app/internal/dto"
	"github.com/SscSPs/dental_lab_app/internal/utils/accounting"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
	"github.com/shopspring/decimal"
)

// InvoiceSvcFacade defines invoice operations.
type InvoiceSvcFacade interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error)
	GetInvoiceByID(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams, userID string) ([]domain.Invoice, error)
}

// PaymentReaderSvc defines read operations for payments.
type PaymentReaderSvc interface {
	GetPaymentByID(ctx context.Context, paymentID string, userID string) (*domain.Payment, error)

	// ListPayments pages through a client's payments, newest first. The returned token is
	// empty on the last page.
	ListPayments(ctx context.Context, clientID string, limit int, nextToken string, userID string) ([]domain.Payment, string, error)
}

// PaymentWriterSvc defines payment allocation and recording.
type PaymentWriterSvc interface {
	// PreviewAllocation computes how amount would be spread over the invoices without writing.
	PreviewAllocation(ctx context.Context, clientID string, amount decimal.Decimal, invoiceIDs []string, userID string) (*accounting.AllocationResult, error)

	// RecordPayment allocates and persists a payment, updating invoice balances.
	RecordPayment(ctx context.Context, clientID string, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error)
}

// PaymentSvcFacade combines all payment service interfaces.
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}

// AdjustmentSvcFacade defines manual credit and debit operations.
type AdjustmentSvcFacade interface {
	CreateAdjustment(ctx context.Context, clientID string, req dto.CreateAdjustmentRequest, userID string) (*domain.Adjustment, error)
	ListAdjustments(ctx context.Context, clientID string, limit, offset int, userID string) ([]domain.Adjustment, error)
}

// BalanceSvcFacade derives aging-bucket balances.
type BalanceSvcFacade interface {
	// GetClientBalance summarizes one client for the month (YYYY-MM, empty for the current month).
	GetClientBalance(ctx context.Context, clientID string, month string, userID string) (*domain.BalanceSummary, error)

	// ListBalances summarizes active clients selected by the view state.
	ListBalances(ctx context.Context, month string, state listview.State, userID string) ([]domain.BalanceSummary, int, error)
}

// StatementSvcFacade defines statement generation and delivery tracking.
type StatementSvcFacade interface {
	// GenerateStatements builds or refreshes one statement per client with open invoices
	// due in the period.
	GenerateStatements(ctx context.Context, period string, userID string) ([]domain.Statement, error)
	ListStatements(ctx context.Context, period string, userID string) ([]domain.Statement, error)
	GetStatement(ctx context.Context, statementID string, userID string) (*domain.Statement, error)
	MarkStatementSent(ctx context.Context, statementID string, userID string) (*domain.Statement, error)
}
