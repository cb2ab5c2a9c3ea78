package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/SscSPs/dental_lab_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// InvoiceFilter narrows FindInvoices. Zero values mean "any".
type InvoiceFilter struct {
	ClientID string
	Statuses []domain.InvoiceStatus
	DueFrom  *time.Time
	DueTo    *time.Time // exclusive
	Limit    int
	Offset   int
}

// InvoiceBalanceChange lowers the due amount of one invoice. The update only applies
// while the stored due amount still equals ExpectedDue.
type InvoiceBalanceChange struct {
	InvoiceID   string
	Applied     decimal.Decimal
	ExpectedDue decimal.Decimal
	NewStatus   domain.InvoiceStatus
}

// PaymentRecord is everything persisted when a payment is recorded.
type PaymentRecord struct {
	Payment        domain.Payment
	BalanceChanges []InvoiceBalanceChange
	CreditInvoice  *domain.Invoice // Overpayment kept as client credit
}

// AdjustmentRecord is everything persisted when an adjustment is entered.
type AdjustmentRecord struct {
	Adjustment     domain.Adjustment
	BalanceChanges []InvoiceBalanceChange
	NewInvoice     *domain.Invoice // Debit charge or credit row
}

// InvoiceRepositoryFacade defines persistence operations for invoices.
type InvoiceRepositoryFacade interface {
	// SaveInvoice inserts an invoice. An empty InvoiceNumber is assigned from a sequence;
	// the stored number is returned.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) (string, error)
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	FindInvoicesByIDs(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error)
	FindInvoices(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, error)

	// FindInvoicesForBalance returns every invoice (including credit rows) created before
	// the given instant, for the given clients or all clients when clientIDs is empty.
	FindInvoicesForBalance(ctx context.Context, clientIDs []string, createdBefore time.Time) ([]domain.Invoice, error)
}

// PaymentRepositoryFacade defines persistence operations for payments.
type PaymentRepositoryFacade interface {
	// RecordPayment saves the payment, its allocations, the invoice balance changes and the
	// optional credit row atomically.
	RecordPayment(ctx context.Context, record PaymentRecord) error
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// FindPaymentsByClient pages through a client's payments, newest first. A nil cursor
	// starts at the top.
	FindPaymentsByClient(ctx context.Context, clientID string, limit int, after *pagination.Cursor) ([]domain.Payment, error)
}

// AdjustmentRepositoryFacade defines persistence operations for adjustments.
type AdjustmentRepositoryFacade interface {
	RecordAdjustment(ctx context.Context, record AdjustmentRecord) error
	FindAdjustmentsByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Adjustment, error)
}

// StatementRepositoryFacade defines persistence operations for statements.
type StatementRepositoryFacade interface {
	// UpsertStatements stores statements, replacing amounts of an existing
	// (client, period) statement while keeping its number and sent time.
	UpsertStatements(ctx context.Context, statements []domain.Statement) error
	FindStatementByID(ctx context.Context, statementID string) (*domain.Statement, error)
	FindStatementsByPeriod(ctx context.Context, period string) ([]domain.Statement, error)
	MarkStatementSent(ctx context.Context, statementID string, sentAt time.Time) error
}
