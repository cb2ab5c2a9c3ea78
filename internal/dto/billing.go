package dto

import (
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest defines the payload for billing a case or a standalone charge.
type CreateInvoiceRequest struct {
	ClientID string          `json:"clientID" binding:"required"`
	CaseID   string          `json:"caseID"`
	Amount   decimal.Decimal `json:"amount" binding:"required,positive_money" swaggertype:"string"`
	DueDate  string          `json:"dueDate" binding:"required,datetime=2006-01-02"`
}

// ListInvoicesParams defines query parameters for listing invoices.
type ListInvoicesParams struct {
	ClientID string `form:"clientID"`
	Status   string `form:"status" binding:"omitempty,oneof=unpaid partially_paid paid credit open"`
	DueFrom  string `form:"dueFrom" binding:"omitempty,datetime=2006-01-02"`
	DueTo    string `form:"dueTo" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"pageSize,default=50" binding:"min=1,max=100"`
}

// PaymentAllocationRequest is an explicit amount to apply to one invoice.
type PaymentAllocationRequest struct {
	InvoiceID string          `json:"invoiceID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,money" swaggertype:"string"`
}

// PreviewPaymentRequest asks how a payment would be spread over invoices.
type PreviewPaymentRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required,money" swaggertype:"string"`
	InvoiceIDs []string        `json:"invoiceIDs" binding:"dive,required"`
}

// RecordPaymentRequest defines the payload for recording a client payment.
// When Allocations is empty the payment is spread over InvoiceIDs automatically.
type RecordPaymentRequest struct {
	PaymentDate string                     `json:"paymentDate" binding:"omitempty,datetime=2006-01-02"`
	Method      string                     `json:"method" binding:"required,oneof=cash check card ach other"`
	Memo        string                     `json:"memo" binding:"max=1000"`
	Amount      decimal.Decimal            `json:"amount" binding:"required,positive_money" swaggertype:"string"`
	InvoiceIDs  []string                   `json:"invoiceIDs" binding:"dive,required"`
	Allocations []PaymentAllocationRequest `json:"allocations" binding:"dive"`
}

// ListPaymentsParams defines query parameters for paging payments.
type ListPaymentsParams struct {
	Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// ListPaymentsResponse wraps a page of payments.
type ListPaymentsResponse struct {
	Payments  []domain.Payment `json:"payments"`
	NextToken string           `json:"nextToken,omitempty"`
}

// CreateAdjustmentRequest defines the payload for a manual credit or debit.
type CreateAdjustmentRequest struct {
	AdjustmentDate  string          `json:"adjustmentDate" binding:"omitempty,datetime=2006-01-02"`
	Description     string          `json:"description" binding:"required,max=1000"`
	Amount          decimal.Decimal `json:"amount" binding:"required,positive_money" swaggertype:"string"`
	Type            string          `json:"type" binding:"required,oneof=credit debit"`
	CreditMode      string          `json:"creditMode" binding:"omitempty,oneof=apply account"`
	AppliedInvoices []string        `json:"appliedInvoices" binding:"dive,required"`
	DueDate         string          `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
}

// BalanceParams selects the month window of a balance summary.
type BalanceParams struct {
	Month string `form:"month" binding:"omitempty,yearmonth"`
}

// ListBalancesParams defines query parameters for the balances list.
type ListBalancesParams struct {
	ListParams
	Month string `form:"month" binding:"omitempty,yearmonth"`
}

// ListBalancesResponse wraps a page of balance summaries.
type ListBalancesResponse struct {
	Balances []domain.BalanceSummary `json:"balances"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"pageSize"`
}

// GenerateStatementsRequest defines the billing period to build statements for.
type GenerateStatementsRequest struct {
	Period string `json:"period" binding:"required,yearmonth"`
}

// ListStatementsParams defines query parameters for listing statements.
type ListStatementsParams struct {
	Period string `form:"period" binding:"required,yearmonth"`
}

// StatementsResponse wraps the statements of a period.
type StatementsResponse struct {
	Period     string             `json:"period"`
	Statements []domain.Statement `json:"statements"`
}

// SearchParams defines the global search query.
type SearchParams struct {
	Q     string `form:"q"`
	Limit int    `form:"limit,default=20" binding:"min=1,max=100"`
}

// SearchResponse wraps merged search results.
type SearchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
}
