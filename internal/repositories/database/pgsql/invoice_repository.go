package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Invoice number prefixes; the numeric part comes from invoice_number_seq.
const (
	invoiceNumberPrefix = "INV-"
	creditNumberPrefix  = "CR-"
)

type PgxInvoiceRepository struct {
	BaseRepository
}

func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `invoice_id, invoice_number, client_id, case_id, amount, due_amount, status, due_date,
	created_at, updated_at, created_by`

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		inv    domain.Invoice
		caseID *string
	)
	err := row.Scan(
		&inv.InvoiceID, &inv.InvoiceNumber, &inv.ClientID, &caseID, &inv.Amount, &inv.DueAmount, &inv.Status,
		&inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt, &inv.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	inv.CaseID = deref(caseID)
	return &inv, nil
}

func collectInvoices(rows pgx.Rows) ([]domain.Invoice, error) {
	defer rows.Close()
	invoices := []domain.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, nil
}

// insertInvoice stores an invoice using q, which may be a transaction, and returns its number.
func insertInvoice(ctx context.Context, q querier, inv domain.Invoice) (string, error) {
	prefix := invoiceNumberPrefix
	if inv.Status == domain.InvoiceCredit {
		prefix = creditNumberPrefix
	}

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, COALESCE(NULLIF($2, ''), $12 || nextval('invoice_number_seq')::text),
			$3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING invoice_number;
	`
	var number string
	err := q.QueryRow(ctx, query,
		inv.InvoiceID, inv.InvoiceNumber, inv.ClientID, nullIfEmpty(inv.CaseID), inv.Amount, inv.DueAmount,
		inv.Status, inv.DueDate, inv.CreatedAt, inv.UpdatedAt, inv.CreatedBy, prefix,
	).Scan(&number)
	if err != nil {
		return "", mapWriteError(err, "invoice")
	}
	return number, nil
}

// applyBalanceChanges lowers due amounts. Each update only matches while the stored due
// amount is still the one the change was computed from.
func applyBalanceChanges(ctx context.Context, q querier, changes []portsrepo.InvoiceBalanceChange, now time.Time) error {
	query := `
		UPDATE invoices
		SET due_amount = due_amount - $2, status = $3, updated_at = $4
		WHERE invoice_id = $1 AND due_amount = $5 AND status <> 'credit';
	`
	for _, ch := range changes {
		cmdTag, err := q.Exec(ctx, query, ch.InvoiceID, ch.Applied, ch.NewStatus, now, ch.ExpectedDue)
		if err != nil {
			return mapWriteError(err, "invoice balance")
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("invoice %s was changed by another update, reload and retry: %w", ch.InvoiceID, apperrors.ErrValidation)
		}
	}
	return nil
}

func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) (string, error) {
	return insertInvoice(ctx, r.Pool, invoice)
}

func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	inv, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		return nil, mapReadError(err, "invoice", invoiceID)
	}
	return inv, nil
}

func (r *PgxInvoiceRepository) FindInvoicesByIDs(ctx context.Context, invoiceIDs []string) (map[string]domain.Invoice, error) {
	result := make(map[string]domain.Invoice, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices by IDs: %w", err)
	}
	invoices, err := collectInvoices(rows)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		result[inv.InvoiceID] = inv
	}
	return result, nil
}

func (r *PgxInvoiceRepository) FindInvoices(ctx context.Context, filter portsrepo.InvoiceFilter) ([]domain.Invoice, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.ClientID != "" {
		add("client_id = $%d", filter.ClientID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		add("status = ANY($%d)", statuses)
	}
	if filter.DueFrom != nil {
		add("due_date >= $%d", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		add("due_date < $%d", *filter.DueTo)
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY due_date, created_at, invoice_id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	return collectInvoices(rows)
}

func (r *PgxInvoiceRepository) FindInvoicesForBalance(ctx context.Context, clientIDs []string, createdBefore time.Time) ([]domain.Invoice, error) {
	if clientIDs == nil {
		clientIDs = []string{}
	}
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE created_at < $1
		  AND (cardinality($2::varchar[]) = 0 OR client_id = ANY($2))
		  AND (due_amount > 0 OR status = 'credit')
		ORDER BY client_id, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, createdBefore, clientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices for balance: %w", err)
	}
	return collectInvoices(rows)
}
