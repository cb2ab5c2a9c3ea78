package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	"github.com/SscSPs/dental_lab_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPaymentRepository struct {
	BaseRepository
}

func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentColumns = `payment_id, client_id, payment_date, method, memo, amount, overpayment,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.PaymentID, &p.ClientID, &p.PaymentDate, &p.Method, &p.Memo, &p.Amount, &p.Overpayment,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	p.Allocations = []domain.PaymentAllocation{}
	return &p, nil
}

// RecordPayment writes the payment, its allocations, the invoice balance changes and the
// optional credit row in one transaction.
func (r *PgxPaymentRepository) RecordPayment(ctx context.Context, record portsrepo.PaymentRecord) error {
	p := record.Payment
	return r.InTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO payments (` + paymentColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
		`
		if _, err := tx.Exec(ctx, query,
			p.PaymentID, p.ClientID, p.PaymentDate, p.Method, p.Memo, p.Amount, p.Overpayment,
			p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy,
		); err != nil {
			return mapWriteError(err, "payment")
		}

		for _, a := range p.Allocations {
			if _, err := tx.Exec(ctx,
				`INSERT INTO payment_allocations (payment_id, invoice_id, amount) VALUES ($1, $2, $3);`,
				p.PaymentID, a.InvoiceID, a.Amount,
			); err != nil {
				return mapWriteError(err, "payment allocation")
			}
		}

		if err := applyBalanceChanges(ctx, tx, record.BalanceChanges, p.CreatedAt); err != nil {
			return err
		}

		if record.CreditInvoice != nil {
			if _, err := insertInvoice(ctx, tx, *record.CreditInvoice); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`
	p, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		return nil, mapReadError(err, "payment", paymentID)
	}

	payments := []domain.Payment{*p}
	if err := r.loadAllocations(ctx, payments); err != nil {
		return nil, err
	}
	return &payments[0], nil
}

func (r *PgxPaymentRepository) FindPaymentsByClient(ctx context.Context, clientID string, limit int, after *pagination.Cursor) ([]domain.Payment, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		query := `
			SELECT ` + paymentColumns + ` FROM payments
			WHERE client_id = $1
			ORDER BY payment_date DESC, created_at DESC, payment_id DESC
			LIMIT $2;
		`
		rows, err = r.Pool.Query(ctx, query, clientID, limit)
	} else {
		query := `
			SELECT ` + paymentColumns + ` FROM payments
			WHERE client_id = $1 AND (payment_date, created_at, payment_id) < ($2::date, $3::timestamptz, $4::varchar)
			ORDER BY payment_date DESC, created_at DESC, payment_id DESC
			LIMIT $5;
		`
		rows, err = r.Pool.Query(ctx, query, clientID, after.Date, after.CreatedAt, after.ID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for client %s: %w", clientID, err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	rows.Close()

	if err := r.loadAllocations(ctx, payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// loadAllocations fills the Allocations of every payment with one query.
func (r *PgxPaymentRepository) loadAllocations(ctx context.Context, payments []domain.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	index := make(map[string]int, len(payments))
	ids := make([]string, len(payments))
	for i, p := range payments {
		index[p.PaymentID] = i
		ids[i] = p.PaymentID
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT payment_id, invoice_id, amount
		FROM payment_allocations
		WHERE payment_id = ANY($1)
		ORDER BY payment_id, invoice_id;
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query payment allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			paymentID string
			a         domain.PaymentAllocation
		)
		if err := rows.Scan(&paymentID, &a.InvoiceID, &a.Amount); err != nil {
			return fmt.Errorf("failed to scan payment allocation: %w", err)
		}
		i := index[paymentID]
		payments[i].Allocations = append(payments[i].Allocations, a)
	}
	return rows.Err()
}

// PgxAdjustmentRepository stores manual credits and debits.
type PgxAdjustmentRepository struct {
	BaseRepository
}

func newPgxAdjustmentRepository(pool *pgxpool.Pool) portsrepo.AdjustmentRepositoryFacade {
	return &PgxAdjustmentRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AdjustmentRepositoryFacade = (*PgxAdjustmentRepository)(nil)

const adjustmentColumns = `adjustment_id, client_id, adjustment_date, description, amount, type, credit_mode,
	applied_invoices, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxAdjustmentRepository) RecordAdjustment(ctx context.Context, record portsrepo.AdjustmentRecord) error {
	a := record.Adjustment
	applied := a.AppliedInvoices
	if applied == nil {
		applied = []string{}
	}

	return r.InTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO adjustments (` + adjustmentColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
		`
		if _, err := tx.Exec(ctx, query,
			a.AdjustmentID, a.ClientID, a.AdjustmentDate, a.Description, a.Amount, a.Type,
			nullIfEmpty(string(a.CreditMode)), applied,
			a.CreatedAt, a.CreatedBy, a.LastUpdatedAt, a.LastUpdatedBy,
		); err != nil {
			return mapWriteError(err, "adjustment")
		}

		if err := applyBalanceChanges(ctx, tx, record.BalanceChanges, a.CreatedAt); err != nil {
			return err
		}

		if record.NewInvoice != nil {
			if _, err := insertInvoice(ctx, tx, *record.NewInvoice); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PgxAdjustmentRepository) FindAdjustmentsByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Adjustment, error) {
	query := `
		SELECT ` + adjustmentColumns + `
		FROM adjustments
		WHERE client_id = $1
		ORDER BY adjustment_date DESC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query adjustments for client %s: %w", clientID, err)
	}
	defer rows.Close()

	adjustments := []domain.Adjustment{}
	for rows.Next() {
		var (
			a          domain.Adjustment
			creditMode *string
		)
		if err := rows.Scan(
			&a.AdjustmentID, &a.ClientID, &a.AdjustmentDate, &a.Description, &a.Amount, &a.Type, &creditMode,
			&a.AppliedInvoices, &a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment row: %w", err)
		}
		a.CreditMode = domain.CreditMode(deref(creditMode))
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating adjustment rows: %w", err)
	}
	return adjustments, nil
}
