package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxStatementRepository struct {
	BaseRepository
}

func newPgxStatementRepository(pool *pgxpool.Pool) portsrepo.StatementRepositoryFacade {
	return &PgxStatementRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.StatementRepositoryFacade = (*PgxStatementRepository)(nil)

const statementColumns = `statement_id, statement_number, client_id, period, period_start, period_end,
	amount, outstanding, last_sent, sent_at, created_at`

func scanStatement(row pgx.Row) (*domain.Statement, error) {
	var s domain.Statement
	err := row.Scan(
		&s.StatementID, &s.StatementNumber, &s.ClientID, &s.Period, &s.PeriodStart, &s.PeriodEnd,
		&s.Amount, &s.Outstanding, &s.LastSent, &s.SentAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertStatements sends all rows in one batch inside a transaction. On a (client, period)
// conflict the amounts and last_sent change; number and sent_at stay.
func (r *PgxStatementRepository) UpsertStatements(ctx context.Context, statements []domain.Statement) error {
	if len(statements) == 0 {
		return nil
	}

	query := `
		INSERT INTO statements (` + statementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (client_id, period) DO UPDATE
		SET amount = EXCLUDED.amount, outstanding = EXCLUDED.outstanding, last_sent = EXCLUDED.last_sent;
	`
	return r.InTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, s := range statements {
			batch.Queue(query,
				s.StatementID, s.StatementNumber, s.ClientID, s.Period, s.PeriodStart, s.PeriodEnd,
				s.Amount, s.Outstanding, s.LastSent, s.SentAt, s.CreatedAt,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for _, s := range statements {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return mapWriteError(err, "statement for client "+s.ClientID)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close statement batch: %w", err)
		}
		return nil
	})
}

func (r *PgxStatementRepository) FindStatementByID(ctx context.Context, statementID string) (*domain.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE statement_id = $1;`
	s, err := scanStatement(r.Pool.QueryRow(ctx, query, statementID))
	if err != nil {
		return nil, mapReadError(err, "statement", statementID)
	}
	return s, nil
}

func (r *PgxStatementRepository) FindStatementsByPeriod(ctx context.Context, period string) ([]domain.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE period = $1 ORDER BY statement_number;`
	rows, err := r.Pool.Query(ctx, query, period)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements for period %s: %w", period, err)
	}
	defer rows.Close()

	statements := []domain.Statement{}
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement row: %w", err)
		}
		statements = append(statements, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statement rows: %w", err)
	}
	return statements, nil
}

func (r *PgxStatementRepository) MarkStatementSent(ctx context.Context, statementID string, sentAt time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, `UPDATE statements SET sent_at = $2 WHERE statement_id = $1;`, statementID, sentAt)
	if err != nil {
		return fmt.Errorf("failed to mark statement %s sent: %w", statementID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return mapReadError(pgx.ErrNoRows, "statement", statementID)
	}
	return nil
}
