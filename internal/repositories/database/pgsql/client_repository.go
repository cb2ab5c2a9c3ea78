package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	"github.com/SscSPs/dental_lab_app/internal/utils/listview"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxClientRepository struct {
	BaseRepository
}

func newPgxClientRepository(pool *pgxpool.Pool) portsrepo.ClientRepositoryFacade {
	return &PgxClientRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ClientRepositoryFacade = (*PgxClientRepository)(nil)

const clientColumns = `client_id, client_name, account_number, email, phone, address, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

// clientOrderBy maps sortable fields to SQL; nothing else reaches the ORDER BY clause.
var clientOrderBy = map[string]string{
	"client_name":    "lower(client_name)",
	"account_number": "account_number",
	"created_at":     "created_at",
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ClientID, &c.ClientName, &c.AccountNumber, &c.Email, &c.Phone, &c.Address, &c.IsActive,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectClients(rows pgx.Rows) ([]domain.Client, error) {
	defer rows.Close()
	clients := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client rows: %w", err)
	}
	return clients, nil
}

func (r *PgxClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		client.ClientID, client.ClientName, client.AccountNumber, client.Email, client.Phone, client.Address,
		client.IsActive, client.CreatedAt, client.CreatedBy, client.LastUpdatedAt, client.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "client")
	}
	return nil
}

func (r *PgxClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1;`
	client, err := scanClient(r.Pool.QueryRow(ctx, query, clientID))
	if err != nil {
		return nil, mapReadError(err, "client", clientID)
	}
	return client, nil
}

func (r *PgxClientRepository) FindClients(ctx context.Context, state listview.State) ([]domain.Client, int, error) {
	var (
		conditions []string
		args       []any
	)
	if state.Search != "" {
		args = append(args, likePattern(state.Search))
		conditions = append(conditions, fmt.Sprintf("(client_name ILIKE $%d OR account_number ILIKE $%d)", len(args), len(args)))
	}
	switch state.Filter("active") {
	case "true":
		conditions = append(conditions, "is_active")
	case "false":
		conditions = append(conditions, "NOT is_active")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	orderBy, ok := clientOrderBy[state.SortBy]
	if !ok {
		orderBy = clientOrderBy["client_name"]
	}
	direction := "ASC"
	if state.SortDesc {
		direction = "DESC"
	}

	args = append(args, state.Limit(), state.Offset())
	query := fmt.Sprintf(`SELECT %s FROM clients%s ORDER BY %s %s, client_id LIMIT $%d OFFSET $%d;`,
		clientColumns, where, orderBy, direction, len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query clients: %w", err)
	}
	clients, err := collectClients(rows)
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *PgxClientRepository) SearchClients(ctx context.Context, term string, limit int) ([]domain.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE client_name ILIKE $1 OR account_number ILIKE $1
		ORDER BY lower(account_number) = lower($2) DESC, lower(client_name)
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, likePattern(term), term, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	return collectClients(rows)
}

func (r *PgxClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	query := `
		UPDATE clients
		SET client_name = $1, email = $2, phone = $3, address = $4, last_updated_at = $5, last_updated_by = $6
		WHERE client_id = $7;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		client.ClientName, client.Email, client.Phone, client.Address, client.LastUpdatedAt, client.LastUpdatedBy, client.ClientID,
	)
	if err != nil {
		return mapWriteError(err, "client")
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", client.ClientID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxClientRepository) DeactivateClient(ctx context.Context, clientID string, userID string, now time.Time) error {
	query := `
		UPDATE clients
		SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2
		WHERE client_id = $3;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, now, userID, clientID)
	if err != nil {
		return fmt.Errorf("failed to deactivate client %s: %w", clientID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", clientID, apperrors.ErrNotFound)
	}
	return nil
}

// PgxCaseRepository stores lab cases.
type PgxCaseRepository struct {
	BaseRepository
}

func newPgxCaseRepository(pool *pgxpool.Pool) portsrepo.CaseRepositoryFacade {
	return &PgxCaseRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.CaseRepositoryFacade = (*PgxCaseRepository)(nil)

const caseColumns = `case_id, case_number, client_id, patient_name, product, status, due_date,
	created_at, created_by, last_updated_at, last_updated_by`

func scanCase(row pgx.Row) (*domain.Case, error) {
	var c domain.Case
	err := row.Scan(
		&c.CaseID, &c.CaseNumber, &c.ClientID, &c.PatientName, &c.Product, &c.Status, &c.DueDate,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCases(rows pgx.Rows) ([]domain.Case, error) {
	defer rows.Close()
	cases := []domain.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case row: %w", err)
		}
		cases = append(cases, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating case rows: %w", err)
	}
	return cases, nil
}

func (r *PgxCaseRepository) SaveCase(ctx context.Context, c domain.Case) error {
	query := `
		INSERT INTO cases (` + caseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		c.CaseID, c.CaseNumber, c.ClientID, c.PatientName, c.Product, c.Status, c.DueDate,
		c.CreatedAt, c.CreatedBy, c.LastUpdatedAt, c.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "case")
	}
	return nil
}

func (r *PgxCaseRepository) FindCaseByID(ctx context.Context, caseID string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE case_id = $1;`
	c, err := scanCase(r.Pool.QueryRow(ctx, query, caseID))
	if err != nil {
		return nil, mapReadError(err, "case", caseID)
	}
	return c, nil
}

func (r *PgxCaseRepository) FindCasesByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Case, error) {
	query := `
		SELECT ` + caseColumns + `
		FROM cases
		WHERE client_id = $1
		ORDER BY created_at DESC, case_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases for client %s: %w", clientID, err)
	}
	return collectCases(rows)
}

func (r *PgxCaseRepository) SearchCases(ctx context.Context, term string, limit int) ([]domain.Case, error) {
	query := `
		SELECT ` + caseColumns + `
		FROM cases
		WHERE case_number ILIKE $1 OR patient_name ILIKE $1
		ORDER BY lower(case_number) = lower($2) DESC, case_number
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, likePattern(term), term, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search cases: %w", err)
	}
	return collectCases(rows)
}
