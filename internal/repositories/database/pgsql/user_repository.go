package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/dental_lab_app/internal/apperrors"
	"github.com/SscSPs/dental_lab_app/internal/core/domain"
	portsrepo "github.com/SscSPs/dental_lab_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const userColumns = `user_id, username, name, email, password_hash, role, auth_provider, provider_user_id,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u                                 domain.User
		email, passwordHash, providerUser *string
	)
	err := row.Scan(
		&u.UserID, &u.Username, &u.Name, &email, &passwordHash, &u.Role, &u.AuthProvider, &providerUser,
		&u.CreatedAt, &u.CreatedBy, &u.LastUpdatedAt, &u.LastUpdatedBy, &u.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Email = deref(email)
	u.PasswordHash = deref(passwordHash)
	u.ProviderUserID = deref(providerUser)
	return &u, nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		user.UserID, user.Username, user.Name, nullIfEmpty(user.Email), nullIfEmpty(user.PasswordHash),
		user.Role, user.AuthProvider, nullIfEmpty(user.ProviderUserID),
		user.CreatedAt, user.CreatedBy, user.LastUpdatedAt, user.LastUpdatedBy, user.DeletedAt,
	)
	if err != nil {
		return mapWriteError(err, "user")
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, mapReadError(err, "user", userID)
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND deleted_at IS NULL;`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, mapReadError(err, "user", username)
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByProvider(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_provider = $1 AND provider_user_id = $2 AND deleted_at IS NULL;`
	user, err := scanUser(r.Pool.QueryRow(ctx, query, provider, providerUserID))
	if err != nil {
		return nil, mapReadError(err, "user", providerUserID)
	}
	return user, nil
}

func (r *PgxUserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, role = $3, last_updated_at = $4, last_updated_by = $5
		WHERE user_id = $6 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		user.Name, nullIfEmpty(user.Email), user.Role, user.LastUpdatedAt, user.LastUpdatedBy, user.UserID,
	)
	if err != nil {
		return mapWriteError(err, "user")
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found or deleted: %w", user.UserID, apperrors.ErrNotFound)
	}
	return nil
}
