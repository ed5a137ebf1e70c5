package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/dbx"
	"github.com/cardbook/cardbook/internal/server/models"
)

// PostgresRepository implements account storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account row. The store assigns the identifier.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, phone, password_hash)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.Phone, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return user, nil
}

// GetByID returns the account with the given identifier, or
// common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, COALESCE(phone, ''), password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail returns the account with the given email, or
// common.ErrorNotFound.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, COALESCE(phone, ''), password_hash, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// GetByPhone returns the account with the given phone number, or
// common.ErrorNotFound.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `
		SELECT id, email, COALESCE(phone, ''), password_hash, created_at
		FROM users
		WHERE phone = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, phone))
}

// UpdatePassword replaces the stored password hash. Unknown user ids yield
// common.ErrorNotFound.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID string, passwordHash []byte) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Phone, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return user, nil
}
