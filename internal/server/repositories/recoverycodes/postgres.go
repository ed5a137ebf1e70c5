package recoverycodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/dbx"
	"github.com/cardbook/cardbook/internal/server/models"
)

// PostgresRepository implements recovery code storage over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, code string, validity time.Duration) error {
	query := `
		INSERT INTO recovery_codes (user_id, code, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, code, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, code string) (*models.RecoveryCode, error) {
	query := `
		SELECT user_id, expires_at
		FROM recovery_codes
		WHERE code = $1
	`
	rc := &models.RecoveryCode{Code: code}
	if err := r.db.QueryRowContext(ctx, query, code).Scan(&rc.UserID, &rc.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return rc, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, code string) error {
	query := `
		DELETE FROM recovery_codes
		WHERE code = $1
	`
	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return nil
}
