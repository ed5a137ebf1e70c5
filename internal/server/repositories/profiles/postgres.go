package profiles

import (
	"context"
	"fmt"

	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/dbx"
)

// PostgresRepository implements profile storage over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, id, email string) error {
	query := `INSERT INTO profiles (id, email) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, id, email); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, id, email string) error {
	query := `
		INSERT INTO profiles (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id)
		DO UPDATE SET email = EXCLUDED.email, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, id, email); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return nil
}
