package cards

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cardbook/cardbook/internal/common"
	"github.com/cardbook/cardbook/internal/dbx"
	"github.com/cardbook/cardbook/internal/models"
)

// PostgresRepository implements card storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns every card owned by ownerID, newest-created first.
func (r *PostgresRepository) List(ctx context.Context, ownerID string) ([]models.Card, error) {
	query := `
		SELECT id, user_id, nome, numero, validade, usado, cashback_tirado, created_at, updated_at
		FROM credit_cards
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	defer rows.Close()

	var result []models.Card
	for rows.Next() {
		var c models.Card
		var updated sql.NullTime
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Nome, &c.Numero, &c.Validade,
			&c.Usado, &c.CashbackTirado, &c.CreatedAt, &updated,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorBackend, err)
		}
		if updated.Valid {
			t := updated.Time
			c.UpdatedAt = &t
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return result, nil
}

// Create inserts a new card for ownerID. The store assigns the identifier
// and the creation timestamp.
func (r *PostgresRepository) Create(ctx context.Context, ownerID string, draft models.CardDraft) (*models.Card, error) {
	query := `
		INSERT INTO credit_cards (user_id, nome, numero, validade, usado, cashback_tirado)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	card := &models.Card{
		UserID:         ownerID,
		Nome:           draft.Nome,
		Numero:         draft.Numero,
		Validade:       draft.Validade,
		Usado:          draft.Usado,
		CashbackTirado: draft.CashbackTirado,
	}
	err := r.db.QueryRowContext(ctx, query,
		ownerID, draft.Nome, draft.Numero, draft.Validade, draft.Usado, draft.CashbackTirado,
	).Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorBackend, err)
	}
	return card, nil
}

// Update applies the non-nil fields of patch to the card, bumping
// updated_at. An unknown id (or one owned by someone else) yields
// common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, ownerID, cardID string, patch models.CardPatch) error {
	if patch.Empty() {
		return nil
	}

	set := "updated_at = now()"
	args := []any{cardID, ownerID}
	add := func(column string, v any) {
		args = append(args, v)
		set += fmt.Sprintf(", %s = $%d", column, len(args))
	}
	if patch.Nome != nil {
		add("nome", *patch.Nome)
	}
	if patch.Numero != nil {
		add("numero", *patch.Numero)
	}
	if patch.Validade != nil {
		add("validade", *patch.Validade)
	}
	if patch.Usado != nil {
		add("usado", *patch.Usado)
	}
	if patch.CashbackTirado != nil {
		add("cashback_tirado", *patch.CashbackTirado)
	}

	query := fmt.Sprintf("UPDATE credit_cards SET %s WHERE id = $1 AND user_id = $2", set)
	res, err := r.db.ExecContext(ctx, query, args...)
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

// Delete removes the card. An unknown id yields common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, cardID string) error {
	query := `DELETE FROM credit_cards WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, cardID, ownerID)
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
