package cards

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cardbook/cardbook/internal/models"
)

// SampleRepository is the no-backend store: List always returns the same
// built-in two-card set regardless of owner, Create hands back a card with
// a client-assigned random identifier without persisting it, and
// Update/Delete succeed as silent no-ops. Nothing ever mutates the sample
// set.
type SampleRepository struct {
	cards []models.Card
}

// NewSampleRepository builds the fixed sample data set.
func NewSampleRepository() *SampleRepository {
	now := time.Now()
	return &SampleRepository{
		cards: []models.Card{
			{
				ID:             "1",
				UserID:         "mock-user",
				Nome:           "Nubank Platinum",
				Numero:         "5555666677778888",
				Validade:       "12/25",
				Usado:          false,
				CashbackTirado: false,
				CreatedAt:      now,
			},
			{
				ID:             "2",
				UserID:         "mock-user",
				Nome:           "Itaú Visa Gold",
				Numero:         "4111222233334444",
				Validade:       "05/24",
				Usado:          true,
				CashbackTirado: true,
				CreatedAt:      now.Add(-24 * time.Hour),
			},
		},
	}
}

// List ignores ownerID and returns a copy of the sample set.
func (r *SampleRepository) List(ctx context.Context, ownerID string) ([]models.Card, error) {
	out := make([]models.Card, len(r.cards))
	copy(out, r.cards)
	return out, nil
}

// Create returns the would-be card without touching the sample set.
func (r *SampleRepository) Create(ctx context.Context, ownerID string, draft models.CardDraft) (*models.Card, error) {
	return &models.Card{
		ID:             uuid.NewString(),
		UserID:         ownerID,
		Nome:           draft.Nome,
		Numero:         draft.Numero,
		Validade:       draft.Validade,
		Usado:          draft.Usado,
		CashbackTirado: draft.CashbackTirado,
		CreatedAt:      time.Now(),
	}, nil
}

// Update is a silent no-op.
func (r *SampleRepository) Update(ctx context.Context, ownerID, cardID string, patch models.CardPatch) error {
	return nil
}

// Delete is a silent no-op.
func (r *SampleRepository) Delete(ctx context.Context, ownerID, cardID string) error {
	return nil
}
