// Package cards provides the record store adapter: the card repository
// interface with its PostgreSQL and fixed-sample implementations. The
// variant is chosen once at process start; nothing downstream branches on
// which one is active.
package cards

import (
	"context"

	"github.com/cardbook/cardbook/internal/models"
)

// Repository is the store behind card CRUD. List is newest-created first.
type Repository interface {
	List(ctx context.Context, ownerID string) ([]models.Card, error)
	Create(ctx context.Context, ownerID string, draft models.CardDraft) (*models.Card, error)
	Update(ctx context.Context, ownerID, cardID string, patch models.CardPatch) error
	Delete(ctx context.Context, ownerID, cardID string) error
}
