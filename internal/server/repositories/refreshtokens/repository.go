// Package refreshtokens provides a PostgreSQL-backed repository for the
// long-lived session tokens of the auth backend.
package refreshtokens

import (
	"context"
	"time"

	"github.com/cardbook/cardbook/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
