package recoverycodes

import (
	"context"
	"time"

	"github.com/cardbook/cardbook/internal/server/models"
)

// Repository stores short-lived account recovery codes. A code is either
// a 6-digit one-time code delivered by SMS or a hex token embedded in an
// email recovery link; both flows share the same table.
type Repository interface {
	Create(ctx context.Context, userID string, code string, validity time.Duration) error
	Find(ctx context.Context, code string) (*models.RecoveryCode, error)
	Delete(ctx context.Context, code string) error
}
