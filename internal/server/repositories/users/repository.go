// Package users provides the PostgreSQL-backed account repository of the
// auth backend.
package users

import (
	"context"

	"github.com/cardbook/cardbook/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID string, passwordHash []byte) error
}
