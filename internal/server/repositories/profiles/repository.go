// Package profiles provides the PostgreSQL-backed repository for the
// bookkeeping rows mirrored from the auth accounts.
package profiles

import "context"

type Repository interface {
	// Insert creates the profile row for a fresh account.
	Insert(ctx context.Context, id, email string) error
	// Upsert creates the profile row if missing, otherwise refreshes
	// email and updated_at.
	Upsert(ctx context.Context, id, email string) error
}
