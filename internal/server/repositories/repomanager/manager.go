package repomanager

import (
	"context"
	"database/sql"

	"github.com/cardbook/cardbook/internal/dbx"
	"github.com/cardbook/cardbook/internal/server/repositories/cards"
	"github.com/cardbook/cardbook/internal/server/repositories/profiles"
	"github.com/cardbook/cardbook/internal/server/repositories/recoverycodes"
	"github.com/cardbook/cardbook/internal/server/repositories/refreshtokens"
	"github.com/cardbook/cardbook/internal/server/repositories/users"
)

// RepositoryManager vends repository instances bound to a DBTX, so a
// service can run several repositories inside one transaction, and
// exposes a schema migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	RecoveryCodes(db dbx.DBTX) recoverycodes.Repository
	Cards(db dbx.DBTX) cards.Repository
}
