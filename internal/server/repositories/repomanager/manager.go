package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/moments"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/rewards"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/shares"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/streaks"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so a service can
// use the same repositories inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Moments(db dbx.DBTX) moments.Repository
	Streaks(db dbx.DBTX) streaks.Repository
	Rewards(db dbx.DBTX) rewards.Repository
	Shares(db dbx.DBTX) shares.Repository
}
