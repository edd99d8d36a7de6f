package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/kalahboard/internal/dbx"
	"github.com/dmitrijs2005/kalahboard/internal/server/repositories/leaderboard"
	"github.com/dmitrijs2005/kalahboard/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB handle or a
// transaction, so services can choose either per call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Leaderboard(db dbx.DBTX) leaderboard.Repository
}
