package repomanager

import (
	"context"
	"database/sql"

	"github.com/sultan0alshami/wathiq-sub001/internal/dbx"
	"github.com/sultan0alshami/wathiq-sub001/internal/server/repositories/trips"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Trips(db dbx.DBTX) trips.Repository
}
