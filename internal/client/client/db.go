package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sultan0alshami/wathiq-sub001/internal/client/migrations"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/repositories/metadata"
	"github.com/sultan0alshami/wathiq-sub001/internal/dbx"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Metadata metadata.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	return dbx.Migrate(ctx, db, "sqlite3", migrations.Migrations)
}

// InitDatabase opens the local SQLite file and brings its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}

	// one writer keeps SQLite from returning SQLITE_BUSY under the watcher
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
