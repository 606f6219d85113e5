// Package sqlite provides a SQLite-backed memory store driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mnemosyneco/keep/pkg/memory/sqlstore"
)

// Driver implements memory.Driver using SQLite via the shared SQL store.
type Driver struct {
	*sqlstore.Store
}

// NewDriver creates a new SQLite-backed memory store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite-specific pragmas
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	store, err := sqlstore.New(ctx, db, sqlstore.DialectSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{Store: store}, nil
}
