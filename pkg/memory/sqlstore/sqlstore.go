// Package sqlstore implements the shared SQL memory store used by the sqlite
// and postgres drivers. The dialect wrappers own connection setup; everything
// from schema to CRUD lives here once.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mnemosyneco/keep/pkg/memory"
)

// Dialect selects placeholder rewriting for the underlying database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// schemaStatements use type names both SQLite and PostgreSQL accept.
// Timestamps are stored as the ISO-8601 strings the records carry. Statements
// run one at a time because pgx's extended protocol rejects batched DDL.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS memories (
	id               TEXT PRIMARY KEY,
	content          TEXT NOT NULL DEFAULT '',
	size_bytes       BIGINT NOT NULL DEFAULT 0,
	category         TEXT NOT NULL DEFAULT 'general',
	created_at       TEXT NOT NULL,
	last_accessed    TEXT NOT NULL DEFAULT '',
	access_count     BIGINT NOT NULL DEFAULT 0,
	success_rate     DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	error_related    BOOLEAN NOT NULL DEFAULT FALSE,
	solution_related BOOLEAN NOT NULL DEFAULT FALSE
)`,
	`CREATE INDEX IF NOT EXISTS idx_memories_category ON memories (category)`,
}

// Store implements memory.Driver on top of a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database handle and runs the schema migration.
// The caller keeps ownership of connection setup; Close releases the handle.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if db == nil {
		return nil, errors.New("nil database handle")
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating memories schema: %w", err)
		}
	}

	return &Store{db: db, dialect: dialect}, nil
}

// rebind rewrites ? placeholders to $N for the postgres dialect.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Put inserts or replaces a record by ID.
func (s *Store) Put(ctx context.Context, rec memory.Record) error {
	if rec.ID == "" {
		return errors.New("cannot store record with empty ID")
	}

	query := s.rebind(`
INSERT INTO memories (id, content, size_bytes, category, created_at, last_accessed,
	access_count, success_rate, error_related, solution_related)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	content = excluded.content,
	size_bytes = excluded.size_bytes,
	category = excluded.category,
	created_at = excluded.created_at,
	last_accessed = excluded.last_accessed,
	access_count = excluded.access_count,
	success_rate = excluded.success_rate,
	error_related = excluded.error_related,
	solution_related = excluded.solution_related`)

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Content, rec.SizeBytes, rec.Category, rec.CreatedAt, rec.LastAccessed,
		rec.AccessCount, rec.SuccessRate, rec.ErrorRelated, rec.SolutionRelated)
	if err != nil {
		return fmt.Errorf("upserting memory %s: %w", rec.ID, err)
	}

	return nil
}

const selectColumns = `id, content, size_bytes, category, created_at, last_accessed,
	access_count, success_rate, error_related, solution_related`

func scanRecord(row interface{ Scan(...any) error }) (memory.Record, error) {
	var rec memory.Record
	err := row.Scan(&rec.ID, &rec.Content, &rec.SizeBytes, &rec.Category,
		&rec.CreatedAt, &rec.LastAccessed, &rec.AccessCount, &rec.SuccessRate,
		&rec.ErrorRelated, &rec.SolutionRelated)
	return rec, err
}

// Get retrieves a record by its ID.
func (s *Store) Get(ctx context.Context, id string) (memory.Record, error) {
	query := s.rebind(`SELECT ` + selectColumns + ` FROM memories WHERE id = ?`)

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return memory.Record{}, memory.ErrNotFound
	}
	if err != nil {
		return memory.Record{}, fmt.Errorf("getting memory %s: %w", id, err)
	}

	return rec, nil
}

// List returns all records sorted by ID.
func (s *Store) List(ctx context.Context) ([]memory.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM memories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing memories: %w", err)
	}
	defer rows.Close()

	var recs []memory.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning memory row: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing memories: %w", err)
	}

	return recs, nil
}

// Touch increments the record's access count and stamps the last-accessed
// instant.
func (s *Store) Touch(ctx context.Context, id string, now time.Time) error {
	query := s.rebind(`UPDATE memories
SET access_count = access_count + 1, last_accessed = ?
WHERE id = ?`)

	result, err := s.db.ExecContext(ctx, query, now.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("touching memory %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touching memory %s: %w", id, err)
	}
	if affected == 0 {
		return memory.ErrNotFound
	}

	return nil
}

// UpdateOutcome folds a usage outcome into the record's success rate. The
// read-fold-write runs in a transaction so concurrent feedback never clobbers
// an update.
func (s *Store) UpdateOutcome(ctx context.Context, id string, success bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("updating outcome for memory %s: %w", id, err)
	}
	defer tx.Rollback()

	var rate float64
	query := s.rebind(`SELECT success_rate FROM memories WHERE id = ?`)
	if err := tx.QueryRowContext(ctx, query, id).Scan(&rate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return memory.ErrNotFound
		}
		return fmt.Errorf("updating outcome for memory %s: %w", id, err)
	}

	query = s.rebind(`UPDATE memories SET success_rate = ? WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, query, memory.FoldOutcome(rate, success), id); err != nil {
		return fmt.Errorf("updating outcome for memory %s: %w", id, err)
	}

	return tx.Commit()
}

// Delete removes records by ID, returning how many were deleted. Unknown IDs
// are skipped.
func (s *Store) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := s.rebind(`DELETE FROM memories WHERE id IN (` + strings.Join(placeholders, ", ") + `)`)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting memories: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting memories: %w", err)
	}

	return int(affected), nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
