// Package store persists sheet rows in PostgreSQL. Each row is one
// record keyed by its row id, with the cell values held as a JSONB
// array in source-column order.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkallberg/pagesync/internal/core"
)

// ErrRowNotFound is returned when the requested row id does not exist.
var ErrRowNotFound = errors.New("store: row not found")

// DefaultRowTable is the table rows live in unless configured otherwise.
const DefaultRowTable = "sheet_rows"

// RowStore reads and writes sheet rows backed by a pgx connection pool.
type RowStore struct {
	pool  *pgxpool.Pool
	table string
}

// NewRowStore returns a RowStore using the given pool and table name. An
// empty table name falls back to DefaultRowTable; anything else must be
// a plain identifier.
func NewRowStore(pool *pgxpool.Pool, table string) (*RowStore, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		table = DefaultRowTable
	}
	if !validIdentifier(table) {
		return nil, fmt.Errorf("store: table name %q is not a plain identifier", table)
	}
	return &RowStore{pool: pool, table: table}, nil
}

// EnsureSchema creates the row table if it does not exist.
func (s *RowStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id    TEXT PRIMARY KEY,
			cells JSONB NOT NULL DEFAULT '[]'::jsonb
		)`, quoteIdentifier(s.table))
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("store: ensuring schema: %w", err)
	}
	return nil
}

// ReadRow returns the cell values of one row. Numbers decode as float64,
// matching what the sync engine expects from JSON-sourced cells.
func (s *RowStore) ReadRow(ctx context.Context, rowID string) (core.RowData, error) {
	query := fmt.Sprintf("SELECT cells FROM %s WHERE id = $1", quoteIdentifier(s.table))

	var raw []byte
	err := s.pool.QueryRow(ctx, query, rowID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRowNotFound, rowID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: reading row %s: %w", rowID, err)
	}

	var cells core.RowData
	if err := json.Unmarshal(raw, &cells); err != nil {
		return nil, fmt.Errorf("store: row %s cells are not a JSON array: %w", rowID, err)
	}
	return cells, nil
}

// WriteCell sets one cell of an existing row to a string value. The slot
// is the zero-based cell index; jsonb_set appends when the slot is past
// the current end of the array.
func (s *RowStore) WriteCell(ctx context.Context, rowID string, slot int, value string) error {
	if slot < 0 {
		return fmt.Errorf("store: cell slot %d is negative", slot)
	}
	query := fmt.Sprintf(
		"UPDATE %s SET cells = jsonb_set(cells, $2::text[], to_jsonb($3::text), true) WHERE id = $1",
		quoteIdentifier(s.table))
	path := []string{fmt.Sprintf("%d", slot)}

	tag, err := s.pool.Exec(ctx, query, rowID, path, value)
	if err != nil {
		return fmt.Errorf("store: writing cell %d of row %s: %w", slot, rowID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, rowID)
	}
	return nil
}

// UpsertRow replaces the full cell array of a row, creating it if needed.
func (s *RowStore) UpsertRow(ctx context.Context, rowID string, cells []any) error {
	raw, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("store: encoding cells for row %s: %w", rowID, err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, cells) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET cells = EXCLUDED.cells`,
		quoteIdentifier(s.table))
	if _, err := s.pool.Exec(ctx, query, rowID, raw); err != nil {
		return fmt.Errorf("store: upserting row %s: %w", rowID, err)
	}
	return nil
}

// DeleteRow removes a row. Deleting a missing row is not an error.
func (s *RowStore) DeleteRow(ctx context.Context, rowID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", quoteIdentifier(s.table))
	if _, err := s.pool.Exec(ctx, query, rowID); err != nil {
		return fmt.Errorf("store: deleting row %s: %w", rowID, err)
	}
	return nil
}

// validIdentifier accepts plain lowercase SQL identifiers only; the
// table name comes from configuration, never from request input.
func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func quoteIdentifier(name string) string {
	return `"` + name + `"`
}
