package store

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// testPool connects to the database named by PAGESYNC_TEST_DATABASE_URL,
// skipping the test when it is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("PAGESYNC_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PAGESYNC_TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func testStore(t *testing.T) *RowStore {
	t.Helper()
	pool := testPool(t)
	store, err := NewRowStore(pool, "pagesync_test_rows")
	if err != nil {
		t.Fatalf("NewRowStore: %v", err)
	}
	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DROP TABLE IF EXISTS "pagesync_test_rows"`)
	})
	return store
}

func TestRowStoreRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	cells := []any{"Task A", 42.0, true, nil}
	if err := store.UpsertRow(ctx, "row-1", cells); err != nil {
		t.Fatalf("UpsertRow: %v", err)
	}

	got, err := store.ReadRow(ctx, "row-1")
	if err != nil {
		t.Fatalf("ReadRow: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d cells, want 4", len(got))
	}
	if got[0] != "Task A" {
		t.Errorf("cell 0 = %#v, want Task A", got[0])
	}
	if got[1] != 42.0 {
		t.Errorf("cell 1 = %#v, want 42.0", got[1])
	}
	if got[3] != nil {
		t.Errorf("cell 3 = %#v, want nil", got[3])
	}
}

func TestRowStoreWriteCell(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.UpsertRow(ctx, "row-1", []any{"Task A", nil}); err != nil {
		t.Fatalf("UpsertRow: %v", err)
	}
	if err := store.WriteCell(ctx, "row-1", 1, "page-123"); err != nil {
		t.Fatalf("WriteCell: %v", err)
	}

	got, err := store.ReadRow(ctx, "row-1")
	if err != nil {
		t.Fatalf("ReadRow: %v", err)
	}
	if got[1] != "page-123" {
		t.Errorf("cell 1 = %#v, want page-123", got[1])
	}
}

func TestRowStoreWriteCellPastEndAppends(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.UpsertRow(ctx, "row-1", []any{"Task A"}); err != nil {
		t.Fatalf("UpsertRow: %v", err)
	}
	if err := store.WriteCell(ctx, "row-1", 5, "page-123"); err != nil {
		t.Fatalf("WriteCell past end: %v", err)
	}

	got, err := store.ReadRow(ctx, "row-1")
	if err != nil {
		t.Fatalf("ReadRow: %v", err)
	}
	if got[len(got)-1] != "page-123" {
		t.Errorf("last cell = %#v, want page-123", got[len(got)-1])
	}
}

func TestRowStoreMissingRow(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.ReadRow(ctx, "nope"); err == nil {
		t.Error("ReadRow succeeded for a missing row")
	}
	if err := store.WriteCell(ctx, "nope", 0, "x"); err == nil {
		t.Error("WriteCell succeeded for a missing row")
	}
}

func TestNewRowStoreRejectsBadTableNames(t *testing.T) {
	for _, name := range []string{"1table", "drop table", `x";--`, "Sheet-Rows"} {
		if _, err := NewRowStore(nil, name); err == nil {
			t.Errorf("NewRowStore accepted table name %q", name)
		}
	}

	store, err := NewRowStore(nil, "")
	if err != nil {
		t.Fatalf("NewRowStore with empty name: %v", err)
	}
	if store.table != DefaultRowTable {
		t.Errorf("table = %q, want %q", store.table, DefaultRowTable)
	}
}
