package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "puzzlebox_test.db")
	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	// Skip if not in integration test mode
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	// Test that tables were created by migrations
	tables := []string{"users", "password_reset_tokens", "levels", "puzzle_progress"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		err := db.QueryRowContext(ctx, query, table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestProgressNaturalKeyUnique verifies the store-level uniqueness constraint
// on (user_id, level_id): a second plain insert for the same pair must fail,
// while the conditional upsert must collapse onto the existing row.
func TestProgressNaturalKeyUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)

	_, err := db.Exec("INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)",
		"player@example.com", "hash", "Player")
	if err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	_, err = db.Exec("INSERT INTO levels (title, grid_rows, grid_cols, sort_order, active) VALUES (?, ?, ?, ?, ?)",
		"First Steps", 3, 3, 1, true)
	if err != nil {
		t.Fatalf("Failed to insert level: %v", err)
	}

	now := time.Now().UTC()
	insert := `
		INSERT INTO puzzle_progress (user_id, level_id, placed_pieces, piece_count, completed, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.Exec(insert, 1, 1, `["p1"]`, 1, false, nil, now, now); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if _, err := db.Exec(insert, 1, 1, `["p2"]`, 1, false, nil, now, now); err == nil {
		t.Fatal("Second insert for same (user, level) should violate the unique constraint")
	}

	// The upsert must update in place rather than create a second row
	upsert := db.Dialect.UpsertProgress()
	completedAt := now.Add(time.Minute)
	if _, err := db.Exec(upsert, 1, 1, `["p1","p2"]`, 2, true, completedAt, now, now); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM puzzle_progress WHERE user_id = ? AND level_id = ?", 1, 1).Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 progress row, got %d", count)
	}

	// A later upsert with fewer pieces must not flip completion back
	if _, err := db.Exec(upsert, 1, 1, `["p1"]`, 1, false, nil, now, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	var completed bool
	var storedCompletedAt *time.Time
	err = db.QueryRow("SELECT completed, completed_at FROM puzzle_progress WHERE user_id = ? AND level_id = ?", 1, 1).
		Scan(&completed, &storedCompletedAt)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if !completed {
		t.Error("Completion flipped back to false after a smaller save")
	}
	if storedCompletedAt == nil {
		t.Error("completed_at was cleared by a later save")
	}
}
