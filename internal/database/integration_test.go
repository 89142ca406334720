package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"coachpath/migrations"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	tables := []string{"users", "sessions", "user_progress", "lesson_completions", "reminder_log"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
		if n, err := db.CountRows(ctx, table); err != nil || n != 0 {
			t.Errorf("CountRows(%s) = %d, %v", table, n, err)
		}
	}

	// Migrations are recorded and not re-applied
	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
	var applied int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&applied); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if applied != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", applied)
	}

	if _, err := db.CountRows(ctx, "migrations; DROP TABLE users"); err == nil {
		t.Error("CountRows accepted an unknown table")
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO users (id, email, name) VALUES (?, ?, ?)", "u1", "one@example.com", "One")
		return err
	})
	if err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO users (id, email, name) VALUES (?, ?, ?)", "u2", "two@example.com", "Two"); err != nil {
			return err
		}
		// duplicate email rolls the whole transaction back
		_, err := tx.ExecContext(ctx, "INSERT INTO users (id, email, name) VALUES (?, ?, ?)", "u3", "one@example.com", "Three")
		return err
	})
	if err == nil {
		t.Fatal("Expected duplicate email to fail")
	}
	if !db.Dialect.IsUniqueViolation(err) {
		t.Errorf("Expected unique violation, got %v", err)
	}

	n, err := db.CountRows(ctx, "users")
	if err != nil {
		t.Fatalf("CountRows() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 user after rollback, got %d", n)
	}
}

// TestTimestampRoundTrip checks a written time scans back through Timestamp
func TestTimestampRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	if _, err := db.ExecContext(ctx, "INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)", "u1", "a@example.com", NewTimestamp(created)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)", "u2", "b@example.com", "not a date"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var ts Timestamp
	if err := db.QueryRowContext(ctx, "SELECT created_at FROM users WHERE id = ?", "u1").Scan(&ts); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !ts.Valid || !ts.Time.Equal(created) {
		t.Errorf("created_at = %+v, want %v", ts, created)
	}

	if err := db.QueryRowContext(ctx, "SELECT created_at FROM users WHERE id = ?", "u2").Scan(&ts); err != nil {
		t.Fatalf("scan malformed: %v", err)
	}
	if ts.Valid || !ts.Malformed {
		t.Errorf("malformed created_at = %+v, want Malformed", ts)
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "INSERT INTO users (id, email, name) VALUES (?, ?, ?)", "u1", "concurrent@example.com", "Concurrent"); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var name string
			err := db.QueryRowContext(ctx, "SELECT name FROM users WHERE email = ?", "concurrent@example.com").Scan(&name)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
			if name != "Concurrent" {
				t.Errorf("Expected name 'Concurrent', got '%s'", name)
			}
		}()
	}
	wg.Wait()
}
