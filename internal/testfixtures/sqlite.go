package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/meeting-service/internal/persistence"
	"github.com/example/meeting-service/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Users       persistence.UserRepository
	Meetings    persistence.MeetingRepository
	Tasks       persistence.TaskRepository
	Recurrences persistence.RecurrenceRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness over a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	dsn := "file:" + filepath.Join(dir, "meetings.db") + "?_foreign_keys=on"

	pool, err := sqlite.NewConnectionPool(dsn)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Users:       sqlite.NewUserRepository(pool),
		Meetings:    sqlite.NewMeetingRepository(pool),
		Tasks:       sqlite.NewTaskRepository(pool),
		Recurrences: sqlite.NewRecurrenceRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
