package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrations holds the ordered schema steps. Each entry runs inside its own
// transaction and is recorded in schema_migrations, so startup is idempotent.
var migrations = []struct {
	version int
	name    string
	stmts   []string
}{
	{
		version: 1,
		name:    "base schema",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS recurrences (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL DEFAULT '',
				frequency TEXT NOT NULL,
				interval_value INTEGER NOT NULL CHECK (interval_value > 0),
				week_day INTEGER,
				month_week INTEGER,
				ends_on TEXT,
				end_after INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS meetings (
				id TEXT PRIMARY KEY,
				recurrence_id TEXT REFERENCES recurrences(id),
				title TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				duration_minutes INTEGER NOT NULL,
				location TEXT NOT NULL DEFAULT '',
				notes TEXT NOT NULL DEFAULT '',
				num_reschedules INTEGER NOT NULL DEFAULT 0,
				reminder_sent INTEGER NOT NULL DEFAULT 0,
				completed INTEGER NOT NULL DEFAULT 0,
				completed_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (end_time > start_time)
			)`,
			// Timestamps are stored as RFC 3339 UTC strings, so the unique
			// index doubles as the duplicate-occurrence guard for batch
			// materialization.
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_meetings_recurrence_start
				ON meetings(recurrence_id, start_time) WHERE recurrence_id IS NOT NULL`,
			`CREATE INDEX IF NOT EXISTS idx_meetings_start ON meetings(start_time)`,
			`CREATE TABLE IF NOT EXISTS tasks (
				id TEXT PRIMARY KEY,
				assignee_id TEXT REFERENCES users(id),
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				due_date TEXT,
				completed INTEGER NOT NULL DEFAULT 0,
				completed_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS meeting_tasks (
				id TEXT PRIMARY KEY,
				meeting_id TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
				task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
				created_at TEXT NOT NULL,
				UNIQUE (meeting_id, task_id)
			)`,
			`CREATE TABLE IF NOT EXISTS meeting_attendees (
				meeting_id TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				is_scheduler INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				PRIMARY KEY (meeting_id, user_id)
			)`,
		},
	},
}

// Migrate applies any pending schema migrations.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, migration := range migrations {
		applied, err := cp.migrationApplied(ctx, migration.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range migration.stmts {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", migration.version, migration.name, err)
				}
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
				migration.version, migration.name, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (cp *ConnectionPool) migrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := cp.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	return count > 0, nil
}
