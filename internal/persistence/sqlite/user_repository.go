package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/example/meeting-service/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a new directory entry.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || strings.TrimSpace(user.Email) == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.DisplayName, formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
	return mapError(err)
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	var user persistence.User
	var createdStr, updatedStr string
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, created_at, updated_at FROM users WHERE id = ?", id,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &createdStr, &updatedStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, mapError(err)
	}

	if user.CreatedAt, err = parseTime(createdStr, "created_at"); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedStr, "updated_at"); err != nil {
		return persistence.User{}, err
	}

	return user, nil
}

// ListUsers returns all users ordered by creation time then ID.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT id, email, display_name, created_at, updated_at FROM users ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		var user persistence.User
		var createdStr, updatedStr string
		if err := rows.Scan(&user.ID, &user.Email, &user.DisplayName, &createdStr, &updatedStr); err != nil {
			return nil, mapError(err)
		}
		if user.CreatedAt, err = parseTime(createdStr, "created_at"); err != nil {
			return nil, err
		}
		if user.UpdatedAt, err = parseTime(updatedStr, "updated_at"); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return users, nil
}

// DeleteUser removes a directory entry.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowAffected(result)
}

// MissingUserIDs returns the subset of ids with no directory entry, preserving
// input order.
func (r *UserRepository) MissingUserIDs(ctx context.Context, ids []string) ([]string, error) {
	var missing []string
	seen := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		var count int
		err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE id = ?", id).Scan(&count)
		if err != nil {
			return nil, mapError(err)
		}
		if count == 0 {
			missing = append(missing, id)
		}
	}

	return missing, nil
}
