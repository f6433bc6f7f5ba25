package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/meeting-service/internal/persistence"
)

func TestUserRepository_CreateUser(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := persistence.User{
		ID:          "user1",
		Email:       "alice@example.com",
		DisplayName: "Alice",
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUser(ctx, "user1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if retrieved.Email != "alice@example.com" {
		t.Errorf("Expected email 'alice@example.com', got '%s'", retrieved.Email)
	}
	if retrieved.DisplayName != "Alice" {
		t.Errorf("Expected display name 'Alice', got '%s'", retrieved.DisplayName)
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("Expected created timestamp to be populated")
	}
}

func TestUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := persistence.User{ID: "user1", Email: "alice@example.com", DisplayName: "Alice"}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("First CreateUser failed: %v", err)
	}

	err := repo.CreateUser(ctx, persistence.User{ID: "user2", Email: "alice@example.com", DisplayName: "Other"})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepository_CreateUser_MissingEmail(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewUserRepository(pool)

	err := repo.CreateUser(context.Background(), persistence.User{ID: "user1", Email: "   "})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("Expected ErrConstraintViolation, got %v", err)
	}
}

func TestUserRepository_GetUser_NotFound(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewUserRepository(pool)

	_, err := repo.GetUser(context.Background(), "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_ListUsers(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []persistence.User{
		{ID: "user2", Email: "bob@example.com", DisplayName: "Bob", CreatedAt: base.Add(time.Minute)},
		{ID: "user1", Email: "alice@example.com", DisplayName: "Alice", CreatedAt: base},
	}
	for _, user := range users {
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser %s failed: %v", user.ID, err)
		}
	}

	listed, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "user1" || listed[1].ID != "user2" {
		t.Errorf("Expected users ordered by creation time, got %d users", len(listed))
	}
}

func TestUserRepository_DeleteUser(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, persistence.User{ID: "user1", Email: "alice@example.com"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := repo.DeleteUser(ctx, "user1"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := repo.GetUser(ctx, "user1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteUser(ctx, "user1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for second delete, got %v", err)
	}
}

func TestUserRepository_MissingUserIDs(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, persistence.User{ID: "user1", Email: "alice@example.com"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	missing, err := repo.MissingUserIDs(ctx, []string{"user1", "ghost1", "  ", "ghost2", "ghost1"})
	if err != nil {
		t.Fatalf("MissingUserIDs failed: %v", err)
	}
	if len(missing) != 2 || missing[0] != "ghost1" || missing[1] != "ghost2" {
		t.Errorf("Expected [ghost1 ghost2], got %v", missing)
	}

	missing, err = repo.MissingUserIDs(ctx, nil)
	if err != nil {
		t.Fatalf("MissingUserIDs with no input failed: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("Expected no missing IDs, got %v", missing)
	}
}
