package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/meeting-service/internal/persistence"
)

type userRepoStub struct {
	mu    sync.Mutex
	users map[string]persistence.User
	err   error
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: make(map[string]persistence.User)}
}

func (s *userRepoStub) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return persistence.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *userRepoStub) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (s *userRepoStub) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userRepoStub) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *userRepoStub) MissingUserIDs(ctx context.Context, ids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var missing []string
	for _, id := range ids {
		if _, ok := s.users[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()

	repo := newUserRepoStub()
	service := NewUserService(repo, sequenceIDs("user"), fixedNow(utcTime(t, "2024-01-01T00:00:00Z")), nil)

	user, err := service.CreateUser(context.Background(), CreateUserParams{
		Principal: Principal{UserID: "admin-1"},
		Input:     UserInput{Email: "Alex@Example.com", DisplayName: "Alex"},
	})
	if err != nil {
		t.Fatalf("expected creation to succeed, got %v", err)
	}
	if user.Email != "alex@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}

	_, err = service.CreateUser(context.Background(), CreateUserParams{
		Principal: Principal{UserID: "admin-1"},
		Input:     UserInput{Email: "alex@example.com", DisplayName: "Alex Again"},
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for duplicate email, got %v", err)
	}
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	repo := newUserRepoStub()
	service := NewUserService(repo, sequenceIDs("user"), nil, nil)

	_, err := service.CreateUser(context.Background(), CreateUserParams{
		Principal: Principal{UserID: "admin-1"},
		Input:     UserInput{Email: "not-an-email", DisplayName: ""},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["email"]; !ok {
		t.Fatalf("expected email field error, got %v", vErr.FieldErrors)
	}
	if _, ok := vErr.FieldErrors["display_name"]; !ok {
		t.Fatalf("expected display_name field error, got %v", vErr.FieldErrors)
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()

	repo := newUserRepoStub()
	repo.users["user-1"] = persistence.User{ID: "user-1", Email: "alex@example.com"}
	service := NewUserService(repo, nil, nil, nil)

	if err := service.DeleteUser(context.Background(), Principal{UserID: "admin-1"}, "user-1"); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}

	err := service.DeleteUser(context.Background(), Principal{UserID: "admin-1"}, "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
