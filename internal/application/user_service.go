package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/meeting-service/internal/persistence"
)

// UserService manages the attendee identity directory. There are no
// credentials here; identity issuance is delegated to the edge.
type UserService struct {
	users       persistence.UserRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for directory operations.
func NewUserService(users persistence.UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates and registers a new directory entry.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	input := params.Input

	vErr := &ValidationError{}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, parseErr := mail.ParseAddress(email); parseErr != nil {
		vErr.add("email", "must be a valid email address")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	record := persistence.User{
		ID:          s.idGenerator(),
		Email:       email,
		DisplayName: strings.TrimSpace(input.DisplayName),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	if err = s.users.CreateUser(ctx, record); err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	user = toUser(record)
	return
}

// GetUser loads a directory entry by id.
func (s *UserService) GetUser(ctx context.Context, id string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	record, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapMeetingRepoError(err)
	}
	return toUser(record), nil
}

// ListUsers enumerates the directory.
func (s *UserService) ListUsers(ctx context.Context) ([]User, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}
	records, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapMeetingRepoError(err)
	}
	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, toUser(record))
	}
	return users, nil
}

// DeleteUser removes a directory entry.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) (err error) {
	if s == nil || s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteUser",
		"principal_id", principal.UserID,
		"user_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user deleted")
	}()

	if err = s.users.DeleteUser(ctx, userID); err != nil {
		err = mapMeetingRepoError(err)
	}
	return
}

func toUser(record persistence.User) User {
	return User{
		ID:          record.ID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
