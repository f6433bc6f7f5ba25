package application

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not found", err: ErrNotFound, want: "not_found"},
		{name: "already exists", err: ErrAlreadyExists, want: "already_exists"},
		{name: "already completed", err: ErrAlreadyCompleted, want: "already_completed"},
		{name: "rule in use", err: ErrRuleInUse, want: "rule_in_use"},
		{name: "no upcoming meeting", err: ErrNoUpcomingMeeting, want: "no_upcoming_meeting"},
		{name: "wrapped sentinel", err: fmt.Errorf("complete: %w", ErrAlreadyCompleted), want: "already_completed"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"title": "required"}}, want: "validation"},
		{name: "unexpected", err: fmt.Errorf("boom"), want: "unexpected"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("expected kind %q, got %q", tc.want, got)
			}
		})
	}
}
