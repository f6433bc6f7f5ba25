package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/meeting-service/internal/application"
)

func TestServiceFactoryDefaults(t *testing.T) {
	factory := NewServiceFactory()
	if factory.Clock == nil || factory.IDGenerator == nil {
		t.Fatal("expected default clock and id generator")
	}
}

func TestServiceFactoryBuildsWiredServices(t *testing.T) {
	harness := NewSQLiteHarness(t)
	clock := NewClock(time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC))
	factory := NewServiceFactory(
		WithClock(clock),
		WithIDGenerator(NewIDGenerator("fixture")),
	)

	users := factory.NewUserService(UserServiceDeps{Users: harness.Users})

	created, err := users.CreateUser(context.Background(), application.CreateUserParams{
		Input: application.UserInput{Email: "alice@example.com", DisplayName: "Alice"},
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if created.ID != "fixture-1" {
		t.Fatalf("expected deterministic id fixture-1, got %q", created.ID)
	}
	if !created.CreatedAt.Equal(clock.Current()) {
		t.Fatalf("expected creation time from clock, got %v", created.CreatedAt)
	}

	meetings := factory.NewMeetingService(MeetingServiceDeps{
		Meetings:    harness.Meetings,
		Tasks:       harness.Tasks,
		Recurrences: harness.Recurrences,
		Users:       harness.Users,
	})

	start := clock.Current().Add(24 * time.Hour)
	meeting, err := meetings.CreateMeeting(context.Background(), application.CreateMeetingParams{
		Principal: application.Principal{UserID: created.ID},
		Input: application.MeetingInput{
			Title: "Planning",
			Start: start,
			End:   start.Add(time.Hour),
		},
	})
	if err != nil {
		t.Fatalf("CreateMeeting returned error: %v", err)
	}
	if meeting.ID == "" {
		t.Fatal("expected generated meeting id")
	}
}
