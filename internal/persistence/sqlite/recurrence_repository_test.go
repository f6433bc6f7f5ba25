package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/meeting-service/internal/persistence"
)

func TestRecurrenceRepository_CreateRecurrence(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewRecurrenceRepository(pool)
	ctx := context.Background()

	weekday := time.Tuesday
	monthWeek := 2
	endsOn := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	rule := persistence.RecurrenceRule{
		ID:        "rec1",
		Title:     "Sprint review",
		Frequency: "monthly",
		Interval:  1,
		Weekday:   &weekday,
		MonthWeek: &monthWeek,
		EndsOn:    &endsOn,
		EndAfter:  12,
	}

	if err := repo.CreateRecurrence(ctx, rule); err != nil {
		t.Fatalf("CreateRecurrence failed: %v", err)
	}

	retrieved, err := repo.GetRecurrence(ctx, "rec1")
	if err != nil {
		t.Fatalf("GetRecurrence failed: %v", err)
	}
	if retrieved.Frequency != "monthly" || retrieved.Interval != 1 {
		t.Errorf("Expected monthly/1, got %s/%d", retrieved.Frequency, retrieved.Interval)
	}
	if retrieved.Weekday == nil || *retrieved.Weekday != time.Tuesday {
		t.Errorf("Expected Tuesday, got %v", retrieved.Weekday)
	}
	if retrieved.MonthWeek == nil || *retrieved.MonthWeek != 2 {
		t.Errorf("Expected month week 2, got %v", retrieved.MonthWeek)
	}
	if retrieved.EndsOn == nil || !retrieved.EndsOn.Equal(endsOn) {
		t.Errorf("Expected ends on %v, got %v", endsOn, retrieved.EndsOn)
	}
	if retrieved.EndAfter != 12 {
		t.Errorf("Expected end after 12, got %d", retrieved.EndAfter)
	}
}

func TestRecurrenceRepository_CreateRecurrence_InvalidInterval(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewRecurrenceRepository(pool)

	err := repo.CreateRecurrence(context.Background(), persistence.RecurrenceRule{
		ID:        "rec1",
		Frequency: "daily",
		Interval:  0,
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("Expected ErrConstraintViolation, got %v", err)
	}
}

func TestRecurrenceRepository_GetRecurrence_NotFound(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewRecurrenceRepository(pool)

	_, err := repo.GetRecurrence(context.Background(), "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecurrenceRepository_UpdateRecurrence(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewRecurrenceRepository(pool)
	ctx := context.Background()

	rule := persistence.RecurrenceRule{
		ID:        "rec1",
		Frequency: "weekly",
		Interval:  1,
	}
	if err := repo.CreateRecurrence(ctx, rule); err != nil {
		t.Fatalf("CreateRecurrence failed: %v", err)
	}

	endsOn := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	rule.EndsOn = &endsOn
	rule.EndAfter = 8
	if err := repo.UpdateRecurrence(ctx, rule); err != nil {
		t.Fatalf("UpdateRecurrence failed: %v", err)
	}

	retrieved, err := repo.GetRecurrence(ctx, "rec1")
	if err != nil {
		t.Fatalf("GetRecurrence failed: %v", err)
	}
	if retrieved.EndsOn == nil || !retrieved.EndsOn.Equal(endsOn) {
		t.Errorf("Expected ends on %v, got %v", endsOn, retrieved.EndsOn)
	}
	if retrieved.EndAfter != 8 {
		t.Errorf("Expected end after 8, got %d", retrieved.EndAfter)
	}

	rule.ID = "missing"
	if err := repo.UpdateRecurrence(ctx, rule); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRecurrenceRepository_DeleteRecurrence(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewRecurrenceRepository(pool)
	ctx := context.Background()

	if err := repo.CreateRecurrence(ctx, persistence.RecurrenceRule{ID: "rec1", Frequency: "daily", Interval: 1}); err != nil {
		t.Fatalf("CreateRecurrence failed: %v", err)
	}

	if err := repo.DeleteRecurrence(ctx, "rec1"); err != nil {
		t.Fatalf("DeleteRecurrence failed: %v", err)
	}
	if err := repo.DeleteRecurrence(ctx, "rec1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for second delete, got %v", err)
	}
}

func TestRecurrenceRepository_DeleteRecurrence_Referenced(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewRecurrenceRepository(pool)
	meetings := NewMeetingRepository(pool)
	ctx := context.Background()

	if err := repo.CreateRecurrence(ctx, persistence.RecurrenceRule{ID: "rec1", Frequency: "daily", Interval: 1}); err != nil {
		t.Fatalf("CreateRecurrence failed: %v", err)
	}

	recurrenceID := "rec1"
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	meeting := testMeeting("meeting1", start)
	meeting.RecurrenceID = &recurrenceID
	if err := meetings.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	err := repo.DeleteRecurrence(ctx, "rec1")
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Errorf("Expected ErrForeignKeyViolation for referenced rule, got %v", err)
	}
}

func TestRecurrenceRepository_ListRecurrences(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewRecurrenceRepository(pool)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := []persistence.RecurrenceRule{
		{ID: "rec2", Frequency: "weekly", Interval: 1, CreatedAt: base.Add(time.Minute)},
		{ID: "rec1", Frequency: "daily", Interval: 2, CreatedAt: base},
	}
	for _, rule := range rules {
		if err := repo.CreateRecurrence(ctx, rule); err != nil {
			t.Fatalf("CreateRecurrence %s failed: %v", rule.ID, err)
		}
	}

	listed, err := repo.ListRecurrences(ctx)
	if err != nil {
		t.Fatalf("ListRecurrences failed: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "rec1" || listed[1].ID != "rec2" {
		t.Errorf("Expected rules ordered by creation time, got %d rules", len(listed))
	}
}

func TestRecurrenceRepository_CountMeetingsForRecurrence(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewRecurrenceRepository(pool)
	meetings := NewMeetingRepository(pool)
	ctx := context.Background()

	if err := repo.CreateRecurrence(ctx, persistence.RecurrenceRule{ID: "rec1", Frequency: "daily", Interval: 1}); err != nil {
		t.Fatalf("CreateRecurrence failed: %v", err)
	}

	count, err := repo.CountMeetingsForRecurrence(ctx, "rec1")
	if err != nil {
		t.Fatalf("CountMeetingsForRecurrence failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 meetings, got %d", count)
	}

	recurrenceID := "rec1"
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"meeting1", "meeting2"} {
		meeting := testMeeting(id, base.Add(time.Duration(i)*24*time.Hour))
		meeting.RecurrenceID = &recurrenceID
		if err := meetings.CreateMeeting(ctx, meeting); err != nil {
			t.Fatalf("CreateMeeting %s failed: %v", id, err)
		}
	}

	count, err = repo.CountMeetingsForRecurrence(ctx, "rec1")
	if err != nil {
		t.Fatalf("CountMeetingsForRecurrence failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 meetings, got %d", count)
	}
}
