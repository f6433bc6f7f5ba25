package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/meeting-service/internal/persistence"
)

func testTask(id string) persistence.Task {
	return persistence.Task{
		ID:          id,
		Title:       "Prepare agenda",
		Description: "collect discussion topics",
	}
}

func TestTaskRepository_CreateTask(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)
	ctx := context.Background()
	seedUser(t, pool, "user1", "user1@example.com")

	assignee := "user1"
	dueDate := time.Date(2024, 3, 8, 17, 0, 0, 0, time.UTC)
	task := testTask("task1")
	task.AssigneeID = &assignee
	task.DueDate = &dueDate

	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	retrieved, err := repo.GetTask(ctx, "task1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if retrieved.Title != "Prepare agenda" {
		t.Errorf("Expected title 'Prepare agenda', got '%s'", retrieved.Title)
	}
	if retrieved.AssigneeID == nil || *retrieved.AssigneeID != "user1" {
		t.Errorf("Expected assignee user1, got %v", retrieved.AssigneeID)
	}
	if retrieved.DueDate == nil || !retrieved.DueDate.Equal(dueDate) {
		t.Errorf("Expected due date %v, got %v", dueDate, retrieved.DueDate)
	}
	if retrieved.Completed {
		t.Error("Expected fresh task to be incomplete")
	}
}

func TestTaskRepository_GetTask_NotFound(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)

	_, err := repo.GetTask(context.Background(), "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_UpdateTask(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)
	ctx := context.Background()

	task := testTask("task1")
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	completedAt := time.Date(2024, 3, 8, 17, 0, 0, 0, time.UTC)
	task.Completed = true
	task.CompletedAt = &completedAt
	if err := repo.UpdateTask(ctx, task); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	retrieved, err := repo.GetTask(ctx, "task1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if !retrieved.Completed {
		t.Error("Expected task to be completed")
	}
	if retrieved.CompletedAt == nil || !retrieved.CompletedAt.Equal(completedAt) {
		t.Errorf("Expected completed at %v, got %v", completedAt, retrieved.CompletedAt)
	}

	if err := repo.UpdateTask(ctx, testTask("missing")); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing task, got %v", err)
	}
}

func TestTaskRepository_DeleteTask_CascadesAssociations(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)
	meetings := NewMeetingRepository(pool)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	if err := meetings.CreateMeeting(ctx, testMeeting("meeting1", start)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if err := repo.CreateTask(ctx, testTask("task1")); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	err := repo.AttachTask(ctx, persistence.MeetingTask{ID: "assoc1", MeetingID: "meeting1", TaskID: "task1"})
	if err != nil {
		t.Fatalf("AttachTask failed: %v", err)
	}

	if err := repo.DeleteTask(ctx, "task1"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	attached, err := repo.ListTasksForMeeting(ctx, "meeting1")
	if err != nil {
		t.Fatalf("ListTasksForMeeting failed: %v", err)
	}
	if len(attached) != 0 {
		t.Errorf("Expected 0 attached tasks after delete, got %d", len(attached))
	}
}

func TestTaskRepository_ListTasks(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)
	ctx := context.Background()
	seedUser(t, pool, "user1", "user1@example.com")

	assignee := "user1"
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assigned := testTask("task1")
	assigned.AssigneeID = &assignee
	assigned.CreatedAt = base
	unassigned := testTask("task2")
	unassigned.CreatedAt = base.Add(time.Minute)
	done := testTask("task3")
	done.AssigneeID = &assignee
	done.Completed = true
	done.CreatedAt = base.Add(2 * time.Minute)

	for _, task := range []persistence.Task{assigned, unassigned, done} {
		if err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask %s failed: %v", task.ID, err)
		}
	}

	all, err := repo.ListTasks(ctx, persistence.TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "task1" || all[2].ID != "task3" {
		t.Errorf("Expected tasks ordered by creation time, got %v", taskIDs(all))
	}

	byAssignee, err := repo.ListTasks(ctx, persistence.TaskFilter{AssigneeID: &assignee})
	if err != nil {
		t.Fatalf("ListTasks by assignee failed: %v", err)
	}
	if got := taskIDs(byAssignee); len(got) != 2 || got[0] != "task1" || got[1] != "task3" {
		t.Errorf("Expected [task1 task3], got %v", got)
	}

	incomplete := false
	open, err := repo.ListTasks(ctx, persistence.TaskFilter{AssigneeID: &assignee, Completed: &incomplete})
	if err != nil {
		t.Fatalf("ListTasks by completion failed: %v", err)
	}
	if got := taskIDs(open); len(got) != 1 || got[0] != "task1" {
		t.Errorf("Expected [task1], got %v", got)
	}
}

func TestTaskRepository_AttachTask(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)
	meetings := NewMeetingRepository(pool)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	if err := meetings.CreateMeeting(ctx, testMeeting("meeting1", start)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if err := repo.CreateTask(ctx, testTask("task1")); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	err := repo.AttachTask(ctx, persistence.MeetingTask{ID: "assoc1", MeetingID: "meeting1", TaskID: "task1"})
	if err != nil {
		t.Fatalf("AttachTask failed: %v", err)
	}

	// The same meeting/task pair cannot be attached twice.
	err = repo.AttachTask(ctx, persistence.MeetingTask{ID: "assoc2", MeetingID: "meeting1", TaskID: "task1"})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for second attach, got %v", err)
	}

	err = repo.AttachTask(ctx, persistence.MeetingTask{ID: "assoc3", MeetingID: "meeting1", TaskID: "ghost"})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Errorf("Expected ErrForeignKeyViolation for unknown task, got %v", err)
	}
}

func TestTaskRepository_DetachTask(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)
	meetings := NewMeetingRepository(pool)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	if err := meetings.CreateMeeting(ctx, testMeeting("meeting1", start)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if err := repo.CreateTask(ctx, testTask("task1")); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	err := repo.AttachTask(ctx, persistence.MeetingTask{ID: "assoc1", MeetingID: "meeting1", TaskID: "task1"})
	if err != nil {
		t.Fatalf("AttachTask failed: %v", err)
	}

	if err := repo.DetachTask(ctx, "meeting1", "task1"); err != nil {
		t.Fatalf("DetachTask failed: %v", err)
	}
	if err := repo.DetachTask(ctx, "meeting1", "task1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for second detach, got %v", err)
	}

	// The task itself survives detachment.
	if _, err := repo.GetTask(ctx, "task1"); err != nil {
		t.Errorf("Expected task to survive detach, got %v", err)
	}
}

func TestTaskRepository_ListTasksForMeeting(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)
	meetings := NewMeetingRepository(pool)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	if err := meetings.CreateMeeting(ctx, testMeeting("meeting1", start)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	for _, id := range []string{"task1", "task2", "task3"} {
		if err := repo.CreateTask(ctx, testTask(id)); err != nil {
			t.Fatalf("CreateTask %s failed: %v", id, err)
		}
	}

	// Attach out of order with explicit timestamps so the association order
	// is observable.
	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	associations := []persistence.MeetingTask{
		{ID: "assoc2", MeetingID: "meeting1", TaskID: "task2", CreatedAt: base.Add(time.Minute)},
		{ID: "assoc1", MeetingID: "meeting1", TaskID: "task1", CreatedAt: base},
	}
	for _, association := range associations {
		if err := repo.AttachTask(ctx, association); err != nil {
			t.Fatalf("AttachTask %s failed: %v", association.ID, err)
		}
	}

	attached, err := repo.ListTasksForMeeting(ctx, "meeting1")
	if err != nil {
		t.Fatalf("ListTasksForMeeting failed: %v", err)
	}
	if got := taskIDs(attached); len(got) != 2 || got[0] != "task1" || got[1] != "task2" {
		t.Errorf("Expected [task1 task2], got %v", got)
	}
}

func TestTaskRepository_MoveTaskAssociations(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)
	meetings := NewMeetingRepository(pool)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	if err := meetings.CreateMeeting(ctx, testMeeting("meeting1", start)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if err := meetings.CreateMeeting(ctx, testMeeting("meeting2", start.Add(7*24*time.Hour))); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	for i, id := range []string{"task1", "task2", "task3"} {
		if err := repo.CreateTask(ctx, testTask(id)); err != nil {
			t.Fatalf("CreateTask %s failed: %v", id, err)
		}
		association := persistence.MeetingTask{
			ID:        "assoc" + id,
			MeetingID: "meeting1",
			TaskID:    id,
			CreatedAt: start.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.AttachTask(ctx, association); err != nil {
			t.Fatalf("AttachTask %s failed: %v", id, err)
		}
	}

	movedAt := start.Add(7 * 24 * time.Hour)
	if err := repo.MoveTaskAssociations(ctx, "meeting1", "meeting2", []string{"task1", "task2"}, movedAt); err != nil {
		t.Fatalf("MoveTaskAssociations failed: %v", err)
	}

	moved, err := repo.ListTasksForMeeting(ctx, "meeting2")
	if err != nil {
		t.Fatalf("ListTasksForMeeting failed: %v", err)
	}
	if got := taskIDs(moved); len(got) != 2 || got[0] != "task1" || got[1] != "task2" {
		t.Errorf("Expected [task1 task2] on meeting2, got %v", got)
	}

	remaining, err := repo.ListTasksForMeeting(ctx, "meeting1")
	if err != nil {
		t.Fatalf("ListTasksForMeeting failed: %v", err)
	}
	if got := taskIDs(remaining); len(got) != 1 || got[0] != "task3" {
		t.Errorf("Expected [task3] on meeting1, got %v", got)
	}
}

func TestTaskRepository_MoveTaskAssociations_AlreadyOnTarget(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)
	meetings := NewMeetingRepository(pool)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	if err := meetings.CreateMeeting(ctx, testMeeting("meeting1", start)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if err := meetings.CreateMeeting(ctx, testMeeting("meeting2", start.Add(7*24*time.Hour))); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	for _, id := range []string{"task1", "task2"} {
		if err := repo.CreateTask(ctx, testTask(id)); err != nil {
			t.Fatalf("CreateTask %s failed: %v", id, err)
		}
		association := persistence.MeetingTask{
			ID:        "assoc-" + id,
			MeetingID: "meeting1",
			TaskID:    id,
			CreatedAt: start,
		}
		if err := repo.AttachTask(ctx, association); err != nil {
			t.Fatalf("AttachTask %s failed: %v", id, err)
		}
	}
	// task1 is already attached to the target meeting as well.
	err := repo.AttachTask(ctx, persistence.MeetingTask{
		ID: "assoc-both", MeetingID: "meeting2", TaskID: "task1", CreatedAt: start,
	})
	if err != nil {
		t.Fatalf("AttachTask failed: %v", err)
	}

	movedAt := start.Add(7 * 24 * time.Hour)
	if err := repo.MoveTaskAssociations(ctx, "meeting1", "meeting2", []string{"task1", "task2"}, movedAt); err != nil {
		t.Fatalf("MoveTaskAssociations failed: %v", err)
	}

	moved, err := repo.ListTasksForMeeting(ctx, "meeting2")
	if err != nil {
		t.Fatalf("ListTasksForMeeting failed: %v", err)
	}
	if got := taskIDs(moved); len(got) != 2 || got[0] != "task1" || got[1] != "task2" {
		t.Errorf("Expected [task1 task2] on meeting2, got %v", got)
	}

	remaining, err := repo.ListTasksForMeeting(ctx, "meeting1")
	if err != nil {
		t.Fatalf("ListTasksForMeeting failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected no tasks left on meeting1, got %v", taskIDs(remaining))
	}
}

func TestTaskRepository_MoveTaskAssociations_AllOrNothing(t *testing.T) {
	pool := newRepositoryTestPool(t)
	repo := NewTaskRepository(pool)
	meetings := NewMeetingRepository(pool)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	if err := meetings.CreateMeeting(ctx, testMeeting("meeting1", start)); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if err := meetings.CreateMeeting(ctx, testMeeting("meeting2", start.Add(7*24*time.Hour))); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if err := repo.CreateTask(ctx, testTask("task1")); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	err := repo.AttachTask(ctx, persistence.MeetingTask{ID: "assoc1", MeetingID: "meeting1", TaskID: "task1"})
	if err != nil {
		t.Fatalf("AttachTask failed: %v", err)
	}

	// One missing association aborts the whole move.
	err = repo.MoveTaskAssociations(ctx, "meeting1", "meeting2", []string{"task1", "ghost"}, start)
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	remaining, err := repo.ListTasksForMeeting(ctx, "meeting1")
	if err != nil {
		t.Fatalf("ListTasksForMeeting failed: %v", err)
	}
	if got := taskIDs(remaining); len(got) != 1 || got[0] != "task1" {
		t.Errorf("Expected task1 to stay on meeting1 after aborted move, got %v", got)
	}
}

func taskIDs(tasks []persistence.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}
