package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/meeting-service/internal/persistence"
)

func newTaskServiceHarness(t *testing.T) (*TaskService, *taskRepoStub, *meetingRepoStub) {
	t.Helper()
	tasks := newTaskRepoStub()
	meetings := newMeetingRepoStub()
	service := NewTaskService(tasks, meetings, &userDirectoryStub{}, sequenceIDs("task"), fixedNow(utcTime(t, "2024-01-01T00:00:00Z")), nil)
	return service, tasks, meetings
}

func TestTaskService_CreateTask_RequiresTitle(t *testing.T) {
	t.Parallel()

	service, _, _ := newTaskServiceHarness(t)

	_, err := service.CreateTask(context.Background(), CreateTaskParams{
		Principal: Principal{UserID: "user-1"},
		Input:     TaskInput{Title: "   "},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["title"]; !ok {
		t.Fatalf("expected title field error, got %v", vErr.FieldErrors)
	}
}

func TestTaskService_CreateTask_AttachesToMeeting(t *testing.T) {
	t.Parallel()

	service, tasks, meetings := newTaskServiceHarness(t)
	meetings.meetings["meeting-1"] = persistence.Meeting{ID: "meeting-1"}

	meetingID := "meeting-1"
	task, err := service.CreateTask(context.Background(), CreateTaskParams{
		Principal: Principal{UserID: "user-1"},
		Input:     TaskInput{Title: "Write minutes"},
		MeetingID: &meetingID,
	})
	if err != nil {
		t.Fatalf("expected task creation to succeed, got %v", err)
	}

	attached, err := tasks.ListTasksForMeeting(context.Background(), "meeting-1")
	if err != nil {
		t.Fatalf("expected listing to succeed, got %v", err)
	}
	if len(attached) != 1 || attached[0].ID != task.ID {
		t.Fatalf("expected task attached to meeting, got %+v", attached)
	}
}

func TestTaskService_CreateTask_UnknownMeeting(t *testing.T) {
	t.Parallel()

	service, _, _ := newTaskServiceHarness(t)

	meetingID := "missing"
	_, err := service.CreateTask(context.Background(), CreateTaskParams{
		Principal: Principal{UserID: "user-1"},
		Input:     TaskInput{Title: "Write minutes"},
		MeetingID: &meetingID,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskService_CompleteTask(t *testing.T) {
	t.Parallel()

	service, tasks, _ := newTaskServiceHarness(t)
	tasks.tasks["task-1"] = persistence.Task{ID: "task-1", Title: "Write minutes"}

	completed, err := service.CompleteTask(context.Background(), Principal{UserID: "user-1"}, "task-1")
	if err != nil {
		t.Fatalf("expected completion to succeed, got %v", err)
	}
	if !completed.Completed || completed.CompletedAt == nil {
		t.Fatalf("expected completed task with timestamp, got %+v", completed)
	}

	_, err = service.CompleteTask(context.Background(), Principal{UserID: "user-1"}, "task-1")
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted on second completion, got %v", err)
	}
}

func TestTaskService_AttachAndDetach(t *testing.T) {
	t.Parallel()

	service, tasks, meetings := newTaskServiceHarness(t)
	meetings.meetings["meeting-1"] = persistence.Meeting{ID: "meeting-1"}
	tasks.tasks["task-1"] = persistence.Task{ID: "task-1", Title: "Write minutes"}

	if err := service.AttachTask(context.Background(), Principal{UserID: "user-1"}, "meeting-1", "task-1"); err != nil {
		t.Fatalf("expected attach to succeed, got %v", err)
	}

	attached, err := service.ListTasksForMeeting(context.Background(), "meeting-1")
	if err != nil {
		t.Fatalf("expected listing to succeed, got %v", err)
	}
	if len(attached) != 1 {
		t.Fatalf("expected one attached task, got %d", len(attached))
	}

	if err := service.DetachTask(context.Background(), Principal{UserID: "user-1"}, "meeting-1", "task-1"); err != nil {
		t.Fatalf("expected detach to succeed, got %v", err)
	}

	if _, err := service.GetTask(context.Background(), "task-1"); err != nil {
		t.Fatalf("expected task to survive detach, got %v", err)
	}

	err = service.DetachTask(context.Background(), Principal{UserID: "user-1"}, "meeting-1", "task-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing association, got %v", err)
	}
}

func TestTaskService_UpdateTask_RejectsUnknownAssignee(t *testing.T) {
	t.Parallel()

	tasks := newTaskRepoStub()
	tasks.tasks["task-1"] = persistence.Task{ID: "task-1", Title: "Write minutes"}
	service := NewTaskService(tasks, newMeetingRepoStub(), &userDirectoryStub{missing: []string{"ghost"}}, sequenceIDs("task"), nil, nil)

	assignee := "ghost"
	_, err := service.UpdateTask(context.Background(), UpdateTaskParams{
		Principal: Principal{UserID: "user-1"},
		TaskID:    "task-1",
		Input:     TaskInput{Title: "Write minutes", AssigneeID: &assignee},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["assignee_id"]; !ok {
		t.Fatalf("expected assignee_id field error, got %v", vErr.FieldErrors)
	}
}
