// Package reminder periodically scans for meetings that start soon and
// publishes a one-shot reminder event for each.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/meeting-service/internal/logging"
	"github.com/example/meeting-service/internal/notify"
	"github.com/example/meeting-service/internal/persistence"
)

type meetingStore interface {
	ListDueReminders(ctx context.Context, from, to time.Time) ([]persistence.Meeting, error)
	MarkReminderSent(ctx context.Context, id string) error
}

// Sweeper finds meetings starting within the lead window, flips their reminder
// flag, and publishes a meeting.reminder event. The flag flip uses
// compare-and-set semantics so overlapping sweeps send each reminder once.
type Sweeper struct {
	meetings meetingStore
	notifier notify.Notifier
	lead     time.Duration
	now      func() time.Time
	logger   *slog.Logger
	cron     *cron.Cron
}

// NewSweeper wires a reminder sweeper. A nil notifier discards events and a
// non-positive lead falls back to 30 minutes.
func NewSweeper(meetings meetingStore, notifier notify.Notifier, lead time.Duration, now func() time.Time, logger *slog.Logger) *Sweeper {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	if lead <= 0 {
		lead = 30 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		meetings: meetings,
		notifier: notifier,
		lead:     lead,
		now:      now,
		logger:   logger,
	}
}

// Start schedules recurring sweeps using a standard five-field cron spec.
func (s *Sweeper) Start(schedule string) error {
	if s.cron != nil {
		return fmt.Errorf("sweeper already started")
	}

	runner := cron.New()
	_, err := runner.AddFunc(schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("reminder sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}

	runner.Start()
	s.cron = runner
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish, or for
// the context to expire.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}

	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sweep runs one pass over the lead window and returns how many reminders were
// sent. Meetings whose flag was flipped by a concurrent sweep are skipped.
func (s *Sweeper) Sweep(ctx context.Context) (sent int, err error) {
	if s == nil || s.meetings == nil {
		return 0, fmt.Errorf("sweeper not configured")
	}

	logger := logging.FromContextOr(ctx, s.logger)

	from := s.now().UTC()
	to := from.Add(s.lead)

	due, err := s.meetings.ListDueReminders(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	for _, meeting := range due {
		if err := s.meetings.MarkReminderSent(ctx, meeting.ID); err != nil {
			if errors.Is(err, persistence.ErrConflict) || errors.Is(err, persistence.ErrNotFound) {
				continue
			}
			return sent, fmt.Errorf("failed to mark reminder for meeting %s: %w", meeting.ID, err)
		}

		payload := map[string]any{
			"meeting_id": meeting.ID,
			"title":      meeting.Title,
			"start":      meeting.Start.UTC().Format(time.RFC3339),
		}
		if err := s.notifier.Publish(ctx, notify.EventMeetingReminder, payload); err != nil {
			logger.WarnContext(ctx, "failed to publish reminder event",
				"meeting_id", meeting.ID, "error", err)
		}
		sent++
	}

	if sent > 0 {
		logger.InfoContext(ctx, "reminder sweep completed", "sent", sent, "window_end", to)
	}
	return sent, nil
}
