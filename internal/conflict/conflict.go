// Package conflict detects attendee double-bookings between meetings.
// Overlap alone is not an error in this system; callers surface conflicts
// as warnings and let the booking stand.
package conflict

import "time"

// Booking is an occupied span on one or more attendees' calendars.
type Booking struct {
	MeetingID   string
	AttendeeIDs []string
	Start       time.Time
	End         time.Time
}

// Conflict reports one attendee double-booked against one existing meeting.
type Conflict struct {
	MeetingID string
	UserID    string
}

// Detect returns a conflict for every attendee the candidate shares with an
// overlapping existing booking. Spans are half-open, so back-to-back meetings
// do not conflict. Bookings carrying the candidate's meeting ID are ignored,
// which lets callers re-check a meeting being rescheduled against its own
// previous slot.
func Detect(existing []Booking, candidate Booking) []Conflict {
	if len(candidate.AttendeeIDs) == 0 || !candidate.End.After(candidate.Start) {
		return nil
	}

	attendees := make(map[string]struct{}, len(candidate.AttendeeIDs))
	for _, id := range candidate.AttendeeIDs {
		if id != "" {
			attendees[id] = struct{}{}
		}
	}

	var conflicts []Conflict
	for _, booking := range existing {
		if booking.MeetingID == candidate.MeetingID {
			continue
		}
		if !overlaps(booking, candidate) {
			continue
		}
		for _, id := range booking.AttendeeIDs {
			if _, ok := attendees[id]; ok {
				conflicts = append(conflicts, Conflict{MeetingID: booking.MeetingID, UserID: id})
			}
		}
	}
	return conflicts
}

func overlaps(a, b Booking) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
