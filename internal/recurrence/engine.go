package recurrence

import (
	"errors"
	"time"
)

// Frequency represents supported recurrence intervals.
type Frequency int

const (
	// FrequencyUnspecified indicates the rule frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily generates an occurrence every Interval days.
	FrequencyDaily
	// FrequencyWeekly generates an occurrence every Interval weeks.
	FrequencyWeekly
	// FrequencyMonthly generates an occurrence every Interval months.
	FrequencyMonthly
)

// String returns the wire name of the frequency.
func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyMonthly:
		return "monthly"
	default:
		return "unspecified"
	}
}

// ParseFrequency maps a wire name to a Frequency.
func ParseFrequency(value string) (Frequency, error) {
	switch value {
	case "daily":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	case "monthly":
		return FrequencyMonthly, nil
	default:
		return FrequencyUnspecified, ErrInvalidFrequency
	}
}

// Rule describes a structured recurrence configuration for a meeting series.
//
// Weekday anchors a weekly rule to a fixed day of the week. For monthly rules
// MonthWeek selects the nth occurrence of Weekday within each month
// ("2nd Tuesday"); both fields must be set together in that case. EndsOn is an
// exclusive upper bound, EndAfter caps the total number of occurrences. A rule
// with neither is open-ended and relies on the caller-supplied cap.
type Rule struct {
	ID        string
	Title     string
	Frequency Frequency
	Interval  int
	Weekday   *time.Weekday
	MonthWeek *int
	EndsOn    *time.Time
	EndAfter  int
}

// Occurrence represents a generated instance of a recurrence rule.
type Occurrence struct {
	RuleID string
	Start  time.Time
	End    time.Time
}

// Engine expands recurrence rules into concrete occurrences.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that normalizes results to the provided
// location. If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// ErrInvalidFrequency indicates the recurrence frequency is not supported.
var ErrInvalidFrequency = errors.New("recurrence: invalid frequency")

// ErrInvalidInterval indicates the recurrence interval is not positive.
var ErrInvalidInterval = errors.New("recurrence: interval must be positive")

// ErrInvalidDuration indicates the base meeting duration is invalid.
var ErrInvalidDuration = errors.New("recurrence: meeting duration must be positive")

// ErrInvalidCap indicates the caller did not bound the expansion.
var ErrInvalidCap = errors.New("recurrence: expansion requires a positive occurrence cap")

// ErrInvalidAnchor indicates the monthly anchor is malformed.
var ErrInvalidAnchor = errors.New("recurrence: month-week anchor requires a weekday and a week between 1 and 5")

// Expand produces the ordered occurrence sequence for a rule applied to a base
// meeting slot.
//
// The engine enforces the following semantics:
//   - All timestamps are normalized to the engine's timezone (default UTC).
//   - Output is strictly increasing and deterministic for identical inputs.
//   - Expansion stops at the rule's end date (exclusive), its occurrence-count
//     limit, or maxCount, whichever is reached first. maxCount must be
//     positive so open-ended rules cannot expand without bound.
//   - A monthly anchor that does not exist in a given month (a "5th Monday")
//     skips that month entirely rather than clamping to another day.
func (e *Engine) Expand(rule Rule, baseStart time.Time, baseDuration time.Duration, maxCount int) ([]Occurrence, error) {
	loc := e.location
	if loc == nil {
		loc = time.UTC
	}

	if err := Validate(rule); err != nil {
		return nil, err
	}
	if baseDuration <= 0 {
		return nil, ErrInvalidDuration
	}
	if maxCount <= 0 {
		return nil, ErrInvalidCap
	}

	baseStart = baseStart.In(loc)
	var endsOn time.Time
	if rule.EndsOn != nil {
		endsOn = rule.EndsOn.In(loc)
	}

	occurrences := make([]Occurrence, 0, maxCount)
	emit := func(start time.Time) bool {
		if !endsOn.IsZero() && !start.Before(endsOn) {
			return false
		}
		occurrences = append(occurrences, Occurrence{
			RuleID: rule.ID,
			Start:  start,
			End:    start.Add(baseDuration),
		})
		if rule.EndAfter > 0 && len(occurrences) >= rule.EndAfter {
			return false
		}
		return len(occurrences) < maxCount
	}

	switch rule.Frequency {
	case FrequencyDaily:
		expandDaily(rule, baseStart, emit)
	case FrequencyWeekly:
		expandWeekly(rule, baseStart, loc, emit)
	case FrequencyMonthly:
		expandMonthly(rule, baseStart, loc, emit)
	}

	return occurrences, nil
}

// Validate checks a rule for structural problems without expanding it.
func Validate(rule Rule) error {
	switch rule.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return ErrInvalidFrequency
	}
	if rule.Interval <= 0 {
		return ErrInvalidInterval
	}
	if rule.MonthWeek != nil {
		if rule.Weekday == nil || *rule.MonthWeek < 1 || *rule.MonthWeek > 5 {
			return ErrInvalidAnchor
		}
	}
	return nil
}

func expandDaily(rule Rule, baseStart time.Time, emit func(time.Time) bool) {
	for current := baseStart; ; current = current.AddDate(0, 0, rule.Interval) {
		if !emit(current) {
			return
		}
	}
}

// expandWeekly steps in Interval-week strides from the week containing the
// base start. A weekday anchor shifts each candidate to that day inside its
// Monday-start week; a shifted candidate landing before the base start is
// dropped so the series never begins in the past.
func expandWeekly(rule Rule, baseStart time.Time, loc *time.Location, emit func(time.Time) bool) {
	for current := baseStart; ; current = current.AddDate(0, 0, 7*rule.Interval) {
		candidate := current
		if rule.Weekday != nil {
			candidate = shiftToWeekday(current, *rule.Weekday, loc)
			if candidate.Before(baseStart) {
				continue
			}
		}
		if !emit(candidate) {
			return
		}
	}
}

// expandMonthly steps in Interval-month strides. With an anchor it resolves
// the nth weekday of each target month, skipping months where that day does
// not exist. Without an anchor it keeps the base day-of-month and likewise
// skips months too short to contain it.
func expandMonthly(rule Rule, baseStart time.Time, loc *time.Location, emit func(time.Time) bool) {
	year, month, day := baseStart.Date()
	for offset := 0; ; offset += rule.Interval {
		targetYear, targetMonth := stepMonths(year, month, offset)

		var candidate time.Time
		var ok bool
		if rule.MonthWeek != nil {
			candidate, ok = nthWeekdayOfMonth(targetYear, targetMonth, *rule.Weekday, *rule.MonthWeek, baseStart, loc)
		} else {
			candidate, ok = sameDayOfMonth(targetYear, targetMonth, day, baseStart, loc)
		}
		if !ok {
			continue
		}
		if candidate.Before(baseStart) {
			continue
		}
		if !emit(candidate) {
			return
		}
	}
}

// stepMonths advances a calendar month without the day-overflow normalization
// that time.AddDate applies.
func stepMonths(year int, month time.Month, offset int) (int, time.Month) {
	total := year*12 + int(month) - 1 + offset
	return total / 12, time.Month(total%12 + 1)
}

func shiftToWeekday(t time.Time, day time.Weekday, loc *time.Location) time.Time {
	weekStart := t.AddDate(0, 0, -mondayOffset(t.Weekday()))
	return combineDateTime(weekStart.AddDate(0, 0, mondayOffset(day)), t, loc)
}

// mondayOffset returns the day index within a Monday-start week.
func mondayOffset(day time.Weekday) int {
	return (int(day) + 6) % 7
}

func nthWeekdayOfMonth(year int, month time.Month, day time.Weekday, week int, template time.Time, loc *time.Location) (time.Time, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(day) - int(first.Weekday()) + 7) % 7
	date := 1 + offset + (week-1)*7
	if date > daysInMonth(year, month) {
		return time.Time{}, false
	}
	return combineDateTime(time.Date(year, month, date, 0, 0, 0, 0, loc), template, loc), true
}

func sameDayOfMonth(year int, month time.Month, day int, template time.Time, loc *time.Location) (time.Time, bool) {
	if day > daysInMonth(year, month) {
		return time.Time{}, false
	}
	return combineDateTime(time.Date(year, month, day, 0, 0, 0, 0, loc), template, loc), true
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func combineDateTime(dateSource, template time.Time, loc *time.Location) time.Time {
	y, m, d := dateSource.In(loc).Date()
	clock := template.In(loc)
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), loc)
}
