package recurrence

import (
	"errors"
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", value, err)
	}
	return ts
}

func weekdayPtr(day time.Weekday) *time.Weekday {
	return &day
}

func intPtr(v int) *int {
	return &v
}

func assertStarts(t *testing.T, occurrences []Occurrence, expected ...string) {
	t.Helper()
	if len(occurrences) != len(expected) {
		t.Fatalf("expected %d occurrences, got %d: %+v", len(expected), len(occurrences), occurrences)
	}
	for i, want := range expected {
		if got := occurrences[i].Start.UTC().Format(time.RFC3339); got != want {
			t.Fatalf("occurrence %d: expected start %s, got %s", i, want, got)
		}
	}
	for i := 1; i < len(occurrences); i++ {
		if !occurrences[i].Start.After(occurrences[i-1].Start) {
			t.Fatalf("occurrences not strictly increasing at index %d", i)
		}
	}
}

func TestEngineExpand_Daily(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	base := mustTime(t, "2024-01-01T09:00:00Z")

	t.Run("steps by the interval in days", func(t *testing.T) {
		t.Parallel()

		occurrences, err := engine.Expand(Rule{ID: "rule-1", Frequency: FrequencyDaily, Interval: 2}, base, time.Hour, 3)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		assertStarts(t, occurrences,
			"2024-01-01T09:00:00Z",
			"2024-01-03T09:00:00Z",
			"2024-01-05T09:00:00Z",
		)
		for _, occ := range occurrences {
			if !occ.End.Equal(occ.Start.Add(time.Hour)) {
				t.Fatalf("occurrence end %v not one hour after start %v", occ.End, occ.Start)
			}
			if occ.RuleID != "rule-1" {
				t.Fatalf("expected rule id rule-1, got %q", occ.RuleID)
			}
		}
	})

	t.Run("end date is exclusive", func(t *testing.T) {
		t.Parallel()

		endsOn := mustTime(t, "2024-01-03T09:00:00Z")
		occurrences, err := engine.Expand(Rule{Frequency: FrequencyDaily, Interval: 1, EndsOn: &endsOn}, base, time.Hour, 10)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		assertStarts(t, occurrences,
			"2024-01-01T09:00:00Z",
			"2024-01-02T09:00:00Z",
		)
	})

	t.Run("occurrence count bound wins over the cap", func(t *testing.T) {
		t.Parallel()

		occurrences, err := engine.Expand(Rule{Frequency: FrequencyDaily, Interval: 1, EndAfter: 2}, base, time.Hour, 10)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		if len(occurrences) != 2 {
			t.Fatalf("expected 2 occurrences, got %d", len(occurrences))
		}
	})
}

func TestEngineExpand_Weekly(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)

	t.Run("without an anchor repeats the base weekday", func(t *testing.T) {
		t.Parallel()

		base := mustTime(t, "2024-01-01T09:00:00Z") // Monday
		occurrences, err := engine.Expand(Rule{Frequency: FrequencyWeekly, Interval: 1}, base, 30*time.Minute, 3)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		assertStarts(t, occurrences,
			"2024-01-01T09:00:00Z",
			"2024-01-08T09:00:00Z",
			"2024-01-15T09:00:00Z",
		)
	})

	t.Run("anchor shifts occurrences within the week", func(t *testing.T) {
		t.Parallel()

		base := mustTime(t, "2024-01-01T09:00:00Z") // Monday
		occurrences, err := engine.Expand(Rule{Frequency: FrequencyWeekly, Interval: 1, Weekday: weekdayPtr(time.Wednesday)}, base, time.Hour, 3)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		assertStarts(t, occurrences,
			"2024-01-03T09:00:00Z",
			"2024-01-10T09:00:00Z",
			"2024-01-17T09:00:00Z",
		)
	})

	t.Run("anchor earlier in the week never starts before the base", func(t *testing.T) {
		t.Parallel()

		base := mustTime(t, "2024-01-03T09:00:00Z") // Wednesday
		occurrences, err := engine.Expand(Rule{Frequency: FrequencyWeekly, Interval: 1, Weekday: weekdayPtr(time.Monday)}, base, time.Hour, 2)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		assertStarts(t, occurrences,
			"2024-01-08T09:00:00Z",
			"2024-01-15T09:00:00Z",
		)
	})

	t.Run("multi-week interval", func(t *testing.T) {
		t.Parallel()

		base := mustTime(t, "2024-01-02T10:30:00Z") // Tuesday
		occurrences, err := engine.Expand(Rule{Frequency: FrequencyWeekly, Interval: 2, Weekday: weekdayPtr(time.Tuesday)}, base, time.Hour, 3)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		assertStarts(t, occurrences,
			"2024-01-02T10:30:00Z",
			"2024-01-16T10:30:00Z",
			"2024-01-30T10:30:00Z",
		)
	})
}

func TestEngineExpand_Monthly(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)

	t.Run("second Tuesday of each month", func(t *testing.T) {
		t.Parallel()

		base := mustTime(t, "2024-01-01T09:00:00Z")
		rule := Rule{
			Frequency: FrequencyMonthly,
			Interval:  1,
			Weekday:   weekdayPtr(time.Tuesday),
			MonthWeek: intPtr(2),
		}
		occurrences, err := engine.Expand(rule, base, time.Hour, 3)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		assertStarts(t, occurrences,
			"2024-01-09T09:00:00Z",
			"2024-02-13T09:00:00Z",
			"2024-03-12T09:00:00Z",
		)
	})

	t.Run("fifth Monday skips months without one", func(t *testing.T) {
		t.Parallel()

		base := mustTime(t, "2024-01-01T09:00:00Z")
		rule := Rule{
			Frequency: FrequencyMonthly,
			Interval:  1,
			Weekday:   weekdayPtr(time.Monday),
			MonthWeek: intPtr(5),
		}
		occurrences, err := engine.Expand(rule, base, time.Hour, 3)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		assertStarts(t, occurrences,
			"2024-01-29T09:00:00Z",
			"2024-04-29T09:00:00Z",
			"2024-07-29T09:00:00Z",
		)
	})

	t.Run("day of month skips short months", func(t *testing.T) {
		t.Parallel()

		base := mustTime(t, "2024-01-31T09:00:00Z")
		occurrences, err := engine.Expand(Rule{Frequency: FrequencyMonthly, Interval: 1}, base, time.Hour, 3)
		if err != nil {
			t.Fatalf("Expand returned error: %v", err)
		}
		assertStarts(t, occurrences,
			"2024-01-31T09:00:00Z",
			"2024-03-31T09:00:00Z",
			"2024-05-31T09:00:00Z",
		)
	})
}

func TestEngineExpand_Validation(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	base := mustTime(t, "2024-01-01T09:00:00Z")

	tests := []struct {
		name     string
		rule     Rule
		duration time.Duration
		maxCount int
		expected error
	}{
		{
			name:     "unknown frequency",
			rule:     Rule{Interval: 1},
			duration: time.Hour,
			maxCount: 5,
			expected: ErrInvalidFrequency,
		},
		{
			name:     "zero interval",
			rule:     Rule{Frequency: FrequencyDaily},
			duration: time.Hour,
			maxCount: 5,
			expected: ErrInvalidInterval,
		},
		{
			name:     "anchor without weekday",
			rule:     Rule{Frequency: FrequencyMonthly, Interval: 1, MonthWeek: intPtr(2)},
			duration: time.Hour,
			maxCount: 5,
			expected: ErrInvalidAnchor,
		},
		{
			name:     "anchor week out of range",
			rule:     Rule{Frequency: FrequencyMonthly, Interval: 1, Weekday: weekdayPtr(time.Monday), MonthWeek: intPtr(6)},
			duration: time.Hour,
			maxCount: 5,
			expected: ErrInvalidAnchor,
		},
		{
			name:     "non-positive duration",
			rule:     Rule{Frequency: FrequencyDaily, Interval: 1},
			duration: 0,
			maxCount: 5,
			expected: ErrInvalidDuration,
		},
		{
			name:     "missing expansion cap",
			rule:     Rule{Frequency: FrequencyDaily, Interval: 1},
			duration: time.Hour,
			maxCount: 0,
			expected: ErrInvalidCap,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := engine.Expand(tc.rule, base, tc.duration, tc.maxCount)
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"daily", "weekly", "monthly"} {
		freq, err := ParseFrequency(name)
		if err != nil {
			t.Fatalf("ParseFrequency(%q) returned error: %v", name, err)
		}
		if freq.String() != name {
			t.Fatalf("round trip failed for %q: got %q", name, freq.String())
		}
	}

	if _, err := ParseFrequency("hourly"); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
}
