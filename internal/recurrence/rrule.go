package recurrence

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ParseRRule converts a legacy RFC 5545 RRULE string into a structured Rule.
//
// Earlier deployments stored recurrences as raw RRULE strings; that model is
// superseded but still accepted on rule creation so existing clients can
// submit their stored strings. Only the subset expressible as a structured
// rule is accepted: FREQ of DAILY, WEEKLY or MONTHLY, INTERVAL, a single
// BYDAY entry (with an ordinal for monthly rules), COUNT and UNTIL.
func ParseRRule(value string, dtstart time.Time) (Rule, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "RRULE:")

	opt, err := rrule.StrToROption(value)
	if err != nil {
		return Rule{}, ErrInvalidFrequency
	}

	var rule Rule
	switch opt.Freq {
	case rrule.DAILY:
		rule.Frequency = FrequencyDaily
	case rrule.WEEKLY:
		rule.Frequency = FrequencyWeekly
	case rrule.MONTHLY:
		rule.Frequency = FrequencyMonthly
	default:
		return Rule{}, ErrInvalidFrequency
	}

	rule.Interval = opt.Interval
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	if rule.Interval < 0 {
		return Rule{}, ErrInvalidInterval
	}

	if len(opt.Byweekday) > 0 {
		anchor := opt.Byweekday[0]
		weekday := fromRRuleWeekday(anchor)
		rule.Weekday = &weekday

		if rule.Frequency == FrequencyMonthly {
			nth := anchor.N()
			if nth < 1 || nth > 5 {
				return Rule{}, ErrInvalidAnchor
			}
			rule.MonthWeek = &nth
		}
	}

	if opt.Count > 0 {
		rule.EndAfter = opt.Count
	}
	if !opt.Until.IsZero() {
		// UNTIL is inclusive in RFC 5545; EndsOn is an exclusive bound.
		endsOn := opt.Until.Add(time.Second)
		rule.EndsOn = &endsOn
	}

	if err := Validate(rule); err != nil {
		return Rule{}, err
	}

	return rule, nil
}

// fromRRuleWeekday maps the Monday-based RRULE weekday index onto time.Weekday.
func fromRRuleWeekday(day rrule.Weekday) time.Weekday {
	return time.Weekday((day.Day() + 1) % 7)
}
