package calendar

import (
	"errors"
	"time"
)

// ErrInvalidPeriod is returned when a period is malformed (end before start).
var ErrInvalidPeriod = errors.New("invalid period: end before start")

// =============================================================================
// PERIOD - Inclusive range of calendar days
// =============================================================================

// Period is an inclusive [Start, End] range of days.
//
// Examples:
//   - March 2025: 2025-03-01 .. 2025-03-31
//   - Week of 2025-03-12 (monday start): 2025-03-10 .. 2025-03-16
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains returns true if the date is within the period [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all days in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len returns the number of days in the period.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Validate checks both bounds are set and ordered.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() || p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PreviousPeriod returns the period of equal length ending the day before Start.
func (p Period) PreviousPeriod() Period {
	duration := DaysBetween(p.Start, p.End)
	newEnd := p.Start.AddDays(-1)
	return Period{Start: newEnd.AddDays(-duration), End: newEnd}
}

// =============================================================================
// MONTHS
// =============================================================================

// Month returns the full calendar month.
func Month(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// MonthOf returns the calendar month containing d.
func MonthOf(d Date) Period {
	return Month(d.Year(), d.Month())
}

// PreviousMonth returns the calendar month before the one containing d.
// Months have different lengths, so this is not PreviousPeriod.
func PreviousMonth(d Date) Period {
	first := StartOfMonth(d.Year(), d.Month()).AddDays(-1)
	return MonthOf(first)
}

// =============================================================================
// WEEKS
// =============================================================================

// WeekStart selects the first day of a week.
type WeekStart string

const (
	WeekStartMonday WeekStart = "monday"
	WeekStartSunday WeekStart = "sunday"
)

func (w WeekStart) Valid() bool {
	return w == WeekStartMonday || w == WeekStartSunday
}

// Weekday maps the setting to a time.Weekday; unknown values mean monday.
func (w WeekStart) Weekday() time.Weekday {
	if w == WeekStartSunday {
		return time.Sunday
	}
	return time.Monday
}

// WeekOf returns the 7-day week containing d.
func WeekOf(d Date, start WeekStart) Period {
	offset := (int(d.Weekday()) - int(start.Weekday()) + 7) % 7
	first := d.AddDays(-offset)
	return Period{Start: first, End: first.AddDays(6)}
}

// WeeksIn splits p into consecutive weeks, clipping the first and last
// week to the period bounds.
func WeeksIn(p Period, start WeekStart) []Period {
	var weeks []Period
	for current := p.Start; current.BeforeOrEqual(p.End); {
		week := WeekOf(current, start)
		if week.Start.Before(p.Start) {
			week.Start = p.Start
		}
		if week.End.After(p.End) {
			week.End = p.End
		}
		weeks = append(weeks, week)
		current = week.End.AddDays(1)
	}
	return weeks
}
