package tracker

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
)

// MonthReport analyzes a calendar month, splits it into weeks (per the
// WeekStart setting) and compares it with the previous month.
func (s *Service) MonthReport(ctx context.Context, year int, month time.Month) (MonthReport, error) {
	if !calendar.ValidYear(year) {
		return MonthReport{}, &ValidationError{Field: "year", Message: "year must be 1-9999", Err: ErrInvalidPeriod}
	}
	if month < time.January || month > time.December {
		return MonthReport{}, &ValidationError{Field: "month", Message: "month must be 1-12", Err: ErrInvalidPeriod}
	}
	settings, err := s.Store.GetSettings(ctx)
	if err != nil {
		return MonthReport{}, err
	}

	period := calendar.Month(year, month)
	prevPeriod := calendar.PreviousMonth(period.Start)

	// One query covers both months.
	all, err := s.Store.ListRecords(ctx, prevPeriod.Start, period.End)
	if err != nil {
		return MonthReport{}, err
	}
	current := inPeriod(all, period)
	previous := inPeriod(all, prevPeriod)

	comparison := earnings.Compare(current, previous)

	var weeks []WeekSummary
	for _, w := range calendar.WeeksIn(period, settings.WeekStart) {
		weeks = append(weeks, WeekSummary{Period: w, Analysis: earnings.Analyze(inPeriod(current, w))})
	}

	days := make([]RecordView, len(current))
	for i, rec := range current {
		days[i] = viewOf(rec)
	}

	return MonthReport{
		Period:     period,
		Analysis:   comparison.Current,
		Comparison: comparison,
		Weeks:      weeks,
		Days:       days,
	}, nil
}

// Dashboard summarizes today, the current week and the current month.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	settings, err := s.Store.GetSettings(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	today := s.today()
	week := calendar.WeekOf(today, settings.WeekStart)
	month := calendar.MonthOf(today)
	prevMonth := calendar.PreviousMonth(today)

	from := prevMonth.Start
	if week.Start.Before(from) {
		from = week.Start
	}
	to := month.End
	if week.End.After(to) {
		to = week.End
	}
	all, err := s.Store.ListRecords(ctx, from, to)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Date:        today,
		WeekPeriod:  week,
		Week:        earnings.Analyze(inPeriod(all, week)),
		MonthPeriod: month,
		Settings:    settings,
	}
	comparison := earnings.Compare(inPeriod(all, month), inPeriod(all, prevMonth))
	d.Month = comparison.Current
	d.MonthChanges = comparison.Changes

	todayNet := decimal.Zero
	for _, rec := range all {
		if rec.Date.Equal(today) {
			view := viewOf(rec)
			d.Today = &view
			todayNet = view.Result.Net
			break
		}
	}
	d.DailyGoal = progress(settings.DailyNetGoal.Decimal, todayNet)
	d.MonthlyGoal = progress(settings.MonthlyNetGoal.Decimal, d.Month.Totals.Net)
	return d, nil
}

func progress(goal, achieved decimal.Decimal) GoalProgress {
	p := GoalProgress{Goal: goal, Achieved: achieved, Percent: decimal.Zero}
	if goal.IsPositive() {
		p.Percent = earnings.Round2(achieved.Div(goal).Mul(decimal.NewFromInt(100)))
	}
	return p
}

func inPeriod(records []earnings.DailyRecord, p calendar.Period) []earnings.DailyRecord {
	var out []earnings.DailyRecord
	for _, rec := range records {
		if p.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}
