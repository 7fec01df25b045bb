package tracker

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
)

// Profile describes the driver. It only feeds reports and exports.
type Profile struct {
	DriverName   string    `json:"driver_name"`
	VehicleModel string    `json:"vehicle_model"`
	LicensePlate string    `json:"license_plate"`
	City         string    `json:"city"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Settings are the user's display and goal preferences.
type Settings struct {
	Currency       string             `json:"currency"`
	WeekStart      calendar.WeekStart `json:"week_start"`
	DailyNetGoal   earnings.Number    `json:"daily_net_goal"`
	MonthlyNetGoal earnings.Number    `json:"monthly_net_goal"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// DefaultSettings is what a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		Currency:  "EUR",
		WeekStart: calendar.WeekStartMonday,
	}
}

// Dataset is everything the user owns: the unit of export and import.
// Nil Profile or Settings mean "not included".
type Dataset struct {
	Records  []earnings.DailyRecord
	Profile  *Profile
	Settings *Settings
}

// RecordView is a stored record with its computed earnings.
type RecordView struct {
	Record earnings.DailyRecord
	Result earnings.CalculationResult
}

func viewOf(rec earnings.DailyRecord) RecordView {
	return RecordView{Record: rec, Result: earnings.Compute(rec)}
}

// ImportResult reports what an import wrote.
type ImportResult struct {
	Mode            string
	Records         int
	DuplicatesInput int
	Profile         bool
	Settings        bool
}

// =============================================================================
// REPORTS
// =============================================================================

// WeekSummary is one week of a month report, clipped to the month.
type WeekSummary struct {
	Period   calendar.Period
	Analysis earnings.Analysis
}

// MonthReport is a month with its weekly breakdown and a comparison with
// the previous calendar month.
type MonthReport struct {
	Period     calendar.Period
	Analysis   earnings.Analysis
	Comparison earnings.Comparison
	Weeks      []WeekSummary
	Days       []RecordView
}

// GoalProgress is achieved / goal * 100. With no goal set the percent is 0.
type GoalProgress struct {
	Goal     decimal.Decimal
	Achieved decimal.Decimal
	Percent  decimal.Decimal
}

// Dashboard is the home screen: today, this week, this month.
type Dashboard struct {
	Date         calendar.Date
	Today        *RecordView
	WeekPeriod   calendar.Period
	Week         earnings.Analysis
	MonthPeriod  calendar.Period
	Month        earnings.Analysis
	MonthChanges earnings.Changes
	DailyGoal    GoalProgress
	MonthlyGoal  GoalProgress
	Settings     Settings
}
