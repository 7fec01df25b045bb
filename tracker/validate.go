package tracker

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
)

// ValidationPolicy decides which records are accepted before they reach the
// earnings engine. The engine computes whatever it is given; this is the
// place to refuse input that makes no business sense.
type ValidationPolicy struct {
	RejectNegative bool
}

// ValidateRecord returns a *ValidationError for the first offending field.
func (p ValidationPolicy) ValidateRecord(rec earnings.DailyRecord) error {
	if rec.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "date is required", Err: ErrInvalidRecord}
	}
	if !calendar.ValidYear(rec.Date.Year()) {
		return &ValidationError{Field: "date", Message: "year must be 1-9999", Err: ErrInvalidRecord}
	}
	if !p.RejectNegative {
		return nil
	}
	if rec.RideCount < 0 {
		return &ValidationError{Field: "ride_count", Message: "must not be negative", Err: ErrInvalidRecord}
	}
	e := rec.Earnings
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"distance_km", rec.DistanceKm.Decimal},
		{"earnings.platform_a.app_fare", e.PlatformA.AppFare.Decimal},
		{"earnings.platform_a.tip", e.PlatformA.Tip.Decimal},
		{"earnings.platform_b.app_fare", e.PlatformB.AppFare.Decimal},
		{"earnings.platform_b.card_fare", e.PlatformB.CardFare.Decimal},
		{"earnings.platform_b.cash_fare", e.PlatformB.CashFare.Decimal},
		{"earnings.platform_b.tip", e.PlatformB.Tip.Decimal},
		{"earnings.conventional.card_fare", e.Conventional.CardFare.Decimal},
		{"earnings.conventional.cash_fare", e.Conventional.CashFare.Decimal},
		{"expenses.fuel", rec.Expenses.Fuel.Decimal},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return &ValidationError{Field: f.name, Message: "must not be negative", Err: ErrInvalidRecord}
		}
	}
	return nil
}

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// normalizeSettings fills empty fields with defaults and validates the rest.
func normalizeSettings(s Settings) (Settings, error) {
	def := DefaultSettings()
	if s.Currency == "" {
		s.Currency = def.Currency
	}
	if s.WeekStart == "" {
		s.WeekStart = def.WeekStart
	}
	if !currencyCode.MatchString(s.Currency) {
		return s, &ValidationError{Field: "currency", Message: "must be a 3-letter ISO 4217 code", Err: ErrInvalidSettings}
	}
	if !s.WeekStart.Valid() {
		return s, &ValidationError{Field: "week_start", Message: "must be monday or sunday", Err: ErrInvalidSettings}
	}
	if s.DailyNetGoal.IsNegative() {
		return s, &ValidationError{Field: "daily_net_goal", Message: "must not be negative", Err: ErrInvalidSettings}
	}
	if s.MonthlyNetGoal.IsNegative() {
		return s, &ValidationError{Field: "monthly_net_goal", Message: "must not be negative", Err: ErrInvalidSettings}
	}
	return s, nil
}

func validatePeriod(p calendar.Period) error {
	if err := p.Validate(); err != nil {
		return &ValidationError{Field: "period", Message: p.String() + " is not a valid range", Err: ErrInvalidPeriod}
	}
	return nil
}
