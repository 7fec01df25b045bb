package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
)

// DemoMonth generates a plausible month of records: six working days a
// week, sundays off. Values are derived from the day number so the same
// month always yields the same data.
func DemoMonth(year int, month time.Month) []earnings.DailyRecord {
	var records []earnings.DailyRecord
	for _, day := range calendar.Month(year, month).Days() {
		if day.Weekday() == time.Sunday {
			continue
		}
		n := float64(day.Day())
		km := 80 + float64((day.Day()*37)%90)
		rides := 8 + day.Day()%9

		rec := earnings.DailyRecord{
			Date:       day,
			DistanceKm: cents(km),
			RideCount:  earnings.Count(rides),
			Notes:      "demo",
		}
		rec.Earnings.PlatformA.AppFare = cents(km*0.55 + n)
		rec.Earnings.PlatformA.Tip = cents(float64(day.Day() % 4))
		rec.Earnings.PlatformB.AppFare = cents(km * 0.3)
		rec.Earnings.PlatformB.CardFare = cents(float64(rides) * 2.5)
		rec.Earnings.PlatformB.CashFare = cents(float64(rides) * 1.5)
		rec.Earnings.PlatformB.Tip = cents(float64(day.Day() % 3))
		if day.Weekday() == time.Friday || day.Weekday() == time.Saturday {
			rec.Earnings.Conventional.CardFare = cents(35)
			rec.Earnings.Conventional.CashFare = cents(20)
		}
		rec.Expenses.Fuel = cents(km * 0.12)
		records = append(records, rec)
	}
	return records
}

func cents(v float64) earnings.Number {
	return earnings.Number{Decimal: earnings.Round2(earnings.Coerce(v))}
}

// LoadDemo merges a demo month into the store.
func (s *Service) LoadDemo(ctx context.Context, year int, month time.Month) (ImportResult, error) {
	if !calendar.ValidYear(year) {
		return ImportResult{}, &ValidationError{Field: "year", Message: fmt.Sprintf("year %d out of range", year), Err: ErrInvalidPeriod}
	}
	if month < time.January || month > time.December {
		return ImportResult{}, &ValidationError{Field: "month", Message: fmt.Sprintf("invalid month %d", month), Err: ErrInvalidPeriod}
	}
	return s.Import(ctx, Dataset{Records: DemoMonth(year, month)}, false)
}
