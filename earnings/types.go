/*
Package earnings is the earnings calculation engine.

PURPOSE:
  Turns daily work records into gross and net earnings, and reduces any
  slice of records (a day, a week, a month) into totals, averages and
  period-over-period changes. The package is period-agnostic: callers pick
  which records form a period.

KEY CONCEPTS IN THIS FILE (types.go):
  - DailyRecord: one working day as entered by the driver
  - CalculationResult: gross, deductions and net for one record
  - Totals / Averages / Analysis / Comparison: reductions over many records

DESIGN PRINCIPLES:
  1. Pure: no state between calls, every output depends only on its input
  2. Permissive: malformed input is coerced to zero, never rejected
  3. Precision: decimal.Decimal arithmetic, rounded to cents at the edges

NET EARNINGS FORMULA:
  gross           = all fares (app, card, cash) across platforms, tips excluded
  commission      = gross * 0.52
  distance cost   = km * 0.05
  cash commission = platform B cash fare * 0.06
  net             = gross - commission - distance cost - cash commission + fuel

USAGE:
  rec := earnings.DailyRecord{DistanceKm: earnings.NewNumber(100)}
  rec.Earnings.PlatformA.AppFare = earnings.NewNumber(50)
  res := earnings.Compute(rec)
  month := earnings.Analyze(records)

SEE ALSO:
  - calculator.go: Compute
  - aggregate.go: Aggregate, Analyze
  - compare.go: Compare, PercentChange
  - number.go: lenient decoding and rounding
*/
package earnings

import (
	"github.com/shopspring/decimal"
	"github.com/warp/ridebook/calendar"
)

// =============================================================================
// DAILY RECORD - Input
// =============================================================================

// DailyRecord is one working day. Every numeric field defaults to zero.
type DailyRecord struct {
	Date       calendar.Date `json:"date"`
	DistanceKm Number        `json:"distance_km"`
	RideCount  Count         `json:"ride_count"`
	Earnings   Earnings      `json:"earnings"`
	Expenses   Expenses      `json:"expenses"`
	Notes      string        `json:"notes,omitempty"`
}

// Earnings groups fare and tip income by source.
type Earnings struct {
	PlatformA    PlatformAEarnings    `json:"platform_a"`
	PlatformB    PlatformBEarnings    `json:"platform_b"`
	Conventional ConventionalEarnings `json:"conventional"`
}

// PlatformAEarnings is app-only income; fares are settled in the app.
type PlatformAEarnings struct {
	AppFare Number `json:"app_fare"`
	Tip     Number `json:"tip"`
}

// PlatformBEarnings accepts app, card and cash payments. Cash fares carry an
// extra commission.
type PlatformBEarnings struct {
	AppFare  Number `json:"app_fare"`
	CardFare Number `json:"card_fare"`
	CashFare Number `json:"cash_fare"`
	Tip      Number `json:"tip"`
}

// ConventionalEarnings is street-hail and dispatch work outside the apps.
type ConventionalEarnings struct {
	CardFare Number `json:"card_fare"`
	CashFare Number `json:"cash_fare"`
}

type Expenses struct {
	Fuel Number `json:"fuel"`
}

// Fares returns the sum of every fare sub-field, tips excluded.
func (e Earnings) Fares() decimal.Decimal {
	return e.PlatformA.AppFare.Decimal.
		Add(e.PlatformB.AppFare.Decimal).
		Add(e.PlatformB.CardFare.Decimal).
		Add(e.PlatformB.CashFare.Decimal).
		Add(e.Conventional.CardFare.Decimal).
		Add(e.Conventional.CashFare.Decimal)
}

// Tips returns the sum of every tip sub-field.
func (e Earnings) Tips() decimal.Decimal {
	return e.PlatformA.Tip.Decimal.Add(e.PlatformB.Tip.Decimal)
}

func (e Earnings) add(o Earnings) Earnings {
	return Earnings{
		PlatformA: PlatformAEarnings{
			AppFare: e.PlatformA.AppFare.add(o.PlatformA.AppFare),
			Tip:     e.PlatformA.Tip.add(o.PlatformA.Tip),
		},
		PlatformB: PlatformBEarnings{
			AppFare:  e.PlatformB.AppFare.add(o.PlatformB.AppFare),
			CardFare: e.PlatformB.CardFare.add(o.PlatformB.CardFare),
			CashFare: e.PlatformB.CashFare.add(o.PlatformB.CashFare),
			Tip:      e.PlatformB.Tip.add(o.PlatformB.Tip),
		},
		Conventional: ConventionalEarnings{
			CardFare: e.Conventional.CardFare.add(o.Conventional.CardFare),
			CashFare: e.Conventional.CashFare.add(o.Conventional.CashFare),
		},
	}
}

func (e Earnings) round() Earnings {
	return Earnings{
		PlatformA: PlatformAEarnings{
			AppFare: e.PlatformA.AppFare.round(),
			Tip:     e.PlatformA.Tip.round(),
		},
		PlatformB: PlatformBEarnings{
			AppFare:  e.PlatformB.AppFare.round(),
			CardFare: e.PlatformB.CardFare.round(),
			CashFare: e.PlatformB.CashFare.round(),
			Tip:      e.PlatformB.Tip.round(),
		},
		Conventional: ConventionalEarnings{
			CardFare: e.Conventional.CardFare.round(),
			CashFare: e.Conventional.CashFare.round(),
		},
	}
}

// =============================================================================
// CALCULATION RESULT - Per record output
// =============================================================================

type CalculationResult struct {
	Gross              decimal.Decimal
	PlatformCommission decimal.Decimal
	DistanceCost       decimal.Decimal
	CashCommission     decimal.Decimal
	Fuel               decimal.Decimal
	Net                decimal.Decimal
	Details            Details
}

// Details echoes the raw inputs a result was computed from.
type Details struct {
	DistanceKm decimal.Decimal
	RideCount  int
	Earnings   Earnings
	Tips       decimal.Decimal
}

// TotalDeductions is commission + distance cost + cash commission.
func (r CalculationResult) TotalDeductions() decimal.Decimal {
	return r.PlatformCommission.Add(r.DistanceCost).Add(r.CashCommission)
}

// =============================================================================
// PERIOD REDUCTIONS
// =============================================================================

// Totals is the field-wise sum of a set of records, each field rounded to
// 2 decimals.
type Totals struct {
	DistanceKm decimal.Decimal
	RideCount  int
	Earnings   Earnings
	Tips       decimal.Decimal
	Fuel       decimal.Decimal

	Gross              decimal.Decimal
	PlatformCommission decimal.Decimal
	DistanceCost       decimal.Decimal
	CashCommission     decimal.Decimal
	Net                decimal.Decimal
}

// Averages are per working day, per ride and per kilometer figures. A zero
// denominator yields zero.
type Averages struct {
	NetPerDay   decimal.Decimal
	GrossPerDay decimal.Decimal
	KmPerDay    decimal.Decimal
	RidesPerDay decimal.Decimal
	NetPerRide  decimal.Decimal
	NetPerKm    decimal.Decimal
}

// DayResult pairs a record with its computed earnings.
type DayResult struct {
	Record DailyRecord
	Result CalculationResult
}

// Analysis is the full reduction of a period.
type Analysis struct {
	Totals      Totals
	Averages    Averages
	RecordCount int
	BestDay     *DayResult
	WorstDay    *DayResult
}

// Changes holds percent changes between two periods.
type Changes struct {
	Gross       decimal.Decimal
	Net         decimal.Decimal
	DistanceKm  decimal.Decimal
	RideCount   decimal.Decimal
	WorkingDays decimal.Decimal
	Tips        decimal.Decimal
	NetPerDay   decimal.Decimal
}

type Comparison struct {
	Current  Analysis
	Previous Analysis
	Changes  Changes
}
