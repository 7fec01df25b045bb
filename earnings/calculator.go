package earnings

import "github.com/shopspring/decimal"

// Deduction rates. These are fixed by the platforms' terms, not user settings.
var (
	PlatformCommissionRate = decimal.RequireFromString("0.52")
	DistanceCostPerKm      = decimal.RequireFromString("0.05")
	CashCommissionRate     = decimal.RequireFromString("0.06")
)

// Compute returns gross, deductions and net earnings for a single record.
//
// Every output is rounded with Round2. Net is derived from the unrounded
// components so rounding happens once per figure. Negative inputs are taken
// as given.
func Compute(rec DailyRecord) CalculationResult {
	gross := rec.Earnings.Fares()
	commission := gross.Mul(PlatformCommissionRate)
	distanceCost := rec.DistanceKm.Decimal.Mul(DistanceCostPerKm)
	cashCommission := rec.Earnings.PlatformB.CashFare.Decimal.Mul(CashCommissionRate)
	fuel := rec.Expenses.Fuel.Decimal

	// Fuel is reimbursed on top of the fare share, so it is added back.
	net := gross.Sub(commission).Sub(distanceCost).Sub(cashCommission).Add(fuel)

	return CalculationResult{
		Gross:              Round2(gross),
		PlatformCommission: Round2(commission),
		DistanceCost:       Round2(distanceCost),
		CashCommission:     Round2(cashCommission),
		Fuel:               Round2(fuel),
		Net:                Round2(net),
		Details: Details{
			DistanceKm: rec.DistanceKm.Decimal,
			RideCount:  int(rec.RideCount),
			Earnings:   rec.Earnings,
			Tips:       rec.Earnings.Tips(),
		},
	}
}
