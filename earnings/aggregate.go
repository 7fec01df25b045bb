package earnings

import "github.com/shopspring/decimal"

// Aggregate sums every raw and derived field over records. Derived fields
// come from Compute on each record. A nil or empty slice yields zero totals.
//
// Weekly and monthly totals are the same reduction over different slices.
func Aggregate(records []DailyRecord) Totals {
	var t Totals
	for _, rec := range records {
		res := Compute(rec)

		t.DistanceKm = t.DistanceKm.Add(rec.DistanceKm.Decimal)
		t.RideCount += int(rec.RideCount)
		t.Earnings = t.Earnings.add(rec.Earnings)
		t.Tips = t.Tips.Add(res.Details.Tips)
		t.Fuel = t.Fuel.Add(rec.Expenses.Fuel.Decimal)

		t.Gross = t.Gross.Add(res.Gross)
		t.PlatformCommission = t.PlatformCommission.Add(res.PlatformCommission)
		t.DistanceCost = t.DistanceCost.Add(res.DistanceCost)
		t.CashCommission = t.CashCommission.Add(res.CashCommission)
		t.Net = t.Net.Add(res.Net)
	}
	return t.round()
}

func (t Totals) round() Totals {
	return Totals{
		DistanceKm:         Round2(t.DistanceKm),
		RideCount:          t.RideCount,
		Earnings:           t.Earnings.round(),
		Tips:               Round2(t.Tips),
		Fuel:               Round2(t.Fuel),
		Gross:              Round2(t.Gross),
		PlatformCommission: Round2(t.PlatformCommission),
		DistanceCost:       Round2(t.DistanceCost),
		CashCommission:     Round2(t.CashCommission),
		Net:                Round2(t.Net),
	}
}

// Add returns the field-wise sum of two totals, rounded.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		DistanceKm:         t.DistanceKm.Add(o.DistanceKm),
		RideCount:          t.RideCount + o.RideCount,
		Earnings:           t.Earnings.add(o.Earnings),
		Tips:               t.Tips.Add(o.Tips),
		Fuel:               t.Fuel.Add(o.Fuel),
		Gross:              t.Gross.Add(o.Gross),
		PlatformCommission: t.PlatformCommission.Add(o.PlatformCommission),
		DistanceCost:       t.DistanceCost.Add(o.DistanceCost),
		CashCommission:     t.CashCommission.Add(o.CashCommission),
		Net:                t.Net.Add(o.Net),
	}.round()
}

// Analyze reduces records into totals, averages and the best and worst day.
//
// Each record counts as one working day. Best and worst are picked in a
// single pass with strict comparisons, so ties go to the earliest record in
// slice order.
func Analyze(records []DailyRecord) Analysis {
	totals := Aggregate(records)
	count := len(records)

	var best, worst *DayResult
	for _, rec := range records {
		res := Compute(rec)
		if best == nil || res.Net.GreaterThan(best.Result.Net) {
			best = &DayResult{Record: rec, Result: res}
		}
		if worst == nil || res.Net.LessThan(worst.Result.Net) {
			worst = &DayResult{Record: rec, Result: res}
		}
	}

	return Analysis{
		Totals:      totals,
		Averages:    averages(totals, count),
		RecordCount: count,
		BestDay:     best,
		WorstDay:    worst,
	}
}

func averages(t Totals, count int) Averages {
	days := decimal.NewFromInt(int64(count))
	rides := decimal.NewFromInt(int64(t.RideCount))
	return Averages{
		NetPerDay:   safeDiv(t.Net, days),
		GrossPerDay: safeDiv(t.Gross, days),
		KmPerDay:    safeDiv(t.DistanceKm, days),
		RidesPerDay: safeDiv(rides, days),
		NetPerRide:  safeDiv(t.Net, rides),
		NetPerKm:    safeDiv(t.Net, t.DistanceKm),
	}
}

func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return Round2(num.Div(den))
}
