package earnings

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// Compare analyzes two periods independently and reports the percent change
// of the headline metrics from previous to current.
func Compare(current, previous []DailyRecord) Comparison {
	cur := Analyze(current)
	prev := Analyze(previous)
	return Comparison{
		Current:  cur,
		Previous: prev,
		Changes:  changes(cur, prev),
	}
}

// CompareAnalyses is Compare for periods that were already analyzed.
func CompareAnalyses(cur, prev Analysis) Comparison {
	return Comparison{Current: cur, Previous: prev, Changes: changes(cur, prev)}
}

func changes(cur, prev Analysis) Changes {
	return Changes{
		Gross:       PercentChange(cur.Totals.Gross, prev.Totals.Gross),
		Net:         PercentChange(cur.Totals.Net, prev.Totals.Net),
		DistanceKm:  PercentChange(cur.Totals.DistanceKm, prev.Totals.DistanceKm),
		RideCount:   PercentChange(intDecimal(cur.Totals.RideCount), intDecimal(prev.Totals.RideCount)),
		WorkingDays: PercentChange(intDecimal(cur.RecordCount), intDecimal(prev.RecordCount)),
		Tips:        PercentChange(cur.Totals.Tips, prev.Totals.Tips),
		NetPerDay:   PercentChange(cur.Averages.NetPerDay, prev.Averages.NetPerDay),
	}
}

// PercentChange is (current - previous) / previous * 100, rounded. With no
// previous value the change is 100 for a positive current value, else 0.
func PercentChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return oneHundred
		}
		return decimal.Zero
	}
	return Round2(current.Sub(previous).Div(previous).Mul(oneHundred))
}

func intDecimal(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }
