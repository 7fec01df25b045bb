package earnings_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func num(v float64) earnings.Number { return earnings.NewNumber(v) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

// fullDay is the worked example: gross 180, net 110.2.
func fullDay(date string) earnings.DailyRecord {
	rec := earnings.DailyRecord{
		Date:       calendar.MustParse(date),
		DistanceKm: num(100),
		RideCount:  15,
	}
	rec.Earnings.PlatformA = earnings.PlatformAEarnings{AppFare: num(50), Tip: num(10)}
	rec.Earnings.PlatformB = earnings.PlatformBEarnings{AppFare: num(40), CardFare: num(30), CashFare: num(20), Tip: num(5)}
	rec.Earnings.Conventional = earnings.ConventionalEarnings{CardFare: num(25), CashFare: num(15)}
	rec.Expenses.Fuel = num(30)
	return rec
}

// appDay earns only a platform A app fare.
func appDay(date string, km float64, rides int, fare float64) earnings.DailyRecord {
	rec := earnings.DailyRecord{
		Date:       calendar.MustParse(date),
		DistanceKm: num(km),
		RideCount:  earnings.Count(rides),
	}
	rec.Earnings.PlatformA.AppFare = num(fare)
	return rec
}

// =============================================================================
// PER-RECORD CALCULATOR
// =============================================================================

func TestCompute_WorkedExample(t *testing.T) {
	res := earnings.Compute(fullDay("2025-03-10"))

	assertDecimal(t, "180", res.Gross)
	assertDecimal(t, "93.6", res.PlatformCommission)
	assertDecimal(t, "5", res.DistanceCost)
	assertDecimal(t, "1.2", res.CashCommission)
	assertDecimal(t, "30", res.Fuel)
	assertDecimal(t, "110.2", res.Net)

	assertDecimal(t, "15", res.Details.Tips)
	assertDecimal(t, "100", res.Details.DistanceKm)
	assert.Equal(t, 15, res.Details.RideCount)
	assertDecimal(t, "99.8", res.TotalDeductions())
}

func TestCompute_EmptyRecordIsAllZero(t *testing.T) {
	res := earnings.Compute(earnings.DailyRecord{})

	for name, v := range map[string]decimal.Decimal{
		"gross":      res.Gross,
		"commission": res.PlatformCommission,
		"distance":   res.DistanceCost,
		"cash":       res.CashCommission,
		"fuel":       res.Fuel,
		"net":        res.Net,
		"tips":       res.Details.Tips,
	} {
		assert.True(t, v.IsZero(), name)
	}
}

func TestCompute_TipsExcludedFromGross(t *testing.T) {
	rec := earnings.DailyRecord{}
	rec.Earnings.PlatformA.Tip = num(12)
	rec.Earnings.PlatformB.Tip = num(8)

	res := earnings.Compute(rec)
	assert.True(t, res.Gross.IsZero())
	assert.True(t, res.Net.IsZero())
	assertDecimal(t, "20", res.Details.Tips)
}

func TestCompute_NetReconstructsFromBreakdown(t *testing.T) {
	records := []earnings.DailyRecord{
		fullDay("2025-03-10"),
		appDay("2025-03-11", 212.4, 21, 187.35),
		appDay("2025-03-12", 0, 0, 0),
	}
	records[1].Earnings.PlatformB.CashFare = num(33.33)
	records[1].Expenses.Fuel = num(41.07)

	for _, rec := range records {
		res := earnings.Compute(rec)
		rebuilt := res.Gross.Sub(res.PlatformCommission).Sub(res.DistanceCost).Sub(res.CashCommission).Add(res.Fuel)
		// Each component is rounded on its own, so allow one cent per component.
		assert.True(t, rebuilt.Sub(res.Net).Abs().LessThanOrEqual(dec("0.04")),
			"date %s: rebuilt %s, net %s", rec.Date, rebuilt, res.Net)
	}
}

func TestCompute_NegativeInputsAreNotRejected(t *testing.T) {
	// Negative distance yields a negative distance cost, which raises net.
	rec := appDay("2025-03-10", -10, 1, 100)

	res := earnings.Compute(rec)
	assertDecimal(t, "-0.5", res.DistanceCost)
	assertDecimal(t, "48.5", res.Net)
}

// =============================================================================
// ROUNDING AND COERCION
// =============================================================================

func TestRound2_HalfUp(t *testing.T) {
	cases := map[string]string{
		"1.005":   "1.01",
		"1.004":   "1",
		"2.675":   "2.68",
		"0.125":   "0.13",
		"-1.005":  "-1",
		"-1.006":  "-1.01",
		"93.6":    "93.6",
		"10.0049": "10",
	}
	for in, want := range cases {
		assertDecimal(t, want, earnings.Round2(dec(in)), in)
	}

	// The float path must not fall into the binary 1.00499999... trap.
	assertDecimal(t, "1.01", earnings.Round2(earnings.Coerce(1.005)))
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "0"},
		{"float", 12.5, "12.5"},
		{"int", 7, "7"},
		{"string", "42.75", "42.75"},
		{"padded string", "  3 ", "3"},
		{"unit suffix", "12.5km", "12.5"},
		{"leading dot", ".5", "0.5"},
		{"negative leading dot", "-.5", "-0.5"},
		{"plus sign", "+8", "8"},
		{"exponent", "1e2", "100"},
		{"garbage", "abc", "0"},
		{"empty", "", "0"},
		{"bool", true, "0"},
		{"map", map[string]any{"a": 1}, "0"},
		{"json number", json.Number("9.99"), "9.99"},
		{"string above float range", "1e400", "0"},
		{"negative string above float range", "-1e400", "0"},
		{"string below float range", "1e-400", "0"},
		{"huge exponent", "1e20000000", "0"},
		{"large but finite", "1.5e300", "1.5e300"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertDecimal(t, tc.want, earnings.Coerce(tc.in))
		})
	}
}

func TestDailyRecord_LenientJSON(t *testing.T) {
	payload := `{
		"date": "2025-03-10",
		"distance_km": "120.5",
		"ride_count": "18.9",
		"earnings": {
			"platform_a": {"app_fare": null, "tip": "oops"},
			"platform_b": {"app_fare": 40, "card_fare": true, "cash_fare": "20", "tip": [1]},
			"conventional": {"card_fare": {"x": 1}}
		},
		"expenses": {"fuel": "30 eur"}
	}`

	var rec earnings.DailyRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	assert.Equal(t, "2025-03-10", rec.Date.String())
	assertDecimal(t, "120.5", rec.DistanceKm.Decimal)
	assert.Equal(t, earnings.Count(18), rec.RideCount)
	assert.True(t, rec.Earnings.PlatformA.AppFare.IsZero())
	assert.True(t, rec.Earnings.PlatformA.Tip.IsZero())
	assertDecimal(t, "40", rec.Earnings.PlatformB.AppFare.Decimal)
	assert.True(t, rec.Earnings.PlatformB.CardFare.IsZero())
	assertDecimal(t, "20", rec.Earnings.PlatformB.CashFare.Decimal)
	assert.True(t, rec.Earnings.PlatformB.Tip.IsZero())
	assert.True(t, rec.Earnings.Conventional.CardFare.IsZero())
	assertDecimal(t, "30", rec.Expenses.Fuel.Decimal)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"distance_km":120.5`)
	assert.Contains(t, string(out), `"ride_count":18`)
}

func TestDailyRecord_OutOfRangeInputReadsAsZero(t *testing.T) {
	// GIVEN: Magnitudes no float64 can hold, and a ride count past the int32 range
	payload := `{
		"date": "2025-03-10",
		"distance_km": "1e20000000",
		"ride_count": 1e19,
		"earnings": {"platform_a": {"app_fare": "1e999999999"}, "platform_b": {"app_fare": 40}},
		"expenses": {"fuel": 1e400}
	}`

	// WHEN
	var rec earnings.DailyRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))
	res := earnings.Compute(rec)

	// THEN: Every oversized field is zero and the result stays small
	assert.True(t, rec.DistanceKm.IsZero())
	assert.True(t, rec.Earnings.PlatformA.AppFare.IsZero())
	assert.True(t, rec.Expenses.Fuel.IsZero())
	assert.Equal(t, earnings.Count(0), rec.RideCount)
	assertDecimal(t, "40", res.Gross)
	assertDecimal(t, "19.2", res.Net)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Less(t, len(out), 2048)
}

func TestCount_Range(t *testing.T) {
	cases := map[string]earnings.Count{
		`2147483647`:  earnings.MaxCount,
		`-2147483647`: -earnings.MaxCount,
		`2147483648`:  0,
		`1e19`:        0,
		`"1e30"`:      0,
		`9.3e18`:      0,
		`-9.3e18`:     0,
		`"12.9"`:      12,
	}
	for in, want := range cases {
		var c earnings.Count
		require.NoError(t, json.Unmarshal([]byte(in), &c), in)
		assert.Equal(t, want, c, in)
	}

	// Sums of in-range counts do not wrap.
	records := []earnings.DailyRecord{
		{Date: calendar.MustParse("2025-03-01"), RideCount: earnings.MaxCount},
		{Date: calendar.MustParse("2025-03-02"), RideCount: earnings.MaxCount},
	}
	assert.Equal(t, 2*int(earnings.MaxCount), earnings.Aggregate(records).RideCount)
}

// =============================================================================
// PERIOD REDUCER
// =============================================================================

func assertZeroTotals(t *testing.T, totals earnings.Totals) {
	t.Helper()
	assert.Equal(t, 0, totals.RideCount)
	for name, v := range map[string]decimal.Decimal{
		"km":         totals.DistanceKm,
		"tips":       totals.Tips,
		"fuel":       totals.Fuel,
		"gross":      totals.Gross,
		"commission": totals.PlatformCommission,
		"distance":   totals.DistanceCost,
		"cash":       totals.CashCommission,
		"net":        totals.Net,
		"a.app":      totals.Earnings.PlatformA.AppFare.Decimal,
		"b.cash":     totals.Earnings.PlatformB.CashFare.Decimal,
		"c.card":     totals.Earnings.Conventional.CardFare.Decimal,
	} {
		assert.True(t, v.IsZero(), name)
	}
}

func TestAggregate_EmptyAndNil(t *testing.T) {
	assertZeroTotals(t, earnings.Aggregate(nil))
	assertZeroTotals(t, earnings.Aggregate([]earnings.DailyRecord{}))
}

func TestAggregate_SumsRawAndDerivedFields(t *testing.T) {
	records := []earnings.DailyRecord{
		appDay("2025-03-10", 100, 15, 0),
		appDay("2025-03-11", 120, 18, 0),
	}
	totals := earnings.Aggregate(records)
	assertDecimal(t, "220", totals.DistanceKm)
	assert.Equal(t, 33, totals.RideCount)

	totals = earnings.Aggregate([]earnings.DailyRecord{fullDay("2025-03-10"), fullDay("2025-03-11")})
	assertDecimal(t, "360", totals.Gross)
	assertDecimal(t, "187.2", totals.PlatformCommission)
	assertDecimal(t, "10", totals.DistanceCost)
	assertDecimal(t, "2.4", totals.CashCommission)
	assertDecimal(t, "60", totals.Fuel)
	assertDecimal(t, "30", totals.Tips)
	assertDecimal(t, "220.4", totals.Net)
	assertDecimal(t, "100", totals.Earnings.PlatformA.AppFare.Decimal)
	assertDecimal(t, "40", totals.Earnings.PlatformB.CashFare.Decimal)
	assertDecimal(t, "30", totals.Earnings.Conventional.CashFare.Decimal)
}

func TestAggregate_ConcatenationMatchesSum(t *testing.T) {
	a := []earnings.DailyRecord{fullDay("2025-03-10"), appDay("2025-03-11", 87.3, 9, 121.45)}
	b := []earnings.DailyRecord{appDay("2025-03-12", 150.25, 22, 203.9), fullDay("2025-03-13")}

	whole := earnings.Aggregate(append(append([]earnings.DailyRecord{}, a...), b...))
	parts := earnings.Aggregate(a).Add(earnings.Aggregate(b))

	assert.Equal(t, whole.RideCount, parts.RideCount)
	assert.True(t, whole.DistanceKm.Equal(parts.DistanceKm))
	assert.True(t, whole.Gross.Equal(parts.Gross))
	assert.True(t, whole.PlatformCommission.Equal(parts.PlatformCommission))
	assert.True(t, whole.DistanceCost.Equal(parts.DistanceCost))
	assert.True(t, whole.CashCommission.Equal(parts.CashCommission))
	assert.True(t, whole.Net.Equal(parts.Net))
	assert.True(t, whole.Tips.Equal(parts.Tips))
	assert.True(t, whole.Earnings.PlatformA.AppFare.Equal(parts.Earnings.PlatformA.AppFare.Decimal))
}

// =============================================================================
// PERIOD ANALYZER
// =============================================================================

func TestAnalyze_Empty(t *testing.T) {
	a := earnings.Analyze(nil)

	assert.Equal(t, 0, a.RecordCount)
	assert.Nil(t, a.BestDay)
	assert.Nil(t, a.WorstDay)
	assertZeroTotals(t, a.Totals)
	assert.True(t, a.Averages.NetPerDay.IsZero())
	assert.True(t, a.Averages.NetPerKm.IsZero())
}

func TestAnalyze_AveragesAndExtremes(t *testing.T) {
	records := []earnings.DailyRecord{
		appDay("2025-03-10", 100, 10, 200), // net 200 - 104 - 5 = 91
		appDay("2025-03-11", 50, 5, 100),   // net 100 - 52 - 2.5 = 45.5
		appDay("2025-03-12", 150, 15, 300), // net 300 - 156 - 7.5 = 136.5
	}

	a := earnings.Analyze(records)
	assert.Equal(t, 3, a.RecordCount)
	assertDecimal(t, "273", a.Totals.Net)
	assertDecimal(t, "91", a.Averages.NetPerDay)
	assertDecimal(t, "200", a.Averages.GrossPerDay)
	assertDecimal(t, "100", a.Averages.KmPerDay)
	assertDecimal(t, "10", a.Averages.RidesPerDay)
	assertDecimal(t, "9.1", a.Averages.NetPerRide)
	assertDecimal(t, "0.91", a.Averages.NetPerKm)

	require.NotNil(t, a.BestDay)
	require.NotNil(t, a.WorstDay)
	assert.Equal(t, "2025-03-12", a.BestDay.Record.Date.String())
	assertDecimal(t, "136.5", a.BestDay.Result.Net)
	assert.Equal(t, "2025-03-11", a.WorstDay.Record.Date.String())
}

func TestAnalyze_TiesGoToFirstRecord(t *testing.T) {
	records := []earnings.DailyRecord{
		appDay("2025-03-10", 0, 1, 100),
		appDay("2025-03-11", 0, 1, 100),
		appDay("2025-03-12", 0, 1, 100),
	}

	a := earnings.Analyze(records)
	assert.Equal(t, "2025-03-10", a.BestDay.Record.Date.String())
	assert.Equal(t, "2025-03-10", a.WorstDay.Record.Date.String())
}

func TestAnalyze_ZeroRidesAndKmGuardDivision(t *testing.T) {
	a := earnings.Analyze([]earnings.DailyRecord{appDay("2025-03-10", 0, 0, 100)})

	assertDecimal(t, "48", a.Averages.NetPerDay)
	assert.True(t, a.Averages.NetPerRide.IsZero())
	assert.True(t, a.Averages.NetPerKm.IsZero())
}

// =============================================================================
// PERIOD COMPARATOR
// =============================================================================

func TestPercentChange(t *testing.T) {
	assertDecimal(t, "50", earnings.PercentChange(dec("150"), dec("100")))
	assertDecimal(t, "-25", earnings.PercentChange(dec("75"), dec("100")))
	assertDecimal(t, "33.33", earnings.PercentChange(dec("4"), dec("3")))
	assertDecimal(t, "100", earnings.PercentChange(dec("5"), decimal.Zero))
	assertDecimal(t, "0", earnings.PercentChange(decimal.Zero, decimal.Zero))
	assertDecimal(t, "0", earnings.PercentChange(dec("-5"), decimal.Zero))
}

func TestCompare_AgainstEmptyPrevious(t *testing.T) {
	current := []earnings.DailyRecord{fullDay("2025-03-10")}

	c := earnings.Compare(current, nil)
	assert.Equal(t, 1, c.Current.RecordCount)
	assert.Equal(t, 0, c.Previous.RecordCount)
	assertDecimal(t, "100", c.Changes.Gross)
	assertDecimal(t, "100", c.Changes.Net)
	assertDecimal(t, "100", c.Changes.DistanceKm)
	assertDecimal(t, "100", c.Changes.RideCount)
	assertDecimal(t, "100", c.Changes.WorkingDays)
	assertDecimal(t, "100", c.Changes.Tips)

	// A current period with no tips reports 0, not 100.
	c = earnings.Compare([]earnings.DailyRecord{appDay("2025-03-10", 10, 1, 50)}, nil)
	assertDecimal(t, "0", c.Changes.Tips)
}

func TestCompare_Growth(t *testing.T) {
	previous := []earnings.DailyRecord{appDay("2025-02-10", 100, 10, 200)}
	current := []earnings.DailyRecord{
		appDay("2025-03-10", 100, 10, 200),
		appDay("2025-03-11", 100, 10, 200),
	}

	c := earnings.Compare(current, previous)
	assertDecimal(t, "100", c.Changes.Gross)
	assertDecimal(t, "100", c.Changes.Net)
	assertDecimal(t, "100", c.Changes.WorkingDays)
	assertDecimal(t, "0", c.Changes.NetPerDay)

	same := earnings.CompareAnalyses(c.Current, c.Previous)
	assert.True(t, same.Changes.Net.Equal(c.Changes.Net))
}
