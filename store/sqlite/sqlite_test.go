package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
	"github.com/warp/ridebook/store/sqlite"
	"github.com/warp/ridebook/tracker"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(date string, appFare, km string) earnings.DailyRecord {
	rec := earnings.DailyRecord{
		Date:       calendar.MustParse(date),
		DistanceKm: earnings.NumberFromString(km),
		RideCount:  10,
	}
	rec.Earnings.PlatformA.AppFare = earnings.NumberFromString(appFare)
	return rec
}

func TestRecord_SaveGetReplace(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// GIVEN: A record with every field set and decimals that floats mangle
	rec := record("2025-03-10", "100.1", "120.35")
	rec.Earnings.PlatformA.Tip = earnings.NumberFromString("5")
	rec.Earnings.PlatformB.AppFare = earnings.NumberFromString("20.2")
	rec.Earnings.PlatformB.CardFare = earnings.NumberFromString("30")
	rec.Earnings.PlatformB.CashFare = earnings.NumberFromString("20")
	rec.Earnings.PlatformB.Tip = earnings.NumberFromString("2")
	rec.Earnings.Conventional.CardFare = earnings.NumberFromString("0.3")
	rec.Earnings.Conventional.CashFare = earnings.NumberFromString("9.99")
	rec.Expenses.Fuel = earnings.NumberFromString("30")
	rec.Notes = "airport run"

	// WHEN: Saved and read back
	require.NoError(t, store.SaveRecord(ctx, rec))
	got, err := store.GetRecord(ctx, rec.Date)
	require.NoError(t, err)
	require.NotNil(t, got)

	// THEN: Every value survives exactly
	assert.Equal(t, "2025-03-10", got.Date.String())
	assert.Equal(t, "120.35", got.DistanceKm.String())
	assert.Equal(t, earnings.Count(10), got.RideCount)
	assert.Equal(t, "100.1", got.Earnings.PlatformA.AppFare.String())
	assert.Equal(t, "9.99", got.Earnings.Conventional.CashFare.String())
	assert.Equal(t, "0.3", got.Earnings.Conventional.CardFare.String())
	assert.Equal(t, "30", got.Expenses.Fuel.String())
	assert.Equal(t, "airport run", got.Notes)
	assert.True(t, earnings.Compute(rec).Net.Equal(earnings.Compute(*got).Net))

	// WHEN: A second record for the same date is saved
	require.NoError(t, store.SaveRecord(ctx, record("2025-03-10", "50", "10")))

	// THEN: It replaces the first
	got, err = store.GetRecord(ctx, rec.Date)
	require.NoError(t, err)
	assert.Equal(t, "50", got.Earnings.PlatformA.AppFare.String())
	assert.Equal(t, "", got.Notes)

	all, err := store.AllRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecord_GetMissingReturnsNil(t *testing.T) {
	store := newStore(t)

	got, err := store.GetRecord(context.Background(), calendar.MustParse("2025-01-01"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecord_RejectsUnreadableYear(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	rec := earnings.DailyRecord{Date: calendar.NewDate(10000, time.January, 1)}
	assert.ErrorContains(t, store.SaveRecord(ctx, rec), "year 10000 out of range")

	all, err := store.AllRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecord_Delete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	date := calendar.MustParse("2025-03-10")

	require.NoError(t, store.SaveRecord(ctx, record("2025-03-10", "1", "1")))
	require.NoError(t, store.DeleteRecord(ctx, date))

	got, err := store.GetRecord(ctx, date)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = store.DeleteRecord(ctx, date)
	assert.ErrorIs(t, err, tracker.ErrRecordNotFound)
}

func TestListRecords_InclusiveAndOrdered(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, d := range []string{"2025-03-15", "2025-02-28", "2025-03-01", "2025-03-31", "2025-04-01"} {
		require.NoError(t, store.SaveRecord(ctx, record(d, "10", "10")))
	}

	got, err := store.ListRecords(ctx, calendar.MustParse("2025-03-01"), calendar.MustParse("2025-03-31"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-03-01", got[0].Date.String())
	assert.Equal(t, "2025-03-15", got[1].Date.String())
	assert.Equal(t, "2025-03-31", got[2].Date.String())

	all, err := store.AllRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "2025-02-28", all[0].Date.String())
}

func TestImportDataset_MergeAndReplace(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecord(ctx, record("2025-03-01", "10", "10")))
	require.NoError(t, store.SaveRecord(ctx, record("2025-03-02", "10", "10")))

	// WHEN: Merging a dataset that overlaps one date
	settings := tracker.Settings{Currency: "USD", WeekStart: calendar.WeekStartSunday, DailyNetGoal: earnings.NumberFromString("150")}
	profile := tracker.Profile{DriverName: "Sam", City: "Lisbon"}
	err := store.ImportDataset(ctx, tracker.Dataset{
		Records:  []earnings.DailyRecord{record("2025-03-02", "99", "10"), record("2025-03-03", "5", "5")},
		Profile:  &profile,
		Settings: &settings,
	}, false)
	require.NoError(t, err)

	// THEN: Existing records are kept, the overlap is replaced
	all, err := store.AllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "99", all[1].Earnings.PlatformA.AppFare.String())

	gotSettings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", gotSettings.Currency)
	assert.Equal(t, calendar.WeekStartSunday, gotSettings.WeekStart)
	assert.Equal(t, "150", gotSettings.DailyNetGoal.String())

	gotProfile, err := store.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sam", gotProfile.DriverName)
	assert.Equal(t, "Lisbon", gotProfile.City)

	// WHEN: Replacing
	err = store.ImportDataset(ctx, tracker.Dataset{
		Records: []earnings.DailyRecord{record("2025-04-01", "1", "1")},
	}, true)
	require.NoError(t, err)

	// THEN: Only the imported records remain, settings are untouched
	all, err = store.AllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2025-04-01", all[0].Date.String())

	gotSettings, err = store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", gotSettings.Currency)
}

func TestImportDataset_RollsBackOnError(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRecord(ctx, record("2025-03-01", "10", "10")))

	// A record without a date fails inside the transaction.
	err := store.ImportDataset(ctx, tracker.Dataset{
		Records: []earnings.DailyRecord{record("2025-03-05", "1", "1"), {}},
	}, true)
	require.Error(t, err)

	all, err := store.AllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2025-03-01", all[0].Date.String())
}

func TestSettings_DefaultsWhenUnset(t *testing.T) {
	store := newStore(t)

	st, err := store.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tracker.DefaultSettings().Currency, st.Currency)
	assert.Equal(t, calendar.WeekStartMonday, st.WeekStart)

	p, err := store.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tracker.Profile{}, p)
}

func TestReset(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecord(ctx, record("2025-03-01", "10", "10")))
	require.NoError(t, store.SaveProfile(ctx, tracker.Profile{DriverName: "Sam"}))
	require.NoError(t, store.SaveSettings(ctx, tracker.Settings{Currency: "GBP", WeekStart: calendar.WeekStartMonday}))

	require.NoError(t, store.Reset(ctx))

	all, err := store.AllRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	st, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EUR", st.Currency)
}
