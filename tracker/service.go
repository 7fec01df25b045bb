/*
Package tracker is the driver income tracker built on the earnings engine.

PURPOSE:
  Stores one record per working day, validates input before it reaches the
  engine, and answers the questions the app asks: what did I earn on a day,
  in a week, in a month, and how does it compare with last month.

ARCHITECTURE:
  Service holds a Store (sqlite in production and tests), a logger and an
  optional metrics recorder. All arithmetic is delegated to package
  earnings; this package only selects records and shapes results.

SEE ALSO:
  - reports.go: MonthReport and Dashboard
  - validate.go: ValidationPolicy
  - store/sqlite: Store implementation
*/
package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
	"github.com/warp/ridebook/metrics"
)

// Service is the tracker's application layer.
type Service struct {
	Store   Store
	Policy  ValidationPolicy
	Log     zerolog.Logger
	Metrics *metrics.Recorder

	// Now is the clock used for "today"; defaults to time.Now.
	Now func() time.Time
}

// NewService creates a service. rec may be nil.
func NewService(store Store, policy ValidationPolicy, log zerolog.Logger, rec *metrics.Recorder) *Service {
	return &Service{
		Store:   store,
		Policy:  policy,
		Log:     log,
		Metrics: rec,
		Now:     time.Now,
	}
}

func (s *Service) today() calendar.Date {
	return calendar.FromTime(s.Now())
}

// =============================================================================
// RECORDS
// =============================================================================

// SaveRecord validates and stores a record, replacing any record on the
// same date.
func (s *Service) SaveRecord(ctx context.Context, rec earnings.DailyRecord) (RecordView, error) {
	if err := s.Policy.ValidateRecord(rec); err != nil {
		return RecordView{}, err
	}
	if err := s.Store.SaveRecord(ctx, rec); err != nil {
		return RecordView{}, err
	}
	s.Metrics.RecordWrite("save")

	view := viewOf(rec)
	s.Log.Debug().
		Str("date", rec.Date.String()).
		Str("net", view.Result.Net.String()).
		Msg("record saved")
	return view, nil
}

// GetRecord returns the record for a date with its earnings.
func (s *Service) GetRecord(ctx context.Context, date calendar.Date) (RecordView, error) {
	rec, err := s.Store.GetRecord(ctx, date)
	if err != nil {
		return RecordView{}, err
	}
	if rec == nil {
		return RecordView{}, ErrRecordNotFound
	}
	return viewOf(*rec), nil
}

func (s *Service) DeleteRecord(ctx context.Context, date calendar.Date) error {
	if err := s.Store.DeleteRecord(ctx, date); err != nil {
		return err
	}
	s.Metrics.RecordWrite("delete")
	s.Log.Debug().Str("date", date.String()).Msg("record deleted")
	return nil
}

// ListRecords returns the records of a period with their earnings.
func (s *Service) ListRecords(ctx context.Context, period calendar.Period) ([]RecordView, error) {
	records, err := s.records(ctx, period)
	if err != nil {
		return nil, err
	}
	views := make([]RecordView, len(records))
	for i, rec := range records {
		views[i] = viewOf(rec)
	}
	return views, nil
}

func (s *Service) records(ctx context.Context, period calendar.Period) ([]earnings.DailyRecord, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	return s.Store.ListRecords(ctx, period.Start, period.End)
}

// =============================================================================
// PERIODS
// =============================================================================

// Summary analyzes the records of a period.
func (s *Service) Summary(ctx context.Context, period calendar.Period) (earnings.Analysis, error) {
	records, err := s.records(ctx, period)
	if err != nil {
		return earnings.Analysis{}, err
	}
	return earnings.Analyze(records), nil
}

// ComparePeriods compares two arbitrary periods.
func (s *Service) ComparePeriods(ctx context.Context, current, previous calendar.Period) (earnings.Comparison, error) {
	cur, err := s.records(ctx, current)
	if err != nil {
		return earnings.Comparison{}, err
	}
	prev, err := s.records(ctx, previous)
	if err != nil {
		return earnings.Comparison{}, err
	}
	return earnings.Compare(cur, prev), nil
}

// =============================================================================
// PROFILE & SETTINGS
// =============================================================================

func (s *Service) GetProfile(ctx context.Context) (Profile, error) {
	return s.Store.GetProfile(ctx)
}

func (s *Service) SaveProfile(ctx context.Context, p Profile) (Profile, error) {
	p.UpdatedAt = s.Now().UTC()
	if err := s.Store.SaveProfile(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) GetSettings(ctx context.Context) (Settings, error) {
	return s.Store.GetSettings(ctx)
}

// SaveSettings fills defaults for empty fields and validates the rest.
func (s *Service) SaveSettings(ctx context.Context, st Settings) (Settings, error) {
	st, err := normalizeSettings(st)
	if err != nil {
		return Settings{}, err
	}
	st.UpdatedAt = s.Now().UTC()
	if err := s.Store.SaveSettings(ctx, st); err != nil {
		return Settings{}, err
	}
	return st, nil
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

// Export returns every record together with the profile and settings.
func (s *Service) Export(ctx context.Context) (Dataset, error) {
	records, err := s.Store.AllRecords(ctx)
	if err != nil {
		return Dataset{}, err
	}
	profile, err := s.Store.GetProfile(ctx)
	if err != nil {
		return Dataset{}, err
	}
	settings, err := s.Store.GetSettings(ctx)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Records: records, Profile: &profile, Settings: &settings}, nil
}

// Import writes a dataset. Records go through the same validation as
// SaveRecord and a single bad record rejects the whole import. When the
// input holds several records for one date, the last one wins.
func (s *Service) Import(ctx context.Context, ds Dataset, replace bool) (ImportResult, error) {
	mode := "merge"
	if replace {
		mode = "replace"
	}

	records, dups := dedupeByDate(ds.Records)
	for i, rec := range records {
		if err := s.Policy.ValidateRecord(rec); err != nil {
			s.Log.Warn().Err(err).Int("index", i).Msg("import rejected")
			return ImportResult{}, err
		}
	}
	if ds.Settings != nil {
		st, err := normalizeSettings(*ds.Settings)
		if err != nil {
			return ImportResult{}, err
		}
		ds.Settings = &st
	}
	ds.Records = records

	if err := s.Store.ImportDataset(ctx, ds, replace); err != nil {
		return ImportResult{}, err
	}
	s.Metrics.RecordImport(mode)

	res := ImportResult{
		Mode:            mode,
		Records:         len(records),
		DuplicatesInput: dups,
		Profile:         ds.Profile != nil,
		Settings:        ds.Settings != nil,
	}
	s.Log.Info().
		Str("mode", mode).
		Int("records", res.Records).
		Int("duplicates", dups).
		Msg("import complete")
	return res, nil
}

func dedupeByDate(records []earnings.DailyRecord) ([]earnings.DailyRecord, int) {
	index := make(map[string]int, len(records))
	out := make([]earnings.DailyRecord, 0, len(records))
	dups := 0
	for _, rec := range records {
		key := rec.Date.String()
		if i, ok := index[key]; ok && key != "" {
			out[i] = rec
			dups++
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out, dups
}

// Reset deletes all user data.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.Store.Reset(ctx); err != nil {
		return err
	}
	s.Log.Warn().Msg("all data reset")
	return nil
}
