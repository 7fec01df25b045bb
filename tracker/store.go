package tracker

import (
	"context"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
)

// Store persists records, the profile and settings. Records are keyed by
// date: saving a record for a date that already has one replaces it.
type Store interface {
	SaveRecord(ctx context.Context, rec earnings.DailyRecord) error

	// GetRecord returns nil, nil when no record exists for the date.
	GetRecord(ctx context.Context, date calendar.Date) (*earnings.DailyRecord, error)

	// DeleteRecord returns ErrRecordNotFound when there is nothing to delete.
	DeleteRecord(ctx context.Context, date calendar.Date) error

	// ListRecords returns records in [from, to] ordered by date.
	ListRecords(ctx context.Context, from, to calendar.Date) ([]earnings.DailyRecord, error)

	// AllRecords returns every record ordered by date.
	AllRecords(ctx context.Context) ([]earnings.DailyRecord, error)

	// ImportDataset writes ds atomically. With replace, existing records are
	// removed first; otherwise records are upserted by date.
	ImportDataset(ctx context.Context, ds Dataset, replace bool) error

	GetProfile(ctx context.Context) (Profile, error)
	SaveProfile(ctx context.Context, p Profile) error

	// GetSettings returns DefaultSettings when none were saved.
	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error

	// Reset deletes all user data.
	Reset(ctx context.Context) error
}
