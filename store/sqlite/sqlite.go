/*
Package sqlite provides a SQLite-backed implementation of tracker.Store.

PURPOSE:
  Persists the driver's daily records, profile and settings in a single
  local database file. The app is single-user, so one file per driver.

KEY TABLES:
  records:  One row per calendar date (primary key). Saving a record for an
            existing date replaces it.
  profile:  Single row (id = 1).
  settings: Single row (id = 1).

NUMBERS:
  Money and distance are stored as decimal TEXT (e.g. "93.6"), never REAL,
  so values round-trip exactly into decimal.Decimal.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around the shared *sql.DB.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so the HTTP API can read
  while the backup scheduler exports.

USAGE:
  store, err := sqlite.New("./ridebook.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := tracker.NewService(store, policy, log, nil)

SEE ALSO:
  - tracker/store.go: Interface definition
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
	"github.com/warp/ridebook/tracker"
)

// Store implements tracker.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ tracker.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		date TEXT PRIMARY KEY,
		distance_km TEXT NOT NULL DEFAULT '0',
		ride_count INTEGER NOT NULL DEFAULT 0,
		a_app_fare TEXT NOT NULL DEFAULT '0',
		a_tip TEXT NOT NULL DEFAULT '0',
		b_app_fare TEXT NOT NULL DEFAULT '0',
		b_card_fare TEXT NOT NULL DEFAULT '0',
		b_cash_fare TEXT NOT NULL DEFAULT '0',
		b_tip TEXT NOT NULL DEFAULT '0',
		c_card_fare TEXT NOT NULL DEFAULT '0',
		c_cash_fare TEXT NOT NULL DEFAULT '0',
		fuel TEXT NOT NULL DEFAULT '0',
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profile (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		driver_name TEXT,
		vehicle_model TEXT,
		license_plate TEXT,
		city TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		currency TEXT NOT NULL,
		week_start TEXT NOT NULL,
		daily_net_goal TEXT NOT NULL DEFAULT '0',
		monthly_net_goal TEXT NOT NULL DEFAULT '0',
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// RECORDS
// =============================================================================

const recordColumns = `date, distance_km, ride_count,
	a_app_fare, a_tip, b_app_fare, b_card_fare, b_cash_fare, b_tip,
	c_card_fare, c_cash_fare, fuel, notes`

// SaveRecord inserts or replaces the record for its date.
func (s *Store) SaveRecord(ctx context.Context, rec earnings.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return upsertRecord(ctx, s.db, rec)
}

func upsertRecord(ctx context.Context, db execer, rec earnings.DailyRecord) error {
	if rec.Date.IsZero() {
		return fmt.Errorf("failed to save record: date is required")
	}
	if !calendar.ValidYear(rec.Date.Year()) {
		return fmt.Errorf("failed to save record: year %d out of range", rec.Date.Year())
	}
	now := time.Now().UTC().Format(time.RFC3339)
	e := rec.Earnings

	query := `
		INSERT INTO records (` + recordColumns + `, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			distance_km = excluded.distance_km,
			ride_count = excluded.ride_count,
			a_app_fare = excluded.a_app_fare,
			a_tip = excluded.a_tip,
			b_app_fare = excluded.b_app_fare,
			b_card_fare = excluded.b_card_fare,
			b_cash_fare = excluded.b_cash_fare,
			b_tip = excluded.b_tip,
			c_card_fare = excluded.c_card_fare,
			c_cash_fare = excluded.c_cash_fare,
			fuel = excluded.fuel,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query,
		rec.Date.String(),
		rec.DistanceKm.String(),
		int(rec.RideCount),
		e.PlatformA.AppFare.String(),
		e.PlatformA.Tip.String(),
		e.PlatformB.AppFare.String(),
		e.PlatformB.CardFare.String(),
		e.PlatformB.CashFare.String(),
		e.PlatformB.Tip.String(),
		e.Conventional.CardFare.String(),
		e.Conventional.CashFare.String(),
		rec.Expenses.Fuel.String(),
		nullString(rec.Notes),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.Date, err)
	}
	return nil
}

// GetRecord returns the record for a date, or nil if there is none.
func (s *Store) GetRecord(ctx context.Context, date calendar.Date) (*earnings.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM records WHERE date = ?`, date.String())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// DeleteRecord removes the record for a date.
func (s *Store) DeleteRecord(ctx context.Context, date calendar.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE date = ?", date.String())
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", date, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return tracker.ErrRecordNotFound
	}
	return nil
}

// ListRecords returns records in [from, to] ordered by date.
func (s *Store) ListRecords(ctx context.Context, from, to calendar.Date) ([]earnings.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM records WHERE date >= ? AND date <= ? ORDER BY date ASC`,
		from.String(), to.String())
}

// AllRecords returns every record ordered by date.
func (s *Store) AllRecords(ctx context.Context) ([]earnings.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx, `SELECT `+recordColumns+` FROM records ORDER BY date ASC`)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]earnings.DailyRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []earnings.DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (earnings.DailyRecord, error) {
	var (
		date, km                             string
		rides                                int
		aApp, aTip, bApp, bCard, bCash, bTip string
		cCard, cCash, fuel                   string
		notes                                sql.NullString
	)
	if err := rows.Scan(&date, &km, &rides, &aApp, &aTip, &bApp, &bCard, &bCash, &bTip,
		&cCard, &cCash, &fuel, &notes); err != nil {
		return earnings.DailyRecord{}, fmt.Errorf("failed to scan record: %w", err)
	}

	d, err := calendar.Parse(date)
	if err != nil {
		return earnings.DailyRecord{}, err
	}

	var p numberParser
	rec := earnings.DailyRecord{
		Date:       d,
		DistanceKm: p.parse("distance_km", km),
		RideCount:  earnings.Count(rides),
		Notes:      notes.String,
	}
	rec.Earnings.PlatformA.AppFare = p.parse("a_app_fare", aApp)
	rec.Earnings.PlatformA.Tip = p.parse("a_tip", aTip)
	rec.Earnings.PlatformB.AppFare = p.parse("b_app_fare", bApp)
	rec.Earnings.PlatformB.CardFare = p.parse("b_card_fare", bCard)
	rec.Earnings.PlatformB.CashFare = p.parse("b_cash_fare", bCash)
	rec.Earnings.PlatformB.Tip = p.parse("b_tip", bTip)
	rec.Earnings.Conventional.CardFare = p.parse("c_card_fare", cCard)
	rec.Earnings.Conventional.CashFare = p.parse("c_cash_fare", cCash)
	rec.Expenses.Fuel = p.parse("fuel", fuel)
	if p.err != nil {
		return earnings.DailyRecord{}, fmt.Errorf("record %s: %w", date, p.err)
	}
	return rec, nil
}

// numberParser keeps the first parse error so a row is scanned in one pass.
type numberParser struct {
	err error
}

func (p *numberParser) parse(column, value string) earnings.Number {
	d, err := decimal.NewFromString(value)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("column %s: %w", column, err)
		}
		return earnings.Number{}
	}
	return earnings.Number{Decimal: d}
}

// ImportDataset writes records, profile and settings in one transaction.
func (s *Store) ImportDataset(ctx context.Context, ds tracker.Dataset, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if replace {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM records"); err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
	}
	for _, rec := range ds.Records {
		if err := upsertRecord(ctx, sqlTx, rec); err != nil {
			return err
		}
	}
	if ds.Profile != nil {
		if err := saveProfile(ctx, sqlTx, *ds.Profile); err != nil {
			return err
		}
	}
	if ds.Settings != nil {
		if err := saveSettings(ctx, sqlTx, *ds.Settings); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

// =============================================================================
// PROFILE
// =============================================================================

// GetProfile returns the saved profile, or an empty one.
func (s *Store) GetProfile(ctx context.Context) (tracker.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		p                        tracker.Profile
		name, model, plate, city sql.NullString
		updatedAt                string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT driver_name, vehicle_model, license_plate, city, updated_at
		FROM profile WHERE id = 1
	`).Scan(&name, &model, &plate, &city, &updatedAt)
	if err == sql.ErrNoRows {
		return tracker.Profile{}, nil
	}
	if err != nil {
		return tracker.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	p.DriverName = name.String
	p.VehicleModel = model.String
	p.LicensePlate = plate.String
	p.City = city.String
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p tracker.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveProfile(ctx, s.db, p)
}

func saveProfile(ctx context.Context, db execer, p tracker.Profile) error {
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO profile (id, driver_name, vehicle_model, license_plate, city, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
	`,
		nullString(p.DriverName),
		nullString(p.VehicleModel),
		nullString(p.LicensePlate),
		nullString(p.City),
		updatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the saved settings, or tracker.DefaultSettings.
func (s *Store) GetSettings(ctx context.Context) (tracker.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var currency, weekStart, daily, monthly, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT currency, week_start, daily_net_goal, monthly_net_goal, updated_at
		FROM settings WHERE id = 1
	`).Scan(&currency, &weekStart, &daily, &monthly, &updatedAt)
	if err == sql.ErrNoRows {
		return tracker.DefaultSettings(), nil
	}
	if err != nil {
		return tracker.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	var p numberParser
	st := tracker.Settings{
		Currency:       currency,
		WeekStart:      calendar.WeekStart(weekStart),
		DailyNetGoal:   p.parse("daily_net_goal", daily),
		MonthlyNetGoal: p.parse("monthly_net_goal", monthly),
	}
	if p.err != nil {
		return tracker.Settings{}, fmt.Errorf("settings: %w", p.err)
	}
	st.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st tracker.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveSettings(ctx, s.db, st)
}

func saveSettings(ctx context.Context, db execer, st tracker.Settings) error {
	updatedAt := st.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (id, currency, week_start, daily_net_goal, monthly_net_goal, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
	`,
		st.Currency,
		string(st.WeekStart),
		st.DailyNetGoal.String(),
		st.MonthlyNetGoal.String(),
		updatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset deletes all data (for demo/testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM records;
		DELETE FROM profile;
		DELETE FROM settings;
	`)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
