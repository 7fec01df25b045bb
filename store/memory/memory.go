// Package memory provides an in-memory tracker.Store for demos and tests.
// Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
	"github.com/warp/ridebook/tracker"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	records  []earnings.DailyRecord // sorted by date, unique
	profile  tracker.Profile
	settings *tracker.Settings
}

var _ tracker.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{}
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// search returns the index of date, or where it would be inserted.
func (m *Memory) search(date calendar.Date) (int, bool) {
	i := sort.Search(len(m.records), func(i int) bool {
		return !m.records[i].Date.Before(date)
	})
	return i, i < len(m.records) && m.records[i].Date.Equal(date)
}

func (m *Memory) SaveRecord(_ context.Context, rec earnings.DailyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertLocked(rec)
	return nil
}

func (m *Memory) upsertLocked(rec earnings.DailyRecord) {
	i, found := m.search(rec.Date)
	if found {
		m.records[i] = rec
		return
	}
	m.records = append(m.records, earnings.DailyRecord{})
	copy(m.records[i+1:], m.records[i:])
	m.records[i] = rec
}

func (m *Memory) GetRecord(_ context.Context, date calendar.Date) (*earnings.DailyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, found := m.search(date)
	if !found {
		return nil, nil
	}
	rec := m.records[i]
	return &rec, nil
}

func (m *Memory) DeleteRecord(_ context.Context, date calendar.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, found := m.search(date)
	if !found {
		return tracker.ErrRecordNotFound
	}
	m.records = append(m.records[:i], m.records[i+1:]...)
	return nil
}

// ListRecords returns a copy of the records in [from, to].
func (m *Memory) ListRecords(_ context.Context, from, to calendar.Date) ([]earnings.DailyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start, _ := m.search(from)
	var out []earnings.DailyRecord
	for _, rec := range m.records[start:] {
		if rec.Date.After(to) {
			break
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *Memory) AllRecords(_ context.Context) ([]earnings.DailyRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 {
		return nil, nil
	}
	out := make([]earnings.DailyRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

// ImportDataset validates dates before touching anything, so a failed
// import leaves the store unchanged.
func (m *Memory) ImportDataset(_ context.Context, ds tracker.Dataset, replace bool) error {
	for _, rec := range ds.Records {
		if rec.Date.IsZero() {
			return &tracker.ValidationError{Field: "date", Message: "date is required", Err: tracker.ErrInvalidRecord}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if replace {
		m.records = nil
	}
	for _, rec := range ds.Records {
		m.upsertLocked(rec)
	}
	if ds.Profile != nil {
		m.profile = *ds.Profile
	}
	if ds.Settings != nil {
		st := *ds.Settings
		m.settings = &st
	}
	return nil
}

func (m *Memory) GetProfile(_ context.Context) (tracker.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile, nil
}

func (m *Memory) SaveProfile(_ context.Context, p tracker.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = p
	return nil
}

func (m *Memory) GetSettings(_ context.Context) (tracker.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return tracker.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *Memory) SaveSettings(_ context.Context, s tracker.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.profile = tracker.Profile{}
	m.settings = nil
	return nil
}
