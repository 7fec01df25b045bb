/*
scheduler.go - Automated backup scheduler

PURPOSE:
  Periodically writes a full JSON export into a backup directory so a
  corrupted or deleted database never costs the driver more than one
  interval of data.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Runs once immediately on start
  - Files are named ridebook-backup-<UTC timestamp>.json, so lexical order
    is chronological
  - After each run only the newest Keep files are kept

CONFIGURATION (config.BackupConfig):
  - enabled:          Whether the scheduler runs (default: false)
  - dir:              Target directory, created if missing
  - interval_minutes: How often to back up (default: 1440)
  - keep:             How many backups to keep (default: 7)

USAGE:
  scheduler := NewBackupScheduler(svc, cfg.Backup, log, rec)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - export/document.go: Backup file format
  - handlers.go: Export endpoint (manual backup)
*/
package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/ridebook/config"
	"github.com/warp/ridebook/export"
	"github.com/warp/ridebook/metrics"
	"github.com/warp/ridebook/tracker"
)

const (
	backupPrefix = "ridebook-backup-"
	backupSuffix = ".json"
	backupLayout = "20060102T150405Z"
)

// BackupScheduler writes periodic exports of all data.
type BackupScheduler struct {
	Service  *tracker.Service
	Dir      string
	Interval time.Duration
	Keep     int
	Enabled  bool
	Log      zerolog.Logger
	Metrics  *metrics.Recorder

	// Now names backup files; defaults to time.Now.
	Now func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewBackupScheduler creates a scheduler from the backup config.
func NewBackupScheduler(svc *tracker.Service, cfg config.BackupConfig, log zerolog.Logger, rec *metrics.Recorder) *BackupScheduler {
	return &BackupScheduler{
		Service:  svc,
		Dir:      cfg.Dir,
		Interval: time.Duration(cfg.IntervalMinutes) * time.Minute,
		Keep:     cfg.Keep,
		Enabled:  cfg.Enabled,
		Log:      log,
		Metrics:  rec,
		Now:      time.Now,
	}
}

// Start begins the scheduler. It is a no-op when disabled or already running.
func (bs *BackupScheduler) Start() {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if !bs.Enabled {
		bs.Log.Info().Msg("backup scheduler disabled, not starting")
		return
	}
	if bs.ticker != nil {
		return
	}

	bs.ticker = time.NewTicker(bs.Interval)
	bs.stop = make(chan struct{})
	bs.wg.Add(1)

	go bs.run()

	bs.Log.Info().Dur("interval", bs.Interval).Str("dir", bs.Dir).Msg("backup scheduler started")
}

// Stop stops the scheduler and waits for a running backup to finish.
func (bs *BackupScheduler) Stop() {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.ticker == nil {
		return
	}
	bs.ticker.Stop()
	close(bs.stop)
	bs.wg.Wait()
	bs.ticker = nil
	bs.Log.Info().Msg("backup scheduler stopped")
}

func (bs *BackupScheduler) run() {
	defer bs.wg.Done()

	// Run immediately on start
	bs.tick()

	for {
		select {
		case <-bs.ticker.C:
			bs.tick()
		case <-bs.stop:
			return
		}
	}
}

func (bs *BackupScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := bs.RunOnce(ctx); err != nil {
		bs.Log.Error().Err(err).Msg("backup failed")
	}
}

// RunOnce writes one backup, prunes old ones and returns the new file's path.
func (bs *BackupScheduler) RunOnce(ctx context.Context) (string, error) {
	path, err := bs.write(ctx)
	bs.Metrics.RecordBackup(err == nil)
	if err != nil {
		return "", err
	}

	removed, err := bs.prune()
	if err != nil {
		bs.Log.Warn().Err(err).Msg("failed to prune old backups")
	}
	bs.Log.Info().Str("file", path).Int("pruned", removed).Msg("backup written")
	return path, nil
}

func (bs *BackupScheduler) write(ctx context.Context) (string, error) {
	if err := os.MkdirAll(bs.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	ds, err := bs.Service.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export: %w", err)
	}

	now := bs.Now()
	// A file with a backup name is always complete.
	tmp, err := os.CreateTemp(bs.Dir, ".backup-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := export.Encode(tmp, ds, now); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close backup: %w", err)
	}

	path := filepath.Join(bs.Dir, BackupFileName(now))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move backup into place: %w", err)
	}
	return path, nil
}

// prune removes all but the newest Keep backups.
func (bs *BackupScheduler) prune() (int, error) {
	if bs.Keep <= 0 {
		return 0, nil
	}
	files, err := ListBackups(bs.Dir)
	if err != nil {
		return 0, err
	}
	if len(files) <= bs.Keep {
		return 0, nil
	}

	removed := 0
	for _, f := range files[:len(files)-bs.Keep] {
		if err := os.Remove(f); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// BackupFileName is the name of a backup taken at t.
func BackupFileName(t time.Time) string {
	return backupPrefix + t.UTC().Format(backupLayout) + backupSuffix
}

// ListBackups returns the backup files in dir, oldest first.
func ListBackups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}
