/*
document.go - Versioned JSON export/import document

PURPOSE:
  The export file is the user's backup and the only way data moves between
  devices. It wraps a tracker.Dataset with a version and metadata so older
  app versions can refuse files they do not understand.

FORMAT:
  {
    "version": "1.0",
    "exported_at": "2025-03-12T18:30:00Z",
    "metadata": {
      "export_id": "5b0c...",
      "app": "ridebook",
      "record_count": 26,
      "first_date": "2025-03-01",
      "last_date": "2025-03-31"
    },
    "data": {
      "records": [ ... DailyRecord ... ],
      "profile": { ... },
      "settings": { ... }
    }
  }

COMPATIBILITY:
  Decode accepts any 1.x version. Unknown fields are ignored, and record
  fields decode leniently (see earnings.Number).

SEE ALSO:
  - tracker.Service.Export / Import
  - pdf.go: the printable monthly report
*/
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
	"github.com/warp/ridebook/tracker"
)

const (
	// Version is written into every export.
	Version = "1.0"

	// AppName identifies files written by this app.
	AppName = "ridebook"

	supportedMajor = 1
)

var (
	// ErrUnsupportedVersion is returned for documents from another major version.
	ErrUnsupportedVersion = errors.New("unsupported export version")

	// ErrMalformedDocument is returned when the input is not an export document.
	ErrMalformedDocument = errors.New("malformed export document")
)

// Document is the on-disk export format.
type Document struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Metadata   Metadata  `json:"metadata"`
	Data       *Data     `json:"data"`
}

// Metadata describes an export. It is informational; Decode does not trust
// RecordCount or the date range.
type Metadata struct {
	ExportID    string        `json:"export_id"`
	App         string        `json:"app"`
	RecordCount int           `json:"record_count"`
	FirstDate   calendar.Date `json:"first_date"`
	LastDate    calendar.Date `json:"last_date"`
}

type Data struct {
	Records  []earnings.DailyRecord `json:"records"`
	Profile  *tracker.Profile       `json:"profile,omitempty"`
	Settings *tracker.Settings      `json:"settings,omitempty"`
}

// NewDocument wraps a dataset. Records are expected in date order, as the
// store returns them.
func NewDocument(ds tracker.Dataset, now time.Time) Document {
	records := ds.Records
	if records == nil {
		records = []earnings.DailyRecord{}
	}
	meta := Metadata{
		ExportID:    uuid.NewString(),
		App:         AppName,
		RecordCount: len(records),
	}
	for _, rec := range records {
		if meta.FirstDate.IsZero() || rec.Date.Before(meta.FirstDate) {
			meta.FirstDate = rec.Date
		}
		if rec.Date.After(meta.LastDate) {
			meta.LastDate = rec.Date
		}
	}
	return Document{
		Version:    Version,
		ExportedAt: now.UTC().Truncate(time.Second),
		Metadata:   meta,
		Data: &Data{
			Records:  records,
			Profile:  ds.Profile,
			Settings: ds.Settings,
		},
	}
}

// Encode writes ds as an indented export document.
func Encode(w io.Writer, ds tracker.Dataset, now time.Time) (Metadata, error) {
	doc := NewDocument(ds, now)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return Metadata{}, fmt.Errorf("failed to encode export: %w", err)
	}
	return doc.Metadata, nil
}

// Decode reads an export document. The returned dataset is not validated;
// tracker.Service.Import does that.
func Decode(r io.Reader) (tracker.Dataset, Metadata, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return tracker.Dataset{}, Metadata{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return tracker.Dataset{}, Metadata{}, err
	}
	if doc.Data == nil {
		return tracker.Dataset{}, Metadata{}, fmt.Errorf("%w: missing data", ErrMalformedDocument)
	}
	ds := tracker.Dataset{
		Records:  doc.Data.Records,
		Profile:  doc.Data.Profile,
		Settings: doc.Data.Settings,
	}
	return ds, doc.Metadata, nil
}

func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: missing version", ErrMalformedDocument)
	}
	majorStr, _, _ := strings.Cut(v, ".")
	major, err := strconv.Atoi(majorStr)
	if err != nil {
		return fmt.Errorf("%w: version %q", ErrMalformedDocument, v)
	}
	if major != supportedMajor {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
	}
	return nil
}

// FileName is the suggested download name for an export made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("%s-export-%s.json", AppName, t.UTC().Format("20060102-150405"))
}
