/*
handlers.go - HTTP API handlers for the driver income tracker

PURPOSE:
  Exposes the tracker service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the tracker and earnings packages.

ENDPOINTS:
  Records:
    GET    /api/records?from&to          Records of a period (default: this month)
    POST   /api/records                  Create or replace a record
    GET    /api/records/{date}           Record with its earnings
    PUT    /api/records/{date}           Create or replace the record for date
    DELETE /api/records/{date}           Delete a record

  Calculation:
    POST   /api/calculate                Compute one record without storing it

  Periods & reports:
    GET    /api/summary?from&to          Analysis of a period
    GET    /api/compare?from&to&prev_from&prev_to
    GET    /api/reports/monthly/{year}/{month}[?format=pdf]
    GET    /api/dashboard                Today, this week, this month

  Profile & settings:
    GET/PUT /api/profile
    GET/PUT /api/settings

  Data:
    GET    /api/export                   Download all data as JSON
    POST   /api/import?mode=merge|replace
    POST   /api/demo/load                Seed a demo month
    POST   /api/reset                    Delete everything

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, unsupported export files
  - 404: Record not found
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The app is meant to run locally for one driver.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/ridebook/calendar"
	"github.com/warp/ridebook/earnings"
	"github.com/warp/ridebook/export"
	"github.com/warp/ridebook/tracker"
)

// maxBodyBytes caps request bodies. Imports of several years of records
// stay well below it.
const maxBodyBytes = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *tracker.Service
	Log     zerolog.Logger
}

// NewHandler creates a new handler on top of the tracker service.
func NewHandler(svc *tracker.Service, log zerolog.Logger) *Handler {
	return &Handler{Service: svc, Log: log}
}

func (h *Handler) today() calendar.Date {
	return calendar.FromTime(h.Service.Now())
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// ListRecords returns the records of a period.
// GET /api/records?from=2025-03-01&to=2025-03-31
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r.URL.Query(), "from", "to", calendar.MonthOf(h.today()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	views, err := h.Service.ListRecords(r.Context(), period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(views))
}

// CreateRecord stores a record; the date comes from the body.
// POST /api/records
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec earnings.DailyRecord
	if err := decodeBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	view, err := h.Service.SaveRecord(r.Context(), rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(view))
}

// GetRecord returns one record with its earnings.
// GET /api/records/{date}
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.Service.GetRecord(r.Context(), date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(view))
}

// PutRecord stores a record for the date in the path. A date in the body,
// if any, must match.
// PUT /api/records/{date}
func (h *Handler) PutRecord(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var rec earnings.DailyRecord
	if err := decodeBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !rec.Date.IsZero() && !rec.Date.Equal(date) {
		writeError(w, http.StatusBadRequest, "Date in body does not match path",
			fmt.Errorf("path %s, body %s", date, rec.Date))
		return
	}
	rec.Date = date

	view, err := h.Service.SaveRecord(r.Context(), rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(view))
}

// DeleteRecord removes a record.
// DELETE /api/records/{date}
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Service.DeleteRecord(r.Context(), date); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Calculate runs the engine on a posted record. Nothing is stored and no
// validation policy applies.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var rec earnings.DailyRecord
	if err := decodeBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	writeJSON(w, http.StatusOK, toResultDTO(earnings.Compute(rec)))
}

// =============================================================================
// PERIOD & REPORT HANDLERS
// =============================================================================

// Summary analyzes a period.
// GET /api/summary?from=2025-03-01&to=2025-03-31
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r.URL.Query(), "from", "to", calendar.MonthOf(h.today()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	analysis, err := h.Service.Summary(r.Context(), period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodAnalysisDTO(period, analysis))
}

// Compare compares two periods. Without prev_from/prev_to the previous
// period is the same length immediately before the current one. With no
// parameters at all it compares this month with last month.
// GET /api/compare?from&to&prev_from&prev_to
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	today := h.today()
	current, err := periodFromQuery(q, "from", "to", calendar.MonthOf(today))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defPrev := current.PreviousPeriod()
	if q.Get("from") == "" {
		defPrev = calendar.PreviousMonth(today)
	}
	previous, err := periodFromQuery(q, "prev_from", "prev_to", defPrev)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	cmp, err := h.Service.ComparePeriods(r.Context(), current, previous)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ComparisonDTO{
		Current:  toPeriodAnalysisDTO(current, cmp.Current),
		Previous: toPeriodAnalysisDTO(previous, cmp.Previous),
		Changes:  toChangesDTO(cmp.Changes),
	})
}

// MonthlyReport returns the month report as JSON, or as a PDF download
// with ?format=pdf.
// GET /api/reports/monthly/{year}/{month}
func (h *Handler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	ctx := r.Context()
	report, err := h.Service.MonthReport(ctx, year, time.Month(month))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if r.URL.Query().Get("format") != "pdf" {
		writeJSON(w, http.StatusOK, toMonthReportDTO(report))
		return
	}

	profile, err := h.Service.GetProfile(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	settings, err := h.Service.GetSettings(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// Render fully before writing so a failure can still return JSON.
	var buf bytes.Buffer
	if err := export.RenderMonthPDF(&buf, report, profile, settings); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="ridebook-%04d-%02d.pdf"`, year, month))
	w.WriteHeader(http.StatusOK)
	h.writeBody(w, r, buf.Bytes())
}

// Dashboard returns today, this week and this month.
// GET /api/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(d))
}

// =============================================================================
// PROFILE & SETTINGS HANDLERS
// =============================================================================

// GET /api/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetProfile(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PUT /api/profile
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var p tracker.Profile
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	saved, err := h.Service.SaveProfile(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.GetSettings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// PUT /api/settings
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var st tracker.Settings
	if err := decodeBody(w, r, &st); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	saved, err := h.Service.SaveSettings(r.Context(), st)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// =============================================================================
// DATA HANDLERS
// =============================================================================

// Export downloads every record, the profile and settings.
// GET /api/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Service.Export(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	now := h.Service.Now()
	var buf bytes.Buffer
	meta, err := export.Encode(&buf, ds, now)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Log.Info().Str("export_id", meta.ExportID).Int("records", meta.RecordCount).Msg("export created")

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(now)))
	w.WriteHeader(http.StatusOK)
	h.writeBody(w, r, buf.Bytes())
}

// Import reads an export document from the body.
// POST /api/import?mode=merge|replace
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "merge"
	}
	if mode != "merge" && mode != "replace" {
		writeError(w, http.StatusBadRequest, "Invalid import mode", fmt.Errorf("mode %q: expected merge or replace", mode))
		return
	}

	ds, meta, err := export.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.Service.Import(r.Context(), ds, mode == "replace")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{
		Mode:            res.Mode,
		Records:         res.Records,
		DuplicatesInput: res.DuplicatesInput,
		Profile:         res.Profile,
		Settings:        res.Settings,
		ExportID:        meta.ExportID,
	})
}

// LoadDemo merges a demo month. An empty body loads the current month.
// POST /api/demo/load
func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	var req LoadDemoRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	today := h.today()
	if req.Year == 0 {
		req.Year = today.Year()
	}
	if req.Month == 0 {
		req.Month = int(today.Month())
	}

	res, err := h.Service.LoadDemo(r.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{
		Mode:    res.Mode,
		Records: res.Records,
	})
}

// ResetDatabase deletes all data.
// POST /api/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Reset(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeBody sends a prepared attachment. Headers are already out, so a
// failed write can only be logged.
func (h *Handler) writeBody(w http.ResponseWriter, r *http.Request, body []byte) {
	if _, err := w.Write(body); err != nil {
		h.Log.Warn().Err(err).
			Str("path", r.URL.Path).
			Int("bytes", len(body)).
			Msg("response write failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps a service error to a status code.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Details: verr.Error(),
			Field:   verr.Field,
		})
	case tracker.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Record not found", err)
	case tracker.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, export.ErrUnsupportedVersion):
		writeError(w, http.StatusBadRequest, "Unsupported export version", err)
	case errors.Is(err, export.ErrMalformedDocument):
		writeError(w, http.StatusBadRequest, "Malformed export document", err)
	default:
		h.Log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func dateParam(r *http.Request) (calendar.Date, error) {
	raw := chi.URLParam(r, "date")
	d, err := calendar.Parse(raw)
	if err != nil {
		return calendar.Date{}, &tracker.ValidationError{
			Field:   "date",
			Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", raw),
			Err:     tracker.ErrInvalidRecord,
		}
	}
	return d, nil
}

// periodFromQuery reads an inclusive period from two query parameters.
// When both are absent def is returned; one without the other is an error.
func periodFromQuery(q url.Values, fromKey, toKey string, def calendar.Period) (calendar.Period, error) {
	rawFrom, rawTo := q.Get(fromKey), q.Get(toKey)
	if rawFrom == "" && rawTo == "" {
		return def, nil
	}
	invalid := func(field, msg string) error {
		return &tracker.ValidationError{Field: field, Message: msg, Err: tracker.ErrInvalidPeriod}
	}
	if rawFrom == "" || rawTo == "" {
		return calendar.Period{}, invalid(fromKey, fmt.Sprintf("%s and %s must be given together", fromKey, toKey))
	}
	from, err := calendar.Parse(rawFrom)
	if err != nil {
		return calendar.Period{}, invalid(fromKey, fmt.Sprintf("%q is not a YYYY-MM-DD date", rawFrom))
	}
	to, err := calendar.Parse(rawTo)
	if err != nil {
		return calendar.Period{}, invalid(toKey, fmt.Sprintf("%q is not a YYYY-MM-DD date", rawTo))
	}
	return calendar.Period{Start: from, End: to}, nil
}
