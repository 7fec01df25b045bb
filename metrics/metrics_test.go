package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.RecordWrite("save")
	r.RecordWrite("save")
	r.RecordWrite("delete")
	r.RecordImport("merge")
	r.RecordBackup(false)
	r.RecordRequest("GET", "/api/dashboard", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.records.WithLabelValues("save")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.records.WithLabelValues("delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.imports.WithLabelValues("merge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.backups.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("GET", "/api/dashboard", "200")))
}

func TestRecorder_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRecorder(reg)
	require.NoError(t, err)
	second, err := NewRecorder(reg)
	require.NoError(t, err)

	first.RecordWrite("save")
	assert.Equal(t, 1.0, testutil.ToFloat64(second.records.WithLabelValues("save")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.RecordWrite("save")
	r.RecordImport("replace")
	r.RecordBackup(true)
	r.RecordRequest("GET", "/", 200, time.Second)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecorder_Handler(t *testing.T) {
	r, err := NewRecorder(nil)
	require.NoError(t, err)
	r.RecordWrite("save")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ridebook_records_written_total{op="save"} 1`)
}
