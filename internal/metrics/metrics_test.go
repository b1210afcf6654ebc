package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordDelayQuery("exact_planhead")
	m.RecordIngest("finance", "saved")
	m.ObserveStage("ocr", 200*time.Millisecond)
	m.RecordHTTPRequest("GET", "/api/get-vetting-delay", 200, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"vetting_delay_queries_total",
		"vetting_ingest_total",
		"vetting_pipeline_stage_duration_seconds",
		"vetting_http_requests_total",
		"vetting_http_request_duration_seconds",
	} {
		assert.True(t, names[want], want)
	}
}

func TestRecordDelayQuery(t *testing.T) {
	m := New(nil)
	m.RecordDelayQuery("latest")
	m.RecordDelayQuery("latest")
	m.RecordDelayQuery("")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DelayQueriesTotal.WithLabelValues("latest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DelayQueriesTotal.WithLabelValues("none")))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := New(nil)
	m.RecordHTTPRequest("POST", "/api/extract-GM-data", 422, time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/extract-GM-data", "422")))
}

func TestNilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordDelayQuery("x")
		m.RecordIngest("finance", "failed")
		m.ObserveStage("llm", time.Second)
		m.RecordHTTPRequest("GET", "/", 200, time.Second)
	})
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.RecordIngest("approval", "saved")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(string(body), `vetting_ingest_total{kind="approval",outcome="saved"} 1`))
}
