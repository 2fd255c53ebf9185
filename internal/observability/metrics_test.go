package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOracleOutcomes(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveOracle(OracleText, "clinical", 50*time.Millisecond, nil)
	m.ObserveOracle(OracleText, "clinical", 0, errors.New("boom"))
	m.ObserveOracle(OracleText, "clinical", 0, errors.New("boom"))

	if got := testutil.ToFloat64(m.oracleRequests.WithLabelValues(OracleText, "clinical", "ok")); got != 1 {
		t.Fatalf("ok count: got=%v want=1", got)
	}
	if got := testutil.ToFloat64(m.oracleRequests.WithLabelValues(OracleText, "clinical", "error")); got != 2 {
		t.Fatalf("error count: got=%v want=2", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveOracle(OracleSpeech, "recognize", time.Second, nil)
	m.IncFallback("relabel", "empty")
	m.IncAppointmentResult("sent")
	m.ObserveAPI("GET", "/healthcheck", "200", time.Millisecond)
	m.APIInflightInc()
	m.APIInflightDec()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("nil metrics handler status: got=%d want=%d", rec.Code, http.StatusNotFound)
	}
}

func TestHandlerExposesFallbacks(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.IncFallback("clinical", "parse")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `clinicscribe_stage_fallbacks_total{reason="parse",stage="clinical"} 1`) {
		t.Fatalf("fallback counter missing from exposition:\n%s", rec.Body.String())
	}
}
