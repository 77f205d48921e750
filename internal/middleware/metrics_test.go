package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// recordingMetrics はHTTPMetricsRecorderのテスト用実装。
type recordingMetrics struct {
	statuses  []int
	latencies []time.Duration
}

func (r *recordingMetrics) RecordHTTPStatus(statusCode int) {
	r.statuses = append(r.statuses, statusCode)
}

func (r *recordingMetrics) RecordRequestLatency(duration time.Duration) {
	r.latencies = append(r.latencies, duration)
}

var _ HTTPMetricsRecorder = (*recordingMetrics)(nil)

func TestMetricsMiddleware_RecordsStatusAndLatency(t *testing.T) {
	rec := &recordingMetrics{}

	handler := NewMetricsMiddleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/todo", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if len(rec.statuses) != 1 || rec.statuses[0] != http.StatusCreated {
		t.Errorf("statuses = %v, want [201]", rec.statuses)
	}
	if len(rec.latencies) != 1 {
		t.Fatalf("latencies = %v, want 1 sample", rec.latencies)
	}
	if rec.latencies[0] < 0 {
		t.Errorf("latency = %v, want non-negative", rec.latencies[0])
	}
}

func TestMetricsMiddleware_DefaultStatusIs200(t *testing.T) {
	rec := &recordingMetrics{}

	handler := NewMetricsMiddleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if len(rec.statuses) != 1 || rec.statuses[0] != http.StatusOK {
		t.Errorf("statuses = %v, want [200]", rec.statuses)
	}
}
