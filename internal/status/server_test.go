package status

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxsuv/luxsuv-driver/internal/metrics"
	"github.com/luxsuv/luxsuv-driver/internal/model"
)

// stubState はSyncStateのテスト用実装。
type stubState struct {
	rides     []model.Ride
	loading   bool
	lastError string
}

func (s *stubState) Snapshot() []model.Ride { return s.rides }
func (s *stubState) IsLoading() bool        { return s.loading }
func (s *stubState) LastError() string      { return s.lastError }

func newTestLogger() *slog.Logger {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil))
}

func newTestServer(t *testing.T, state *stubState) *Server {
	t.Helper()

	reg := prometheus.NewRegistry()
	metrics.NewCollector(reg)
	srv := NewServer(newTestLogger(), state, reg, 120)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz_OK(t *testing.T) {
	state := &stubState{rides: []model.Ride{{ID: "1"}, {ID: "2"}}}
	srv := newTestServer(t, state)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗した: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want %q", body.Status, "ok")
	}
	if body.RideCount != 2 {
		t.Errorf("ride_count = %d, want 2", body.RideCount)
	}
}

func TestHealthz_DegradedOnLastError(t *testing.T) {
	state := &stubState{lastError: "Failed to fetch rides (Status: 500)"}
	srv := newTestServer(t, state)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var body healthResponse
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗した: %v", err)
	}
	if body.Status != "degraded" {
		t.Errorf("status = %q, want %q", body.Status, "degraded")
	}
	if body.LastError != "Failed to fetch rides (Status: 500)" {
		t.Errorf("last_error = %q", body.LastError)
	}
}

func TestMetricsEndpoint_ServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	c.RecordSyncSuccess(3)

	srv := NewServer(newTestLogger(), &stubState{}, reg, 120)
	t.Cleanup(srv.Close)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "luxsuv_sync_success_total") {
		t.Errorf("メトリクスが出力されない:\n%s", body)
	}
}

func TestRateLimit_Returns429WhenExceeded(t *testing.T) {
	reg := prometheus.NewRegistry()
	// バースト2の小さな制限で枯渇させる
	srv := NewServer(newTestLogger(), &stubState{}, reg, 2)
	t.Cleanup(srv.Close)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		last = w.Result().StatusCode
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("3回目のstatus = %d, want %d", last, http.StatusTooManyRequests)
	}
}

func TestRateLimit_IsPerClient(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := NewServer(newTestLogger(), &stubState{}, reg, 1)
	t.Cleanup(srv.Close)

	// クライアントAの制限を使い切る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
	}

	// 別クライアントは影響を受けない
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "192.0.2.2:12345"
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("別クライアントのstatus = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRecovery_ReturnsInternalServerErrorOnPanic(t *testing.T) {
	logger := newTestLogger()
	handler := newRecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusInternalServerError)
	}
}

func TestUnknownPath_Returns404(t *testing.T) {
	srv := newTestServer(t, &stubState{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}
