// Package status はウォッチモード用のローカルステータスHTTPサーバーを提供する。
// 同期状態のヘルスチェックとPrometheusメトリクスのスクレイプエンドポイントを公開する。
package status

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxsuv/luxsuv-driver/internal/metrics"
	"github.com/luxsuv/luxsuv-driver/internal/model"
)

// SyncState は同期状態の読み取りインターフェース。
// 配車シンクロナイザーが実装する。
type SyncState interface {
	Snapshot() []model.Ride
	IsLoading() bool
	LastError() string
}

// healthResponse は/healthzのレスポンスボディ。
type healthResponse struct {
	Status    string `json:"status"`
	RideCount int    `json:"ride_count"`
	Syncing   bool   `json:"syncing"`
	LastError string `json:"last_error,omitempty"`
}

// Server はステータスサーバーのルーターと付随リソースを保持する。
type Server struct {
	handler http.Handler
	limiter *rateLimiter
}

// NewServer はステータスサーバーを構成する。
//
// ミドルウェアスタックの実行順序:
//
//	recovery → logging → ratelimit
func NewServer(logger *slog.Logger, state SyncState, gatherer prometheus.Gatherer, rateLimitPerMinute int) *Server {
	limiter := newRateLimiter(rateLimitPerMinute)

	r := chi.NewRouter()
	r.Use(newRecoveryMiddleware(logger))
	r.Use(newLoggingMiddleware(logger))
	r.Use(limiter.Middleware(logger))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		resp := healthResponse{
			Status:    "ok",
			RideCount: len(state.Snapshot()),
			Syncing:   state.IsLoading(),
			LastError: state.LastError(),
		}
		if resp.LastError != "" {
			resp.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	return &Server{handler: r, limiter: limiter}
}

// Handler はルーターを返す。
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close はバックグラウンドリソースを解放する。
func (s *Server) Close() {
	s.limiter.Stop()
}
