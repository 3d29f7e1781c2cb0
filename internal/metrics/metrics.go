// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// APIクライアントと同期処理から利用する。
type MetricsCollector interface {
	RecordSyncSuccess(rideCount int)
	RecordSyncFailure(reason string)
	RecordMutation(operation string, success bool)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	syncSuccess    prometheus.Counter
	syncFail       *prometheus.CounterVec
	ridesFetched   prometheus.Gauge
	mutations      *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		syncSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "luxsuv_sync_success_total",
			Help: "配車一覧の同期成功の合計数",
		}),
		syncFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luxsuv_sync_fail_total",
			Help: "配車一覧の同期失敗の合計数（失敗理由別）",
		}, []string{"reason"}),
		ridesFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "luxsuv_rides_fetched",
			Help: "直近の同期で取得した配車件数",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luxsuv_mutations_total",
			Help: "配車の更新・削除操作の合計数（操作・結果別）",
		}, []string{"operation", "result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luxsuv_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "luxsuv_request_latency_seconds",
			Help:    "バックエンドAPIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.syncSuccess,
		c.syncFail,
		c.ridesFetched,
		c.mutations,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordSyncSuccess は同期成功と取得件数を記録する。
func (c *Collector) RecordSyncSuccess(rideCount int) {
	c.syncSuccess.Inc()
	c.ridesFetched.Set(float64(rideCount))
}

// RecordSyncFailure は同期失敗を理由付きで記録する。
func (c *Collector) RecordSyncFailure(reason string) {
	c.syncFail.WithLabelValues(reason).Inc()
}

// RecordMutation は更新・削除操作の結果を記録する。
func (c *Collector) RecordMutation(operation string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.mutations.WithLabelValues(operation, result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はAPIリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
