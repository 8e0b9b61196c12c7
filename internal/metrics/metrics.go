// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook通知の処理結果。
const (
	OutcomeAccepted         = "accepted"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeMalformedLabel   = "malformed_label"
	OutcomeMalformedAmount  = "malformed_amount"
	OutcomeUnknownBook      = "unknown_book"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordPurchase(source string)
	RecordDuplicatePurchase(source string)
	RecordWebhookNotification(outcome string)
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	purchases       *prometheus.CounterVec
	duplicates      *prometheus.CounterVec
	webhooks        *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_purchases_recorded_total",
			Help: "購入台帳に記録された購入の合計数",
		}, []string{"source"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_purchases_duplicate_total",
			Help: "既存の購入と重複したため記録されなかった購入の合計数",
		}, []string{"source"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_webhook_notifications_total",
			Help: "処理結果別のYooMoney通知数",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.purchases,
		c.duplicates,
		c.webhooks,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordPurchase は購入の記録を計上する。sourceは "webhook" または "direct"。
func (c *Collector) RecordPurchase(source string) {
	c.purchases.WithLabelValues(source).Inc()
}

// RecordDuplicatePurchase は重複により記録されなかった購入を計上する。
func (c *Collector) RecordDuplicatePurchase(source string) {
	c.duplicates.WithLabelValues(source).Inc()
}

// RecordWebhookNotification はWebhook通知の処理結果を計上する。
func (c *Collector) RecordWebhookNotification(outcome string) {
	c.webhooks.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
