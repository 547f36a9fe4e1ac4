// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する。
// スキャン・変換・GitHub API・PR作成の各イベントを記録する。
type Collector struct {
	scanSuccess      prometheus.Counter
	scanFail         prometheus.Counter
	filesScanned     prometheus.Counter
	filesSkipped     prometheus.Counter
	scanLatency      prometheus.Histogram
	transformSuccess prometheus.Counter
	transformFail    prometheus.Counter
	transformLatency prometheus.Histogram
	githubStatus     *prometheus.CounterVec
	prCreated        prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		scanSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loglift_scan_success_total",
			Help: "リポジトリスキャン成功の合計数",
		}),
		scanFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loglift_scan_fail_total",
			Help: "リポジトリスキャン失敗の合計数",
		}),
		filesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loglift_scan_files_total",
			Help: "スキャンされたファイルの合計数",
		}),
		filesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loglift_scan_files_skipped_total",
			Help: "取得失敗によりスキップされたファイルの合計数",
		}),
		scanLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loglift_scan_latency_seconds",
			Help:    "リポジトリスキャンのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		transformSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loglift_transform_success_total",
			Help: "変換提案生成成功の合計数",
		}),
		transformFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loglift_transform_fail_total",
			Help: "変換提案生成失敗の合計数",
		}),
		transformLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loglift_transform_latency_seconds",
			Help:    "変換提案生成のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		githubStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loglift_github_http_status_total",
			Help: "GitHub APIのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		prCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loglift_pr_created_total",
			Help: "作成されたプルリクエストの合計数",
		}),
	}

	reg.MustRegister(
		c.scanSuccess,
		c.scanFail,
		c.filesScanned,
		c.filesSkipped,
		c.scanLatency,
		c.transformSuccess,
		c.transformFail,
		c.transformLatency,
		c.githubStatus,
		c.prCreated,
	)

	return c
}

// RecordScanSuccess はスキャン成功を記録する。
func (c *Collector) RecordScanSuccess() {
	c.scanSuccess.Inc()
}

// RecordScanFailure はスキャン失敗を記録する。
func (c *Collector) RecordScanFailure() {
	c.scanFail.Inc()
}

// RecordFileScanned はスキャンされたファイルを記録する。
func (c *Collector) RecordFileScanned() {
	c.filesScanned.Inc()
}

// RecordFileSkipped はスキップされたファイルを記録する。
func (c *Collector) RecordFileSkipped() {
	c.filesSkipped.Inc()
}

// RecordScanLatency はスキャンのレイテンシを記録する。
func (c *Collector) RecordScanLatency(duration time.Duration) {
	c.scanLatency.Observe(duration.Seconds())
}

// RecordTransformSuccess は変換成功を記録する。
func (c *Collector) RecordTransformSuccess() {
	c.transformSuccess.Inc()
}

// RecordTransformFailure は変換失敗を記録する。
func (c *Collector) RecordTransformFailure() {
	c.transformFail.Inc()
}

// RecordTransformLatency は変換のレイテンシを記録する。
func (c *Collector) RecordTransformLatency(duration time.Duration) {
	c.transformLatency.Observe(duration.Seconds())
}

// RecordGitHubStatus はGitHub APIのHTTPステータスコードを記録する。
func (c *Collector) RecordGitHubStatus(statusCode int) {
	c.githubStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordPRCreated はPR作成を記録する。
func (c *Collector) RecordPRCreated() {
	c.prCreated.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
