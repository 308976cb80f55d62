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
// サービス層、ワーカー、HTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordArticleCreated()
	RecordStatusChange(status string)
	RecordEngagement(kind string, added bool)
	RecordView()
	RecordModeration(appropriate bool)
	RecordEnrichmentLatency(duration time.Duration)
	RecordCommentCreated()
	RecordHTTPStatus(statusCode int)
	RecordSessionsPurged(count int64)
}

// エンゲージメント種別
const (
	EngagementLike        = "like"
	EngagementBookmark    = "bookmark"
	EngagementCommentLike = "comment_like"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	articlesCreated   prometheus.Counter
	statusChanges     *prometheus.CounterVec
	engagement        *prometheus.CounterVec
	views             prometheus.Counter
	moderation        *prometheus.CounterVec
	enrichmentLatency prometheus.Histogram
	commentsCreated   prometheus.Counter
	httpStatus        *prometheus.CounterVec
	sessionsPurged    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		articlesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quillboard_articles_created_total",
			Help: "投稿された記事の合計数",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillboard_article_status_changes_total",
			Help: "変更後ステータス別の記事ステータス変更数",
		}, []string{"status"}),
		engagement: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillboard_engagement_toggles_total",
			Help: "種別・方向別のいいね/ブックマーク切り替え数",
		}, []string{"kind", "action"}),
		views: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quillboard_article_views_total",
			Help: "記事閲覧の合計数",
		}),
		moderation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillboard_moderation_verdicts_total",
			Help: "判定結果別のモデレーション実行数",
		}, []string{"verdict"}),
		enrichmentLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quillboard_enrichment_latency_seconds",
			Help:    "投稿時メタデータ導出のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		commentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quillboard_comments_created_total",
			Help: "投稿されたコメントの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillboard_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quillboard_sessions_purged_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.articlesCreated,
		c.statusChanges,
		c.engagement,
		c.views,
		c.moderation,
		c.enrichmentLatency,
		c.commentsCreated,
		c.httpStatus,
		c.sessionsPurged,
	)

	return c
}

// RecordArticleCreated は記事投稿を記録する。
func (c *Collector) RecordArticleCreated() {
	c.articlesCreated.Inc()
}

// RecordStatusChange はステータス変更を記録する。
func (c *Collector) RecordStatusChange(status string) {
	c.statusChanges.WithLabelValues(status).Inc()
}

// RecordEngagement はいいね/ブックマークの切り替えを記録する。
func (c *Collector) RecordEngagement(kind string, added bool) {
	action := "removed"
	if added {
		action = "added"
	}
	c.engagement.WithLabelValues(kind, action).Inc()
}

// RecordView は記事閲覧を記録する。
func (c *Collector) RecordView() {
	c.views.Inc()
}

// RecordModeration はモデレーション判定を記録する。
func (c *Collector) RecordModeration(appropriate bool) {
	verdict := "flagged"
	if appropriate {
		verdict = "appropriate"
	}
	c.moderation.WithLabelValues(verdict).Inc()
}

// RecordEnrichmentLatency はメタデータ導出のレイテンシを記録する。
func (c *Collector) RecordEnrichmentLatency(duration time.Duration) {
	c.enrichmentLatency.Observe(duration.Seconds())
}

// RecordCommentCreated はコメント投稿を記録する。
func (c *Collector) RecordCommentCreated() {
	c.commentsCreated.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionsPurged は削除した期限切れセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
}

// NopCollector は何も記録しないMetricsCollector。
type NopCollector struct{}

func (NopCollector) RecordArticleCreated()                 {}
func (NopCollector) RecordStatusChange(string)             {}
func (NopCollector) RecordEngagement(string, bool)         {}
func (NopCollector) RecordView()                           {}
func (NopCollector) RecordModeration(bool)                 {}
func (NopCollector) RecordEnrichmentLatency(time.Duration) {}
func (NopCollector) RecordCommentCreated()                 {}
func (NopCollector) RecordHTTPStatus(int)                  {}
func (NopCollector) RecordSessionsPurged(int64)            {}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
