// Package metrics provides Prometheus instrumentation for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Scraper metrics
	ScraperRequestsTotal   *prometheus.CounterVec
	ScraperDurationSeconds *prometheus.HistogramVec

	// NER collaborator metrics
	NERRequestsTotal *prometheus.CounterVec

	// Intent classification metrics
	IntentsTotal *prometheus.CounterVec

	// Activity store metrics
	ActivityOpsTotal *prometheus.CounterVec

	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookRequestsTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterWaitDuration *prometheus.HistogramVec
	RateLimiterDropped      *prometheus.CounterVec
	RateLimiterActiveKeys   prometheus.Gauge

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec

	// Snapshot metrics
	SnapshotTasksTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Scraper metrics
		ScraperRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ss_scraper_requests_total",
				Help: "Total number of scraper requests by outlet and status",
			},
			[]string{"module", "status"}, // status: success, error, timeout, not_found
		),

		ScraperDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ss_scraper_duration_seconds",
				Help:    "Scraper request duration in seconds by outlet",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30}, // Matches 30s timeout
			},
			[]string{"module"}, // module: ncku, chinatimes, udn
		),

		// NER collaborator metrics
		NERRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ss_ner_requests_total",
				Help: "Total number of NER collaborator requests by status",
			},
			[]string{"status"}, // status: success, error
		),

		// Intent classification metrics
		IntentsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ss_intents_total",
				Help: "Total number of classified intents by service",
			},
			[]string{"service"}, // service: unknown, search_news, search_activity, create_activity
		),

		// Activity store metrics
		ActivityOpsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ss_activity_ops_total",
				Help: "Total number of activity store operations by op and status",
			},
			[]string{"op", "status"}, // op: search, create; status: success, not_found, error
		),

		// Webhook metrics
		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ss_webhook_duration_seconds",
				Help:    "Webhook processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15, 30},
			},
			[]string{"event_type"}, // event_type: message, postback, follow, join
		),

		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ss_webhook_requests_total",
				Help: "Total number of webhook requests by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error, reply_error
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ss_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: timeout, rate_limit, invalid_signature, etc.
		),

		// Rate limiter metrics
		RateLimiterWaitDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ss_rate_limiter_wait_duration_seconds",
				Help:    "Time spent waiting for rate limiter token by limiter type",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5}, // 1ms to 5s
			},
			[]string{"limiter_type"}, // limiter_type: scraper, user, global
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ss_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user, global
		),

		RateLimiterActiveKeys: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "ss_rate_limiter_active_keys",
				Help: "Number of user keys with a live rate limiter bucket",
			},
		),

		// Singleflight metrics
		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ss_singleflight_dedup_total",
				Help: "Total number of deduplicated requests (requests that waited instead of executing)",
			},
			[]string{"module"},
		),

		// Snapshot metrics
		SnapshotTasksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ss_snapshot_tasks_total",
				Help: "Total number of R2 snapshot tasks by op and status",
			},
			[]string{"op", "status"}, // op: upload, download; status: success, error, skipped
		),
	}

	return m
}

// RecordScraperRequest records a scraper request with status
func (m *Metrics) RecordScraperRequest(module, status string, duration float64) {
	m.ScraperRequestsTotal.WithLabelValues(module, status).Inc()
	m.ScraperDurationSeconds.WithLabelValues(module).Observe(duration)
}

// RecordNERRequest records a NER collaborator request
func (m *Metrics) RecordNERRequest(status string) {
	m.NERRequestsTotal.WithLabelValues(status).Inc()
}

// RecordIntent records a classified intent
func (m *Metrics) RecordIntent(service string) {
	m.IntentsTotal.WithLabelValues(service).Inc()
}

// RecordActivityOp records an activity store operation
func (m *Metrics) RecordActivityOp(op, status string) {
	m.ActivityOpsTotal.WithLabelValues(op, status).Inc()
}

// RecordWebhook records a webhook request
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterWait records time spent waiting for rate limiter
func (m *Metrics) RecordRateLimiterWait(limiterType string, duration float64) {
	m.RateLimiterWaitDuration.WithLabelValues(limiterType).Observe(duration)
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterActiveKeys records the number of live per-user buckets
func (m *Metrics) SetRateLimiterActiveKeys(count int) {
	m.RateLimiterActiveKeys.Set(float64(count))
}

// RecordSingleflightDedup records a deduplicated request
func (m *Metrics) RecordSingleflightDedup(module string) {
	m.SingleflightDedupTotal.WithLabelValues(module).Inc()
}

// RecordSnapshotTask records an R2 snapshot task outcome
func (m *Metrics) RecordSnapshotTask(op, status string) {
	m.SnapshotTasksTotal.WithLabelValues(op, status).Inc()
}
