package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersIncrementTheirSeries(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordScraperRequest("udn", "success", 1.5)
	m.RecordScraperRequest("udn", "success", 0.3)
	m.RecordNERRequest("error")
	m.RecordIntent("search_news")
	m.RecordActivityOp("create", "success")
	m.RecordWebhook("message", "success", 0.5)
	m.RecordHTTPError("invalid_signature", "webhook")
	m.RecordRateLimiterDrop("global")
	m.RecordSnapshotTask("upload", "success")
	m.RecordSingleflightDedup("news")
	m.SetRateLimiterActiveKeys(7)

	checks := map[string]float64{
		"scraper requests":  testutil.ToFloat64(m.ScraperRequestsTotal.WithLabelValues("udn", "success")),
		"ner requests":      testutil.ToFloat64(m.NERRequestsTotal.WithLabelValues("error")),
		"intents":           testutil.ToFloat64(m.IntentsTotal.WithLabelValues("search_news")),
		"activity ops":      testutil.ToFloat64(m.ActivityOpsTotal.WithLabelValues("create", "success")),
		"webhook requests":  testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("message", "success")),
		"http errors":       testutil.ToFloat64(m.HTTPErrorsTotal.WithLabelValues("invalid_signature", "webhook")),
		"rate limit drops":  testutil.ToFloat64(m.RateLimiterDropped.WithLabelValues("global")),
		"snapshot tasks":    testutil.ToFloat64(m.SnapshotTasksTotal.WithLabelValues("upload", "success")),
		"singleflight hits": testutil.ToFloat64(m.SingleflightDedupTotal.WithLabelValues("news")),
	}
	for name, got := range checks {
		want := 1.0
		if name == "scraper requests" {
			want = 2.0
		}
		if got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	if got := testutil.ToFloat64(m.RateLimiterActiveKeys); got != 7 {
		t.Errorf("active keys gauge = %v, want 7", got)
	}
}

func TestRegisteredMetricNames(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Histograms and counters with no observations yet do not show up in
	// Gather, so touch one series per family first.
	m.RecordScraperRequest("ncku", "success", 1.0)
	m.RecordIntent("search_news")
	m.RecordWebhook("message", "success", 0.5)
	m.RecordRateLimiterWait("global", 0.02)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	want := map[string]bool{
		"ss_scraper_requests_total":             false,
		"ss_scraper_duration_seconds":           false,
		"ss_intents_total":                      false,
		"ss_webhook_requests_total":             false,
		"ss_webhook_duration_seconds":           false,
		"ss_rate_limiter_wait_duration_seconds": false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %q not registered", name)
		}
	}
}
