// Package telemetry exposes Prometheus collectors for the contact crawler service.
package telemetry

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	crawlPagesTotal            *prometheus.CounterVec
	headlessPromotionsTotal    prometheus.Counter
	llmCallsTotal              *prometheus.CounterVec
	llmCallDurationSeconds     *prometheus.HistogramVec
	reportsTotal               *prometheus.CounterVec
	pdfRenderedTotal           prometheus.Counter
	rateLimitRejectionsTotal   prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resodo_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resodo_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30, 60},
			},
			[]string{"method", "route"},
		)

		crawlPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resodo_crawl_pages_total",
				Help: "Total number of pages fetched during contact discovery, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		headlessPromotionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "resodo_headless_promotions_total",
				Help: "Total fetches promoted from the probe path to the headless browser.",
			},
		)

		llmCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resodo_llm_calls_total",
				Help: "Total LLM chat calls, labeled by purpose and outcome.",
			},
			[]string{"purpose", "outcome"},
		)

		llmCallDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resodo_llm_call_duration_seconds",
				Help:    "Histogram of LLM chat call latencies, labeled by purpose.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"purpose"},
		)

		reportsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resodo_reports_total",
				Help: "Total resolution reports produced, labeled by status.",
			},
			[]string{"status"},
		)

		pdfRenderedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "resodo_pdf_rendered_total",
				Help: "Total legal documents rendered to PDF.",
			},
		)

		rateLimitRejectionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "resodo_rate_limit_rejections_total",
				Help: "Total requests rejected by the per-client rate limiter.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveCrawlPage increments the crawl page counter.
func ObserveCrawlPage(site string, statusCode int) {
	crawlPagesTotal.WithLabelValues(SanitizeSite(site), strconv.Itoa(statusCode)).Inc()
}

// ObserveHeadlessPromotion counts a promotion to the headless browser.
func ObserveHeadlessPromotion() {
	headlessPromotionsTotal.Inc()
}

// ObserveLLMCall records one chat call.
func ObserveLLMCall(purpose string, err error, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	llmCallsTotal.WithLabelValues(purpose, outcome).Inc()
	llmCallDurationSeconds.WithLabelValues(purpose).Observe(duration.Seconds())
}

// ObserveReport increments the report counter for the given status.
func ObserveReport(status string) {
	reportsTotal.WithLabelValues(status).Inc()
}

// ObservePDFRendered counts a successful PDF render.
func ObservePDFRendered() {
	pdfRenderedTotal.Inc()
}

// ObserveRateLimitRejection counts a 429 response.
func ObserveRateLimitRejection() {
	rateLimitRejectionsTotal.Inc()
}
