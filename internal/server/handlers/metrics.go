package handlers

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/aqhi-canada/internal/server/middlewares"
	"go.uber.org/zap"
)

// AppMetrics holds application-level metrics (feed fetches)
type AppMetrics struct {
	mutex        sync.RWMutex
	feedFetches  map[string]int64
	feedFailures map[string]int64
}

// HTTPMetricsProvider interface for getting HTTP metrics from middleware
type HTTPMetricsProvider interface {
	HTTPMetricsSnapshot() middlewares.HTTPMetricsSnapshot
}

type MetricsHandler struct {
	logger      *zap.Logger
	appMetrics  *AppMetrics
	httpMetrics HTTPMetricsProvider
}

func NewMetricsHandler(logger *zap.Logger, httpMetrics HTTPMetricsProvider) *MetricsHandler {
	return &MetricsHandler{
		logger:      logger,
		httpMetrics: httpMetrics,
		appMetrics: &AppMetrics{
			feedFetches:  make(map[string]int64),
			feedFailures: make(map[string]int64),
		},
	}
}

// RecordFeedFetch records one AQHI feed operation
func (h *MetricsHandler) RecordFeedFetch(ctx context.Context, operation string, success bool) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.feedFetches[operation]++
	if !success {
		h.appMetrics.feedFailures[operation]++
	}
	h.appMetrics.mutex.Unlock()
}

// ServeMetrics exposes metrics in Prometheus text format
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.httpMetrics != nil {
		snap := h.httpMetrics.HTTPMetricsSnapshot()

		b.WriteString("# HELP http_requests_total Total number of HTTP requests\n")
		b.WriteString("# TYPE http_requests_total counter\n")
		writeCounters(&b, "http_requests_total", "route_status", snap.RequestsTotal)

		b.WriteString("\n# HELP http_request_duration_seconds_avg Average duration of HTTP requests\n")
		b.WriteString("# TYPE http_request_duration_seconds_avg gauge\n")
		b.WriteString("http_request_duration_seconds_avg " + strconv.FormatFloat(snap.AvgDurationSeconds, 'f', 6, 64) + "\n")

		b.WriteString("\n# HELP http_active_requests Number of active HTTP requests\n")
		b.WriteString("# TYPE http_active_requests gauge\n")
		b.WriteString("http_active_requests " + strconv.FormatInt(snap.ActiveRequests, 10) + "\n\n")
	}

	h.appMetrics.mutex.RLock()
	defer h.appMetrics.mutex.RUnlock()

	b.WriteString("# HELP aqhi_feed_fetches_total Total AQHI feed operations\n")
	b.WriteString("# TYPE aqhi_feed_fetches_total counter\n")
	writeCounters(&b, "aqhi_feed_fetches_total", "operation", h.appMetrics.feedFetches)

	b.WriteString("\n# HELP aqhi_feed_errors_total Total failed AQHI feed operations\n")
	b.WriteString("# TYPE aqhi_feed_errors_total counter\n")
	writeCounters(&b, "aqhi_feed_errors_total", "operation", h.appMetrics.feedFailures)

	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.String(200, b.String())
}

func writeCounters(b *strings.Builder, name, label string, values map[string]int64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(name + "{" + label + "=\"" + k + "\"} " + strconv.FormatInt(values[k], 10) + "\n")
	}
}
