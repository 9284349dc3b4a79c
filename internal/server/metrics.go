package server

import (
	"net/http"
	"time"

	"github.com/MeKo-Tech/seglabel/internal/annotation"
	"github.com/MeKo-Tech/seglabel/internal/workspace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seglabel_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seglabel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Editing metrics
	editorMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seglabel_editor_messages_total",
			Help: "Surface messages handled, by type and result",
		},
		[]string{"type", "status"}, // status: ok, rejected
	)

	polygonsCommitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seglabel_polygons_committed_total",
			Help: "Polygons committed by drawing",
		},
	)

	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seglabel_saves_total",
			Help: "Annotation file writes",
		},
		[]string{"status"},
	)

	saveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seglabel_save_duration_seconds",
			Help:    "Annotation file write duration in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	// Auto-annotation metrics
	autoAnnotateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seglabel_auto_annotate_total",
			Help: "Auto-annotation runs",
		},
		[]string{"status"},
	)

	autoAnnotateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seglabel_auto_annotate_duration_seconds",
			Help:    "Auto-annotation duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 25},
		},
	)

	autoAnnotatePolygons = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seglabel_auto_annotate_polygons",
			Help:    "Polygons created per auto-annotation run",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seglabel_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seglabel_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsHooks returns workspace hooks that record saves, commits and
// auto-annotation runs. Hooks already set in base run first.
func MetricsHooks(base workspace.Hooks) workspace.Hooks {
	return workspace.Hooks{
		Saved: func(d time.Duration, err error) {
			if base.Saved != nil {
				base.Saved(d, err)
			}
			savesTotal.WithLabelValues(statusLabel(err)).Inc()
			saveDuration.Observe(d.Seconds())
		},
		Committed: func(id annotation.ID) {
			if base.Committed != nil {
				base.Committed(id)
			}
			polygonsCommitted.Inc()
		},
		AutoAnnotated: func(created int, d time.Duration, err error) {
			if base.AutoAnnotated != nil {
				base.AutoAnnotated(created, d, err)
			}
			autoAnnotateTotal.WithLabelValues(statusLabel(err)).Inc()
			autoAnnotateDuration.Observe(d.Seconds())
			if err == nil {
				autoAnnotatePolygons.Observe(float64(created))
			}
		},
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
