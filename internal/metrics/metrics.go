// Package metrics defines the Prometheus instrumentation for
// FraudSight: scoring outcomes, auth activity, HTTP traffic, and
// database pool health, all under the fraudsight namespace.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fraudsight"

func counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help},
		labels,
	)
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

var (
	// Scoring pipeline.
	PredictionsTotal = counterVec("predictions_total",
		"Total predictions served by verdict label and risk tier.",
		"label", "risk_level")
	PredictionErrorsTotal = counterVec("prediction_errors_total",
		"Total failed predictions by reason.",
		"reason")
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "Time from request validation to verdict in seconds.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
	})
	ModelLoaded = gauge("model_loaded",
		"Whether the classifier and scaler artifacts are loaded (1) or not (0).")

	// Accounts and connections.
	LoginsTotal = counterVec("logins_total",
		"Total login attempts by result.",
		"result")
	ActiveWebSocketClients = gauge("active_websocket_clients",
		"Number of currently connected WebSocket clients.")

	// HTTP traffic.
	HTTPRequestsTotal = counterVec("http_requests_total",
		"Total HTTP requests by method, path pattern, and status code.",
		"method", "path", "status")
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// Database pool and runtime, sampled by StartDBStatsCollector.
	DBOpenConnections  = gauge("db_open_connections", "Number of open database connections.")
	DBIdleConnections  = gauge("db_idle_connections", "Number of idle database connections.")
	DBInUseConnections = gauge("db_in_use_connections", "Number of in-use database connections.")
	DBWaitCount        = gauge("db_wait_count_total", "Total number of connections waited for.")
	DBWaitDuration     = gauge("db_wait_duration_seconds_total", "Total time waited for connections in seconds.")
	GoroutineCount     = gauge("goroutines", "Current number of goroutines.")
)

func init() {
	prometheus.MustRegister(
		PredictionsTotal,
		PredictionErrorsTotal,
		PredictionDuration,
		ModelLoaded,
		LoginsTotal,
		ActiveWebSocketClients,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		DBWaitCount,
		DBWaitDuration,
		GoroutineCount,
	)
}

// StartDBStatsCollector samples sql.DBStats and the goroutine count
// into the gauges above until ctx is done. Run it in a goroutine.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBIdleConnections.Set(float64(stats.Idle))
			DBInUseConnections.Set(float64(stats.InUse))
			DBWaitCount.Set(float64(stats.WaitCount))
			DBWaitDuration.Set(stats.WaitDuration.Seconds())
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware records request counts and latency. Paths are labeled by
// route pattern, not raw URL, to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler adapts the promhttp handler for gin's /metrics route.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
