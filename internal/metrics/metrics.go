// Package metrics holds the Prometheus collectors for statement execution, routing and the expiry sweep.
package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Statement outcomes
const (
	OutcomeOK     = "ok"
	OutcomeNoRows = "no_rows"
	OutcomeError  = "error"
)

var (
	// DBStatementsTotal counts executed statements by operation, table and outcome.
	DBStatementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tuskfish_db_statements_total",
			Help: "Total number of database statements executed",
		},
		[]string{"op", "table", "outcome"},
	)

	// DBStatementSeconds measures statement latency.
	DBStatementSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tuskfish_db_statement_seconds",
			Help:    "Database statement latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// RouteDispatchTotal counts front controller dispatches per controller.
	RouteDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tuskfish_route_dispatch_total",
			Help: "Total number of requests dispatched to each controller",
		},
		[]string{"controller"},
	)

	// ExpiredContentTotal counts content rows taken offline by the expiry sweep.
	ExpiredContentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tuskfish_expired_content_total",
		Help: "Total number of content items taken offline after expiry",
	})
)

// RecordStatement records one statement execution
func RecordStatement(op, table, outcome string, duration time.Duration) {
	DBStatementsTotal.WithLabelValues(op, table, outcome).Inc()
	DBStatementSeconds.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordDispatch records a front controller dispatch
func RecordDispatch(controller string) {
	RouteDispatchTotal.WithLabelValues(controller).Inc()
}

// RecordExpired adds n expired items
func RecordExpired(n int64) {
	if n > 0 {
		ExpiredContentTotal.Add(float64(n))
	}
}

// Handler serves the default registry. Processes without the HTTP server (cmd/cron) mount it
// on their own listener.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
