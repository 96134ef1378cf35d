package resources

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type HTTPMetrics struct {
	reqs    metric.Int64Counter
	latency metric.Float64Histogram
}

func NewHTTPMetrics(name string) *HTTPMetrics {
	meter := otel.Meter(name)

	reqs, _ := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("HTTP requests"),
	)
	latency, _ := meter.Float64Histogram(
		"http.server.duration.ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)

	return &HTTPMetrics{reqs: reqs, latency: latency}
}

func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(gctx *gin.Context) {
		start := time.Now()

		gctx.Next()

		route := gctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := gctx.Writer.Status()

		attrs := metric.WithAttributes(
			attribute.String("http.route", route),
			attribute.String("http.method", gctx.Request.Method),
			attribute.Int("http.status_code", status),
			attribute.String("http.status_class", strconv.Itoa(status/100)+"xx"),
		)

		m.reqs.Add(gctx.Request.Context(), 1, attrs)
		m.latency.Record(gctx.Request.Context(), float64(time.Since(start).Milliseconds()), attrs)
	}
}

// DBMetrics counts and times repository operations per table.
type DBMetrics struct {
	table    string
	qTotal   metric.Int64Counter
	qErrors  metric.Int64Counter
	qLatency metric.Float64Histogram
}

func NewDBMetrics(name string, table string) *DBMetrics {
	meter := otel.Meter(name)

	qTotal, _ := meter.Int64Counter("db.query.total")
	qErrors, _ := meter.Int64Counter("db.query.errors.total")
	qLatency, _ := meter.Float64Histogram("db.query.duration.ms")

	return &DBMetrics{table: table, qTotal: qTotal, qErrors: qErrors, qLatency: qLatency}
}

func (m *DBMetrics) Observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := metric.WithAttributes(
		attribute.String("db.system", "postgres"),
		attribute.String("db.collection.name", m.table),
		attribute.String("db.operation", op), // ej: "insert", "find_page"
	)

	m.qTotal.Add(ctx, 1, attrs)
	m.qLatency.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)

	if err != nil {
		m.qErrors.Add(ctx, 1, attrs)
	}
}
