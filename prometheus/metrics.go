package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counter
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Scope resolution counter by outcome
	ScopeResolutionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_scope_resolutions_total",
			Help: "Total number of scope resolutions by outcome",
		},
		[]string{"outcome"}, // "tenant", "unrestricted", "public", "error"
	)

	// Promotion evaluation counter
	PromotionEvaluationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_promotion_evaluations_total",
			Help: "Total number of promotion evaluations by result",
		},
		[]string{"result"}, // "applied", "no_match"
	)

	// Promotion usage recording counter
	PromotionUsageCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_promotion_usage_total",
			Help: "Total number of promotion usage recordings by result",
		},
		[]string{"result"}, // "recorded", "limit_exceeded", "per_customer_exceeded", "error"
	)

	// Tenant operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(ScopeResolutionCounter)
	prometheus.MustRegister(PromotionEvaluationCounter)
	prometheus.MustRegister(PromotionUsageCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordScopeResolution records a scope resolution outcome
func RecordScopeResolution(outcome string) {
	ScopeResolutionCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordPromotionEvaluation records a promotion evaluation result
func RecordPromotionEvaluation(result string) {
	PromotionEvaluationCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordPromotionUsage records a usage recording result
func RecordPromotionUsage(result string) {
	PromotionUsageCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordTenantOperation records a tenant operation
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
