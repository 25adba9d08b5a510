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
	// Login attempts by outcome: "success", "invalid_credentials", "throttled"
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_login_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// Tenant registrations by outcome
	RegisterCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_register_total",
			Help: "Total number of tenant registrations",
		},
		[]string{"outcome"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Authentication failures, e.g. "missing_token", "invalid_token"
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	QuotaRejectionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_quota_rejections_total",
			Help: "Total number of creations refused by plan quota",
		},
		[]string{"resource"},
	)

	AuditWriteCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_audit_writes_total",
			Help: "Total number of audit entries written",
		},
		[]string{"action"},
	)

	// Resource operations: "create_project", "delete_task", etc.
	ResourceOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workspace_resource_operations_total",
			Help: "Total number of project and task operations",
		},
		[]string{"operation"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workspace_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workspace_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// InfoGauge exposes the running version.
var InfoGauge = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "workspace_info",
		Help: "Information about the workspace service",
	},
	[]string{"version"},
)

// Version is reported through InfoGauge.
const Version = "1.0.0"

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(QuotaRejectionCounter)
	prometheus.MustRegister(AuditWriteCounter)
	prometheus.MustRegister(ResourceOperationCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)
	InfoGauge.With(prometheus.Labels{"version": Version}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures a database operation. Call the returned func
// when the operation finishes.
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(endTime.Sub(startTime).Seconds())
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

// RecordLogin records a login attempt outcome
func RecordLogin(outcome string) {
	LoginCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordRegister records a tenant registration outcome
func RecordRegister(outcome string) {
	RegisterCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordQuotaRejection records a creation refused by plan quota
func RecordQuotaRejection(resource string) {
	QuotaRejectionCounter.With(prometheus.Labels{"resource": resource}).Inc()
}

// RecordAuditWrite records an audit entry written for action
func RecordAuditWrite(action string) {
	AuditWriteCounter.With(prometheus.Labels{"action": action}).Inc()
}

// RecordResourceOperation records a project or task operation
func RecordResourceOperation(operation string) {
	ResourceOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
