package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Access cache lookup outcomes.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds Prometheus collectors for the portal.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
	AccessCache      *prometheus.CounterVec
	PermissionSaves  *prometheus.CounterVec
	ImportRows       *prometheus.CounterVec
	RoleApprovals    *prometheus.CounterVec
	AuditEntries     prometheus.Counter
	RateLimitRejects prometheus.Counter
	gatherer         prometheus.Gatherer
}

// New registers metrics with the provided registry. If registry is nil, a new
// isolated registry is created.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "HTTP requests by method, route, and status.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AccessCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_access_cache_lookups_total",
			Help: "Access context cache lookups by result.",
		}, []string{"result"}),
		PermissionSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_permission_saves_total",
			Help: "Permission editor saves by outcome.",
		}, []string{"outcome"}),
		ImportRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_role_import_rows_total",
			Help: "Role import rows by outcome.",
		}, []string{"outcome"}),
		RoleApprovals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_role_approvals_total",
			Help: "Principal approvals by outcome.",
		}, []string{"outcome"}),
		AuditEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_audit_entries_persisted_total",
			Help: "Audit entries written to the database.",
		}),
		RateLimitRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_rate_limit_rejections_total",
			Help: "Requests rejected by the auth rate limiter.",
		}),
		gatherer: registry,
	}

	registry.MustRegister(
		m.HTTPRequests,
		m.HTTPLatency,
		m.AccessCache,
		m.PermissionSaves,
		m.ImportRows,
		m.RoleApprovals,
		m.AuditEntries,
		m.RateLimitRejects,
	)
	return m
}

// Handler returns an HTTP handler that exposes metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware counts requests and observes latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveAccessCache records an access cache lookup.
func (m *Metrics) ObserveAccessCache(result string) {
	if m == nil {
		return
	}
	m.AccessCache.WithLabelValues(result).Inc()
}

// ObservePermissionSave records a permission save outcome: saved, empty, or failed.
func (m *Metrics) ObservePermissionSave(outcome string) {
	if m == nil {
		return
	}
	m.PermissionSaves.WithLabelValues(outcome).Inc()
}

// AddImportRows records imported and rejected row counts.
func (m *Metrics) AddImportRows(imported, rejected int) {
	if m == nil {
		return
	}
	m.ImportRows.WithLabelValues("imported").Add(float64(imported))
	m.ImportRows.WithLabelValues("rejected").Add(float64(rejected))
}

// AddApprovals records approval outcomes.
func (m *Metrics) AddApprovals(approved, failed int) {
	if m == nil {
		return
	}
	m.RoleApprovals.WithLabelValues("approved").Add(float64(approved))
	m.RoleApprovals.WithLabelValues("failed").Add(float64(failed))
}

// AddAuditEntries records persisted audit entries.
func (m *Metrics) AddAuditEntries(n int) {
	if m == nil {
		return
	}
	m.AuditEntries.Add(float64(n))
}

// IncRateLimitRejects records one rate-limited request.
func (m *Metrics) IncRateLimitRejects() {
	if m == nil {
		return
	}
	m.RateLimitRejects.Inc()
}
