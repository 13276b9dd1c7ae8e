package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAccessCache(CacheHit)
	m.ObserveAccessCache(CacheMiss)
	m.ObserveAccessCache(CacheMiss)
	m.ObservePermissionSave("saved")
	m.AddImportRows(3, 1)
	m.AddApprovals(2, 1)
	m.AddAuditEntries(4)
	m.IncRateLimitRejects()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessCache.WithLabelValues(CacheHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccessCache.WithLabelValues(CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PermissionSaves.WithLabelValues("saved")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ImportRows.WithLabelValues("imported")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportRows.WithLabelValues("rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoleApprovals.WithLabelValues("approved")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.AuditEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitRejects))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAccessCache(CacheHit)
		m.ObservePermissionSave("failed")
		m.AddImportRows(1, 1)
		m.AddApprovals(1, 1)
		m.AddAuditEntries(1)
		m.IncRateLimitRejects()
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(nil)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/ping", "204")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portal_http_requests_total")
}
