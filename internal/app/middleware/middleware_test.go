package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/domain/session"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/observability/metrics"
)

func withIdentity(id *models.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != nil {
			c.Set(session.IdentityContextKey, id)
		}
		c.Next()
	}
}

func adminRouter(id *models.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withIdentity(id))
	r.GET("/admin/users", RequireRole(zap.NewNop(), models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "directory")
	})
	return r
}

func TestRequireRole(t *testing.T) {
	t.Run("admin passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		adminRouter(&models.Identity{UserID: "a", Role: models.RoleAdmin}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "directory", w.Body.String())
	})

	t.Run("cashier gets a forbidden page", func(t *testing.T) {
		w := httptest.NewRecorder()
		adminRouter(&models.Identity{UserID: "c", Role: models.RoleCashier}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		doc, err := goquery.NewDocumentFromReader(w.Body)
		require.NoError(t, err)
		assert.Equal(t, "Forbidden", doc.Find("title").Text())
		assert.Contains(t, doc.Find("body").Text(), forbiddenMessage)
	})

	t.Run("htmx request gets only the banner", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.Header.Set("HX-Request", "true")
		w := httptest.NewRecorder()
		adminRouter(&models.Identity{UserID: "v", Role: models.RoleVendor}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NotContains(t, w.Body.String(), "<html")
		assert.Contains(t, w.Body.String(), forbiddenMessage)
	})

	t.Run("no identity is forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		adminRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSecurityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityMiddleware(), CORSMiddleware(""))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "https://unpkg.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware("https://till.example.com"))
	r.POST("/pos/cart", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/pos/cart", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://till.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestObservabilityMiddleware(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := metrics.New(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ObservabilityMiddleware(m))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 3 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var requests int64
	for _, sm := range rm.ScopeMetrics {
		for _, mt := range sm.Metrics {
			if sum, ok := mt.Data.(metricdata.Sum[int64]); ok && mt.Name == "http_requests_total" {
				for _, dp := range sum.DataPoints {
					requests += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(3), requests)
}
