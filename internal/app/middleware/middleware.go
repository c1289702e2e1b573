package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/domain/session"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/observability/metrics"
	"github.com/FACorreiaa/pos-templui/internal/app/views"
)

const forbiddenMessage = "You do not have access to this page."

// CORSMiddleware handles CORS headers. An empty origin disables
// cross-origin access.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, accept, origin, Cache-Control, X-Requested-With, HX-Request, HX-Target, HX-Current-URL, HX-Trigger")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
			c.Writer.Header().Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// htmx comes from unpkg; card confirmation talks to Stripe.
		csp := "default-src 'self'; " +
			"script-src 'self' 'unsafe-inline' https://unpkg.com https://js.stripe.com; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"connect-src 'self' https://api.stripe.com; " +
			"frame-src https://js.stripe.com"
		c.Writer.Header().Set("Content-Security-Policy", csp)

		c.Next()
	}
}

// RequireRole lets the request through only when the guard-verified identity
// holds one of roles. It must run after session.Guard.Middleware.
func RequireRole(logger *zap.Logger, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := session.IdentityFromContext(c)
		if id != nil && slices.Contains(roles, id.Role) {
			c.Next()
			return
		}

		fields := []zap.Field{zap.String("path", c.Request.URL.Path)}
		if id != nil {
			fields = append(fields, zap.String("userID", id.UserID), zap.String("role", string(id.Role)))
		}
		logger.Warn("Role check failed", fields...)

		body := views.Banner(views.BannerError, forbiddenMessage)
		if c.GetHeader("HX-Request") != "true" || c.GetHeader("HX-Boosted") == "true" {
			body = views.Layout(models.LayoutTempl{
				Title:   "Forbidden",
				User:    id,
				Nav:     models.MainNav,
				Content: body,
			})
		}
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusForbidden)
		if err := body.Render(c.Request.Context(), c.Writer); err != nil {
			logger.Error("Failed to render forbidden page", zap.Error(err))
		}
		c.Abort()
	}
}

// ObservabilityMiddleware records request count and latency per route.
func ObservabilityMiddleware(m *metrics.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx := c.Request.Context()
		m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status", strconv.Itoa(c.Writer.Status())),
		))
		m.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
		))
	}
}
