package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/pos-templui/internal/app/middleware"
	"github.com/FACorreiaa/pos-templui/internal/app/observability/metrics"
	"github.com/FACorreiaa/pos-templui/internal/pkg/config"
	"github.com/FACorreiaa/pos-templui/internal/routes"
)

const serviceName = "pos-templui"

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(db routes.DB, cfg *config.Config, m *metrics.AppMetrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(middleware.OTELGinMiddleware(serviceName))
	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
		SkipPaths:  []string{"/healthz", "/session/check"},
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware.ObservabilityMiddleware(m))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigin))
	r.Use(middleware.SecurityMiddleware())
	r.Use(sessions.Sessions(cfg.Session.CookieName, newCookieStore(cfg.Session)))

	SetupAssets(r)
	routes.Setup(r, db, cfg, m, logger)

	return r
}

func newCookieStore(cfg config.SessionConfig) cookie.Store {
	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// zapContextFunc adds request and trace ids to every access log line.
// Request bodies are never logged; they carry passwords.
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get("X-Request-Id"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}

		if c.GetHeader("HX-Request") == "true" {
			fields = append(fields, zap.Bool("htmx", true))
		}

		return fields
	}
}
