package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// OTELGinMiddleware returns the OpenTelemetry middleware for Gin. Static
// assets, health probes and the session poll are not traced.
func OTELGinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, otelgin.WithFilter(func(r *http.Request) bool {
		p := r.URL.Path
		return !strings.HasPrefix(p, "/assets/") && p != "/healthz" && p != "/session/check"
	}))
}
