package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/domain/session"
	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/views"
)

type BaseHandler struct {
	Logger       *zap.Logger
	PollInterval string
}

// PollTrigger renders d in a unit htmx parses. Duration.String gives "1m0s",
// which htmx reads as one second. Zero or negative disables polling.
func PollTrigger(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}

func NewBaseHandler(logger *zap.Logger, pollInterval string) *BaseHandler {
	return &BaseHandler{Logger: logger, PollInterval: pollInterval}
}

func (h *BaseHandler) NewLayoutData(c *gin.Context, title, activeNav string, content templ.Component) models.LayoutTempl {
	return models.LayoutTempl{
		Title:        title,
		Content:      content,
		Nav:          models.MainNav,
		ActiveNav:    activeNav,
		User:         session.IdentityFromContext(c),
		PollInterval: h.PollInterval,
	}
}

func (h *BaseHandler) Render(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		h.Logger.Error("Failed to render component", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
}

// RenderPage renders content inside the full layout. hx-boost swaps the body.
func (h *BaseHandler) RenderPage(c *gin.Context, title, activeNav string, content templ.Component) {
	h.Render(c, http.StatusOK, views.Layout(h.NewLayoutData(c, title, activeNav, content)))
}

// IsHTMX reports whether the request was issued by htmx rather than a
// full navigation. Boosted navigations still get the full page.
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true" && c.GetHeader("HX-Boosted") != "true"
}

func (h *BaseHandler) ShowDashboard(c *gin.Context) {
	id := session.IdentityFromContext(c)
	var nav []models.NavItem
	if id != nil {
		nav = models.MainNav.For(id.Role)
	}
	h.RenderPage(c, "Dashboard", "Dashboard", views.DashboardPage(id, nav))
}

func (h *BaseHandler) ShowNotFound(c *gin.Context) {
	h.Render(c, http.StatusNotFound, views.Layout(h.NewLayoutData(c, "Not found", "", views.NotFoundPage())))
}
