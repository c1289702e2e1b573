package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/domain/session"
	"github.com/FACorreiaa/pos-templui/internal/app/handlers"
	"github.com/FACorreiaa/pos-templui/internal/app/views"
)

const defaultLanding = "/dashboard"

type AuthHandlers struct {
	*handlers.BaseHandler
	authService AuthService
}

func NewAuthHandlers(base *handlers.BaseHandler, authService AuthService) *AuthHandlers {
	return &AuthHandlers{BaseHandler: base, authService: authService}
}

// LoginPage always renders the form. Only the guard decides whether a cached
// identity is still signed in.
func (h *AuthHandlers) LoginPage(c *gin.Context) {
	h.RenderPage(c, "Sign in", "", views.LoginPage(views.LoginView{}))
}

// LoginHandler signs the user in and sends them back to the page the guard
// remembered, or to the dashboard.
func (h *AuthHandlers) LoginHandler(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "LoginHandler"), zap.String("remote_addr", c.ClientIP()))
	email := strings.TrimSpace(c.PostForm("email"))

	identity, blob, err := h.authService.Login(c.Request.Context(), email, c.PostForm("password"))
	if err != nil {
		l.Warn("Login failed", zap.String("email", email), zap.Error(err))
		view := views.LoginView{Email: email, Error: loginMessage(err)}
		h.Render(c, handlers.StatusFor(err), views.Layout(h.NewLayoutData(c, "Sign in", "", views.LoginPage(view))))
		return
	}

	st := session.FromContext(c)
	if err := st.SetIdentity(identity, blob); err != nil {
		l.Error("Failed to store identity", zap.Error(err))
		view := views.LoginView{Email: email, Error: handlers.UserMessage(err)}
		h.Render(c, http.StatusInternalServerError, views.Layout(h.NewLayoutData(c, "Sign in", "", views.LoginPage(view))))
		return
	}

	target, err := st.ConsumeRedirectPath()
	if err != nil {
		l.Warn("Failed to consume redirect path", zap.Error(err))
	}
	if !safeRedirect(target) {
		target = defaultLanding
	}
	l.Info("Successful login", zap.String("userID", identity.UserID), zap.String("redirect", target))
	c.Redirect(http.StatusSeeOther, target)
}

func (h *AuthHandlers) LogoutHandler(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "LogoutHandler"))
	st := session.FromContext(c)

	if blob, ok := st.AuthBlob(); ok {
		if err := h.authService.Logout(c.Request.Context(), blob.AccessToken); err != nil {
			l.Warn("Remote logout failed, clearing local identity anyway", zap.Error(err))
		}
	}
	if err := st.ClearIdentity(); err != nil {
		l.Error("Failed to clear identity", zap.Error(err))
	}

	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Redirect", session.LoginPath)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, session.LoginPath)
}

func loginMessage(err error) string {
	if handlers.StatusFor(err) == http.StatusUnauthorized {
		return "Invalid email or password."
	}
	return handlers.UserMessage(err)
}

// safeRedirect accepts only local absolute paths.
func safeRedirect(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
