package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/platform"
	"github.com/FACorreiaa/pos-templui/internal/app/views"
)

const (
	LoginPath = "/auth/login"

	// IdentityContextKey holds the verified *models.Identity on guarded requests.
	IdentityContextKey = "identity"

	// lookupTimeout bounds a coalesced check, which outlives the request
	// that started it.
	lookupTimeout = 15 * time.Second
)

// Paths that are never remembered as a post-login destination.
var unrememberedPrefixes = []string{LoginPath, "/auth/reset-password", "/auth/forgot-password"}

// Authenticator is the remote auth collaborator the guard consults.
type Authenticator interface {
	GetUser(ctx context.Context, accessToken string) (*platform.User, error)
	Refresh(ctx context.Context, refreshToken string) (*platform.Session, error)
}

// Profiles resolves the role and status an admin assigned to an account.
type Profiles interface {
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (models.Profile, error)
}

type Reason string

const (
	ReasonLive         Reason = "live"
	ReasonAbsent       Reason = "absent"
	ReasonExpired      Reason = "expired"
	ReasonInconsistent Reason = "inconsistent"
	ReasonRevoked      Reason = "revoked"
	ReasonRemoteError  Reason = "remote_error"
)

type Result struct {
	Valid    bool
	Cleared  bool
	Reason   Reason
	Identity *models.Identity
}

// Guard decides whether a browser still holds a live remote session.
type Guard struct {
	auth     Authenticator
	profiles Profiles
	logger   *zap.Logger
	checks   metric.Int64Counter
	flights  singleflight.Group
}

type lookup struct {
	user       *platform.User
	refreshed  *platform.Session
	profile    *models.Profile
	profileErr error
}

// NewGuard builds a guard. With profiles nil the cached role is trusted as is.
func NewGuard(auth Authenticator, profiles Profiles, logger *zap.Logger, checks metric.Int64Counter) *Guard {
	return &Guard{auth: auth, profiles: profiles, logger: logger, checks: checks}
}

// Check reconciles the cached identity in st with the remote session.
// It never panics and fails closed on remote errors.
func (g *Guard) Check(ctx context.Context, st State) (res Result) {
	l := g.logger.With(zap.String("method", "Check"))
	defer func() {
		if r := recover(); r != nil {
			l.Error("Session check panicked", zap.Any("panic", r))
			res = Result{Reason: ReasonRemoteError}
		}
		g.record(ctx, res)
	}()

	blob, hasBlob := st.AuthBlob()

	live := false
	// leader is set only for the check whose lookup actually ran; overlapping
	// checks on the same token share its answer but never clear twice.
	leader := true
	var found lookup
	if hasBlob {
		leader = false
		// The flight is shared by every concurrent check on this token and
		// outlives the request that started it.
		v, err, _ := g.flights.Do(blob.AccessToken, func() (any, error) {
			leader = true
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
			defer cancel()
			return g.lookup(fctx, blob)
		})
		switch {
		case err == nil:
			found = v.(lookup)
			live = true
			// Every caller writes the rotated tokens: each response carries its
			// own cookie and the last one written wins in the browser.
			if found.refreshed != nil {
				fresh := blobFromSession(found.refreshed)
				blob = &fresh
				if err := st.UpdateAuthBlob(fresh); err != nil {
					l.Warn("Failed to persist refreshed tokens", zap.Error(err))
				}
			}
		case errors.Is(err, platform.ErrNoSession):
			l.Debug("Remote reports no live session", zap.Error(err))
		default:
			l.Error("Remote session check failed", zap.Error(err))
			return Result{Reason: ReasonRemoteError}
		}
	}

	identity, hasIdentity := st.Identity()
	switch {
	case !live && hasIdentity && !leader:
		return Result{Reason: ReasonExpired}
	case !live && hasIdentity:
		if err := st.ClearIdentity(); err != nil {
			l.Error("Failed to clear local identity", zap.Error(err))
		}
		l.Info("Session expired, local identity cleared", zap.String("userID", identity.UserID))
		return Result{Cleared: true, Reason: ReasonExpired}
	case !live:
		return Result{Reason: ReasonAbsent}
	case !hasIdentity:
		// Identity is deliberately not restored from the live session.
		l.Warn("Live session without cached identity", zap.String("remoteUserID", found.user.ID))
		return Result{Reason: ReasonInconsistent}
	case found.user.ID != identity.UserID:
		l.Warn("Cached identity does not match live session",
			zap.String("userID", identity.UserID), zap.String("remoteUserID", found.user.ID))
		return Result{Reason: ReasonInconsistent}
	case g.profiles == nil:
		return Result{Valid: true, Reason: ReasonLive, Identity: identity}
	}

	switch {
	case found.profileErr != nil && !errors.Is(found.profileErr, models.ErrNotFound):
		l.Error("Profile lookup failed", zap.String("userID", identity.UserID), zap.Error(found.profileErr))
		return Result{Reason: ReasonRemoteError}
	case found.profileErr != nil || found.profile.Status != models.StatusActive:
		if !leader {
			return Result{Reason: ReasonRevoked}
		}
		return g.revoke(st, l, identity)
	case found.profile.Role != identity.Role:
		updated := *identity
		updated.Role = found.profile.Role
		if err := st.SetIdentity(updated, *blob); err != nil {
			l.Warn("Failed to store updated role", zap.Error(err))
		}
		l.Info("Role changed since sign-in", zap.String("userID", identity.UserID),
			zap.String("from", string(identity.Role)), zap.String("to", string(updated.Role)))
		return Result{Valid: true, Reason: ReasonLive, Identity: &updated}
	default:
		return Result{Valid: true, Reason: ReasonLive, Identity: identity}
	}
}

func (g *Guard) revoke(st State, l *zap.Logger, identity *models.Identity) Result {
	if err := st.ClearIdentity(); err != nil {
		l.Error("Failed to clear local identity", zap.Error(err))
	}
	l.Info("Profile missing or inactive, local identity cleared", zap.String("userID", identity.UserID))
	return Result{Cleared: true, Reason: ReasonRevoked}
}

func (g *Guard) lookup(ctx context.Context, blob *models.AuthBlob) (lookup, error) {
	var found lookup
	user, err := g.auth.GetUser(ctx, blob.AccessToken)
	switch {
	case err == nil:
		found.user = user
	case !errors.Is(err, platform.ErrNoSession) || blob.RefreshToken == "":
		return lookup{}, err
	default:
		sess, err := g.auth.Refresh(ctx, blob.RefreshToken)
		if err != nil {
			return lookup{}, err
		}
		found.user, found.refreshed = &sess.User, sess
	}

	if g.profiles != nil {
		found.profile, found.profileErr = g.profile(ctx, found.user.ID)
	}
	return found, nil
}

// profile errors are kept apart from the session lookup so a failed read
// never drops a token pair the refresh just rotated.
func (g *Guard) profile(ctx context.Context, userID string) (*models.Profile, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("user id %q: %w", userID, models.ErrNotFound)
	}
	p, err := g.profiles.GetProfileByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (g *Guard) record(ctx context.Context, res Result) {
	if g.checks == nil {
		return
	}
	g.checks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(res.Reason))))
}

// Middleware guards a route group. Invalid sessions are sent to the login page.
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := FromContext(c)
		res := g.Check(c.Request.Context(), st)
		if res.Valid {
			c.Set(IdentityContextKey, res.Identity)
			c.Next()
			return
		}
		g.RedirectToLogin(c, st)
	}
}

// RedirectToLogin remembers the current route and forces navigation to the
// login page, replacing the guarded entry in history.
func (g *Guard) RedirectToLogin(c *gin.Context, st State) {
	if target := currentRoute(c); ShouldRemember(target) {
		if err := st.SaveRedirectPath(target); err != nil {
			g.logger.Warn("Failed to save redirect path", zap.String("path", target), zap.Error(err))
		}
	}

	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Retarget", "body")
		c.Header("HX-Reswap", "beforeend")
		c.Status(http.StatusOK)
		if err := views.LocationReplace(LoginPath).Render(c.Request.Context(), c.Writer); err != nil {
			g.logger.Error("Failed to render redirect", zap.Error(err))
		}
		c.Abort()
		return
	}
	c.Redirect(http.StatusSeeOther, LoginPath)
	c.Abort()
}

// ShouldRemember reports whether path may be restored after login.
func ShouldRemember(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return false
	}
	routePath := path
	if i := strings.IndexAny(routePath, "?#"); i >= 0 {
		routePath = routePath[:i]
	}
	for _, p := range unrememberedPrefixes {
		if routePath == p || strings.HasPrefix(routePath, p+"/") {
			return false
		}
	}
	return routePath != "/session/check"
}

// currentRoute is path+query+fragment of the page the user is on. HTMX
// requests carry the browser location (fragment included) in HX-Current-URL.
func currentRoute(c *gin.Context) string {
	if current := c.GetHeader("HX-Current-URL"); current != "" {
		if u, err := url.Parse(current); err == nil {
			route := u.EscapedPath()
			if route == "" {
				route = "/"
			}
			if u.RawQuery != "" {
				route += "?" + u.RawQuery
			}
			if u.Fragment != "" {
				route += "#" + u.EscapedFragment()
			}
			return route
		}
	}
	if c.Request.Method != http.MethodGet {
		return ""
	}
	return c.Request.URL.RequestURI()
}

func blobFromSession(s *platform.Session) models.AuthBlob {
	return models.AuthBlob{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
	}
}

// IdentityFromContext returns the identity set by Middleware.
func IdentityFromContext(c *gin.Context) *models.Identity {
	v, ok := c.Get(IdentityContextKey)
	if !ok {
		return nil
	}
	id, _ := v.(*models.Identity)
	return id
}
