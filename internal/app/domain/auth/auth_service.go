package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/platform"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// Remote is the part of the platform auth API used for interactive sign-in.
type Remote interface {
	SignInWithPassword(ctx context.Context, email, password string) (*platform.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Profiles resolves the role and status an admin assigned to an account.
type Profiles interface {
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (models.Profile, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (models.Identity, models.AuthBlob, error)
	Logout(ctx context.Context, accessToken string) error
}

type AuthServiceImpl struct {
	logger   *zap.Logger
	remote   Remote
	profiles Profiles
}

// NewAuthService builds the sign-in service. With profiles nil the role is
// read from the account metadata written at provisioning time.
func NewAuthService(remote Remote, profiles Profiles, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{logger: logger, remote: remote, profiles: profiles}
}

// Login exchanges credentials for a session and derives the local identity
// from the account's profile row.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (models.Identity, models.AuthBlob, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login", trace.WithAttributes(
		attribute.String("email", email),
	))
	defer span.End()
	l := s.logger.With(zap.String("method", "Login"))

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		span.SetStatus(codes.Error, "missing credentials")
		return models.Identity{}, models.AuthBlob{}, fmt.Errorf("%w: email and password are required", models.ErrValidation)
	}

	sess, err := s.remote.SignInWithPassword(ctx, email, password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sign-in failed")
		var apiErr *platform.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			return models.Identity{}, models.AuthBlob{}, fmt.Errorf("%w: %w", models.ErrUnauthenticated, err)
		}
		return models.Identity{}, models.AuthBlob{}, err
	}

	identity, err := s.identityFor(ctx, &sess.User)
	if err != nil {
		l.Warn("Account may not sign in", zap.String("userID", sess.User.ID), zap.Error(err))
		if signOutErr := s.remote.SignOut(ctx, sess.AccessToken); signOutErr != nil {
			l.Warn("Failed to sign out rejected account", zap.Error(signOutErr))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "rejected")
		return models.Identity{}, models.AuthBlob{}, err
	}
	role := identity.Role
	blob := models.AuthBlob{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	}

	span.SetAttributes(attribute.String("user.id", identity.UserID), attribute.String("user.role", string(role)))
	span.SetStatus(codes.Ok, "signed in")
	l.Info("User signed in", zap.String("userID", identity.UserID), zap.String("role", string(role)))
	return identity, blob, nil
}

func (s *AuthServiceImpl) identityFor(ctx context.Context, user *platform.User) (models.Identity, error) {
	identity := models.Identity{UserID: user.ID, Email: user.Email, FullName: user.FullName()}
	if s.profiles == nil {
		role, err := models.ParseRole(user.Role())
		if err != nil {
			return models.Identity{}, fmt.Errorf("%w: account has no role", models.ErrForbidden)
		}
		identity.Role = role
		return identity, nil
	}

	id, err := uuid.Parse(user.ID)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: account has no profile", models.ErrForbidden)
	}
	p, err := s.profiles.GetProfileByUserID(ctx, id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.Identity{}, fmt.Errorf("%w: account has no profile", models.ErrForbidden)
	case err != nil:
		return models.Identity{}, fmt.Errorf("load profile: %w", err)
	case p.Status != models.StatusActive:
		return models.Identity{}, fmt.Errorf("%w: account is deactivated", models.ErrForbidden)
	}
	identity.Role = p.Role
	if p.FullName != "" {
		identity.FullName = p.FullName
	}
	return identity, nil
}

// Logout revokes the remote session. An already dead session is not an error.
func (s *AuthServiceImpl) Logout(ctx context.Context, accessToken string) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Logout")
	defer span.End()

	if accessToken == "" {
		return nil
	}
	if err := s.remote.SignOut(ctx, accessToken); err != nil && !errors.Is(err, platform.ErrNoSession) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sign-out failed")
		s.logger.Warn("Remote sign-out failed", zap.String("method", "Logout"), zap.Error(err))
		return err
	}
	span.SetStatus(codes.Ok, "signed out")
	return nil
}
