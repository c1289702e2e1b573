package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	LoadDirectory(ctx context.Context, viewer *models.Identity) ([]models.Profile, error)
	GetProfile(ctx context.Context, viewer *models.Identity, id uuid.UUID) (models.Profile, error)
	UpdateProfile(ctx context.Context, viewer *models.Identity, id uuid.UUID, params models.UpdateProfileParams) (models.Profile, error)
	DeleteProfile(ctx context.Context, viewer *models.Identity, accessToken string, id uuid.UUID) error
}

// AccountDeleter removes the remote auth account behind a profile.
type AccountDeleter interface {
	DeleteUser(ctx context.Context, accessToken, userID string) error
}

type ServiceImpl struct {
	logger   *zap.Logger
	repo     Repository
	accounts AccountDeleter
}

func NewService(repo Repository, accounts AccountDeleter, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, accounts: accounts}
}

func requireAdmin(viewer *models.Identity) error {
	if viewer == nil {
		return models.ErrUnauthenticated
	}
	if !viewer.IsAdmin() {
		return models.ErrForbidden
	}
	return nil
}

// LoadDirectory fetches every profile. Only admins may list the directory.
func (s *ServiceImpl) LoadDirectory(ctx context.Context, viewer *models.Identity) ([]models.Profile, error) {
	l := s.logger.With(zap.String("method", "LoadDirectory"))
	if err := requireAdmin(viewer); err != nil {
		l.Warn("Directory access denied")
		return nil, fmt.Errorf("load directory: %w", err)
	}

	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		l.Error("Failed to load profiles", zap.Error(err))
		return nil, fmt.Errorf("load directory: %w", err)
	}
	l.Debug("Directory loaded", zap.Int("count", len(profiles)))
	return profiles, nil
}

func (s *ServiceImpl) GetProfile(ctx context.Context, viewer *models.Identity, id uuid.UUID) (models.Profile, error) {
	if err := requireAdmin(viewer); err != nil {
		return models.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return s.repo.GetProfile(ctx, id)
}

// UpdateProfile applies params to the stored profile, moving the business
// name to the column selected by the vendor flag.
func (s *ServiceImpl) UpdateProfile(ctx context.Context, viewer *models.Identity, id uuid.UUID, params models.UpdateProfileParams) (models.Profile, error) {
	l := s.logger.With(zap.String("method", "UpdateProfile"), zap.String("profileID", id.String()))
	if err := requireAdmin(viewer); err != nil {
		return models.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	p, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return models.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	if strings.TrimSpace(params.FullName) == "" {
		return models.Profile{}, fmt.Errorf("full name is required: %w", models.ErrValidation)
	}
	p.FullName = strings.TrimSpace(params.FullName)
	if params.Role != "" {
		p.Role = params.Role
	}
	if params.Status != "" {
		p.Status = params.Status
	}
	p.Phone = models.OptionalString(params.Phone)
	p.Branch = models.OptionalString(params.Branch)
	p.SetBusinessName(params.IsVendor, params.BusinessName)
	if err := p.Validate(); err != nil {
		return models.Profile{}, fmt.Errorf("%w: %w", models.ErrValidation, err)
	}

	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		l.Error("Failed to update profile", zap.Error(err))
		return models.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	l.Info("Profile updated")
	return p, nil
}

// DeleteProfile removes the remote account first. If that fails nothing is
// deleted locally.
func (s *ServiceImpl) DeleteProfile(ctx context.Context, viewer *models.Identity, accessToken string, id uuid.UUID) error {
	l := s.logger.With(zap.String("method", "DeleteProfile"), zap.String("profileID", id.String()))
	if err := requireAdmin(viewer); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	p, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if p.UserID.String() == viewer.UserID {
		return fmt.Errorf("cannot delete your own account: %w", models.ErrForbidden)
	}

	if err := s.accounts.DeleteUser(ctx, accessToken, p.UserID.String()); err != nil {
		l.Error("Remote account deletion failed", zap.String("userID", p.UserID.String()), zap.Error(err))
		return fmt.Errorf("delete account: %w", err)
	}

	// The remote function may already have cascaded to the profile row.
	if err := s.repo.DeleteProfile(ctx, id); err != nil && !errors.Is(err, models.ErrNotFound) {
		l.Error("Account deleted but profile row remains", zap.Error(err))
		return fmt.Errorf("delete profile: %w", err)
	}
	l.Info("Profile deleted", zap.String("userID", p.UserID.String()))
	return nil
}
