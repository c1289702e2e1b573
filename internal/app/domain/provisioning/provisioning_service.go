package provisioning

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
	"github.com/FACorreiaa/pos-templui/internal/app/platform"
)

// Accounts is the remote auth service as seen by provisioning.
type Accounts interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*platform.User, error)
	DeleteUser(ctx context.Context, accessToken, userID string) error
}

type ProfileWriter interface {
	InsertProfile(ctx context.Context, p models.Profile) (models.Profile, error)
}

type BranchLookup interface {
	GetBranch(ctx context.Context, id uuid.UUID) (models.Branch, error)
}

type Stage string

const (
	StageValidate Stage = "validate"
	StageSignUp   Stage = "sign_up"
	StageProfile  Stage = "profile"
	StageDone     Stage = "done"
)

// Result is the outcome of one provisioning attempt. Err is nil on success.
// Orphaned means the remote account exists without a profile row.
type Result struct {
	Profile    *models.Profile
	Err        error
	Stage      Stage
	Orphaned   bool
	RolledBack bool
}

func (r Result) OK() bool { return r.Err == nil }

type Service struct {
	logger   *zap.Logger
	accounts Accounts
	profiles ProfileWriter
	branches BranchLookup
	rollback bool
	outcomes metric.Int64Counter
}

// NewService builds the provisioning flow. With rollback set, an account whose
// profile insert fails is deleted again.
func NewService(accounts Accounts, profiles ProfileWriter, branches BranchLookup, rollback bool, outcomes metric.Int64Counter, logger *zap.Logger) *Service {
	return &Service{
		logger:   logger,
		accounts: accounts,
		profiles: profiles,
		branches: branches,
		rollback: rollback,
		outcomes: outcomes,
	}
}

// Provision creates the remote account and then its profile row. Failures are
// reported in the Result; it never panics.
func (s *Service) Provision(ctx context.Context, operator *models.Identity, operatorToken string, form Form) (res Result) {
	l := s.logger.With(zap.String("method", "Provision"))
	defer func() {
		if r := recover(); r != nil {
			l.Error("Provisioning panicked", zap.Any("panic", r), zap.String("stage", string(res.Stage)))
			res.Err = fmt.Errorf("provisioning failed unexpectedly: %v", r)
		}
		s.record(ctx, res)
	}()

	res.Stage = StageValidate
	if operator == nil || !operator.IsAdmin() {
		res.Err = fmt.Errorf("provision user: %w", models.ErrForbidden)
		return res
	}

	form = form.Normalize()
	if err := form.Validate(); err != nil {
		res.Err = err
		return res
	}
	if form.BusinessCode == "" {
		code, err := NewBusinessCode()
		if err != nil {
			res.Err = err
			return res
		}
		form.BusinessCode = code
	}
	l = l.With(zap.String("email", form.Email))

	var branch *string
	if form.BranchID != "" {
		id, err := uuid.Parse(form.BranchID)
		if err != nil {
			res.Err = fmt.Errorf("%w: unknown branch", models.ErrValidation)
			return res
		}
		b, err := s.branches.GetBranch(ctx, id)
		if err != nil {
			l.Warn("Branch lookup failed", zap.String("branchID", form.BranchID), zap.Error(err))
			res.Err = fmt.Errorf("branch: %w", err)
			return res
		}
		branch = &b.Name
	}

	res.Stage = StageSignUp
	user, err := s.accounts.SignUp(ctx, form.Email, form.Password, form.Metadata())
	if err != nil {
		l.Error("Remote sign-up failed", zap.Error(err))
		res.Err = fmt.Errorf("create account: %w", err)
		return res
	}

	res.Stage = StageProfile
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		l.Error("Remote sign-up returned an unusable user id", zap.String("userID", user.ID), zap.Error(err))
		res.Err, res.Orphaned = fmt.Errorf("create account: invalid user id %q", user.ID), true
		return res
	}

	role, _ := models.ParseRole(form.Role)
	p := models.Profile{
		UserID:       userID,
		Email:        form.Email,
		FullName:     form.FullName,
		Role:         role,
		BusinessCode: form.BusinessCode,
		Phone:        models.OptionalString(form.Phone),
		Branch:       branch,
		Status:       models.StatusActive,
	}
	p.SetBusinessName(form.IsVendor, form.BusinessName)

	created, err := s.profiles.InsertProfile(ctx, p)
	if err != nil {
		l.Error("Profile insert failed after account creation", zap.String("userID", user.ID), zap.Error(err))
		res.Err, res.Orphaned = fmt.Errorf("create profile: %w", err), true
		if s.rollback {
			res.RolledBack = s.removeOrphan(ctx, l, operatorToken, user.ID)
			res.Orphaned = !res.RolledBack
		}
		return res
	}

	res.Stage, res.Profile = StageDone, &created
	l.Info("User provisioned", zap.String("userID", user.ID), zap.String("role", string(role)))
	return res
}

func (s *Service) removeOrphan(ctx context.Context, l *zap.Logger, operatorToken, userID string) bool {
	if err := s.accounts.DeleteUser(ctx, operatorToken, userID); err != nil {
		l.Error("Failed to roll back orphaned account", zap.String("userID", userID), zap.Error(err))
		return false
	}
	l.Info("Rolled back orphaned account", zap.String("userID", userID))
	return true
}

func (s *Service) record(ctx context.Context, res Result) {
	if s.outcomes == nil {
		return
	}
	outcome := "ok"
	switch {
	case res.RolledBack:
		outcome = "rolled_back"
	case res.Orphaned:
		outcome = "orphaned"
	case res.Err != nil:
		outcome = "failed"
	}
	s.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", string(res.Stage)),
		attribute.String("outcome", outcome),
	))
}
