package profiles

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
	database "github.com/FACorreiaa/pos-templui/internal/db"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository reads and writes rows of the profiles relation.
type Repository interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error)
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	InsertProfile(ctx context.Context, p models.Profile) (models.Profile, error)
	UpdateProfile(ctx context.Context, p models.Profile) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     database.Querier
}

func NewRepository(db database.Querier, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

var profileColumns = []string{
	"id", "user_id", "email", "full_name", "role", "is_vendor",
	"vendor_business_name", "business_name", "business_code",
	"phone", "branch", "status", "created_at", "updated_at",
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.Email, &p.FullName, &p.Role, &p.IsVendor,
		&p.VendorBusinessName, &p.BusinessName, &p.BusinessCode,
		&p.Phone, &p.Branch, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// ListProfiles returns every profile, newest first.
func (r *RepositoryImpl) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	query, args, err := database.Psql.Select(profileColumns...).
		From("profiles").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list profiles query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list profiles", zap.Error(err))
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			r.logger.Error("Failed to scan profile row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}
	return out, nil
}

func (r *RepositoryImpl) GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	return r.getProfileBy(ctx, "id", id)
}

// GetProfileByUserID returns the profile attached to an auth account.
func (r *RepositoryImpl) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	return r.getProfileBy(ctx, "user_id", userID)
}

func (r *RepositoryImpl) getProfileBy(ctx context.Context, column string, id uuid.UUID) (models.Profile, error) {
	query, args, err := database.Psql.Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{column: id}).
		ToSql()
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to build get profile query: %w", err)
	}

	p, err := scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, fmt.Errorf("profile %s=%s: %w", column, id, models.ErrNotFound)
		}
		r.logger.Error("Failed to get profile", zap.String(column, id.String()), zap.Error(err))
		return models.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// InsertProfile stores p and returns it with the generated id and timestamps.
func (r *RepositoryImpl) InsertProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	query, args, err := database.Psql.Insert("profiles").
		Columns("user_id", "email", "full_name", "role", "is_vendor",
			"vendor_business_name", "business_name", "business_code", "phone", "branch", "status").
		Values(p.UserID, p.Email, p.FullName, string(p.Role), p.IsVendor,
			p.VendorBusinessName, p.BusinessName, p.BusinessCode, p.Phone, p.Branch, string(p.Status)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to build insert profile query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.Profile{}, fmt.Errorf("profile for %s: %w", p.Email, models.ErrConflict)
		}
		r.logger.Error("Failed to insert profile", zap.String("email", p.Email), zap.Error(err))
		return models.Profile{}, fmt.Errorf("failed to insert profile: %w", err)
	}
	return p, nil
}

func (r *RepositoryImpl) UpdateProfile(ctx context.Context, p models.Profile) error {
	query, args, err := database.Psql.Update("profiles").
		SetMap(map[string]any{
			"full_name":            p.FullName,
			"role":                 string(p.Role),
			"is_vendor":            p.IsVendor,
			"vendor_business_name": p.VendorBusinessName,
			"business_name":        p.BusinessName,
			"phone":                p.Phone,
			"branch":               p.Branch,
			"status":               string(p.Status),
			"updated_at":           sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update profile", zap.String("profileID", p.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", p.ID, models.ErrNotFound)
	}
	return nil
}

func (r *RepositoryImpl) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	query, args, err := database.Psql.Delete("profiles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete profile query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to delete profile", zap.String("profileID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == database.UniqueViolation
}
