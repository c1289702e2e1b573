package catalog

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
	database "github.com/FACorreiaa/pos-templui/internal/db"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository reads the product catalog and branch list.
type Repository interface {
	ListProducts(ctx context.Context, branchID *uuid.UUID) ([]models.Product, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	ListBranches(ctx context.Context) ([]models.Branch, error)
	GetBranch(ctx context.Context, id uuid.UUID) (models.Branch, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	db     database.Querier
}

func NewRepository(db database.Querier, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

var productColumns = []string{
	"id", "name", "category", "sku", "price::float8", "stock::float8", "expires_at", "branch_id",
}

func (r *RepositoryImpl) selectProducts() sq.SelectBuilder {
	return database.Psql.Select(productColumns...).From("products")
}

func (r *RepositoryImpl) queryProducts(ctx context.Context, b sq.SelectBuilder) ([]models.Product, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build products query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query products", zap.Error(err))
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.SKU, &p.Price, &p.Stock, &p.ExpiresAt, &p.BranchID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return out, nil
}

// ListProducts returns the catalog ordered by name, optionally limited to one
// branch plus the products shared by every branch.
func (r *RepositoryImpl) ListProducts(ctx context.Context, branchID *uuid.UUID) ([]models.Product, error) {
	b := r.selectProducts().OrderBy("name")
	if branchID != nil {
		b = b.Where(sq.Or{sq.Eq{"branch_id": *branchID}, sq.Eq{"branch_id": nil}})
	}
	return r.queryProducts(ctx, b)
}

// GetProducts loads the given products keyed by id. Unknown ids are absent.
func (r *RepositoryImpl) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := r.queryProducts(ctx, r.selectProducts().Where(sq.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *RepositoryImpl) ListBranches(ctx context.Context) ([]models.Branch, error) {
	query, args, err := database.Psql.Select("id", "name", "address").From("branches").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build branches query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list branches", zap.Error(err))
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var out []models.Branch
	for rows.Next() {
		var b models.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *RepositoryImpl) GetBranch(ctx context.Context, id uuid.UUID) (models.Branch, error) {
	query, args, err := database.Psql.Select("id", "name", "address").From("branches").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Branch{}, fmt.Errorf("failed to build branch query: %w", err)
	}
	var b models.Branch
	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.ID, &b.Name, &b.Address); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Branch{}, fmt.Errorf("branch %s: %w", id, models.ErrNotFound)
		}
		return models.Branch{}, fmt.Errorf("failed to get branch: %w", err)
	}
	return b, nil
}
