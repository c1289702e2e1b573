package pos

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
	database "github.com/FACorreiaa/pos-templui/internal/db"
)

var _ SalesRepository = (*SalesRepositoryImpl)(nil)

// ErrOutOfStock wraps models.ErrValidation when a line asks for more than the
// shelf holds.
var ErrOutOfStock = fmt.Errorf("%w: not enough stock", models.ErrValidation)

type SalesRepository interface {
	RecordSale(ctx context.Context, sale models.Sale) (models.Sale, error)
}

type SalesRepositoryImpl struct {
	logger *zap.Logger
	db     database.Querier
}

func NewSalesRepository(db database.Querier, logger *zap.Logger) *SalesRepositoryImpl {
	return &SalesRepositoryImpl{logger: logger, db: db}
}

// RecordSale writes the sale, its lines and the stock decrements in one
// transaction.
func (r *SalesRepositoryImpl) RecordSale(ctx context.Context, sale models.Sale) (models.Sale, error) {
	l := r.logger.With(zap.String("method", "RecordSale"), zap.String("cashier_id", sale.CashierID.String()))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		l.Error("Failed to begin transaction", zap.Error(err))
		return models.Sale{}, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := r.writeSale(ctx, tx, &sale); err != nil {
		l.Error("Failed to record sale", zap.Error(err))
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			l.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
		return models.Sale{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		l.Error("Failed to commit sale", zap.Error(err))
		return models.Sale{}, fmt.Errorf("failed to commit sale: %w", err)
	}

	l.Info("Sale recorded", zap.String("sale_id", sale.ID.String()), zap.Float64("total", sale.Total))
	return sale, nil
}

func (r *SalesRepositoryImpl) writeSale(ctx context.Context, tx pgx.Tx, sale *models.Sale) error {
	query, args, err := database.Psql.Insert("sales").
		Columns("cashier_id", "total", "method", "payment_intent_id").
		Values(sale.CashierID, sale.Total, string(sale.Method), sale.PaymentIntentID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert sale query: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&sale.ID, &sale.CreatedAt); err != nil {
		if pgCode(err) == database.UniqueViolation {
			return fmt.Errorf("payment already booked: %w", models.ErrConflict)
		}
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	for _, item := range sale.Items {
		query, args, err := database.Psql.Insert("sale_items").
			Columns("sale_id", "product_id", "quantity", "unit_price").
			Values(sale.ID, item.ProductID, item.Quantity, item.UnitPrice).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert sale item query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert sale item %s: %w", item.ProductID, err)
		}

		query, args, err = database.Psql.Update("products").
			Set("stock", sq.Expr("stock - ?", item.Quantity)).
			Where(sq.Eq{"id": item.ProductID}).
			Where(sq.GtOrEq{"stock": item.Quantity}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build stock update query: %w", err)
		}
		tag, err := tx.Exec(ctx, query, args...)
		switch {
		case pgCode(err) == database.CheckViolation:
			return fmt.Errorf("product %s: %w", item.ProductID, ErrOutOfStock)
		case err != nil:
			return fmt.Errorf("failed to decrement stock of %s: %w", item.ProductID, err)
		case tag.RowsAffected() == 0:
			return fmt.Errorf("product %s: %w", item.ProductID, ErrOutOfStock)
		}
	}
	return nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
