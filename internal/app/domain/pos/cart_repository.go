package pos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	database "github.com/FACorreiaa/pos-templui/internal/db"
)

var _ CartRepository = (*CartRepositoryImpl)(nil)

// CartRepository keeps each cashier's open cart server-side, in pos_carts.
type CartRepository interface {
	LoadCart(ctx context.Context, cashierID uuid.UUID) (CartState, error)
	SaveCart(ctx context.Context, cashierID uuid.UUID, state CartState) error
	DeleteCart(ctx context.Context, cashierID uuid.UUID) error
}

type CartRepositoryImpl struct {
	logger *zap.Logger
	db     database.Querier
}

func NewCartRepository(db database.Querier, logger *zap.Logger) *CartRepositoryImpl {
	return &CartRepositoryImpl{logger: logger, db: db}
}

// LoadCart returns the cashier's cart. A cashier without a row has an empty one.
func (r *CartRepositoryImpl) LoadCart(ctx context.Context, cashierID uuid.UUID) (CartState, error) {
	query, args, err := database.Psql.Select("items", "customer", "payment_intent_id", "payment_amount").
		From("pos_carts").
		Where(sq.Eq{"cashier_id": cashierID}).
		ToSql()
	if err != nil {
		return CartState{}, fmt.Errorf("failed to build load cart query: %w", err)
	}

	var (
		items, customer []byte
		intentID        *string
		amount          *int64
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(&items, &customer, &intentID, &amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return CartState{}, nil
	}
	if err != nil {
		r.logger.Error("Failed to load cart", zap.String("cashier_id", cashierID.String()), zap.Error(err))
		return CartState{}, fmt.Errorf("failed to load cart: %w", err)
	}

	var state CartState
	if err := json.Unmarshal(items, &state.Cart.Items); err != nil {
		return CartState{}, fmt.Errorf("failed to decode cart items: %w", err)
	}
	if err := json.Unmarshal(customer, &state.Customer); err != nil {
		return CartState{}, fmt.Errorf("failed to decode cart customer: %w", err)
	}
	if intentID != nil && amount != nil {
		state.Pending = &PendingCard{IntentID: *intentID, Amount: *amount}
	}
	return state, nil
}

// SaveCart replaces the cashier's cart.
func (r *CartRepositoryImpl) SaveCart(ctx context.Context, cashierID uuid.UUID, state CartState) error {
	items := state.Cart.Items
	if items == nil {
		items = []CartItem{}
	}
	rawItems, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart items: %w", err)
	}
	rawCustomer, err := json.Marshal(state.Customer)
	if err != nil {
		return fmt.Errorf("failed to encode cart customer: %w", err)
	}
	var intentID *string
	var amount *int64
	if state.Pending != nil {
		intentID, amount = &state.Pending.IntentID, &state.Pending.Amount
	}

	query, args, err := database.Psql.Insert("pos_carts").
		Columns("cashier_id", "items", "customer", "payment_intent_id", "payment_amount").
		Values(cashierID, string(rawItems), string(rawCustomer), intentID, amount).
		Suffix("ON CONFLICT (cashier_id) DO UPDATE SET " +
			"items = EXCLUDED.items, customer = EXCLUDED.customer, " +
			"payment_intent_id = EXCLUDED.payment_intent_id, payment_amount = EXCLUDED.payment_amount, " +
			"updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save cart query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.logger.Error("Failed to save cart", zap.String("cashier_id", cashierID.String()), zap.Error(err))
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// DeleteCart starts the cashier over with an empty cart.
func (r *CartRepositoryImpl) DeleteCart(ctx context.Context, cashierID uuid.UUID) error {
	query, args, err := database.Psql.Delete("pos_carts").
		Where(sq.Eq{"cashier_id": cashierID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete cart query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.logger.Error("Failed to delete cart", zap.String("cashier_id", cashierID.String()), zap.Error(err))
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
