package pos

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

var (
	ErrCardUnavailable = errors.New("card payments are not configured")

	// ErrPaymentIncomplete is returned while the processor has not yet
	// captured the card payment. The payment stays open.
	ErrPaymentIncomplete = fmt.Errorf("%w: card payment has not completed", models.ErrValidation)

	// ErrPaymentVoided is returned when the card payment was cancelled at
	// the processor.
	ErrPaymentVoided = fmt.Errorf("%w: card payment was cancelled", models.ErrValidation)

	// ErrPaymentCaptured is returned when cancelling a card payment that has
	// already gone through.
	ErrPaymentCaptured = fmt.Errorf("%w: card payment already went through, complete the sale instead", models.ErrValidation)
)

// ProductSource resolves cart product ids to catalog rows.
type ProductSource interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// PaymentProvider takes card payments at the processor.
type PaymentProvider interface {
	CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (string, string, error)
	GetPaymentIntent(paymentIntentID string) (models.CardPayment, error)
	CancelPaymentIntent(paymentIntentID string) error
	RefundPayment(paymentIntentID string) error
}

type Line struct {
	Product  models.Product
	Quantity int
}

func (l Line) Subtotal() float64 { return l.Product.Price * float64(l.Quantity) }

type CheckoutService struct {
	logger   *zap.Logger
	products ProductSource
	sales    SalesRepository
	payments PaymentProvider
	currency string
	outcomes metric.Int64Counter
}

// NewCheckoutService builds the checkout. payments may be nil, in which case
// only cash sales are accepted.
func NewCheckoutService(products ProductSource, sales SalesRepository, payments PaymentProvider, currency string, outcomes metric.Int64Counter, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		logger:   logger,
		products: products,
		sales:    sales,
		payments: payments,
		currency: strings.ToLower(currency),
		outcomes: outcomes,
	}
}

// CardEnabled reports whether a payment processor is configured.
func (s *CheckoutService) CardEnabled() bool { return s.payments != nil }

// Lines prices the cart against the catalog. Products that no longer exist
// are dropped.
func (s *CheckoutService) Lines(ctx context.Context, cart Cart) ([]Line, float64, error) {
	if cart.Empty() {
		return nil, 0, nil
	}
	found, err := s.products.GetProducts(ctx, cart.ProductIDs())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to price cart: %w", err)
	}

	lines := make([]Line, 0, len(cart.Items))
	var total float64
	for _, it := range cart.Items {
		p, ok := found[it.ProductID]
		if !ok || it.Quantity <= 0 {
			continue
		}
		line := Line{Product: p, Quantity: it.Quantity}
		lines = append(lines, line)
		total += line.Subtotal()
	}
	return lines, roundCents(total), nil
}

// PayCash books a cash sale for the cart.
func (s *CheckoutService) PayCash(ctx context.Context, cashier *models.Identity, cart Cart) (sale models.Sale, err error) {
	l := s.logger.With(zap.String("method", "PayCash"))
	defer func() { s.record(ctx, models.PaymentCash, err) }()

	sale, err = s.buildSale(ctx, cashier, cart, models.PaymentCash)
	if err != nil {
		return models.Sale{}, err
	}
	recorded, err := s.sales.RecordSale(ctx, sale)
	if err != nil {
		return models.Sale{}, err
	}
	l.Info("Cash sale completed", zap.String("sale_id", recorded.ID.String()), zap.Int("lines", len(recorded.Items)))
	return recorded, nil
}

// StartCard opens a card payment for the cart total. The returned client
// secret is what the terminal confirms the payment with. No sale exists
// until ConfirmCard sees the payment succeed.
func (s *CheckoutService) StartCard(ctx context.Context, cashier *models.Identity, cart Cart) (*PendingCard, string, error) {
	l := s.logger.With(zap.String("method", "StartCard"))
	if s.payments == nil {
		return nil, "", fmt.Errorf("%w: %w", models.ErrValidation, ErrCardUnavailable)
	}

	sale, err := s.buildSale(ctx, cashier, cart, models.PaymentCard)
	if err != nil {
		return nil, "", err
	}
	amount := toMinorUnits(sale.Total)
	intentID, secret, err := s.payments.CreatePaymentIntent(amount, s.currency, map[string]string{
		"cashier_id": sale.CashierID.String(),
	})
	if err != nil {
		l.Error("Failed to create payment intent", zap.Error(err))
		return nil, "", err
	}

	l.Info("Card payment opened", zap.String("intent_id", intentID), zap.Int64("amount", amount))
	return &PendingCard{IntentID: intentID, Amount: amount}, secret, nil
}

// CardSecret returns the client secret of an open card payment so the
// terminal can be shown again after a reload.
func (s *CheckoutService) CardSecret(pending PendingCard) (string, error) {
	if s.payments == nil {
		return "", fmt.Errorf("%w: %w", models.ErrValidation, ErrCardUnavailable)
	}
	intent, err := s.payments.GetPaymentIntent(pending.IntentID)
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}

// ConfirmCard books the sale for a card payment the processor reports as
// succeeded. settled is true once the payment needs no further action: the
// sale was booked, it had already been booked, the payment was voided, or
// the payment was refunded because the sale could not be booked. When
// settled is false the cashier may try again.
func (s *CheckoutService) ConfirmCard(ctx context.Context, cashier *models.Identity, cart Cart, pending PendingCard) (sale models.Sale, settled bool, err error) {
	l := s.logger.With(zap.String("method", "ConfirmCard"), zap.String("intent_id", pending.IntentID))
	defer func() { s.record(ctx, models.PaymentCard, err) }()

	if s.payments == nil {
		return models.Sale{}, false, fmt.Errorf("%w: %w", models.ErrValidation, ErrCardUnavailable)
	}

	intent, err := s.payments.GetPaymentIntent(pending.IntentID)
	if err != nil {
		l.Error("Failed to read payment intent", zap.Error(err))
		return models.Sale{}, false, err
	}
	switch intent.Status {
	case models.CardPaymentSucceeded:
	case models.CardPaymentCanceled:
		return models.Sale{}, true, ErrPaymentVoided
	default:
		return models.Sale{}, false, fmt.Errorf("%w (%s)", ErrPaymentIncomplete, intent.Status)
	}

	sale, err = s.buildSale(ctx, cashier, cart, models.PaymentCard)
	if err != nil {
		if !errors.Is(err, models.ErrValidation) {
			return models.Sale{}, false, err
		}
		settled = s.refund(l, pending.IntentID, &err)
		return models.Sale{}, settled, err
	}
	if got := toMinorUnits(sale.Total); got != intent.Amount || got != pending.Amount {
		l.Warn("Cart total differs from the captured amount",
			zap.Int64("cart", got), zap.Int64("captured", intent.Amount), zap.Int64("opened", pending.Amount))
		err = fmt.Errorf("%w: cart total changed during payment", models.ErrValidation)
		settled = s.refund(l, pending.IntentID, &err)
		return models.Sale{}, settled, err
	}
	sale.PaymentIntentID = &intent.ID

	recorded, err := s.sales.RecordSale(ctx, sale)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrConflict):
		l.Info("Card payment was already booked")
		return models.Sale{}, true, err
	case errors.Is(err, models.ErrValidation):
		settled = s.refund(l, pending.IntentID, &err)
		return models.Sale{}, settled, err
	default:
		return models.Sale{}, false, err
	}

	l.Info("Card sale completed", zap.String("sale_id", recorded.ID.String()), zap.Int("lines", len(recorded.Items)))
	return recorded, true, nil
}

// CancelCard voids an open card payment. A payment that was already voided
// cancels cleanly; one that already went through returns ErrPaymentCaptured.
func (s *CheckoutService) CancelCard(pending PendingCard) error {
	l := s.logger.With(zap.String("method", "CancelCard"), zap.String("intent_id", pending.IntentID))
	if s.payments == nil {
		return fmt.Errorf("%w: %w", models.ErrValidation, ErrCardUnavailable)
	}

	cancelErr := s.payments.CancelPaymentIntent(pending.IntentID)
	if cancelErr == nil {
		l.Info("Card payment cancelled")
		return nil
	}

	intent, err := s.payments.GetPaymentIntent(pending.IntentID)
	if err != nil {
		l.Error("Failed to cancel payment intent", zap.Error(cancelErr))
		return cancelErr
	}
	switch intent.Status {
	case models.CardPaymentCanceled:
		return nil
	case models.CardPaymentSucceeded:
		return ErrPaymentCaptured
	}
	l.Error("Failed to cancel payment intent", zap.String("status", intent.Status), zap.Error(cancelErr))
	return cancelErr
}

// refund returns a captured payment whose sale was rejected and reports
// whether the money is back with the customer. A failed refund is joined
// into *cause.
func (s *CheckoutService) refund(l *zap.Logger, intentID string, cause *error) bool {
	if err := s.payments.RefundPayment(intentID); err != nil {
		l.Error("Failed to refund card payment", zap.NamedError("cause", *cause), zap.Error(err))
		*cause = errors.Join(*cause, fmt.Errorf("refund %s: %w", intentID, err))
		return false
	}
	l.Warn("Card payment refunded", zap.NamedError("cause", *cause))
	*cause = fmt.Errorf("%w; the card payment was refunded", *cause)
	return true
}

// buildSale prices the cart and checks every line against the shelf.
func (s *CheckoutService) buildSale(ctx context.Context, cashier *models.Identity, cart Cart, method models.PaymentMethod) (models.Sale, error) {
	if cashier == nil {
		return models.Sale{}, models.ErrUnauthenticated
	}
	cashierID, err := uuid.Parse(cashier.UserID)
	if err != nil {
		return models.Sale{}, fmt.Errorf("cashier id %q: %w", cashier.UserID, models.ErrUnauthenticated)
	}

	lines, total, err := s.Lines(ctx, cart)
	if err != nil {
		s.logger.Error("Failed to price cart", zap.Error(err))
		return models.Sale{}, err
	}
	if len(lines) == 0 {
		return models.Sale{}, fmt.Errorf("%w: cart is empty", models.ErrValidation)
	}

	sale := models.Sale{CashierID: cashierID, Total: total, Method: method}
	for _, line := range lines {
		if float64(line.Quantity) > line.Product.Stock {
			return models.Sale{}, fmt.Errorf("%w: only %s %s left in stock",
				models.ErrValidation, formatStock(line.Product.Stock), line.Product.Name)
		}
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.Product.Price,
		})
	}
	return sale, nil
}

func (s *CheckoutService) record(ctx context.Context, method models.PaymentMethod, err error) {
	if s.outcomes == nil {
		return
	}
	result := "ok"
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrUnauthenticated):
		result = "rejected"
	case err != nil:
		result = "failed"
	}
	s.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("payment_method", string(method)),
		attribute.String("result", result),
	))
}

func formatStock(v float64) string {
	if v < 0 {
		v = 0
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func roundCents(v float64) float64 { return math.Round(v*100) / 100 }

func toMinorUnits(v float64) int64 { return int64(math.Round(v * 100)) }
