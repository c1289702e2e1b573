package stripe

import (
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

// StripeProvider takes card payments for POS sales.
type StripeProvider struct {
	apiKey string
}

// NewStripeProvider creates a new Stripe payment provider.
func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{
		apiKey: apiKey,
	}
}

// CreatePaymentIntent opens a card payment of amount minor units and returns
// the intent id and the client secret the terminal confirms with.
func (s *StripeProvider) CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		Metadata:           metadata,
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	return pi.ID, pi.ClientSecret, nil
}

// CancelPaymentIntent voids an intent the register abandoned before it was paid.
func (s *StripeProvider) CancelPaymentIntent(paymentIntentID string) error {
	_, err := paymentintent.Cancel(paymentIntentID, nil)
	if err != nil {
		return fmt.Errorf("failed to cancel payment intent: %w", err)
	}

	return nil
}

// GetPaymentIntent retrieves the current state of a payment intent.
func (s *StripeProvider) GetPaymentIntent(paymentIntentID string) (models.CardPayment, error) {
	pi, err := paymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return models.CardPayment{}, fmt.Errorf("failed to get payment intent: %w", err)
	}

	return models.CardPayment{
		ID:           pi.ID,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}, nil
}

// RefundPayment returns the full amount of a captured payment whose sale
// could not be booked.
func (s *StripeProvider) RefundPayment(paymentIntentID string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}

	_, err := refund.New(params)
	if err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}

	return nil
}
