package stripe

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStripeProvider(t *testing.T) {
	apiKey := "sk_test_123"
	provider := NewStripeProvider(apiKey)

	assert.NotNil(t, provider)
	assert.Equal(t, apiKey, provider.apiKey)
}

func TestStripeProvider_PaymentIntentLifecycle(t *testing.T) {
	// Skip if no Stripe API key is set
	apiKey := os.Getenv("STRIPE_TEST_API_KEY")
	if apiKey == "" {
		t.Skip("STRIPE_TEST_API_KEY not set, skipping integration test")
	}

	provider := NewStripeProvider(apiKey)

	t.Run("create, inspect and cancel", func(t *testing.T) {
		id, secret, err := provider.CreatePaymentIntent(1250, "usd", map[string]string{"sale_ref": uuid.NewString()})
		require.NoError(t, err)
		assert.Contains(t, id, "pi_")
		assert.NotEmpty(t, secret)

		intent, err := provider.GetPaymentIntent(id)
		require.NoError(t, err)
		assert.Equal(t, "requires_payment_method", intent.Status)
		assert.Equal(t, int64(1250), intent.Amount)
		assert.Equal(t, secret, intent.ClientSecret)

		require.NoError(t, provider.CancelPaymentIntent(id))
	})

	t.Run("invalid currency", func(t *testing.T) {
		_, _, err := provider.CreatePaymentIntent(1000, "invalid", nil)
		assert.Error(t, err)
	})

	t.Run("zero amount", func(t *testing.T) {
		_, _, err := provider.CreatePaymentIntent(0, "usd", nil)
		assert.Error(t, err)
	})
}
