package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("PLATFORM_URL", "https://project.example.co")
	t.Setenv("PLATFORM_ANON_KEY", "anon")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.Session.PollInterval)
		assert.Equal(t, 1024, cfg.POS.DesktopBreakpoint)
		assert.Equal(t, "delete-user", cfg.Platform.DeleteFunction)
		assert.False(t, cfg.Provisioning.RollbackOrphans)
	})

	t.Run("overrides", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SESSION_POLL_INTERVAL", "45s")
		t.Setenv("POS_DESKTOP_BREAKPOINT", "900")
		t.Setenv("PROVISION_ROLLBACK_ORPHANS", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 45*time.Second, cfg.Session.PollInterval)
		assert.Equal(t, 900, cfg.POS.DesktopBreakpoint)
		assert.True(t, cfg.Provisioning.RollbackOrphans)
	})

	t.Run("card payments need both stripe keys", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STRIPE_SECRET_KEY", "sk_test_1")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Payments.CardEnabled())

		t.Setenv("STRIPE_PUBLISHABLE_KEY", "pk_test_1")
		cfg, err = Load()
		require.NoError(t, err)
		assert.True(t, cfg.Payments.CardEnabled())
		assert.Equal(t, "pk_test_1", cfg.Payments.StripePublishableKey)
	})

	t.Run("missing password", func(t *testing.T) {
		setRequired(t)
		t.Setenv("POSTGRES_PASSWORD", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("short session secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SESSION_SECRET", "short")

		_, err := Load()
		assert.Error(t, err)
	})
}
