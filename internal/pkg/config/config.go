package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

// PlatformConfig points at the hosted auth/data platform.
type PlatformConfig struct {
	URL            string
	AnonKey        string
	JWTSecret      string // optional; enables local access-token expiry checks
	RequestTimeout time.Duration
	DeleteFunction string
}

type SessionConfig struct {
	Secret       string
	CookieName   string
	PollInterval time.Duration
	SecureCookie bool
}

type POSConfig struct {
	DesktopBreakpoint int
	Currency          string
}

type PaymentsConfig struct {
	StripeSecretKey      string
	StripePublishableKey string
}

// CardEnabled reports whether both Stripe keys are set. The publishable key
// is needed by the terminal to confirm payments in the browser.
func (p PaymentsConfig) CardEnabled() bool {
	return p.StripeSecretKey != "" && p.StripePublishableKey != ""
}

type ProvisioningConfig struct {
	RollbackOrphans bool
}

type Config struct {
	Repositories RepositoriesConfig
	Platform     PlatformConfig
	Session      SessionConfig
	POS          POSConfig
	Payments     PaymentsConfig
	Provisioning ProvisioningConfig
	ServerPort   string
	MetricsAddr  string
	PprofAddr    string
	OTLPEndpoint string
	CORSOrigin   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "postgres"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: int32(getIntOrDefault("POSTGRES_MAX_CONNS", 20)),
				MinConns: int32(getIntOrDefault("POSTGRES_MIN_CONNS", 2)),
			},
		},
		Platform: PlatformConfig{
			URL:            getEnvOrDefault("PLATFORM_URL", ""),
			AnonKey:        getEnvOrDefault("PLATFORM_ANON_KEY", ""),
			JWTSecret:      getEnvOrDefault("PLATFORM_JWT_SECRET", ""),
			RequestTimeout: getDurationOrDefault("PLATFORM_REQUEST_TIMEOUT", 10*time.Second),
			DeleteFunction: getEnvOrDefault("PLATFORM_DELETE_USER_FUNCTION", "delete-user"),
		},
		Session: SessionConfig{
			Secret:       getEnvOrDefault("SESSION_SECRET", ""),
			CookieName:   getEnvOrDefault("SESSION_COOKIE_NAME", "pos_session"),
			PollInterval: getDurationOrDefault("SESSION_POLL_INTERVAL", 30*time.Second),
			SecureCookie: getBoolOrDefault("SESSION_SECURE_COOKIE", false),
		},
		POS: POSConfig{
			DesktopBreakpoint: getIntOrDefault("POS_DESKTOP_BREAKPOINT", 1024),
			Currency:          getEnvOrDefault("POS_CURRENCY", "usd"),
		},
		Payments: PaymentsConfig{
			StripeSecretKey:      getEnvOrDefault("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnvOrDefault("STRIPE_PUBLISHABLE_KEY", ""),
		},
		Provisioning: ProvisioningConfig{
			RollbackOrphans: getBoolOrDefault("PROVISION_ROLLBACK_ORPHANS", false),
		},
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8091"),
		MetricsAddr: getEnvOrDefault("METRICS_ADDR", ":9092"),
		PprofAddr:   getEnvOrDefault("PPROF_ADDR", ":6060"),

		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		CORSOrigin:   getEnvOrDefault("CORS_ALLOWED_ORIGIN", ""),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.Platform.URL == "" || cfg.Platform.AnonKey == "" {
		return nil, fmt.Errorf("PLATFORM_URL and PLATFORM_ANON_KEY environment variables are required")
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
