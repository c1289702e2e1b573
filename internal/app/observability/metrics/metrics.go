package metrics

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "pos-templui"

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal         metric.Int64Counter
	HTTPRequestDuration       metric.Float64Histogram
	SessionChecksTotal        metric.Int64Counter
	ProvisioningOutcomesTotal metric.Int64Counter
	CheckoutsTotal            metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
	initErr    error
)

// New creates the instruments on meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	var err error
	m := &AppMetrics{}

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests completed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("http_request_duration_seconds: %w", err)
	}

	m.SessionChecksTotal, err = meter.Int64Counter(
		"session_checks_total",
		metric.WithDescription("Session guard checks by outcome"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, fmt.Errorf("session_checks_total: %w", err)
	}

	m.ProvisioningOutcomesTotal, err = meter.Int64Counter(
		"provisioning_outcomes_total",
		metric.WithDescription("User provisioning attempts by stage reached"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("provisioning_outcomes_total: %w", err)
	}

	m.CheckoutsTotal, err = meter.Int64Counter(
		"pos_checkouts_total",
		metric.WithDescription("POS checkouts by payment method and result"),
		metric.WithUnit("{sale}"),
	)
	if err != nil {
		return nil, fmt.Errorf("pos_checkouts_total: %w", err)
	}

	return m, nil
}

// InitAppMetrics creates the global instruments once from the global
// MeterProvider.
func InitAppMetrics() (*AppMetrics, error) {
	once.Do(func() {
		appMetrics, initErr = New(otel.GetMeterProvider().Meter(meterName))
	})
	return appMetrics, initErr
}

// Get returns the global instruments. It panics if InitAppMetrics was not
// called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
