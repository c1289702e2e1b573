package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/observability/metrics"
	"github.com/FACorreiaa/pos-templui/internal/app/observability/tracer"
	"github.com/FACorreiaa/pos-templui/internal/pkg/config"
)

// ObservabilityShutdownFunc is the function type returned by InitObservability
type ObservabilityShutdownFunc func(context.Context) error

// InitObservability installs the OpenTelemetry providers and creates the
// application instruments on them.
func InitObservability(serviceName string, cfg *config.Config, logger *zap.Logger) (ObservabilityShutdownFunc, *metrics.AppMetrics, error) {
	otelShutdown, err := tracer.InitOtelProviders(tracer.Options{
		ServiceName:  serviceName,
		Version:      "1.0.0",
		MetricsAddr:  cfg.MetricsAddr,
		OTLPEndpoint: cfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	m, err := metrics.InitAppMetrics()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metric instruments: %w", err)
	}
	logger.Info("Observability initialized", zap.String("metrics_endpoint", cfg.MetricsAddr+"/metrics"))

	return otelShutdown, m, nil
}
