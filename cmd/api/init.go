package main

import (
	"context"
	"errors"

	"neonflow/internal/calculator"
	"neonflow/internal/config"
	"neonflow/internal/observability"
)

// initTelemetry initialises the OTLP providers when enabled, then the
// calculator's metric instruments. With telemetry disabled the instruments
// bind to the global no-op providers.
func initTelemetry(ctx context.Context, cfg config.TelemetryConfig) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Enabled {
		traceShutdown, err := observability.InitTracing(ctx, cfg.ServiceName)
		if err != nil {
			return nil, err
		}
		shutdowns = append(shutdowns, traceShutdown)

		metricShutdown, err := observability.InitMetrics(ctx, cfg.ServiceName)
		if err != nil {
			shutdown(ctx)
			return nil, err
		}
		shutdowns = append(shutdowns, metricShutdown)

		if cfg.ExportLogs {
			logShutdown, err := observability.InitLogging(ctx, cfg.ServiceName)
			if err != nil {
				shutdown(ctx)
				return nil, err
			}
			shutdowns = append(shutdowns, logShutdown)
		}
	}

	if err := calculator.InitMetrics(); err != nil {
		shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}
