package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments, initialized once via InitMetrics().
var (
	intentCounter     metric.Int64Counter
	evaluationCounter metric.Int64Counter
	dispatchHistogram metric.Float64Histogram
	errorCounter      metric.Int64Counter
	resultGauge       metric.Float64Gauge
	historyGauge      metric.Int64Gauge
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	intentCounter, err = meter.Int64Counter("calculator.intents.total",
		metric.WithDescription("Total number of input intents applied"),
		metric.WithUnit("{intent}"),
	)
	if err != nil {
		return fmt.Errorf("creating intent counter: %w", err)
	}

	evaluationCounter, err = meter.Int64Counter("calculator.evaluations.total",
		metric.WithDescription("Completed calculations recorded in history"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return fmt.Errorf("creating evaluation counter: %w", err)
	}

	dispatchHistogram, err = meter.Float64Histogram("calculator.dispatch.duration",
		metric.WithDescription("Duration of state transitions in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating dispatch histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of calculator errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The result of the last completed calculation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	historyGauge, err = meter.Int64Gauge("calculator.history.size",
		metric.WithDescription("Number of entries in the calculation history"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return fmt.Errorf("creating history gauge: %w", err)
	}

	return nil
}
