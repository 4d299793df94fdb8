package calculator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"neonflow/internal/history"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Snapshot is the state handed to clients after every transition, together
// with the values derived from it for display.
type Snapshot struct {
	State   State           `json:"state"`
	History []history.Entry `json:"history"`
	Display string          `json:"display"`
	Preview string          `json:"preview"`
}

// Session is the single owner of the calculator inside the process. Dispatch
// applies one intent at a time and persists history after it changes.
type Session struct {
	mu     sync.Mutex
	calc   *Calculator
	store  history.Store
	logger *zap.Logger
}

// NewSession hydrates history from store. A blob that cannot be loaded is
// logged and the session starts with an empty history.
func NewSession(ctx context.Context, store history.Store, logger *zap.Logger) *Session {
	entries, err := store.Load(ctx)
	switch {
	case errors.Is(err, history.ErrMalformedHistory):
		logger.Warn("discarding malformed persisted history", zap.Error(err))
		entries = nil
	case err != nil:
		logger.Error("loading persisted history failed", zap.Error(err))
		entries = nil
	default:
		logger.Info("history loaded", zap.Int("entries", len(entries)))
	}

	return &Session{
		calc:   New(entries),
		store:  store,
		logger: logger,
	}
}

// Snapshot returns the current state without applying anything.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// History returns the log, newest first.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calc.History()
}

func (s *Session) snapshot() Snapshot {
	st := s.calc.State()
	return Snapshot{
		State:   st,
		History: s.calc.History(),
		Display: Format(st.CurrentValue),
		Preview: Preview(st),
	}
}

// Dispatch applies in and returns the resulting snapshot. Only invalid intents
// and unknown history ids are errors; the snapshot is still returned with them.
func (s *Session) Dispatch(ctx context.Context, in Intent) (Snapshot, Outcome, error) {
	ctx, span := tracer.Start(ctx, "calculator."+string(in.Type),
		trace.WithAttributes(
			attribute.String("calculator.intent", string(in.Type)),
			attribute.String("calculator.intent.value", in.Value),
		),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	out, err := s.calc.Apply(in)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return s.snapshot(), out, err
	}

	attrs := metric.WithAttributes(attribute.String("intent", string(in.Type)))
	intentCounter.Add(ctx, 1, attrs)
	dispatchHistogram.Record(ctx, elapsed, attrs)

	if out.DivisionByZero {
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "divide")))
		span.AddEvent("division_by_zero")
		s.logger.Info("division by zero, calculator in error state", zap.String("intent", string(in.Type)))
	}

	if out.Recorded != nil {
		evaluationCounter.Add(ctx, 1)
		resultGauge.Record(ctx, ParseOperand(out.Recorded.Result))
		span.AddEvent("history.recorded", trace.WithAttributes(
			attribute.String("expression", out.Recorded.Expression),
			attribute.String("result", out.Recorded.Result),
		))
		s.logger.Info("calculation completed",
			zap.String("expression", out.Recorded.Expression),
			zap.String("result", out.Recorded.Result),
			zap.Float64("duration_ms", elapsed),
		)
	}

	if out.HistoryChanged {
		s.persist(ctx)
	}

	span.SetStatus(codes.Ok, "")
	return s.snapshot(), out, nil
}

// persist saves the log. Failures are logged only: the in-memory history
// stays authoritative for the running process.
func (s *Session) persist(ctx context.Context) {
	entries := s.calc.History()
	historyGauge.Record(ctx, int64(len(entries)))

	if err := s.store.Save(context.WithoutCancel(ctx), entries); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		s.logger.Error("persisting history failed",
			zap.Error(err),
			zap.Int("entries", len(entries)),
		)
	}
}
