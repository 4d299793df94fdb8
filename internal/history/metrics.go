package history

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var storeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "neonflow",
	Subsystem: "history",
	Name:      "persist_failures_total",
	Help:      "History store operations that returned an error.",
}, []string{"backend", "op"})

// instrumentedStore counts store failures per backend on the default
// Prometheus registry served at /metrics.
type instrumentedStore struct {
	Store
	backend string
}

// Instrument wraps s so that failed loads and saves are counted.
func Instrument(s Store, backend string) Store {
	return &instrumentedStore{Store: s, backend: backend}
}

func (s *instrumentedStore) Load(ctx context.Context) ([]Entry, error) {
	entries, err := s.Store.Load(ctx)
	if err != nil {
		storeFailures.WithLabelValues(s.backend, "load").Inc()
	}
	return entries, err
}

func (s *instrumentedStore) Save(ctx context.Context, entries []Entry) error {
	err := s.Store.Save(ctx, entries)
	if err != nil {
		storeFailures.WithLabelValues(s.backend, "save").Inc()
	}
	return err
}
