package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"neonflow/internal/history"
)

type failingStore struct {
	history.MemoryStore
}

func (s *failingStore) Save(ctx context.Context, entries []history.Entry) error {
	return errors.New("disk full")
}

func dispatchKeys(t *testing.T, s *Session, keys ...string) Snapshot {
	t.Helper()
	var snap Snapshot
	for _, key := range keys {
		in, ok := IntentForKey(key)
		if !ok {
			t.Fatalf("no binding for key %q", key)
		}
		var err error
		snap, _, err = s.Dispatch(context.Background(), in)
		if err != nil {
			t.Fatalf("dispatching %q: %v", key, err)
		}
	}
	return snap
}

func TestSessionPersistsHistoryAfterEquals(t *testing.T) {
	store := history.NewMemoryStore()
	s := NewSession(context.Background(), store, zap.NewNop())

	snap := dispatchKeys(t, s, "1", "2", "+", "8", "Enter")

	if snap.State.CurrentValue != "20" || snap.Display != "20" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	var persisted []history.Entry
	if err := json.Unmarshal(store.Blob(), &persisted); err != nil {
		t.Fatalf("decoding persisted blob: %v", err)
	}
	if len(persisted) != 1 || persisted[0].Expression != "12 + 8" || persisted[0].Result != "20" {
		t.Fatalf("unexpected persisted history %+v", persisted)
	}
}

func TestSessionDoesNotPersistWithoutHistoryChange(t *testing.T) {
	store := history.NewMemoryStore()
	s := NewSession(context.Background(), store, zap.NewNop())

	dispatchKeys(t, s, "5", "/", "0", "=", "Escape", "3", "Backspace")

	if blob := store.Blob(); blob != nil {
		t.Fatalf("expected nothing persisted, got %s", blob)
	}
}

func TestSessionPersistsClearHistory(t *testing.T) {
	store := history.NewMemoryStore()
	s := NewSession(context.Background(), store, zap.NewNop())
	dispatchKeys(t, s, "2", "*", "2", "=")

	snap, out, err := s.Dispatch(context.Background(), Intent{Type: IntentClearHistory})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.HistoryChanged || len(snap.History) != 0 {
		t.Fatalf("expected cleared history, got %+v", snap.History)
	}
	if got := string(store.Blob()); got != "[]" {
		t.Fatalf("expected persisted %q, got %q", "[]", got)
	}
}

func TestNewSessionHydratesHistory(t *testing.T) {
	store := history.NewMemoryStore()
	store.Seed([]byte(`[{"id":"a1","expression":"6 × 7","result":"42","timestamp":1700000000000}]`))

	s := NewSession(context.Background(), store, zap.NewNop())

	h := s.History()
	if len(h) != 1 || h[0].Result != "42" {
		t.Fatalf("unexpected history %+v", h)
	}

	snap, _, err := s.Dispatch(context.Background(), SelectHistory("a1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.State.CurrentValue != "42" || snap.State.Expression != "42" {
		t.Fatalf("unexpected state %+v", snap.State)
	}
}

func TestNewSessionMalformedHistoryWarnsAndStartsEmpty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := history.NewMemoryStore()
	store.Seed([]byte(`{"not":"an array"}`))

	s := NewSession(context.Background(), store, zap.New(core))

	if n := len(s.History()); n != 0 {
		t.Fatalf("expected empty history, got %d entries", n)
	}

	entries := logs.FilterMessage("discarding malformed persisted history").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected warn level, got %s", entries[0].Level)
	}
}

func TestSessionSaveFailureKeepsInMemoryHistory(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := NewSession(context.Background(), &failingStore{}, zap.New(core))

	snap := dispatchKeys(t, s, "9", "-", "4", "=")

	if len(snap.History) != 1 || snap.History[0].Result != "5" {
		t.Fatalf("expected in-memory history to keep the entry, got %+v", snap.History)
	}

	entries := logs.FilterMessage("persisting history failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 error log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["error"]; got != "disk full" {
		t.Fatalf("expected error %q, got %#v", "disk full", got)
	}
}

func TestSessionDispatchReturnsErrors(t *testing.T) {
	s := NewSession(context.Background(), history.NewMemoryStore(), zap.NewNop())
	dispatchKeys(t, s, "3")

	snap, _, err := s.Dispatch(context.Background(), Intent{Type: "sqrt"})
	if !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent, got %v", err)
	}
	if snap.State.CurrentValue != "3" {
		t.Fatalf("expected snapshot of unchanged state, got %+v", snap.State)
	}

	_, _, err = s.Dispatch(context.Background(), SelectHistory("missing"))
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestSessionSnapshotPreview(t *testing.T) {
	s := NewSession(context.Background(), history.NewMemoryStore(), zap.NewNop())

	snap := dispatchKeys(t, s, "1", "2", "3", "4", "*", "1", "0", "0", "0")

	if snap.Display != "1,000" {
		t.Fatalf("expected display %q, got %q", "1,000", snap.Display)
	}
	if snap.Preview != " = 1,234,000" {
		t.Fatalf("expected preview %q, got %q", " = 1,234,000", snap.Preview)
	}
}

func TestSessionSerialisesConcurrentDispatch(t *testing.T) {
	s := NewSession(context.Background(), history.NewMemoryStore(), zap.NewNop())

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := s.Dispatch(context.Background(), Digit('1')); err != nil {
				t.Errorf("dispatch: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := s.Snapshot().State.CurrentValue; got != strings.Repeat("1", n) {
		t.Fatalf("expected %d ones, got %q", n, got)
	}
}
