package calculator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"neonflow/internal/history"
	"neonflow/internal/testutil"
)

func newTestHandler(t *testing.T) (http.Handler, *Session) {
	t.Helper()
	s := NewSession(context.Background(), history.NewMemoryStore(), zap.NewNop())
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(s))
	return r, s
}

func postKey(t *testing.T, h http.Handler, key string) DispatchResponse {
	t.Helper()
	w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/keys", KeyRequest{Key: key}), h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp DispatchResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	return resp
}

func TestStateHandlerReturnsInitialSnapshot(t *testing.T) {
	h, _ := newTestHandler(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator", nil), h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var payload map[string]any
	testutil.DecodeJSONBody(t, w.Body, &payload)

	state, ok := payload["state"].(map[string]any)
	if !ok {
		t.Fatalf("expected state object, got %#v", payload["state"])
	}
	if state["currentValue"] != "0" {
		t.Fatalf("expected currentValue %q, got %#v", "0", state["currentValue"])
	}
	if op, present := state["operator"]; !present || op != nil {
		t.Fatalf("expected operator null, got %#v", op)
	}
	if payload["display"] != "0" {
		t.Fatalf("expected display %q, got %#v", "0", payload["display"])
	}
}

func TestIntentHandlerAppliesIntent(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, in := range []IntentRequest{
		{Type: IntentDigit, Value: "9"},
		{Type: IntentOperator, Value: "/"},
		{Type: IntentDigit, Value: "2"},
	} {
		w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/intents", in), h)
		testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	}

	w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/intents", IntentRequest{Type: IntentEquals}), h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp DispatchResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if resp.State.CurrentValue != "4.5" {
		t.Fatalf("expected %q, got %q", "4.5", resp.State.CurrentValue)
	}
	if resp.Recorded == nil || resp.Recorded.Expression != "9 ÷ 2" {
		t.Fatalf("expected recorded entry, got %+v", resp.Recorded)
	}
}

func TestIntentHandlerRejectsInvalidInput(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{name: "bad json", req: httptest.NewRequest(http.MethodPost, "/calculator/intents", nil)},
		{name: "unknown type", req: testutil.NewJSONRequest(t, http.MethodPost, "/calculator/intents", IntentRequest{Type: "sqrt"})},
		{name: "bad digit", req: testutil.NewJSONRequest(t, http.MethodPost, "/calculator/intents", IntentRequest{Type: IntentDigit, Value: "x"})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := testutil.ExecuteRequest(tc.req, h)
			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			testutil.DecodeJSONBody(t, w.Body, &body)
			if body["error"] == "" {
				t.Fatal("expected error message in body")
			}
		})
	}
}

func TestKeyHandlerIgnoresUnboundKeys(t *testing.T) {
	h, _ := newTestHandler(t)
	postKey(t, h, "4")

	resp := postKey(t, h, "Tab")

	if !resp.Ignored {
		t.Fatal("expected ignored flag")
	}
	if resp.State.CurrentValue != "4" {
		t.Fatalf("expected state untouched, got %q", resp.State.CurrentValue)
	}
}

func TestKeyHandlerDivisionByZero(t *testing.T) {
	h, s := newTestHandler(t)

	var resp DispatchResponse
	for _, key := range []string{"5", "/", "0", "Enter"} {
		resp = postKey(t, h, key)
	}

	if resp.State.CurrentValue != "Error" || resp.Display != "Error" {
		t.Fatalf("expected error display, got %+v", resp.Snapshot)
	}
	if n := len(s.History()); n != 0 {
		t.Fatalf("expected no history, got %d", n)
	}
}

func TestHistoryHandlers(t *testing.T) {
	h, s := newTestHandler(t)
	for _, key := range []string{"9", "9", "9", "*", "2", "="} {
		postKey(t, h, key)
	}

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/history", nil), h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var list HistoryResponse
	testutil.DecodeJSONBody(t, w.Body, &list)
	if len(list.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list.Entries))
	}
	entry := list.Entries[0]
	if entry.Result != "1998" || entry.Display != "1,998" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	postKey(t, h, "Escape")

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/history/"+entry.ID+"/use", nil), h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if got := s.Snapshot().State.CurrentValue; got != "1998" {
		t.Fatalf("expected history result loaded, got %q", got)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/history/nope/use", nil), h)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/history", nil), h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if n := len(s.History()); n != 0 {
		t.Fatalf("expected cleared history, got %d", n)
	}
}
