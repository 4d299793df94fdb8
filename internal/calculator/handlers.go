package calculator

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"neonflow/internal/handlers"
	"neonflow/internal/observability"
)

// Handler serves the calculator session over HTTP.
type Handler struct {
	session *Session
}

func NewHandler(session *Session) *Handler {
	return &Handler{session: session}
}

// State handles GET /calculator
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, DispatchResponse{Snapshot: h.session.Snapshot()})
}

// Intent handles POST /calculator/intents
func (h *Handler) Intent(w http.ResponseWriter, r *http.Request) {
	var req IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, "intent", "invalid request body", err, http.StatusBadRequest)
		return
	}

	h.dispatch(w, r, Intent{Type: req.Type, Value: req.Value})
}

// Key handles POST /calculator/keys and forwards a keyboard key. Keys without a
// binding leave the state untouched.
func (h *Handler) Key(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, "key", "invalid request body", err, http.StatusBadRequest)
		return
	}

	in, ok := IntentForKey(req.Key)
	if !ok {
		observability.LoggerWithTrace(r.Context()).Debug("ignoring unbound key",
			zap.String("key", req.Key),
			zap.String("request_id", observability.RequestIDFromContext(r.Context())),
		)
		handlers.WriteJSON(w, http.StatusOK, DispatchResponse{Snapshot: h.session.Snapshot(), Ignored: true})
		return
	}

	h.dispatch(w, r, in)
}

// History handles GET /calculator/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	entries := h.session.History()

	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryItem{
			ID:         e.ID,
			Expression: e.Expression,
			Result:     e.Result,
			Display:    Format(e.Result),
			Timestamp:  e.Timestamp,
		})
	}
	handlers.WriteJSON(w, http.StatusOK, HistoryResponse{Entries: items})
}

// ClearHistory handles DELETE /calculator/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, Intent{Type: IntentClearHistory})
}

// UseHistoryEntry handles POST /calculator/history/{id}/use
func (h *Handler) UseHistoryEntry(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, SelectHistory(chi.URLParam(r, "id")))
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, in Intent) {
	snap, out, err := h.session.Dispatch(r.Context(), in)
	switch {
	case errors.Is(err, ErrInvalidIntent):
		h.fail(w, r, string(in.Type), err.Error(), err, http.StatusBadRequest)
		return
	case errors.Is(err, ErrEntryNotFound):
		h.fail(w, r, string(in.Type), "history entry not found", err, http.StatusNotFound)
		return
	case err != nil:
		h.fail(w, r, string(in.Type), "dispatch failed", err, http.StatusInternalServerError)
		return
	}

	resp := DispatchResponse{Snapshot: snap}
	if out.Recorded != nil {
		resp.Recorded = &RecordedEntry{
			ID:         out.Recorded.ID,
			Expression: out.Recorded.Expression,
			Result:     out.Recorded.Result,
		}
	}
	handlers.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, opName, msg string, err error, status int) {
	ctx := r.Context()
	observability.RecordError(ctx, trace.SpanFromContext(ctx), observability.LoggerWithTrace(ctx), errorCounter, opName, msg, err, status, w)
}
