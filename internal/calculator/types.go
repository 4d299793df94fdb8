package calculator

// IntentRequest is the JSON body for POST /calculator/intents.
type IntentRequest struct {
	Type  IntentType `json:"type"`
	Value string     `json:"value"`
}

// KeyRequest is the JSON body for POST /calculator/keys.
type KeyRequest struct {
	Key string `json:"key"` // a keyboard key name, e.g. "7", "*", "Enter", "Escape"
}

// DispatchResponse is the JSON response for every state-changing endpoint.
type DispatchResponse struct {
	Snapshot

	// Ignored is set when a key had no binding and nothing was applied.
	Ignored bool `json:"ignored,omitempty"`
	// Recorded is the history entry created by this input, if any.
	Recorded *RecordedEntry `json:"recorded,omitempty"`
}

// RecordedEntry mirrors a new history entry in responses.
type RecordedEntry struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
}

// HistoryResponse is the JSON response for GET /calculator/history.
type HistoryResponse struct {
	Entries []HistoryItem `json:"entries"`
}

// HistoryItem is a history entry with its display-formatted result.
type HistoryItem struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Display    string `json:"display"`
	Timestamp  int64  `json:"timestamp"`
}
