package history

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedHistory marks a persisted history blob that does not parse or
// does not match the entry schema.
var ErrMalformedHistory = errors.New("malformed persisted history")

const entrySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "expression", "result", "timestamp"],
    "properties": {
      "id":         {"type": "string", "minLength": 1},
      "expression": {"type": "string"},
      "result":     {"type": "string", "pattern": "^(-?(\\d+\\.?\\d*|\\.\\d+)(e[+-]\\d+)?|-?Infinity|NaN|Error)$"},
      "timestamp":  {"type": "integer"}
    }
  }
}`

var entrySchema = jsonschema.MustCompileString("calc_history.schema.json", entrySchemaJSON)

// Decode validates and parses a persisted history blob. Entries past
// Capacity are dropped.
func Decode(data []byte) ([]Entry, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHistory, err)
	}

	if err := entrySchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHistory, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHistory, err)
	}

	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}
	return entries, nil
}

// Encode serialises entries as a JSON array. A nil slice encodes as [].
func Encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return data, nil
}
