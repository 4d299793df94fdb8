package history

import (
	"context"
	"sync"
)

// MemoryStore keeps the encoded record in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed replaces the stored blob verbatim, bypassing encoding.
func (s *MemoryStore) Seed(blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = append([]byte(nil), blob...)
}

// Blob returns a copy of the stored record, or nil if nothing was saved.
func (s *MemoryStore) Blob() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blob == nil {
		return nil
	}
	return append([]byte(nil), s.blob...)
}

func (s *MemoryStore) Load(ctx context.Context) ([]Entry, error) {
	blob := s.Blob()
	if blob == nil {
		return nil, nil
	}
	return Decode(blob)
}

func (s *MemoryStore) Save(ctx context.Context, entries []Entry) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}
	s.Seed(data)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
