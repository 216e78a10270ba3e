package session

import (
	"context"
	"sync"

	"github.com/ssorelay/core/internal/models"
)

// MemoryStore is the single-process reference registry. Insertion order is
// preserved for ListAll; replacing a record keeps its original position.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.SessionRecord
	order   []string
}

// NewMemoryStore creates an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*models.SessionRecord),
	}
}

func (s *MemoryStore) Put(ctx context.Context, rec *models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.Identity]; !exists {
		s.order = append(s.order, rec.Identity)
	}
	s.records[rec.Identity] = rec
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, identity string) (*models.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[identity], nil
}

func (s *MemoryStore) Remove(ctx context.Context, identity string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[identity]; !exists {
		return false, nil
	}
	delete(s.records, identity)
	for i, key := range s.order {
		if key == identity {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]*models.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]*models.SessionRecord, 0, len(s.order))
	for _, identity := range s.order {
		if rec, ok := s.records[identity]; ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }
