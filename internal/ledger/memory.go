package ledger

import (
	"context"
	"sync"
)

// MemoryStore is a Store that never touches disk. Points are lost on exit.
type MemoryStore struct {
	mu     sync.Mutex
	points map[string]int64
	saves  int
	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(initial map[string]int64) *MemoryStore {
	return &MemoryStore{points: copyPoints(initial)}
}

func (s *MemoryStore) Load(ctx context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.points) == 0 {
		return nil, ErrEmptyLedger
	}
	return copyPoints(s.points), nil
}

func (s *MemoryStore) Save(ctx context.Context, points map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.points = copyPoints(points)
	return nil
}

// Saved returns the last successfully saved mapping.
func (s *MemoryStore) Saved() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPoints(s.points)
}

// Saves counts Save calls, failed ones included.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
