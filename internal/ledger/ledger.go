package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("no points recorded")
	ErrEmptyLedger = errors.New("ledger is empty")
)

// Store persists the full identity -> score mapping.
type Store interface {
	Load(ctx context.Context) (map[string]int64, error)
	Save(ctx context.Context, points map[string]int64) error
}

type Entry struct {
	Identity string `json:"identity"`
	Score    int64  `json:"score"`
}

type Option func(*Ledger)

// WithSaveRetries retries a failed Save up to n additional times.
func WithSaveRetries(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.saveRetries = n
		}
	}
}

// Ledger is the in-memory score table. Every mutation is written through
// to the Store before the call returns.
type Ledger struct {
	mu          sync.RWMutex
	points      map[string]int64
	store       Store
	logger      *zap.Logger
	saveRetries int
	retryDelay  time.Duration
}

// Open loads the ledger from store. A failed or empty load is not fatal:
// the ledger starts empty and the failure is logged.
func Open(ctx context.Context, store Store, logger *zap.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		store:      store,
		logger:     logger,
		retryDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}

	points, err := store.Load(ctx)
	if err != nil {
		logger.Warn("No points loaded from storage", zap.Error(err))
		points = make(map[string]int64)
	} else {
		logger.Info("Points loaded from storage", zap.Int("entries", len(points)))
	}
	l.points = points
	return l
}

// Get returns the score for id, or 0 when id has no entry.
func (l *Ledger) Get(id string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.points[id]
}

// Lookup is Get that also reports whether id has an entry.
func (l *Ledger) Lookup(id string) (int64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.points[id]
	return v, ok
}

// Adjust adds delta to id's score and persists the ledger. The returned error
// is only ever a persistence failure; the new score is kept in memory either way.
func (l *Ledger) Adjust(ctx context.Context, id string, delta int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.points[id] += delta
	score := l.points[id]
	if err := l.persist(ctx); err != nil {
		return score, err
	}
	return score, nil
}

// Remove deletes id's entry and persists the ledger.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.points[id]; !ok {
		return fmt.Errorf("%w for %s", ErrNotFound, id)
	}
	delete(l.points, id)
	return l.persist(ctx)
}

// TopN returns at most n entries, highest score first, ties by identity.
// Only identities starting with prefix are considered. ok is false when no
// identity matched.
func (l *Ledger) TopN(n int, prefix string) (entries []Entry, ok bool) {
	l.mu.RLock()
	for id, score := range l.points {
		if prefix != "" && !strings.HasPrefix(id, prefix) {
			continue
		}
		entries = append(entries, Entry{Identity: id, Score: score})
	}
	l.mu.RUnlock()

	if len(entries) == 0 {
		return nil, false
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Identity < entries[j].Identity
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, true
}

// Snapshot returns a copy of the current mapping.
func (l *Ledger) Snapshot() map[string]int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyPoints(l.points)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.points)
}

// persist must be called with l.mu held.
func (l *Ledger) persist(ctx context.Context) error {
	snapshot := copyPoints(l.points)

	var err error
	for attempt := 0; attempt <= l.saveRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("save points: %w", ctx.Err())
			case <-time.After(l.retryDelay):
			}
		}
		if err = l.store.Save(ctx, snapshot); err == nil {
			l.logger.Debug("Points saved", zap.Int("entries", len(snapshot)))
			return nil
		}
		l.logger.Warn("Saving points failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return fmt.Errorf("save points: %w", err)
}

func copyPoints(points map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(points))
	for k, v := range points {
		out[k] = v
	}
	return out
}
