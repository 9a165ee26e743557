package session

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/salon-concierge/pkg/logging"
)

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. A zero ttl disables expiry.
type MemoryStore struct {
	*KeyedMutex

	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	logger  *logging.Logger
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Locker = (*MemoryStore)(nil)
)

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(ttl time.Duration, logger *logging.Logger) *MemoryStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryStore{
		KeyedMutex: NewKeyedMutex(),
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		now:        time.Now,
		logger:     logger,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (State, error) {
	if id == "" {
		return State{}, ErrEmptyID
	}
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || s.expired(entry) {
		return New(), nil
	}
	return entry.state, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, state State) error {
	if id == "" {
		return ErrEmptyID
	}
	now := s.now()
	state = state.normalized()
	state.UpdatedAt = now.UTC()

	entry := memoryEntry{state: state}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[id] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps every interval until ctx is cancelled.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					s.logger.Debug("expired sessions swept", "count", n)
				}
			}
		}
	}()
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}
