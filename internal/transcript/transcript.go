// Package transcript keeps the recent message history of each chat session.
package transcript

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Roles of a transcript message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one line of a chat transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrSessionRequired is returned when no session id is given.
var ErrSessionRequired = errors.New("transcript: session id required")

// Store appends to and reads session transcripts. List returns the newest
// limit messages in chronological order; limit <= 0 means all.
type Store interface {
	Append(ctx context.Context, sessionID string, msgs ...Message) error
	List(ctx context.Context, sessionID string, limit int64) ([]Message, error)
	Delete(ctx context.Context, sessionID string) error
}

func stamp(msg Message, now time.Time) Message {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now.UTC()
	}
	return msg
}

// MemoryStore is a process-local Store capped at maxMessages per session.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string][]Message
	maxMessages int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory transcript store.
func NewMemoryStore(maxMessages int) *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Message), maxMessages: maxMessages}
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, msgs ...Message) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.sessions[sessionID]
	for _, m := range msgs {
		list = append(list, stamp(m, now))
	}
	if s.maxMessages > 0 && len(list) > s.maxMessages {
		list = append([]Message(nil), list[len(list)-s.maxMessages:]...)
	}
	s.sessions[sessionID] = list
	return nil
}

func (s *MemoryStore) List(_ context.Context, sessionID string, limit int64) ([]Message, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.sessions[sessionID]
	if limit > 0 && int64(len(list)) > limit {
		list = list[int64(len(list))-limit:]
	}
	out := make([]Message, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
