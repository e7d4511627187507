package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store exposes conversation history for services and handlers.
type Store interface {
	GetOrCreate(chatID string) []Message
	Append(chatID string, msgs ...Message)
}

// MemoryStore keeps conversations in process memory, keyed by an opaque
// caller-supplied chat id. Conversations are never evicted; history grows
// for the lifetime of the process.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]Message
}

// NewMemoryStore bootstraps an empty in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string][]Message),
	}
}

// GetOrCreate returns a snapshot of the conversation, initializing an
// empty one the first time a chat id is seen. The returned slice is a
// copy; callers never observe a conversation mid-append.
func (s *MemoryStore) GetOrCreate(chatID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.conversations[chatID]
	if !ok {
		s.conversations[chatID] = make([]Message, 0, 16)
		return []Message{}
	}

	copied := make([]Message, len(msgs))
	copy(copied, msgs)
	return copied
}

// Append adds messages to the conversation in input order, creating the
// conversation if absent. The whole batch lands under one lock hold, so
// concurrent appends to the same chat id never interleave.
func (s *MemoryStore) Append(chatID string, msgs ...Message) {
	if len(msgs) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range msgs {
		if msgs[i].ID == "" {
			msgs[i].ID = uuid.NewString()
		}
		if msgs[i].Timestamp.IsZero() {
			msgs[i].Timestamp = time.Now().UTC()
		}
	}

	s.conversations[chatID] = append(s.conversations[chatID], msgs...)
}
