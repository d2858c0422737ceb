package agent

import (
	"sync"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
)

const defaultConversationTTL = time.Hour

type conversation struct {
	userID    int64
	messages  []anthropic.MessageParam
	updatedAt time.Time
}

// ConversationStore keeps message history in memory between chat turns.
// Conversations idle for longer than the TTL are dropped.
type ConversationStore struct {
	mu    sync.Mutex
	items map[string]*conversation
	ttl   time.Duration
	now   func() time.Time
}

// NewConversationStore creates a store. A non-positive ttl means one hour.
func NewConversationStore(ttl time.Duration) *ConversationStore {
	if ttl <= 0 {
		ttl = defaultConversationTTL
	}
	return &ConversationStore{items: map[string]*conversation{}, ttl: ttl, now: time.Now}
}

// Get returns a copy of the history of id. ok is false when the conversation
// is unknown, expired or owned by another user.
func (s *ConversationStore) Get(id string, userID int64) ([]anthropic.MessageParam, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok || c.userID != userID {
		return nil, false
	}
	if s.now().Sub(c.updatedAt) > s.ttl {
		delete(s.items, id)
		return nil, false
	}
	return append([]anthropic.MessageParam(nil), c.messages...), true
}

// Save replaces the history of id.
func (s *ConversationStore) Save(id string, userID int64, messages []anthropic.MessageParam) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, c := range s.items {
		if now.Sub(c.updatedAt) > s.ttl {
			delete(s.items, k)
		}
	}
	s.items[id] = &conversation{userID: userID, messages: messages, updatedAt: now}
}

// Len reports how many conversations are held.
func (s *ConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
