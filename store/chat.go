package store

import (
	"sync"

	"github.com/google/uuid"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is a single message in a conversation. Immutable once appended.
type ChatTurn struct {
	Role    string
	Content string
}

// ChatStore keeps per-session conversation history in memory. History is
// scoped to the process lifetime: nothing is persisted and a restart clears
// all sessions. Turns are append-only; no role alternation is enforced.
type ChatStore struct {
	mu       sync.RWMutex
	sessions map[string][]ChatTurn
}

// NewChatStore creates an empty chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{sessions: make(map[string][]ChatTurn)}
}

// NewSessionID issues a fresh session identifier.
func (s *ChatStore) NewSessionID() string {
	return uuid.New().String()[:8]
}

// Append adds a turn to the session's history, creating the session if needed.
func (s *ChatStore) Append(sessionID string, turn ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turn)
}

// History returns a copy of the session's turns in append order. An unknown
// session yields an empty history.
func (s *ChatStore) History(sessionID string) []ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	out := make([]ChatTurn, len(turns))
	copy(out, turns)
	return out
}
