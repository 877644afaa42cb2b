package memory

import (
	"sort"
	"sync"

	"coinassist/internal/domain/models"
)

// SessionStore keeps a bounded conversation history per session. Eviction is
// FIFO: once a session exceeds capacity the oldest turns are dropped, since
// conversation recency, not access, determines relevance. Nothing survives a
// process restart.
type SessionStore struct {
	capacity int

	mu       sync.RWMutex
	sessions map[string]*session
}

// session serializes mutations for one session id. Different sessions never
// contend on it.
type session struct {
	mu    sync.Mutex
	turns []models.ConversationTurn
}

// NewSessionStore creates a session store holding at most capacity turns
// per session
func NewSessionStore(capacity int) *SessionStore {
	return &SessionStore{
		capacity: capacity,
		sessions: make(map[string]*session),
	}
}

// Append adds a turn to a session's history, creating the session on first
// use and evicting from the front once capacity is exceeded.
func (s *SessionStore) Append(sessionID string, turn models.ConversationTurn) {
	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns, turn)
	if excess := len(sess.turns) - s.capacity; excess > 0 {
		sess.turns = append(sess.turns[:0:0], sess.turns[excess:]...)
	}
}

// LastEntity returns the most recently mentioned entity in a session,
// scanning turns from newest to oldest. It returns "" when no turn carries
// an entity or the session has no history.
func (s *SessionStore) LastEntity(sessionID string) string {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return ""
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	for i := len(sess.turns) - 1; i >= 0; i-- {
		if sess.turns[i].Entity != "" {
			return sess.turns[i].Entity
		}
	}
	return ""
}

// History returns a copy of a session's turns in chronological order
func (s *SessionStore) History(sessionID string) []models.ConversationTurn {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]models.ConversationTurn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// Clear removes a session entirely. A later Append recreates it empty, so a
// pronoun query right after a reset resolves to nothing.
func (s *SessionStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// ActiveSessions returns the ids of all sessions with history, sorted
func (s *SessionStore) ActiveSessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *SessionStore) getOrCreate(sessionID string) *session {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	sess = &session{}
	s.sessions[sessionID] = sess
	return sess
}
