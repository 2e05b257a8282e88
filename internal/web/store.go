package web

import (
	"errors"
	"sync"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/game"
	"github.com/google/uuid"
)

var ErrGameNotFound = errors.New("game not found")

// session serialises access to one game; a Game is not safe for concurrent use.
type session struct {
	mu   sync.Mutex
	game *game.Game
}

// Store holds the analysis sessions of a running server in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*session)}
}

// Add registers g under a fresh id.
func (s *Store) Add(g *game.Game) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{game: g}
	s.mu.Unlock()
	return id
}

// With runs fn against the game with the given id while holding its lock.
func (s *Store) With(id string, fn func(*game.Game) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrGameNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.game)
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
