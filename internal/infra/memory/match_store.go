package memory

import (
	"sort"
	"sync"

	"fraction-tug-service/internal/app"
)

// MatchStore is an in-memory implementation of app.MatchRepository.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]*app.Match
}

func NewMatchStore() *MatchStore {
	return &MatchStore{
		matches: make(map[string]*app.Match),
	}
}

func (s *MatchStore) GetOrCreate(matchID string, create func(string) *app.Match) *app.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	if match, ok := s.matches[matchID]; ok {
		return match
	}
	match := create(matchID)
	s.matches[matchID] = match
	return match
}

func (s *MatchStore) Get(matchID string) (*app.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[matchID]
	return match, ok
}

func (s *MatchStore) Delete(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, matchID)
}

// IDs returns the ids of all live matches in sorted order.
func (s *MatchStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.matches))
	for id := range s.matches {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
