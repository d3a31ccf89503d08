package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"fraction-tug-service/internal/app"
	"fraction-tug-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// MatchStore is a Redis-aware implementation of app.MatchRepository.
// Notes:
//   - Matches still live in a local map so timers and broadcasts stay in-process.
//   - Redis holds a liveness key per match and a JSON copy of the latest
//     snapshot, both expiring after ttl and both removed on Delete.
type MatchStore struct {
	client  *redis.Client
	ttl     time.Duration
	mu      sync.RWMutex
	matches map[string]*app.Match
}

func NewMatchStore(client *redis.Client, ttl time.Duration) *MatchStore {
	return &MatchStore{
		client:  client,
		ttl:     ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(matchID), "1", s.ttl).Err()
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
	_ = s.client.Del(context.Background(), s.key(matchID), s.stateKey(matchID)).Err()
}

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

// Mirror stores the snapshot and refreshes the liveness marker.
func (s *MatchStore) Mirror(ctx context.Context, state domain.MatchState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal match state: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.stateKey(state.MatchID), data, s.ttl)
	pipe.Set(ctx, s.key(state.MatchID), "1", s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror match state: %w", err)
	}
	return nil
}

// LoadSnapshot reads the mirrored snapshot of a match.
func (s *MatchStore) LoadSnapshot(ctx context.Context, matchID string) (domain.MatchState, error) {
	data, err := s.client.Get(ctx, s.stateKey(matchID)).Bytes()
	if err == redis.Nil {
		return domain.MatchState{}, domain.ErrMatchNotFound
	}
	if err != nil {
		return domain.MatchState{}, fmt.Errorf("load match state: %w", err)
	}
	var state domain.MatchState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.MatchState{}, fmt.Errorf("unmarshal match state: %w", err)
	}
	return state, nil
}

func (s *MatchStore) key(matchID string) string {
	return "tugwar:match:" + matchID
}

func (s *MatchStore) stateKey(matchID string) string {
	return "tugwar:match:" + matchID + ":state"
}
