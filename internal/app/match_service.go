package app

import (
	"context"
	"crypto/rand"
	"log"
	"time"

	"fraction-tug-service/internal/domain"
)

// MatchRepository abstracts where live matches are kept (in-memory, Redis, etc).
type MatchRepository interface {
	GetOrCreate(matchID string, create func(matchID string) *Match) *Match
	Get(matchID string) (*Match, bool)
	Delete(matchID string)
	IDs() []string
}

// SnapshotMirror is implemented by repositories that copy the latest
// snapshot of a match out of the process.
type SnapshotMirror interface {
	Mirror(ctx context.Context, state domain.MatchState) error
}

// MatchService contains the match use cases exposed to views.
type MatchService struct {
	matches   MatchRepository
	problems  ProblemSource
	scheduler Scheduler
	timings   Timings
}

func NewMatchService(store MatchRepository, problems ProblemSource, scheduler Scheduler, timings Timings) *MatchService {
	return &MatchService{
		matches:   store,
		problems:  problems,
		scheduler: scheduler,
		timings:   timings,
	}
}

// Open returns the match with the given id, creating it on the start screen if needed.
func (s *MatchService) Open(ctx context.Context, matchID string) (domain.MatchState, error) {
	if matchID == "" {
		return domain.MatchState{}, domain.ErrMatchNotFound
	}
	match := s.matches.GetOrCreate(matchID, s.newMatch)
	return match.Snapshot(), nil
}

func (s *MatchService) newMatch(matchID string) *Match {
	return NewMatch(matchID, s.problems, s.scheduler, s.timings)
}

// Start begins (or restarts) a match with fresh problems for both teams.
func (s *MatchService) Start(ctx context.Context, matchID string) (domain.MatchState, error) {
	match, ok := s.matches.Get(matchID)
	if !ok {
		return domain.MatchState{}, domain.ErrMatchNotFound
	}
	state := match.Start()
	s.mirror(ctx, state)
	return state, nil
}

// SubmitAnswer records a team's choice and moves the rope.
func (s *MatchService) SubmitAnswer(ctx context.Context, matchID string, team domain.Team, option int) (domain.MatchState, error) {
	match, ok := s.matches.Get(matchID)
	if !ok {
		return domain.MatchState{}, domain.ErrMatchNotFound
	}
	state, err := match.Submit(team, option)
	if err != nil {
		return state, err
	}
	s.mirror(ctx, state)
	return state, nil
}

// Quit ends the match and returns it to the start screen.
func (s *MatchService) Quit(ctx context.Context, matchID string) (domain.MatchState, error) {
	match, ok := s.matches.Get(matchID)
	if !ok {
		return domain.MatchState{}, domain.ErrMatchNotFound
	}
	state := match.Quit()
	s.mirror(ctx, state)
	return state, nil
}

// ToggleFlip flips the orientation of a team's card.
func (s *MatchService) ToggleFlip(_ context.Context, matchID string, team domain.Team) (domain.MatchState, error) {
	match, ok := s.matches.Get(matchID)
	if !ok {
		return domain.MatchState{}, domain.ErrMatchNotFound
	}
	return match.ToggleFlip(team)
}

// Snapshot returns the current state of a match.
func (s *MatchService) Snapshot(_ context.Context, matchID string) (domain.MatchState, error) {
	match, ok := s.matches.Get(matchID)
	if !ok {
		return domain.MatchState{}, domain.ErrMatchNotFound
	}
	return match.Snapshot(), nil
}

// Subscribe returns a channel that receives every re-render of a match.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *MatchService) Subscribe(_ context.Context, matchID string) (<-chan domain.MatchState, func(), error) {
	match, ok := s.matches.Get(matchID)
	if !ok {
		return nil, nil, domain.ErrMatchNotFound
	}
	ch, cancel := match.subscribe()
	return ch, cancel, nil
}

// NewMatchID generates a random 8-character id not used by a live match.
func (s *MatchService) NewMatchID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		for i := range buf {
			buf[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(buf)
		if _, exists := s.matches.Get(id); !exists {
			return id
		}
	}
}

// ReapIdle removes unwatched matches that have not changed since cutoff and
// returns how many were removed.
func (s *MatchService) ReapIdle(cutoff time.Time) int {
	reaped := 0
	for _, id := range s.matches.IDs() {
		match, ok := s.matches.Get(id)
		if !ok {
			continue
		}
		if match.Watched() || !match.LastActive().Before(cutoff) {
			continue
		}
		s.matches.Delete(id)
		reaped++
	}
	return reaped
}

func (s *MatchService) mirror(ctx context.Context, state domain.MatchState) {
	mirror, ok := s.matches.(SnapshotMirror)
	if !ok {
		return
	}
	if err := mirror.Mirror(ctx, state); err != nil {
		log.Printf("mirror match %s: %v", state.MatchID, err)
	}
}
