package app

import (
	"sync"
	"time"

	"fraction-tug-service/internal/domain"
)

// ProblemSource hands out fresh problems. *Generator satisfies it.
type ProblemSource interface {
	Generate() domain.Problem
}

// Match owns the state of one tug-of-war match and applies the game rules.
//
// Problems and error indexes are never mutated in place, only replaced, so
// snapshots may share those pointers with the live state.
type Match struct {
	id        string
	problems  ProblemSource
	scheduler Scheduler
	timings   Timings
	now       func() time.Time

	mu          sync.RWMutex
	state       domain.MatchState
	pullSeq     uint64
	errorSeq    map[domain.Team]uint64
	lastActive  time.Time
	subscribers map[chan domain.MatchState]struct{}
}

func NewMatch(id string, problems ProblemSource, scheduler Scheduler, timings Timings) *Match {
	return newMatchWithClock(id, problems, scheduler, timings, time.Now)
}

// NewMatchWithClock is test-only for deterministic timestamps.
func NewMatchWithClock(id string, problems ProblemSource, scheduler Scheduler, timings Timings, now func() time.Time) *Match {
	return newMatchWithClock(id, problems, scheduler, timings, now)
}

func newMatchWithClock(id string, problems ProblemSource, scheduler Scheduler, timings Timings, now func() time.Time) *Match {
	created := now()
	return &Match{
		id:        id,
		problems:  problems,
		scheduler: scheduler,
		timings:   timings,
		now:       now,
		state: domain.MatchState{
			MatchID:   id,
			Status:    domain.StatusNotStarted,
			UpdatedAt: created,
		},
		errorSeq:    make(map[domain.Team]uint64),
		lastActive:  created,
		subscribers: make(map[chan domain.MatchState]struct{}),
	}
}

// ID returns the match identifier.
func (m *Match) ID() string {
	return m.id
}

// Start resets the match and deals a fresh problem to each team.
// Card orientation survives a restart.
func (m *Match) Start() domain.MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()

	p1 := m.problems.Generate()
	p2 := m.problems.Generate()
	m.resetLocked(domain.StatusInProgress)
	m.state.Team1.Problem = &p1
	m.state.Team2.Problem = &p2

	return m.broadcastLocked()
}

// Quit abandons the current match and returns to the start screen.
func (m *Match) Quit() domain.MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked(domain.StatusNotStarted)
	return m.broadcastLocked()
}

func (m *Match) resetLocked(status domain.Status) {
	flipped1, flipped2 := m.state.Team1.Flipped, m.state.Team2.Flipped
	m.state = domain.MatchState{
		MatchID: m.id,
		Epoch:   m.state.Epoch + 1,
		Status:  status,
		Team1:   domain.TeamState{Flipped: flipped1},
		Team2:   domain.TeamState{Flipped: flipped2},
	}
}

// Submit applies a team's answer. Answers outside an active match are
// ignored without error.
func (m *Match) Submit(team domain.Team, option int) (domain.MatchState, error) {
	if !team.Valid() {
		return m.Snapshot(), domain.ErrUnknownTeam
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status != domain.StatusInProgress {
		return m.state, nil
	}

	side := m.sideLocked(team)
	if side.Problem == nil {
		return m.state, domain.ErrNoProblem
	}
	if option < 0 || option >= len(side.Problem.Options) {
		return m.state, domain.ErrOptionOutOfRange
	}

	epoch := m.state.Epoch
	if option == side.Problem.CorrectIndex {
		side.Score++
		next := m.problems.Generate()
		side.Problem = &next
		m.state.RopePosition = domain.ClampRope(m.state.RopePosition + team.Direction()*domain.PullStep)

		m.state.PullInProgress = true
		m.pullSeq++
		seq := m.pullSeq
		m.scheduler.AfterFunc(m.timings.PullAnimation, func() { m.clearPull(epoch, seq) })
	} else {
		side.Score = max(0, side.Score-1)
		m.state.RopePosition = domain.ClampRope(m.state.RopePosition - team.Direction()*domain.PullStep)

		idx := option
		side.ErrorIndex = &idx
		m.errorSeq[team]++
		seq := m.errorSeq[team]
		m.scheduler.AfterFunc(m.timings.ErrorHighlight, func() { m.clearError(team, epoch, seq) })
	}

	switch {
	case m.state.RopePosition <= -domain.WinThreshold:
		m.state.Status = domain.StatusFinished
		m.state.Winner = domain.Team1
	case m.state.RopePosition >= domain.WinThreshold:
		m.state.Status = domain.StatusFinished
		m.state.Winner = domain.Team2
	}

	return m.broadcastLocked(), nil
}

// ToggleFlip turns a team's card upside down for players sitting opposite.
func (m *Match) ToggleFlip(team domain.Team) (domain.MatchState, error) {
	if !team.Valid() {
		return m.Snapshot(), domain.ErrUnknownTeam
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	side := m.sideLocked(team)
	side.Flipped = !side.Flipped
	return m.broadcastLocked(), nil
}

func (m *Match) clearPull(epoch, seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Epoch != epoch || m.pullSeq != seq {
		return
	}
	m.state.PullInProgress = false
	m.broadcastLocked()
}

func (m *Match) clearError(team domain.Team, epoch, seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Epoch != epoch || m.errorSeq[team] != seq {
		return
	}
	m.sideLocked(team).ErrorIndex = nil
	m.broadcastLocked()
}

func (m *Match) sideLocked(team domain.Team) *domain.TeamState {
	if team == domain.Team1 {
		return &m.state.Team1
	}
	return &m.state.Team2
}

// Snapshot returns a copy of the current state.
func (m *Match) Snapshot() domain.MatchState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastActive reports when the match last changed.
func (m *Match) LastActive() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastActive
}

// Watched reports whether any view is subscribed.
func (m *Match) Watched() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers) > 0
}

func (m *Match) subscribe() (<-chan domain.MatchState, func()) {
	ch := make(chan domain.MatchState, 8)

	m.mu.Lock()
	ch <- m.state
	m.subscribers[ch] = struct{}{}
	m.lastActive = m.now()
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.lastActive = m.now()
		m.mu.Unlock()
	}
	return ch, cancel
}

// broadcastLocked stamps the state and pushes it to every subscriber,
// replacing a queued stale snapshot when a subscriber falls behind.
func (m *Match) broadcastLocked() domain.MatchState {
	now := m.now()
	m.lastActive = now
	m.state.UpdatedAt = now

	snapshot := m.state
	for ch := range m.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
	return snapshot
}
