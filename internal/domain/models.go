package domain

import "time"

const (
	// RopeLimit bounds the rope position on both sides.
	RopeLimit = 100
	// PullStep is how far a single answer moves the rope.
	PullStep = 20
	// WinThreshold ends the match before the rope reaches the limit.
	WinThreshold = 98
	// OptionCount is the number of multiple-choice options per problem.
	OptionCount = 4

	MinDenominator = 3
	MaxDenominator = 10
)

// Fraction is a numerator over a denominator shared by a whole problem.
type Fraction struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// Operator is the arithmetic operation of a problem.
type Operator string

const (
	OperatorAdd      Operator = "+"
	OperatorSubtract Operator = "-"
)

// Problem is an immutable multiple-choice fraction exercise.
type Problem struct {
	ID           string                `json:"id"`
	Operands     [2]Fraction           `json:"operands"`
	Operator     Operator              `json:"operator"`
	Options      [OptionCount]Fraction `json:"options"`
	CorrectIndex int                   `json:"correctIndex"`
}

// Result returns the numerator of the true answer.
func (p Problem) Result() int {
	if p.Operator == OperatorSubtract {
		return p.Operands[0].Numerator - p.Operands[1].Numerator
	}
	return p.Operands[0].Numerator + p.Operands[1].Numerator
}

// Denominator returns the denominator shared by operands and options.
func (p Problem) Denominator() int {
	return p.Operands[0].Denominator
}

// Valid reports whether the problem satisfies every structural invariant:
// a shared denominator, distinct non-negative option numerators, and a
// correct index pointing at the true result.
func (p Problem) Valid() bool {
	den := p.Denominator()
	if den < MinDenominator || den > MaxDenominator || p.Operands[1].Denominator != den {
		return false
	}
	n1, n2 := p.Operands[0].Numerator, p.Operands[1].Numerator
	switch p.Operator {
	case OperatorAdd:
		if n1 < 1 || n2 < 1 || n1+n2 > den {
			return false
		}
	case OperatorSubtract:
		if n1 < 2 || n1 > den-1 || n2 < 1 || n1-n2 < 1 {
			return false
		}
	default:
		return false
	}
	if p.CorrectIndex < 0 || p.CorrectIndex >= OptionCount {
		return false
	}

	seen := make(map[int]struct{}, OptionCount)
	for _, opt := range p.Options {
		if opt.Denominator != den || opt.Numerator < 0 {
			return false
		}
		if _, dup := seen[opt.Numerator]; dup {
			return false
		}
		seen[opt.Numerator] = struct{}{}
	}
	return p.Options[p.CorrectIndex].Numerator == p.Result()
}

// Team identifies one side of the rope.
type Team string

const (
	Team1 Team = "TEAM_1"
	Team2 Team = "TEAM_2"
)

// Valid reports whether t is one of the two playing teams.
func (t Team) Valid() bool {
	return t == Team1 || t == Team2
}

// Direction is the sign of a pull toward this team's side.
func (t Team) Direction() int {
	if t == Team1 {
		return -1
	}
	return 1
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == Team1 {
		return Team2
	}
	return Team1
}

// Status is the match lifecycle state.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
)

// TeamState holds the per-team portion of a match.
type TeamState struct {
	Score      int      `json:"score"`
	Problem    *Problem `json:"problem,omitempty"`
	ErrorIndex *int     `json:"errorIndex,omitempty"`
	Flipped    bool     `json:"flipped"`
}

// MatchState is a read-only snapshot of a match.
type MatchState struct {
	MatchID        string    `json:"matchId"`
	Epoch          uint64    `json:"epoch"`
	Status         Status    `json:"status"`
	RopePosition   int       `json:"ropePosition"`
	Winner         Team      `json:"winner,omitempty"`
	Team1          TeamState `json:"team1"`
	Team2          TeamState `json:"team2"`
	PullInProgress bool      `json:"pullInProgress"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Side returns the state of the given team.
func (s MatchState) Side(t Team) TeamState {
	if t == Team1 {
		return s.Team1
	}
	return s.Team2
}

// ClampRope bounds a rope position to [-RopeLimit, RopeLimit].
func ClampRope(pos int) int {
	return min(RopeLimit, max(-RopeLimit, pos))
}
