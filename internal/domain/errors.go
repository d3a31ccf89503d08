package domain

import "errors"

var (
	// ErrMatchNotFound is returned when a match has not been opened.
	ErrMatchNotFound = errors.New("match not found")
	// ErrUnknownTeam indicates a team id other than TEAM_1 or TEAM_2.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrOptionOutOfRange indicates a submitted option index outside the problem's options.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrNoProblem indicates the team has no active problem to answer.
	ErrNoProblem = errors.New("team has no active problem")
)
