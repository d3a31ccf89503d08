package http

import "fraction-tug-service/internal/domain"

var teamNames = map[domain.Team]string{
	domain.Team1: "Magma Riders",
	domain.Team2: "Volt Blasters",
}

// matchView is the snapshot plus what the page needs to draw it.
type matchView struct {
	domain.MatchState
	// RopeOffset is the rope marker's distance from the left edge, in percent.
	RopeOffset   float64 `json:"ropeOffset"`
	Team1Name    string  `json:"team1Name"`
	Team2Name    string  `json:"team2Name"`
	Team1Leaning bool    `json:"team1Leaning"`
	Team2Leaning bool    `json:"team2Leaning"`
}

func projectView(state domain.MatchState) matchView {
	return matchView{
		MatchState:   state,
		RopeOffset:   50 + float64(state.RopePosition)/2,
		Team1Name:    teamNames[domain.Team1],
		Team2Name:    teamNames[domain.Team2],
		Team1Leaning: state.RopePosition < 0,
		Team2Leaning: state.RopePosition > 0,
	}
}
