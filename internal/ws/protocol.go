package ws

import (
	"dilemma-lab/internal/game"
	"dilemma-lab/internal/game/viewmodel"
)

const ProtocolVersion = "1.0"

const (
	TypeStart       = "start"
	TypeStep        = "step"
	TypeResume      = "resume"
	TypeStateUpdate = "state_update"
	TypeGameOver    = "game_over"
	TypeError       = "error"
)

type StartMessage struct {
	Type      string             `json:"type"`
	NumRounds *int               `json:"num_rounds,omitempty"`
	Strategy  string             `json:"strategy,omitempty"`
	Payoffs   *game.PayoffMatrix `json:"payoffs,omitempty"`
}

type StepMessage struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

type ResumeMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type StateUpdate struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	viewmodel.StateView
}

type GameOver struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	SessionID       string           `json:"session_id"`
	TotalRounds     int              `json:"total_rounds"`
	FinalScores     game.FinalScores `json:"final_scores"`
	Winner          string           `json:"winner"`
}

type ErrorMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Error           string `json:"error"`
}
