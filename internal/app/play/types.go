package play

import (
	"dilemma-lab/internal/game"
	"dilemma-lab/internal/game/viewmodel"
)

// StartInput is a new-game request. A nil NumRounds uses the configured
// default; an empty Strategy means tit_for_tat; a nil Payoffs uses the
// server matrix.
type StartInput struct {
	NumRounds *int               `json:"num_rounds"`
	Strategy  string             `json:"strategy"`
	Payoffs   *game.PayoffMatrix `json:"payoffs,omitempty"`
}

type StartResult struct {
	SessionID string              `json:"session_id"`
	State     viewmodel.StateView `json:"state"`
}

type StepResult struct {
	State  viewmodel.StateView `json:"state"`
	Done   bool                `json:"done"`
	Winner string              `json:"winner,omitempty"`
}

type StrategiesResponse struct {
	Items []viewmodel.StrategyView `json:"items"`
}

type RecordsResponse struct {
	Items  []game.RecordSummary `json:"items"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}
