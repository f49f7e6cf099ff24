package game

import "time"

type Phase string

const (
	PhaseAwaitingHumanMove Phase = "awaiting_human_move"
	PhaseTerminal          Phase = "terminal"
)

const (
	WinnerHuman    = "human"
	WinnerOpponent = "opponent"
	WinnerTie      = "tie"
)

type RoundResult struct {
	Round          int    `json:"round"`
	HumanAction    Action `json:"human_action"`
	OpponentAction Action `json:"opponent_action"`
	HumanPayoff    int    `json:"human_payoff"`
	OpponentPayoff int    `json:"opponent_payoff"`
}

// Config is the per-session configuration. MaxRounds of 0 disables the
// upper bound; a zero Payoffs uses DefaultPayoffMatrix.
type Config struct {
	TotalRounds int
	MaxRounds   int
	Payoffs     PayoffMatrix
	Now         func() time.Time
}

// Snapshot is a point-in-time copy of a session for transports.
type Snapshot struct {
	SessionID     string
	CurrentRound  int
	TotalRounds   int
	HumanScore    int
	OpponentScore int
	Pending       Action
	History       []RoundResult
	Terminal      bool
	StrategyName  string
	Payoffs       PayoffMatrix
	StartedAt     time.Time
	EndedAt       time.Time
}

type FinalScores struct {
	Human    int `json:"human"`
	Opponent int `json:"opponent"`
}

type RecordStep struct {
	RoundResult
	Done bool `json:"done"`
}

// Record is the immutable export of a finished session.
type Record struct {
	SessionID    string       `json:"session_id"`
	Timestamp    time.Time    `json:"timestamp"`
	StrategyName string       `json:"strategy_name"`
	NumRounds    int          `json:"num_rounds"`
	Payoffs      PayoffMatrix `json:"payoffs"`
	FinalScores  FinalScores  `json:"final_scores"`
	Winner       string       `json:"winner"`
	Steps        []RecordStep `json:"steps"`
}

type RecordSummary struct {
	SessionID    string      `json:"session_id"`
	Timestamp    time.Time   `json:"timestamp"`
	StrategyName string      `json:"strategy_name"`
	NumRounds    int         `json:"num_rounds"`
	FinalScores  FinalScores `json:"final_scores"`
	Winner       string      `json:"winner"`
}

func (r Record) Summary() RecordSummary {
	return RecordSummary{
		SessionID:    r.SessionID,
		Timestamp:    r.Timestamp,
		StrategyName: r.StrategyName,
		NumRounds:    r.NumRounds,
		FinalScores:  r.FinalScores,
		Winner:       r.Winner,
	}
}

func Winner(human, opponent int) string {
	switch {
	case human > opponent:
		return WinnerHuman
	case opponent > human:
		return WinnerOpponent
	default:
		return WinnerTie
	}
}
