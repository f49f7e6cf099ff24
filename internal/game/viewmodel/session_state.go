package viewmodel

import "dilemma-lab/internal/game"

type RoundView struct {
	Round          int    `json:"round"`
	HumanAction    string `json:"human_action"`
	OpponentAction string `json:"opponent_action"`
	HumanPayoff    int    `json:"human_payoff"`
	OpponentPayoff int    `json:"opponent_payoff"`
}

type StateView struct {
	SessionID             string         `json:"session_id"`
	CurrentRound          int            `json:"current_round"`
	TotalRounds           int            `json:"total_rounds"`
	HumanScore            int            `json:"human_score"`
	OpponentScore         int            `json:"opponent_score"`
	PendingOpponentAction *string        `json:"pending_opponent_action"`
	WaitingForHuman       bool           `json:"waiting_for_human"`
	History               []RoundView    `json:"history"`
	Terminal              bool           `json:"terminal"`
	StrategyName          string         `json:"strategy_name"`
	StrategyDescription   string         `json:"strategy_description"`
	PayoffLabels          map[string]int `json:"payoff_labels"`
}

type StrategyView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func BuildSessionState(snap game.Snapshot) StateView {
	history := make([]RoundView, 0, len(snap.History))
	for _, r := range snap.History {
		history = append(history, RoundView{
			Round:          r.Round,
			HumanAction:    string(r.HumanAction),
			OpponentAction: string(r.OpponentAction),
			HumanPayoff:    r.HumanPayoff,
			OpponentPayoff: r.OpponentPayoff,
		})
	}

	var pending *string
	if !snap.Terminal && snap.Pending != "" {
		v := string(snap.Pending)
		pending = &v
	}
	desc, _ := game.DescribeStrategy(snap.StrategyName)

	return StateView{
		SessionID:             snap.SessionID,
		CurrentRound:          snap.CurrentRound,
		TotalRounds:           snap.TotalRounds,
		HumanScore:            snap.HumanScore,
		OpponentScore:         snap.OpponentScore,
		PendingOpponentAction: pending,
		WaitingForHuman:       !snap.Terminal,
		History:               history,
		Terminal:              snap.Terminal,
		StrategyName:          snap.StrategyName,
		StrategyDescription:   desc,
		PayoffLabels:          snap.Payoffs.Labels(),
	}
}

// BuildStrategies lists every registered strategy in name order.
func BuildStrategies() []StrategyView {
	names := game.StrategyNames()
	out := make([]StrategyView, 0, len(names))
	for _, n := range names {
		desc, _ := game.DescribeStrategy(n)
		out = append(out, StrategyView{Name: n, Description: desc})
	}
	return out
}
