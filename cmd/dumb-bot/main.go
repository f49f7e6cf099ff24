package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"dilemma-lab/internal/config"
	"dilemma-lab/internal/game"
	"dilemma-lab/internal/game/viewmodel"
	"dilemma-lab/internal/logging"
	"dilemma-lab/internal/ws"
)

var errGameAborted = errors.New("game_aborted")

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for i := 0; i < cfg.Games && ctx.Err() == nil; i++ {
		over, err := playGame(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Int("game", i).Msg("bot game failed")
		}
		log.Info().
			Int("game", i).
			Str("session_id", over.SessionID).
			Int("bot_score", over.FinalScores.Human).
			Int("opponent_score", over.FinalScores.Opponent).
			Str("winner", over.Winner).
			Msg("bot_game_finished")
	}
}

// playGame runs one game over a fresh connection, playing the human side
// with cfg.BotStrategy.
func playGame(ctx context.Context, cfg config.BotConfig) (*ws.GameOver, error) {
	strategy, err := game.NewStrategy(cfg.BotStrategy, game.StrategyOptions{})
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.WSURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.WSURL, err)
	}
	defer conn.Close()

	rounds := cfg.Rounds
	if err := conn.WriteJSON(ws.StartMessage{Type: ws.TypeStart, NumRounds: &rounds, Strategy: cfg.OpponentStrategy}); err != nil {
		return nil, err
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		var base struct {
			Type  string `json:"type"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}
		switch base.Type {
		case ws.TypeError:
			return nil, fmt.Errorf("server error %s: %w", base.Error, errGameAborted)
		case ws.TypeGameOver:
			var over ws.GameOver
			if err := json.Unmarshal(data, &over); err != nil {
				return nil, err
			}
			return &over, nil
		case ws.TypeStateUpdate:
			var state viewmodel.StateView
			if err := json.Unmarshal(data, &state); err != nil {
				return nil, err
			}
			if state.Terminal {
				continue
			}
			action := decide(strategy, state)
			if err := conn.WriteJSON(ws.StepMessage{Type: ws.TypeStep, Action: string(action)}); err != nil {
				return nil, err
			}
		}
	}
}

// decide feeds the opponent's past moves to the bot's own strategy.
func decide(strategy game.Strategy, state viewmodel.StateView) game.Action {
	history := make([]game.Action, 0, len(state.History))
	for _, r := range state.History {
		history = append(history, game.Action(r.OpponentAction))
	}
	return strategy.Decide(history)
}
