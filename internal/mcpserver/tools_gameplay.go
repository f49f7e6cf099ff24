package mcpserver

import (
	"context"
	"strings"

	"dilemma-lab/internal/app/play"
	"dilemma-lab/internal/game"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGameplayTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"start_game",
			mcp.WithDescription("Start a game against an opponent strategy. The opponent's move for the current round is revealed as pending_opponent_action before you move."),
			mcp.WithNumber("num_rounds", mcp.Description("Rounds to play, default 10")),
			mcp.WithString("strategy", mcp.Description("Opponent strategy, default tit_for_tat"), mcp.Enum(game.StrategyNames()...)),
		),
		s.handleStartGame,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"play_round",
			mcp.WithDescription("Play the current round of a session"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id from start_game")),
			mcp.WithString("action", mcp.Required(), mcp.Description("cooperate|defect"), mcp.Enum(string(game.Cooperate), string(game.Defect))),
		),
		s.handlePlayRound,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_game_state",
			mcp.WithDescription("Get the current snapshot of a session"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		),
		s.handleGetGameState,
	)
}

func (s *Server) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := play.StartInput{Strategy: strings.TrimSpace(request.GetString("strategy", ""))}
	if _, ok := request.GetArguments()["num_rounds"]; ok {
		n := request.GetInt("num_rounds", 0)
		in.NumRounds = &n
	}
	resp, err := s.svc.Start(ctx, in)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handlePlayRound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return toolError("invalid_json", err.Error()), nil
	}
	action, err := request.RequireString("action")
	if err != nil {
		return toolError("invalid_json", err.Error()), nil
	}
	resp, err := s.svc.Step(ctx, sessionID, action)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return toolError("invalid_json", err.Error()), nil
	}
	state, err := s.svc.State(ctx, sessionID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(state), nil
}
