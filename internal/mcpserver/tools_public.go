package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPublicTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_strategies",
			mcp.WithDescription("List opponent strategies with a short description"),
		),
		s.handleListStrategies,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_records",
			mcp.WithDescription("List finished game records, newest first"),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 500")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleListRecords,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_record",
			mcp.WithDescription("Get the full record of a finished game"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		),
		s.handleGetRecord,
	)
}

func (s *Server) handleListStrategies(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.svc.Strategies()), nil
}

func (s *Server) handleListRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset := clampPagination(request.GetInt("limit", 0), request.GetInt("offset", 0))
	resp, err := s.svc.Records(ctx, limit, offset)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return toolError("invalid_json", err.Error()), nil
	}
	rec, err := s.svc.Record(ctx, sessionID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(rec), nil
}
