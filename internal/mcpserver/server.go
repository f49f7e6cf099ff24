package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dilemma-lab/internal/app/play"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "dilemma-lab"
	serverVersion = "0.1.0"

	stateURIPrefix = "session://"
	stateURISuffix = "/state"
)

// Server exposes the game service as MCP tools so an agent can play the
// human side of a session.
type Server struct {
	svc *play.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(svc *play.Service) *Server {
	mcpSrv := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		svc:        svc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerPublicTools()
	s.registerGameplayTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			stateURIPrefix+"{session_id}"+stateURISuffix,
			"session_state",
			mcp.WithTemplateDescription("Current snapshot of a game session"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.readSessionState,
	)
}

func (s *Server) readSessionState(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	raw := request.Params.URI
	sessionID, ok := sessionIDFromURI(raw)
	if !ok {
		return nil, fmt.Errorf("resource %q: %w", raw, play.ErrInvalidJSON)
	}
	state, err := s.svc.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      raw,
			MIMEType: "application/json",
			Text:     string(payload),
		},
	}, nil
}

func sessionIDFromURI(raw string) (string, bool) {
	if !strings.HasPrefix(raw, stateURIPrefix) || !strings.HasSuffix(raw, stateURISuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(raw, stateURIPrefix), stateURISuffix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
