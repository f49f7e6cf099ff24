package mcpserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"

	"dilemma-lab/internal/app/play"
	"dilemma-lab/internal/session"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

func TestMCPServerToolsAndFlows(t *testing.T) {
	srv := New(play.NewService(play.Config{MaxRounds: 100}, session.NewStore(), nil, nil))
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	tools := mustListTools(t, mcpClient)
	assertToolNames(t, tools,
		"list_strategies",
		"start_game",
		"play_round",
		"get_game_state",
		"list_records",
		"get_record",
	)

	strategies := mapFromStructured(t, mustCallTool(t, mcpClient, "list_strategies", map[string]any{}))
	items, _ := strategies["items"].([]any)
	if len(items) != 4 {
		t.Fatalf("expected 4 strategies, got %v", strategies)
	}

	started := mustCallTool(t, mcpClient, "start_game", map[string]any{"num_rounds": 3, "strategy": "always_defect"})
	if started.IsError {
		t.Fatalf("start_game expected success, got: %v", started.StructuredContent)
	}
	payload := mapFromStructured(t, started)
	sessionID := asString(payload["session_id"])
	if sessionID == "" {
		t.Fatalf("start_game missing session_id: %v", payload)
	}
	state, _ := payload["state"].(map[string]any)
	if asString(state["pending_opponent_action"]) != "defect" {
		t.Fatalf("expected pending defect, got %v", state)
	}

	var last map[string]any
	for i := 0; i < 3; i++ {
		res := mustCallTool(t, mcpClient, "play_round", map[string]any{"session_id": sessionID, "action": "cooperate"})
		if res.IsError {
			t.Fatalf("play_round %d expected success, got: %v", i, res.StructuredContent)
		}
		last = mapFromStructured(t, res)
	}
	if last["done"] != true || asString(last["winner"]) != "opponent" {
		t.Fatalf("expected finished game, got %v", last)
	}
	final, _ := last["state"].(map[string]any)
	if asFloat64(final["human_score"]) != 0 || asFloat64(final["opponent_score"]) != 15 {
		t.Fatalf("unexpected final scores %v", final)
	}

	got := mapFromStructured(t, mustCallTool(t, mcpClient, "get_game_state", map[string]any{"session_id": sessionID}))
	if got["terminal"] != true || got["pending_opponent_action"] != nil {
		t.Fatalf("unexpected terminal state %v", got)
	}

	res, err := mcpClient.ReadResource(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "session://" + sessionID + "/state"},
	})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(res.Contents) != 1 {
		t.Fatalf("expected one resource content, got %d", len(res.Contents))
	}
	var text string
	switch c := res.Contents[0].(type) {
	case mcp.TextResourceContents:
		text = c.Text
	case *mcp.TextResourceContents:
		text = c.Text
	default:
		t.Fatalf("unexpected resource content %T", c)
	}
	var resourceState map[string]any
	if err := json.Unmarshal([]byte(text), &resourceState); err != nil {
		t.Fatalf("decode resource: %v", err)
	}
	if asString(resourceState["session_id"]) != sessionID {
		t.Fatalf("unexpected resource payload %v", resourceState)
	}
}

func TestMCPServerToolErrors(t *testing.T) {
	srv := New(play.NewService(play.Config{MaxRounds: 100}, session.NewStore(), nil, nil))
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	assertToolErrorCode(t, mustCallTool(t, mcpClient, "start_game", map[string]any{"num_rounds": 0}), "invalid_config")
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "start_game", map[string]any{"strategy": "grudger"}), "unknown_strategy")
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "play_round", map[string]any{"session_id": "missing", "action": "defect"}), "session_not_found")
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "play_round", map[string]any{"action": "defect"}), "invalid_json")
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "get_record", map[string]any{"session_id": "missing"}), "record_not_found")

	started := mapFromStructured(t, mustCallTool(t, mcpClient, "start_game", map[string]any{"num_rounds": 1}))
	sessionID := asString(started["session_id"])
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "play_round", map[string]any{"session_id": sessionID, "action": "betray"}), "invalid_action")
	mustCallTool(t, mcpClient, "play_round", map[string]any{"session_id": sessionID, "action": "defect"})
	assertToolErrorCode(t, mustCallTool(t, mcpClient, "play_round", map[string]any{"session_id": sessionID, "action": "defect"}), "session_terminated")
}

func TestSessionIDFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		id   string
		want bool
	}{
		{"session://abc/state", "abc", true},
		{"session:///state", "", false},
		{"session://a/b/state", "", false},
		{"table://abc/state", "", false},
	}
	for _, tt := range tests {
		id, ok := sessionIDFromURI(tt.uri)
		if ok != tt.want || id != tt.id {
			t.Fatalf("sessionIDFromURI(%q) = %q,%v want %q,%v", tt.uri, id, ok, tt.id, tt.want)
		}
	}
}

func newMCPClient(t *testing.T, endpoint string) (*client.Client, func()) {
	t.Helper()
	ctx := context.Background()
	trans, err := transport.NewStreamableHTTP(endpoint)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if err := trans.Start(ctx); err != nil {
		t.Fatalf("transport start: %v", err)
	}
	c := client.NewClient(trans)
	_, err = c.Initialize(ctx, mcp.InitializeRequest{Params: mcp.InitializeParams{ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c, func() { _ = trans.Close() }
}

func mustListTools(t *testing.T, c *client.Client) []mcp.Tool {
	t.Helper()
	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	return res.Tools
}

func assertToolNames(t *testing.T, tools []mcp.Tool, expected ...string) {
	t.Helper()
	got := make([]string, 0, len(tools))
	for _, tool := range tools {
		got = append(got, tool.Name)
	}
	sort.Strings(got)
	sort.Strings(expected)
	if len(got) != len(expected) {
		t.Fatalf("tool count mismatch got=%v expected=%v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("tool list mismatch got=%v expected=%v", got, expected)
		}
	}
}

func mustCallTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	return res
}

func assertToolErrorCode(t *testing.T, res *mcp.CallToolResult, want string) {
	t.Helper()
	if !res.IsError {
		t.Fatalf("expected tool error %q, got success: %v", want, res.StructuredContent)
	}
	payload := mapFromStructured(t, res)
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("error payload missing 'error': %v", payload)
	}
	got := asString(errObj["code"])
	if got != want {
		t.Fatalf("error code=%q want=%q payload=%v", got, want, payload)
	}
}

func mapFromStructured(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	b, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat64(v any) float64 {
	f, _ := v.(float64)
	return f
}
