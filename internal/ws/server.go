package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"dilemma-lab/internal/app/play"
	"dilemma-lab/internal/game"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	maxMessage = 4096
	sendBuffer = 8
)

// Client is one WebSocket connection. A connection drives at most one
// session at a time; start and resume switch it.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	// overflowed is set once a reply could not be queued; the connection is
	// closed and nothing further is sent.
	overflowed bool
}

type Server struct {
	svc      *play.Service
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*Client]bool
}

// NewServer builds the play channel. allowedOrigins restricts browser
// origins; an empty list or "*" accepts any.
func NewServer(svc *play.Service, allowedOrigins []string) *Server {
	return &Server{
		svc:      svc,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		clients:  map[*Client]bool{},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()
	metricWSConnectionsTotal.Add(1)
	metricWSConnectionsActive.Add(1)

	go s.writeLoop(client)
	s.readLoop(r.Context(), client)
}

// Clients reports the number of open connections.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) readLoop(ctx context.Context, c *Client) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		metricWSMessagesTotal.Add(1)
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			s.sendError(c, play.ErrInvalidJSON)
			continue
		}
		switch base.Type {
		case TypeStart:
			var start StartMessage
			if err := json.Unmarshal(msg, &start); err != nil {
				s.sendError(c, play.ErrInvalidJSON)
				continue
			}
			s.handleStart(ctx, c, start)
		case TypeStep:
			var step StepMessage
			if err := json.Unmarshal(msg, &step); err != nil {
				s.sendError(c, play.ErrInvalidJSON)
				continue
			}
			s.handleStep(ctx, c, step)
		case TypeResume:
			var resume ResumeMessage
			if err := json.Unmarshal(msg, &resume); err != nil {
				s.sendError(c, play.ErrInvalidJSON)
				continue
			}
			s.handleResume(ctx, c, resume)
		default:
			s.sendError(c, fmt.Errorf("message type %q: %w", base.Type, play.ErrInvalidJSON))
		}
	}
}

func (s *Server) handleStart(ctx context.Context, c *Client, msg StartMessage) {
	res, err := s.svc.Start(ctx, play.StartInput{NumRounds: msg.NumRounds, Strategy: msg.Strategy, Payoffs: msg.Payoffs})
	if err != nil {
		s.sendError(c, err)
		return
	}
	c.sessionID = res.SessionID
	log.Info().Str("session_id", res.SessionID).Msg("ws_session_started")
	s.sendJSON(c, StateUpdate{Type: TypeStateUpdate, ProtocolVersion: ProtocolVersion, StateView: res.State})
}

func (s *Server) handleStep(ctx context.Context, c *Client, msg StepMessage) {
	if c.sessionID == "" {
		s.sendErrorCode(c, "session_not_found")
		return
	}
	res, err := s.svc.Step(ctx, c.sessionID, msg.Action)
	if err != nil {
		s.sendError(c, err)
		return
	}
	s.sendJSON(c, StateUpdate{Type: TypeStateUpdate, ProtocolVersion: ProtocolVersion, StateView: res.State})
	if res.Done {
		s.sendJSON(c, GameOver{
			Type:            TypeGameOver,
			ProtocolVersion: ProtocolVersion,
			SessionID:       res.State.SessionID,
			TotalRounds:     res.State.TotalRounds,
			FinalScores:     game.FinalScores{Human: res.State.HumanScore, Opponent: res.State.OpponentScore},
			Winner:          res.Winner,
		})
	}
}

func (s *Server) handleResume(ctx context.Context, c *Client, msg ResumeMessage) {
	state, err := s.svc.State(ctx, strings.TrimSpace(msg.SessionID))
	if err != nil {
		s.sendError(c, err)
		return
	}
	c.sessionID = state.SessionID
	s.sendJSON(c, StateUpdate{Type: TypeStateUpdate, ProtocolVersion: ProtocolVersion, StateView: *state})
}

func (s *Server) writeLoop(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	if s.clients[c] {
		delete(s.clients, c)
		close(c.send)
		metricWSConnectionsActive.Add(-1)
	}
	s.mu.Unlock()
}

func (s *Server) sendJSON(c *Client, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("ws marshal failed")
		return
	}
	if c.overflowed {
		return
	}
	select {
	case c.send <- b:
	default:
		// A client that cannot drain its replies would silently miss state
		// or game_over, so drop the connection and let it resume.
		c.overflowed = true
		metricWSDroppedTotal.Add(1)
		log.Warn().Str("session_id", c.sessionID).Msg("ws send buffer full, closing connection")
		_ = c.conn.Close()
	}
}

func (s *Server) sendError(c *Client, err error) {
	_, code := play.MapError(err)
	if code == "internal_error" {
		log.Error().Err(err).Str("session_id", c.sessionID).Msg("ws request failed")
	}
	s.sendErrorCode(c, code)
}

func (s *Server) sendErrorCode(c *Client, code string) {
	metricWSErrorsTotal.Add(1)
	s.sendJSON(c, ErrorMessage{Type: TypeError, ProtocolVersion: ProtocolVersion, Error: code})
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := map[string]bool{}
	for _, o := range allowed {
		if o = strings.TrimSpace(o); o != "" {
			set[o] = true
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 || set["*"] {
			return true
		}
		return set[origin]
	}
}
