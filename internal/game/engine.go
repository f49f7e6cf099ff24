package game

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Session is the state machine of one iterated game. The opponent's move for
// the current round is decided before the human moves and is exposed through
// PendingOpponentAction.
//
// A Session is not safe for concurrent use; the session store serializes
// access per session id.
type Session struct {
	id       string
	cfg      Config
	strategy Strategy

	current       int
	humanScore    int
	opponentScore int
	pending       Action
	history       []RoundResult
	humanMoves    []Action
	terminal      bool

	startedAt time.Time
	endedAt   time.Time
}

// historyPrealloc bounds the up-front history capacity; longer sessions grow
// the slice on demand.
const historyPrealloc = 64

// Start validates cfg, resets the strategy and pre-computes the opponent's
// round 0 move.
func Start(id string, cfg Config, strategy Strategy) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &FieldError{Field: "session_id", Value: id, Reason: "must not be empty", Err: ErrInvalidConfig}
	}
	if cfg.TotalRounds < 1 {
		return nil, &FieldError{Field: "num_rounds", Value: cfg.TotalRounds, Reason: "must be at least 1", Err: ErrInvalidConfig}
	}
	if cfg.MaxRounds > 0 && cfg.TotalRounds > cfg.MaxRounds {
		return nil, &FieldError{Field: "num_rounds", Value: cfg.TotalRounds, Reason: "must be at most " + strconv.Itoa(cfg.MaxRounds), Err: ErrInvalidConfig}
	}
	if strategy == nil {
		return nil, &FieldError{Field: "strategy", Value: nil, Reason: "must not be nil", Err: ErrInvalidConfig}
	}
	if cfg.Payoffs.isZero() {
		cfg.Payoffs = DefaultPayoffMatrix()
	}
	if err := cfg.Payoffs.Validate(); err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	strategy.Reset()
	s := &Session{
		id:        id,
		cfg:       cfg,
		strategy:  strategy,
		history:   make([]RoundResult, 0, min(cfg.TotalRounds, historyPrealloc)),
		startedAt: cfg.Now(),
	}
	s.pending = strategy.Decide(nil)
	return s, nil
}

// Step resolves the current round with the human's action. done is true
// exactly once, on the step that makes the session terminal. On error the
// session is unchanged.
func (s *Session) Step(human Action) (done bool, err error) {
	if s.terminal {
		return false, &FieldError{Field: "session_id", Value: s.id, Reason: "game is already over", Err: ErrSessionTerminated}
	}
	if !human.Valid() {
		return false, &FieldError{Field: "action", Value: string(human), Err: ErrInvalidAction}
	}

	opponent := s.pending
	humanPayoff, opponentPayoff := s.cfg.Payoffs.Payoff(human, opponent)
	s.history = append(s.history, RoundResult{
		Round:          s.current,
		HumanAction:    human,
		OpponentAction: opponent,
		HumanPayoff:    humanPayoff,
		OpponentPayoff: opponentPayoff,
	})
	s.humanMoves = append(s.humanMoves, human)
	s.humanScore += humanPayoff
	s.opponentScore += opponentPayoff
	s.current++

	if s.current == s.cfg.TotalRounds {
		s.pending = ""
		s.terminal = true
		s.endedAt = s.cfg.Now()
		return true, nil
	}
	s.pending = s.strategy.Decide(slices.Clone(s.humanMoves))
	return false, nil
}

func (s *Session) ID() string             { return s.id }
func (s *Session) TotalRounds() int       { return s.cfg.TotalRounds }
func (s *Session) CurrentRound() int      { return s.current }
func (s *Session) HumanScore() int        { return s.humanScore }
func (s *Session) OpponentScore() int     { return s.opponentScore }
func (s *Session) Terminal() bool         { return s.terminal }
func (s *Session) StrategyName() string   { return s.strategy.Name() }
func (s *Session) Payoffs() PayoffMatrix  { return s.cfg.Payoffs }
func (s *Session) StartedAt() time.Time   { return s.startedAt }
func (s *Session) EndedAt() time.Time     { return s.endedAt }
func (s *Session) History() []RoundResult { return slices.Clone(s.history) }
func (s *Session) PendingOpponentAction() (Action, bool) {
	return s.pending, s.pending != ""
}

func (s *Session) Phase() Phase {
	if s.terminal {
		return PhaseTerminal
	}
	return PhaseAwaitingHumanMove
}

// Clone copies the session's state. The strategy instance is shared.
func (s *Session) Clone() *Session {
	out := *s
	out.history = slices.Clone(s.history)
	out.humanMoves = slices.Clone(s.humanMoves)
	return &out
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID:     s.id,
		CurrentRound:  s.current,
		TotalRounds:   s.cfg.TotalRounds,
		HumanScore:    s.humanScore,
		OpponentScore: s.opponentScore,
		Pending:       s.pending,
		History:       slices.Clone(s.history),
		Terminal:      s.terminal,
		StrategyName:  s.strategy.Name(),
		Payoffs:       s.cfg.Payoffs,
		StartedAt:     s.startedAt,
		EndedAt:       s.endedAt,
	}
}

// Record builds the export record. The timestamp is the end time of a
// finished session, or its start time otherwise.
func (s *Session) Record() Record {
	ts := s.endedAt
	if ts.IsZero() {
		ts = s.startedAt
	}
	steps := make([]RecordStep, 0, len(s.history))
	for i, r := range s.history {
		steps = append(steps, RecordStep{RoundResult: r, Done: s.terminal && i == len(s.history)-1})
	}
	return Record{
		SessionID:    s.id,
		Timestamp:    ts,
		StrategyName: s.strategy.Name(),
		NumRounds:    s.cfg.TotalRounds,
		Payoffs:      s.cfg.Payoffs,
		FinalScores:  FinalScores{Human: s.humanScore, Opponent: s.opponentScore},
		Winner:       Winner(s.humanScore, s.opponentScore),
		Steps:        steps,
	}
}
