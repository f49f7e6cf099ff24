package play

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"dilemma-lab/internal/export"
	"dilemma-lab/internal/game"
	"dilemma-lab/internal/game/viewmodel"
	"dilemma-lab/internal/session"
	"dilemma-lab/internal/store"
)

// Exporter receives each finished game's record exactly once.
type Exporter interface {
	Enqueue(rec game.Record) bool
}

type Config struct {
	DefaultRounds int
	MaxRounds     int
	Payoffs       game.PayoffMatrix
	// RandomSeed of 0 seeds from the clock.
	RandomSeed int64
	// CooperateProbability of nil uses the random strategy's default.
	CooperateProbability *float64
	Now                  func() time.Time
}

type Service struct {
	cfg      Config
	store    *session.Store
	exporter Exporter
	records  export.Reader
	newID    func() string

	randMu sync.Mutex
	seeds  *rand.Rand
}

// NewService wires the game service. exporter and records may be nil, which
// disables export and record queries respectively.
func NewService(cfg Config, st *session.Store, exporter Exporter, records export.Reader) *Service {
	if cfg.DefaultRounds <= 0 {
		cfg.DefaultRounds = 10
	}
	if cfg.Payoffs == (game.PayoffMatrix{}) {
		cfg.Payoffs = game.DefaultPayoffMatrix()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		cfg:      cfg,
		store:    st,
		exporter: exporter,
		records:  records,
		newID:    store.NewID,
		seeds:    rand.New(rand.NewSource(seed)),
	}
}

func (s *Service) Start(_ context.Context, in StartInput) (*StartResult, error) {
	rounds := s.cfg.DefaultRounds
	if in.NumRounds != nil {
		rounds = *in.NumRounds
	}
	name := strings.TrimSpace(in.Strategy)
	if name == "" {
		name = game.StrategyTitForTat
	}
	payoffs := s.cfg.Payoffs
	if in.Payoffs != nil {
		m, err := game.NewPayoffMatrix(in.Payoffs.T, in.Payoffs.R, in.Payoffs.P, in.Payoffs.S)
		if err != nil {
			return nil, err
		}
		payoffs = m
	}

	strategy, err := game.NewStrategy(name, game.StrategyOptions{
		Rand:                 s.sessionRand(),
		CooperateProbability: s.cfg.CooperateProbability,
	})
	if err != nil {
		return nil, err
	}
	sess, err := game.Start(s.newID(), game.Config{
		TotalRounds: rounds,
		MaxRounds:   s.cfg.MaxRounds,
		Payoffs:     payoffs,
		Now:         s.cfg.Now,
	}, strategy)
	if err != nil {
		return nil, err
	}
	id, err := s.store.Create(sess)
	if err != nil {
		return nil, err
	}

	metricGamesStartedTotal.Add(1)
	metricSessionsLive.Set(int64(s.store.Len()))
	log.Info().
		Str("session_id", id).
		Str("strategy", sess.StrategyName()).
		Int("num_rounds", rounds).
		Str("payoffs", payoffs.String()).
		Msg("game_started")
	return &StartResult{SessionID: id, State: viewmodel.BuildSessionState(sess.Snapshot())}, nil
}

func (s *Service) Step(_ context.Context, sessionID, action string) (*StepResult, error) {
	a, err := game.ParseAction(action)
	if err != nil {
		return nil, err
	}

	var (
		done bool
		snap game.Snapshot
		rec  game.Record
	)
	err = s.store.Update(sessionID, func(sess *game.Session) error {
		d, err := sess.Step(a)
		if err != nil {
			return err
		}
		done = d
		snap = sess.Snapshot()
		if d {
			rec = sess.Record()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metricRoundsPlayedTotal.Add(1)

	out := &StepResult{State: viewmodel.BuildSessionState(snap), Done: done}
	if done {
		out.Winner = rec.Winner
		s.finish(rec)
	}
	return out, nil
}

func (s *Service) finish(rec game.Record) {
	metricGamesFinishedTotal.Add(1)
	log.Info().
		Str("session_id", rec.SessionID).
		Str("strategy", rec.StrategyName).
		Int("human_score", rec.FinalScores.Human).
		Int("opponent_score", rec.FinalScores.Opponent).
		Str("winner", rec.Winner).
		Msg("game_finished")
	if s.exporter == nil {
		return
	}
	if !s.exporter.Enqueue(rec) {
		metricExportEnqueueFailed.Add(1)
	}
}

func (s *Service) State(_ context.Context, sessionID string) (*viewmodel.StateView, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	view := viewmodel.BuildSessionState(sess.Snapshot())
	return &view, nil
}

// Abandon discards a session without exporting it.
func (s *Service) Abandon(_ context.Context, sessionID string) error {
	if !s.store.Delete(sessionID) {
		return session.ErrSessionNotFound
	}
	metricGamesAbandonedTotal.Add(1)
	metricSessionsLive.Set(int64(s.store.Len()))
	log.Info().Str("session_id", sessionID).Msg("game_abandoned")
	return nil
}

func (s *Service) Strategies() *StrategiesResponse {
	return &StrategiesResponse{Items: viewmodel.BuildStrategies()}
}

func (s *Service) Records(ctx context.Context, limit, offset int) (*RecordsResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	out := &RecordsResponse{Items: []game.RecordSummary{}, Limit: limit, Offset: offset}
	if s.records == nil {
		return out, nil
	}
	items, err := s.records.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if items != nil {
		out.Items = items
	}
	return out, nil
}

func (s *Service) Record(ctx context.Context, sessionID string) (*game.Record, error) {
	if s.records == nil {
		return nil, export.ErrRecordNotFound
	}
	rec, err := s.records.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// sessionRand gives each session its own source so one game's draws never
// depend on how other games interleave.
func (s *Service) sessionRand() *rand.Rand {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return rand.New(rand.NewSource(s.seeds.Int63()))
}
