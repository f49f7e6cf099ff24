package game

import (
	"errors"
	"testing"
	"time"
)

func mustStart(t *testing.T, rounds int, strategy string) *Session {
	t.Helper()
	st, err := NewStrategy(strategy, StrategyOptions{})
	if err != nil {
		t.Fatalf("new strategy: %v", err)
	}
	s, err := Start("s1", Config{TotalRounds: rounds}, st)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func checkInvariants(t *testing.T, s *Session) {
	t.Helper()
	h := s.History()
	if len(h) != s.CurrentRound() {
		t.Fatalf("history length %d != current round %d", len(h), s.CurrentRound())
	}
	if s.CurrentRound() < 0 || s.CurrentRound() > s.TotalRounds() {
		t.Fatalf("current round %d out of range", s.CurrentRound())
	}
	if s.Terminal() != (s.CurrentRound() == s.TotalRounds()) {
		t.Fatalf("terminal=%v at round %d/%d", s.Terminal(), s.CurrentRound(), s.TotalRounds())
	}
	human, opp := 0, 0
	for i, r := range h {
		if r.Round != i {
			t.Fatalf("history[%d] has round %d", i, r.Round)
		}
		human += r.HumanPayoff
		opp += r.OpponentPayoff
	}
	if human != s.HumanScore() || opp != s.OpponentScore() {
		t.Fatalf("scores %d/%d do not match history sums %d/%d", s.HumanScore(), s.OpponentScore(), human, opp)
	}
}

func TestStartValidation(t *testing.T) {
	st, _ := NewStrategy(StrategyAlwaysCooperate, StrategyOptions{})
	cases := []struct {
		name string
		id   string
		cfg  Config
		want error
	}{
		{name: "zero rounds", id: "a", cfg: Config{TotalRounds: 0}, want: ErrInvalidConfig},
		{name: "negative rounds", id: "a", cfg: Config{TotalRounds: -3}, want: ErrInvalidConfig},
		{name: "above cap", id: "a", cfg: Config{TotalRounds: 101, MaxRounds: 100}, want: ErrInvalidConfig},
		{name: "empty id", id: "", cfg: Config{TotalRounds: 1}, want: ErrInvalidConfig},
		{name: "bad matrix", id: "a", cfg: Config{TotalRounds: 1, Payoffs: PayoffMatrix{T: 1, R: 2, P: 3, S: 4}}, want: ErrInvalidMatrix},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Start(tc.id, tc.cfg, st); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if _, err := Start("a", Config{TotalRounds: 1}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for nil strategy, got %v", err)
	}
}

func TestStartHugeRoundCountWithoutCap(t *testing.T) {
	s := mustStart(t, 1<<50, StrategyAlwaysDefect)
	done, err := s.Step(Cooperate)
	if err != nil || done {
		t.Fatalf("step: done=%v err=%v", done, err)
	}
	if s.CurrentRound() != 1 || s.TotalRounds() != 1<<50 {
		t.Fatalf("round %d of %d", s.CurrentRound(), s.TotalRounds())
	}
	checkInvariants(t, s)
}

func TestStartPrecomputesOpponentMove(t *testing.T) {
	s := mustStart(t, 3, StrategyAlwaysDefect)
	pending, ok := s.PendingOpponentAction()
	if !ok || pending != Defect {
		t.Fatalf("expected pending defect, got %q ok=%v", pending, ok)
	}
	if s.Payoffs() != DefaultPayoffMatrix() {
		t.Fatalf("expected default payoffs, got %v", s.Payoffs())
	}
	if s.Phase() != PhaseAwaitingHumanMove {
		t.Fatalf("unexpected phase %s", s.Phase())
	}
	checkInvariants(t, s)
}

func TestStepInvariantsAfterEachRound(t *testing.T) {
	s := mustStart(t, 6, StrategyTitForTat)
	moves := []Action{Cooperate, Defect, Defect, Cooperate, Defect, Cooperate}
	for i, m := range moves {
		done, err := s.Step(m)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if done != (i == len(moves)-1) {
			t.Fatalf("step %d: done=%v", i, done)
		}
		checkInvariants(t, s)
	}
	h := s.History()
	for i := 1; i < len(h); i++ {
		if h[i].OpponentAction != moves[i-1] {
			t.Fatalf("round %d: tit for tat played %s after human %s", i, h[i].OpponentAction, moves[i-1])
		}
	}
}

func TestStepAfterTerminalDoesNotMutate(t *testing.T) {
	s := mustStart(t, 2, StrategyAlwaysCooperate)
	for i := 0; i < 2; i++ {
		if _, err := s.Step(Defect); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if !s.Terminal() {
		t.Fatalf("expected terminal after 2 steps")
	}
	if _, ok := s.PendingOpponentAction(); ok {
		t.Fatalf("terminal session must not expose a pending move")
	}
	before := s.Snapshot()
	done, err := s.Step(Cooperate)
	if !errors.Is(err, ErrSessionTerminated) || done {
		t.Fatalf("expected ErrSessionTerminated, got done=%v err=%v", done, err)
	}
	after := s.Snapshot()
	if after.CurrentRound != before.CurrentRound || after.HumanScore != before.HumanScore || len(after.History) != len(before.History) {
		t.Fatalf("terminal step mutated the session")
	}
}

func TestStepInvalidActionDoesNotMutate(t *testing.T) {
	s := mustStart(t, 2, StrategyAlwaysCooperate)
	if _, err := s.Step(Action("betray")); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
	if s.CurrentRound() != 0 || len(s.History()) != 0 {
		t.Fatalf("invalid action mutated the session")
	}
}

func TestAlwaysDefectEndToEnd(t *testing.T) {
	s := mustStart(t, 3, StrategyAlwaysDefect)
	for i := 0; i < 3; i++ {
		if _, err := s.Step(Cooperate); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if s.HumanScore() != 0 || s.OpponentScore() != 15 {
		t.Fatalf("expected 0/15, got %d/%d", s.HumanScore(), s.OpponentScore())
	}
	for _, r := range s.History() {
		if r.HumanAction != Cooperate || r.OpponentAction != Defect || r.HumanPayoff != 0 || r.OpponentPayoff != 5 {
			t.Fatalf("unexpected round %+v", r)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := mustStart(t, 3, StrategyAlwaysCooperate)
	c := s.Clone()
	if _, err := c.Step(Defect); err != nil {
		t.Fatalf("step clone: %v", err)
	}
	if s.CurrentRound() != 0 || len(s.History()) != 0 {
		t.Fatalf("stepping the clone changed the original")
	}
}

func TestRecordAfterFinish(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	calls := 0
	now := func() time.Time {
		calls++
		return start.Add(time.Duration(calls) * time.Minute)
	}
	st, _ := NewStrategy(StrategyAlwaysCooperate, StrategyOptions{})
	s, err := Start("rec", Config{TotalRounds: 2, Now: now}, st)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Step(Defect)
	s.Step(Defect)

	rec := s.Record()
	if rec.SessionID != "rec" || rec.StrategyName != StrategyAlwaysCooperate || rec.NumRounds != 2 {
		t.Fatalf("unexpected record header %+v", rec)
	}
	if !rec.Timestamp.Equal(s.EndedAt()) {
		t.Fatalf("expected timestamp at end time")
	}
	if rec.FinalScores.Human != 10 || rec.FinalScores.Opponent != 0 || rec.Winner != WinnerHuman {
		t.Fatalf("unexpected result %+v winner=%s", rec.FinalScores, rec.Winner)
	}
	if len(rec.Steps) != 2 || rec.Steps[0].Done || !rec.Steps[1].Done {
		t.Fatalf("unexpected steps %+v", rec.Steps)
	}
}
