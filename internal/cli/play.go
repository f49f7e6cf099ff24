package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dilemma-lab/internal/config"
	"dilemma-lab/internal/export"
	"dilemma-lab/internal/game"
	"dilemma-lab/internal/store"
)

var errInputClosed = errors.New("input_closed")

type playOptions struct {
	rounds   int
	strategy string
	seed     int64
	export   bool
	dir      string
	payoffs  game.PayoffMatrix
	maxRound int
	// cooperateProb is the random strategy's chance to cooperate.
	cooperateProb float64
}

func newPlayCmd(cfg config.ServerConfig) *cobra.Command {
	opts := playOptions{maxRound: cfg.MaxRounds, cooperateProb: cfg.RandomCooperateProb}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game against a strategy, reading c/d moves from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := game.NewPayoffMatrix(cfg.PayoffT, cfg.PayoffR, cfg.PayoffP, cfg.PayoffS)
			if err != nil {
				return err
			}
			opts.payoffs = m
			return runPlay(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.rounds, "rounds", cfg.DefaultRounds, "number of rounds")
	cmd.Flags().StringVar(&opts.strategy, "strategy", game.StrategyTitForTat, "opponent strategy")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed for the random strategy, 0 uses the clock")
	cmd.Flags().BoolVar(&opts.export, "export", false, "write the finished game to the export directory")
	cmd.Flags().StringVar(&opts.dir, "dir", cfg.ExportDir, "export directory")
	return cmd
}

func runPlay(ctx context.Context, in io.Reader, out io.Writer, opts playOptions) error {
	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	strategy, err := game.NewStrategy(opts.strategy, game.StrategyOptions{
		Rand:                 rand.New(rand.NewSource(seed)),
		CooperateProbability: &opts.cooperateProb,
	})
	if err != nil {
		return err
	}
	sess, err := game.Start(store.NewID(), game.Config{
		TotalRounds: opts.rounds,
		MaxRounds:   opts.maxRound,
		Payoffs:     opts.payoffs,
	}, strategy)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "game %s: %d rounds against %s (%s)\n", sess.ID(), sess.TotalRounds(), sess.StrategyName(), sess.Payoffs())
	scanner := bufio.NewScanner(in)
	for !sess.Terminal() {
		pending, _ := sess.PendingOpponentAction()
		fmt.Fprintf(out, "round %d/%d, opponent plays %s. your move [c/d]: ", sess.CurrentRound()+1, sess.TotalRounds(), pending)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return fmt.Errorf("after %d of %d rounds: %w", sess.CurrentRound(), sess.TotalRounds(), errInputClosed)
		}
		action, err := parseMove(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "\n%v\n", err)
			continue
		}
		if _, err := sess.Step(action); err != nil {
			return err
		}
		last := sess.History()[sess.CurrentRound()-1]
		fmt.Fprintf(out, "\nyou %s, opponent %s: +%d/+%d, score %d-%d\n",
			last.HumanAction, last.OpponentAction, last.HumanPayoff, last.OpponentPayoff, sess.HumanScore(), sess.OpponentScore())
	}

	rec := sess.Record()
	fmt.Fprintf(out, "final score %d-%d, winner: %s\n", rec.FinalScores.Human, rec.FinalScores.Opponent, rec.Winner)
	if !opts.export {
		return nil
	}
	sink, err := export.NewFileSink(opts.dir)
	if err != nil {
		return err
	}
	if err := sink.Export(ctx, rec); err != nil {
		return err
	}
	fmt.Fprintf(out, "exported to %s\n", sink.Dir())
	return nil
}

// parseMove accepts c/d shorthands as well as full action names.
func parseMove(v string) (game.Action, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "c":
		return game.Cooperate, nil
	case "d":
		return game.Defect, nil
	}
	return game.ParseAction(v)
}
