// Package cli implements ipdctl, a terminal client that plays games locally
// and browses exported session records.
package cli

import (
	"github.com/spf13/cobra"

	"dilemma-lab/internal/config"
	"dilemma-lab/internal/game"
)

// NewRootCmd builds the ipdctl command tree. Defaults for rounds, payoffs and
// the export directory come from the server environment.
func NewRootCmd() *cobra.Command {
	cfg, err := config.LoadServer()
	if err != nil {
		cfg = config.ServerConfig{
			DefaultRounds:       10,
			MaxRounds:           100,
			ExportDir:           "data/sessions",
			PayoffT:             5,
			PayoffR:             3,
			PayoffP:             1,
			RandomCooperateProb: game.DefaultCooperateProbability,
		}
	}

	cmd := &cobra.Command{
		Use:           "ipdctl",
		Short:         "Play the iterated prisoner's dilemma and inspect game records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newPlayCmd(cfg))
	cmd.AddCommand(newStrategiesCmd())
	cmd.AddCommand(newRecordsCmd(cfg))
	return cmd
}
