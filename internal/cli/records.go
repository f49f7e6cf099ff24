package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"dilemma-lab/internal/config"
	"dilemma-lab/internal/export"
)

func newRecordsCmd(cfg config.ServerConfig) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Browse exported game records",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", cfg.ExportDir, "export directory")
	cmd.AddCommand(newRecordsListCmd(&dir))
	cmd.AddCommand(newRecordsShowCmd(&dir))
	return cmd
}

func newRecordsListCmd(dir *string) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sink, err := export.NewFileSink(*dir)
			if err != nil {
				return err
			}
			items, err := sink.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no records")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tFINISHED\tSTRATEGY\tROUNDS\tSCORE\tWINNER")
			for _, r := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d-%d\t%s\n",
					r.SessionID, r.Timestamp.UTC().Format(time.RFC3339), r.StrategyName, r.NumRounds,
					r.FinalScores.Human, r.FinalScores.Opponent, r.Winner)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func newRecordsShowCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print one record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, err := export.NewFileSink(*dir)
			if err != nil {
				return err
			}
			rec, err := sink.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}
