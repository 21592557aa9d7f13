package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewScoresCmd groups leaderboard administration.
func NewScoresCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Inspect or reset the solo leaderboard",
	}

	var limit int
	top := &cobra.Command{
		Use:   "top",
		Short: "Print the best results",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer svc.Close()

			n := limit
			if n <= 0 {
				n = svc.leaderboardLimit()
			}
			results, err := svc.board.Top(cmd.Context(), n)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tSCORE\tTIME\tDATE")
			for i, r := range results {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", i+1, r.Name, r.Score,
					(time.Duration(r.DurationMs) * time.Millisecond).Round(100*time.Millisecond),
					r.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	top.Flags().IntVar(&limit, "limit", 0, "number of results (default from config)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded result",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := svc.board.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "scores cleared")
			return nil
		},
	}

	cmd.AddCommand(top, clearCmd)
	return cmd
}
