package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the 'stats' command.
func NewStatsCmd(app *App) *cobra.Command {
	var (
		window     int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics over the calculation history",
		Long: `Aggregate the calculation history: totals, counts per shape and dimension,
hour and day histograms, average duration, the most popular shape and the most
recent calculations.

Without --window the configured stats.default_window_days is used; 0 means all time.`,
		Example: `  geocalc stats
  geocalc stats --window 7
  geocalc stats --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("window") {
				window = cfg.Stats.DefaultWindowDays
			}
			if window < 0 {
				return fmt.Errorf("--window must not be negative, got %d", window)
			}

			c, err := app.Calculator(nil, true)
			if err != nil {
				return err
			}
			stats, err := c.Stats(cmd.Context(), window)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			f := formatter{precision: cfg.Display.Precision}
			fmt.Fprint(cmd.OutOrStdout(), f.statsReport(stats, loc))
			return nil
		},
	}

	cmd.Flags().IntVarP(&window, "window", "w", 0, "Only count the trailing N days (0 = all time)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
