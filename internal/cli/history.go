package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the 'history' command group.
func NewHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the calculation history",
	}

	cmd.AddCommand(newHistoryExportCmd(app))
	cmd.AddCommand(newHistoryCleanupCmd(app))
	cmd.AddCommand(newHistoryClearCmd(app))

	return cmd
}

func newHistoryExportCmd(app *App) *cobra.Command {
	var (
		output string
		days   int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded calculations as JSON",
		Example: `  geocalc history export
  geocalc history export --days 30 -o history.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			records, err := store.Export(cmd.Context(), days)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(records); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d calculations to %s\n", len(records), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().IntVar(&days, "days", 0, "Only export the trailing N days (0 = everything)")

	return cmd
}

func newHistoryCleanupCmd(app *App) *cobra.Command {
	var olderThan int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete calculations older than a number of days",
		Long: `Delete calculations older than --older-than days.

Without the flag the configured storage.retention_days is used.`,
		Example: `  geocalc history cleanup --older-than 90`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("older-than") {
				olderThan = cfg.Storage.RetentionDays
			}
			if olderThan <= 0 {
				return fmt.Errorf("nothing to do: pass --older-than DAYS or set storage.retention_days")
			}

			store, err := app.Store()
			if err != nil {
				return err
			}
			removed, err := store.Cleanup(cmd.Context(), time.Duration(olderThan)*24*time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d calculations older than %d days\n", removed, olderThan)
			return nil
		},
	}

	cmd.Flags().IntVar(&olderThan, "older-than", 0, "Age in days")

	return cmd
}

func newHistoryClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded calculation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "Delete the whole calculation history? (yes/no): ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			store, err := app.Store()
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
