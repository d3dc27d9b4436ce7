package cli

import (
	"github.com/spf13/cobra"

	"github.com/khanglvm/geocalc/internal/version"
)

// NewRootCmd builds the command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "geocalc",
		Short: "Geometry calculator with calculation history and statistics",
		Long: `geocalc computes area and perimeter of 2D shapes (rectangle, square, circle,
triangle) and volume and surface area of 3D shapes (cube, rectangular prism,
sphere, triangular prism).

Every calculation is appended to a local history (SQLite, ~/.geocalc/history.db)
from which 'geocalc stats' derives usage statistics.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// config init/path and version must work with a broken config file
			if cmd.Name() == "version" || (cmd.Parent() != nil && cmd.Parent().Name() == "config" && cmd.Name() != "show") {
				return nil
			}
			return app.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.ConfigPath, "config", app.ConfigPath, "Config file (default ~/.geocalc.yaml)")
	rootCmd.PersistentFlags().StringVar(&app.DBPath, "db", app.DBPath, "History database path (overrides config)")

	rootCmd.AddCommand(NewComputeCmd(app))
	rootCmd.AddCommand(NewStatsCmd(app))
	rootCmd.AddCommand(NewMenuCmd(app))
	rootCmd.AddCommand(NewHistoryCmd(app))
	rootCmd.AddCommand(NewServeCmd(app))
	rootCmd.AddCommand(NewConfigCmd(app))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
