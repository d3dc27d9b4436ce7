/*
Package main is the entry point for the geocalc CLI.

geocalc computes metrics of 2D and 3D shapes, records every calculation in a
local history and reports usage statistics.

Usage:

	geocalc [command]

Available Commands:

	compute     Compute the metrics of a shape
	stats       Show statistics over the calculation history
	menu        Interactive numbered menu
	history     Manage the calculation history
	serve       Run the MCP server (stdio transport)
	config      Inspect or create the configuration file
	version     Show version information
	help        Help about any command

Examples:

	# Area and perimeter of a 2x3 rectangle
	geocalc compute rectangle 2 3

	# Statistics for the last week
	geocalc stats --window 7

	# Run as MCP server
	geocalc serve
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/khanglvm/geocalc/internal/cli"
)

func main() {
	app := cli.NewApp()
	rootCmd := cli.NewRootCmd(app)

	err := rootCmd.ExecuteContext(context.Background())
	if closeErr := app.Close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
