// Command q1 runs the Query-1 streaming core against a location catalog
// and a sequence of batches, printing each ranked result as it is
// produced.
package main

import (
	"fmt"
	"os"

	"github.com/maximbalsacq/aqiwindow/cmd/q1/commands"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "q1",
		Short: "DEBS Query-1 streaming core",
		Long: `q1 ranks German cities by 5-day AQI improvement against the same
window one year earlier, from a live or replayed measurement feed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
