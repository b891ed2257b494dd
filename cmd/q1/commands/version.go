package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set via -ldflags "-X .../commands.Version=..." at build time.
var Version = "dev"

// NewVersionCommand reports the build version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "q1 %s\n", Version)
		},
	}
}
