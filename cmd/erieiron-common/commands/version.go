package commands

import (
	"fmt"

	"github.com/erieironllc/erieiron-public-common/internal/version"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "erieiron-common %s\n", version.Version)
		},
	}
}
