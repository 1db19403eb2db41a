package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Raiwe17/ProektSite/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of proektsite",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "proektsite version %s\n", version.Version)
		},
	}
}
