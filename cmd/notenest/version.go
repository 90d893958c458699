package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notenest"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notenest",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "notenest version %s\n", notenest.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
