package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notenest"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the versioned snapshots of the state, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		entries, err := notenest.History(cmd.Context(), st, historyLimit)
		if err != nil {
			return err
		}

		tw := newTable(cmd.OutOrStdout())
		for _, e := range entries {
			hash := e.Hash
			if len(hash) > 8 {
				hash = hash[:8]
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", hash, e.When.Local().Format("2006-01-02 15:04"), e.Subject)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries (0 for all)")
}
