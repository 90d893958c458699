package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/notenest/pkg/lock"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Check the PIN of a locked data directory",
	Long: `Ask for the PIN (or read --pin / NOTENEST_PIN) and exit non-zero when it
does not match. Every other command performs the same check first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		if !lock.Required(st.Snapshot().Settings) {
			done(cmd, "lock is disabled")
			return nil
		}
		done(cmd, "unlocked")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}
