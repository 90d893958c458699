package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	nnlifecycle "github.com/aretw0/notenest/pkg/adapters/lifecycle"
	"github.com/aretw0/notenest/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow external changes to the state file and reload them",
	Long: `Watch the state file for changes made by other processes (another
notenest instance, a git checkout, a sync tool). Each change is reloaded and
printed until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		watchable, ok := st.Repository().(core.Watchable)
		if !ok {
			return errors.New("repository cannot be watched")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, err := watchable.Watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to watch: %w", err)
		}
		source := nnlifecycle.NewSource(events, nnlifecycle.ReloadStore(st))
		if err := source.Start(ctx); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(cmd.ErrOrStderr(), "watching for changes, press Ctrl+C to stop")
		for e := range source.Events() {
			s := st.Snapshot()
			fmt.Fprintf(out, "%s %s: %d notes, %d tasks, %d mind maps\n",
				time.Now().Format("15:04:05"), e, len(s.Notes), len(s.Tasks), len(s.MindMaps))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
