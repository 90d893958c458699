package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notenest"
	"github.com/aretw0/notenest/internal/platform"
	"github.com/aretw0/notenest/pkg/adapters/fs"
)

var (
	backupTimestamp bool
	restoreYes      bool
	backupsPattern  string
)

var backupCmd = &cobra.Command{
	Use:   "backup [path]",
	Short: "Export the whole state to a JSON or YAML file",
	Long: `Export notes, tasks, mind maps and settings to a single file. The format
follows the extension (.json, .yaml, .yml). Without a path the file goes to
the backups directory of notenest.yaml, or the data directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}

		path := ""
		if len(args) == 1 {
			path = args[0]
		} else if path, err = defaultBackupPath(time.Now()); err != nil {
			return err
		}

		if err := notenest.Backup(cmd.Context(), st, path); err != nil {
			return err
		}
		done(cmd, "exported to %s", path)
		return nil
	},
}

// defaultBackupPath places a backup according to notenest.yaml.
func defaultBackupPath(now time.Time) (string, error) {
	dir, err := resolveDir()
	if err != nil {
		return "", err
	}
	cfg, err := platform.LoadConfig(dir)
	if err != nil {
		return "", err
	}

	name := fs.BackupFileName
	if backupTimestamp {
		name = fs.TimestampedBackupName(now)
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + cfg.BackupExt()

	out := dir
	if cfg != nil && cfg.Backups.Dir != "" {
		out = cfg.Backups.Dir
		if !filepath.IsAbs(out) {
			out = filepath.Join(dir, out)
		}
	}
	return filepath.Join(out, name), nil
}

var restoreCmd = &cobra.Command{
	Use:   "restore <path>",
	Short: "Replace the whole state with a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		ok, err := confirm(cmd, restoreYes, "Replace all notes, tasks and mind maps with "+args[0]+"?")
		if err != nil || !ok {
			return err
		}

		state, err := notenest.Restore(cmd.Context(), st, args[0])
		if err != nil {
			return fmt.Errorf("restore failed, nothing changed: %w", err)
		}
		done(cmd, "restored %d notes, %d tasks, %d mind maps", len(state.Notes), len(state.Tasks), len(state.MindMaps))
		return nil
	},
}

var backupsCmd = &cobra.Command{
	Use:   "backups [dir]",
	Short: "List backup files, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := ""
		if len(args) == 1 {
			root = args[0]
		} else {
			var err error
			if root, err = resolveDir(); err != nil {
				return err
			}
		}

		backups, err := fs.FindBackups(root, backupsPattern)
		if err != nil {
			return err
		}
		tw := newTable(cmd.OutOrStdout())
		for _, b := range backups {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", b.Path, b.Size, b.ModTime.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(backupCmd, restoreCmd, backupsCmd)
	backupCmd.Flags().BoolVarP(&backupTimestamp, "timestamp", "t", false, "Add a UTC timestamp to the default file name")
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Do not ask for confirmation")
	backupsCmd.Flags().StringVar(&backupsPattern, "pattern", fs.BackupPattern, "Glob pattern (supports **)")
}
