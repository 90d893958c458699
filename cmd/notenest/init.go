package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/notenest"
	"github.com/aretw0/notenest/internal/platform"
	"github.com/aretw0/notenest/pkg/adapters/fs"
)

var (
	initConfig       bool
	initBackupDir    string
	initBackupFormat string
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a data directory",
	Long: `Create the data directory (the current one by default), initialise git
versioning unless --nover is given, and optionally write a notenest.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := dataDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			dir = cwd
		}
		if readOnly {
			return errors.New("cannot initialise in read-only mode")
		}
		switch initBackupFormat {
		case "", "json", "yaml", "yml":
		default:
			return fmt.Errorf("unknown backup format %q (json, yaml)", initBackupFormat)
		}

		repo, err := notenest.Init(dir, storeOptions(cmd)...)
		if err != nil {
			return err
		}
		path := dir
		if r, ok := repo.(*fs.Repository); ok {
			path = r.Path
		}

		if initConfig {
			if _, err := os.Stat(filepath.Join(path, platform.ConfigFileName)); err == nil {
				return fmt.Errorf("%s already exists in %s", platform.ConfigFileName, path)
			}
			versioning := !gitless
			cfg := platform.FileConfig{
				Versioning: &versioning,
				Backups:    platform.Backups{Dir: initBackupDir, Format: initBackupFormat},
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to write %s: %w", platform.ConfigFileName, err)
			}
		}
		done(cmd, "initialised %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initConfig, "config", false, "Write a notenest.yaml")
	initCmd.Flags().StringVar(&initBackupDir, "backup-dir", "", "Default backup directory for notenest.yaml")
	initCmd.Flags().StringVar(&initBackupFormat, "backup-format", "", "Default backup format for notenest.yaml: json, yaml")
}
