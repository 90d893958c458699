package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/notenest"
	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/lock"
	"github.com/aretw0/notenest/pkg/store"
)

// PINEnv supplies the PIN non-interactively.
const PINEnv = "NOTENEST_PIN"

var (
	verbose  bool
	dataDir  string
	readOnly bool
	gitless  bool
	pinFlag  string
)

// errLocked is returned when a locked data directory is accessed without
// the correct PIN.
var errLocked = errors.New("notenest is locked: incorrect PIN")

var errCancelled = errors.New("cancelled")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notenest",
	Short: "Notes, tasks and mind maps in one local state file",
	Long: `NoteNest keeps notes, tasks and mind maps in a single state tree stored
as one JSON file, optionally versioned with git after every change.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fatal("Error", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "dir", "d", "", "Data directory (default: nearest NoteNest root or the current directory)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "readonly", false, "Never write to disk")
	rootCmd.PersistentFlags().BoolVar(&gitless, "nover", false, "Disable git versioning")
	rootCmd.PersistentFlags().StringVar(&pinFlag, "pin", "", "PIN for a locked data directory (or set "+PINEnv+")")
}

// resolveDir returns --dir, else the nearest root above the working
// directory, else the working directory itself.
func resolveDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, err := notenest.FindRoot(cwd); err == nil {
		return root, nil
	}
	return cwd, nil
}

func storeOptions(cmd *cobra.Command) []notenest.Option {
	opts := []notenest.Option{
		notenest.WithAutoInit(!readOnly),
		notenest.WithReadOnly(readOnly),
		notenest.WithLogger(slog.Default()),
	}
	if cmd.Flags().Changed("nover") {
		opts = append(opts, notenest.WithVersioning(!gitless))
	}
	return opts
}

// openStore opens the data directory and, when the lock is enabled, asks
// for the PIN before returning.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}
	st, err := notenest.Open(cmd.Context(), dir, storeOptions(cmd)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dir, err)
	}
	if err := unlock(cmd, st.Snapshot().Settings); err != nil {
		return nil, err
	}
	return st, nil
}

// unlock feeds the PIN to a lock screen. It is a no-op when the lock is off.
func unlock(cmd *cobra.Command, settings core.Settings) error {
	if !lock.Required(settings) {
		return nil
	}
	pin, err := readPIN(cmd)
	if err != nil {
		return err
	}

	pin = lock.NormalizePIN(pin)
	if len(pin) != len(*settings.LockPIN) {
		return errLocked
	}
	screen := lock.NewScreenFor(settings)
	defer screen.Close()
	if screen.Type(pin) != lock.StatusUnlocked {
		return errLocked
	}
	return nil
}

func readPIN(cmd *cobra.Command) (string, error) {
	if pinFlag != "" {
		return pinFlag, nil
	}
	if pin := os.Getenv(PINEnv); pin != "" {
		return pin, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "PIN: ")
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read PIN: %w", err)
		}
		return string(b), nil
	}
	return readLine(cmd.InOrStdin())
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks before a destructive action unless --yes was given.
func confirm(cmd *cobra.Command, yes bool, prompt string) (bool, error) {
	if yes {
		return true, nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", prompt)
	answer, err := readLine(cmd.InOrStdin())
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// done prints a one-line confirmation to the command's output.
func done(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}
