package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/lock"
	"github.com/aretw0/notenest/pkg/store"
)

var settingsJSON bool

// settingSetters maps each key accepted by "settings set" to its parser.
var settingSetters = map[string]func(s core.Settings, v string) (core.Settings, error){
	"theme": func(s core.Settings, v string) (core.Settings, error) {
		t := core.Theme(strings.ToLower(v))
		if !t.Valid() {
			return s, fmt.Errorf("unknown theme %q (light, dark)", v)
		}
		s.Theme = t
		return s, nil
	},
	"accent": func(s core.Settings, v string) (core.Settings, error) {
		c := core.AccentColor(strings.ToLower(v))
		if !c.Valid() {
			return s, fmt.Errorf("unknown accent %q (%s)", v, accentNames())
		}
		s.AccentColor = c
		return s, nil
	},
	"font": func(s core.Settings, v string) (core.Settings, error) {
		f := core.FontSize(strings.ToLower(v))
		if !f.Valid() {
			return s, fmt.Errorf("unknown font size %q (sm, base, lg)", v)
		}
		s.FontSize = f
		return s, nil
	},
	"reminders": boolSetting(func(s *core.Settings) *bool { return &s.HighPriorityReminders }),
	"lock": func(s core.Settings, v string) (core.Settings, error) {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("lock: %w", err)
		}
		if b && (s.LockPIN == nil || !lock.ValidPIN(*s.LockPIN)) {
			return s, errors.New("set a pin before enabling the lock")
		}
		s.LockEnabled = b
		return s, nil
	},
	"pin":       lock.SetPIN,
	"halloween": boolSetting(func(s *core.Settings) *bool { return &s.HalloweenKeyboard }),
}

func boolSetting(field func(*core.Settings) *bool) func(core.Settings, string) (core.Settings, error) {
	return func(s core.Settings, v string) (core.Settings, error) {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, err
		}
		*field(&s) = b
		return s, nil
	}
}

func accentNames() string {
	names := make([]string, len(core.AccentColors))
	for i, c := range core.AccentColors {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		s := st.Snapshot().Settings
		if settingsJSON {
			return writeJSON(cmd, s)
		}

		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintf(tw, "theme\t%s\n", s.Theme)
		fmt.Fprintf(tw, "accent\t%s\n", s.AccentColor)
		fmt.Fprintf(tw, "font\t%s\n", s.FontSize)
		fmt.Fprintf(tw, "reminders\t%t\n", s.HighPriorityReminders)
		fmt.Fprintf(tw, "lock\t%t\n", s.LockEnabled)
		fmt.Fprintf(tw, "halloween\t%t\n", s.HalloweenKeyboard)
		return tw.Flush()
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key>=<value>...",
	Short: "Change one or more settings",
	Long: `Change settings. Keys: theme, accent, font, reminders, lock, pin, halloween.
Enabling the lock requires a valid PIN of 4 to 6 digits.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}

		s := st.Snapshot().Settings
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("expected key=value, got %q", arg)
			}
			set, ok := settingSetters[strings.ToLower(strings.TrimSpace(key))]
			if !ok {
				return fmt.Errorf("unknown setting %q (%s)", key, strings.Join(settingKeys(), ", "))
			}
			if s, err = set(s, strings.TrimSpace(value)); err != nil {
				return err
			}
		}

		st.Dispatch(cmd.Context(), store.UpdateSettings{Settings: s})
		done(cmd, "settings updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.Flags().BoolVar(&settingsJSON, "json", false, "Output in JSON format")
}
