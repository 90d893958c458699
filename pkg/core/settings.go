package core

// Theme is the colour scheme of the presentation layer.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// AccentColor is one of the five accent palettes.
type AccentColor string

const (
	AccentYellow AccentColor = "yellow"
	AccentBlue   AccentColor = "blue"
	AccentGreen  AccentColor = "green"
	AccentPink   AccentColor = "pink"
	AccentPurple AccentColor = "purple"
)

// AccentColors lists every accent in display order.
var AccentColors = []AccentColor{AccentYellow, AccentBlue, AccentGreen, AccentPink, AccentPurple}

// FontSize is the base text size of the presentation layer.
type FontSize string

const (
	FontSmall FontSize = "sm"
	FontBase  FontSize = "base"
	FontLarge FontSize = "lg"
)

// DefaultLockPIN is the PIN shipped with fresh settings.
const DefaultLockPIN = "1234"

// Settings is the user-facing configuration surface.
//
// LockPIN is stored and compared in plaintext; it guards casual local
// access only.
type Settings struct {
	Theme                 Theme       `json:"theme" yaml:"theme"`
	AccentColor           AccentColor `json:"accentColor" yaml:"accentColor"`
	FontSize              FontSize    `json:"fontSize" yaml:"fontSize"`
	HighPriorityReminders bool        `json:"highPriorityReminders" yaml:"highPriorityReminders"`
	LockEnabled           bool        `json:"lockEnabled" yaml:"lockEnabled"`
	LockPIN               *string     `json:"lockPin" yaml:"lockPin"`
	HalloweenKeyboard     bool        `json:"halloweenKeyboard" yaml:"halloweenKeyboard"`
}

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		Theme:                 ThemeLight,
		AccentColor:           AccentYellow,
		FontSize:              FontBase,
		HighPriorityReminders: true,
		LockEnabled:           false,
		LockPIN:               StringPtr(DefaultLockPIN),
		HalloweenKeyboard:     false,
	}
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// Valid reports whether c is a known accent colour.
func (c AccentColor) Valid() bool {
	for _, a := range AccentColors {
		if a == c {
			return true
		}
	}
	return false
}

// Valid reports whether f is a known font size.
func (f FontSize) Valid() bool { return f == FontSmall || f == FontBase || f == FontLarge }

// Normalize replaces unknown enum values with their defaults.
func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if !s.Theme.Valid() {
		s.Theme = d.Theme
	}
	if !s.AccentColor.Valid() {
		s.AccentColor = d.AccentColor
	}
	if !s.FontSize.Valid() {
		s.FontSize = d.FontSize
	}
	return s
}
