// Package lock implements the PIN gate shown before the workspace opens.
//
// The PIN is a plain 4 to 6 digit string compared as-is. It keeps a casual
// passer-by out; it is not a security boundary.
package lock

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/notenest/pkg/core"
)

const (
	MinPINLength = 4
	MaxPINLength = 6
)

// ErrorDelay is how long a rejected PIN stays on screen before the input resets.
const ErrorDelay = time.Second

// ErrInvalidPIN is returned when a PIN is not 4 to 6 digits.
var ErrInvalidPIN = errors.New("PIN must be 4 to 6 digits")

// NormalizePIN keeps only the digits of s, truncated to MaxPINLength.
func NormalizePIN(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == MaxPINLength {
				break
			}
		}
	}
	return b.String()
}

// ValidPIN reports whether pin is 4 to 6 ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) < MinPINLength || len(pin) > MaxPINLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SetPIN returns settings carrying the normalised pin, or ErrInvalidPIN.
func SetPIN(s core.Settings, raw string) (core.Settings, error) {
	pin := NormalizePIN(raw)
	if !ValidPIN(pin) {
		return s, ErrInvalidPIN
	}
	s.LockPIN = core.StringPtr(pin)
	return s, nil
}

// Required reports whether the gate must be shown for s.
func Required(s core.Settings) bool {
	return s.LockEnabled && s.LockPIN != nil && *s.LockPIN != ""
}

// Status is the visible state of the keypad.
type Status int

const (
	StatusLocked Status = iota
	StatusRejected
	StatusUnlocked
)

func (s Status) String() string {
	switch s {
	case StatusRejected:
		return "rejected"
	case StatusUnlocked:
		return "unlocked"
	}
	return "locked"
}

// Timer is the subset of *time.Timer the screen needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Screen is the keypad state machine. Digits accumulate until the input is
// as long as the PIN, at which point it is compared. A mismatch shows an
// error for ErrorDelay and then clears the input.
type Screen struct {
	mu        sync.Mutex
	pin       string
	input     string
	status    Status
	afterFunc AfterFunc
	timer     Timer
	attempts  int
	onUnlock  func()
}

// Option configures a Screen.
type Option func(*Screen)

// WithAfterFunc replaces the timer used for the error reset.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Screen) { s.afterFunc = fn }
}

// WithOnUnlock registers a callback run once the correct PIN is entered.
func WithOnUnlock(fn func()) Option {
	return func(s *Screen) { s.onUnlock = fn }
}

// NewScreen creates a locked screen for pin.
func NewScreen(pin string, opts ...Option) *Screen {
	s := &Screen{pin: pin, afterFunc: systemAfterFunc}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewScreenFor creates a screen for the PIN stored in settings.
func NewScreenFor(settings core.Settings, opts ...Option) *Screen {
	pin := ""
	if settings.LockPIN != nil {
		pin = *settings.LockPIN
	}
	return NewScreen(pin, opts...)
}

// Input returns the digits typed so far.
func (s *Screen) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Status returns the current keypad status.
func (s *Screen) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Attempts returns the number of rejected entries.
func (s *Screen) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Press appends a digit. Non-digits, and any key while the error is shown
// or after unlocking, are ignored.
func (s *Screen) Press(key rune) Status {
	s.mu.Lock()
	if s.status != StatusLocked || key < '0' || key > '9' || len(s.input) >= len(s.pin) {
		st := s.status
		s.mu.Unlock()
		return st
	}

	s.input += string(key)
	if len(s.input) < len(s.pin) {
		s.mu.Unlock()
		return StatusLocked
	}

	if s.input == s.pin {
		s.status = StatusUnlocked
		cb := s.onUnlock
		s.mu.Unlock()
		if cb != nil {
			cb()
		}
		return StatusUnlocked
	}

	s.status = StatusRejected
	s.attempts++
	s.mu.Unlock()

	// The reset may run before afterFunc returns.
	timer := s.afterFunc(ErrorDelay, s.reset)
	s.mu.Lock()
	if s.status == StatusRejected && s.timer == nil {
		s.timer = timer
	}
	s.mu.Unlock()
	return StatusRejected
}

// Type presses every rune of keys and returns the final status.
func (s *Screen) Type(keys string) Status {
	st := s.Status()
	for _, r := range keys {
		st = s.Press(r)
	}
	return st
}

// Backspace removes the last digit.
func (s *Screen) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusLocked && len(s.input) > 0 {
		s.input = s.input[:len(s.input)-1]
	}
}

// Close stops a pending error reset.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Screen) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusRejected {
		return
	}
	s.status = StatusLocked
	s.input = ""
	s.timer = nil
}
