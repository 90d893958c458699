package core

import (
	"fmt"
	"sync"
	"time"
)

// Id prefixes, one per entity kind.
const (
	PrefixNote       = "note"
	PrefixAttachment = "att"
	PrefixTask       = "task"
	PrefixSubtask    = "sub"
	PrefixMindMap    = "map"
	PrefixNode       = "node"
)

// Clock abstracts wall-clock time so reducers and timers are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Millis returns the clock's current time in epoch milliseconds.
func Millis(c Clock) int64 {
	return c.Now().UnixMilli()
}

// IDGenerator hands out timestamp-derived ids of the form "<prefix>_<ms>".
//
// Stamps are strictly increasing within one generator, so two ids minted in
// the same millisecond still differ.
type IDGenerator struct {
	mu    sync.Mutex
	clock Clock
	last  int64
}

// NewIDGenerator creates a generator driven by clock (SystemClock if nil).
func NewIDGenerator(clock Clock) *IDGenerator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &IDGenerator{clock: clock}
}

// Stamp returns the next millisecond stamp, never repeating a previous one.
func (g *IDGenerator) Stamp() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := Millis(g.clock)
	if now <= g.last {
		now = g.last + 1
	}
	g.last = now
	return now
}

// Observe records a stamp minted elsewhere so later stamps come after it.
func (g *IDGenerator) Observe(stamp int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if stamp > g.last {
		g.last = stamp
	}
}

// Next returns a fresh id with the given prefix.
func (g *IDGenerator) Next(prefix string) string {
	return FormatID(prefix, g.Stamp())
}

// FormatID builds the id for prefix at stamp.
func FormatID(prefix string, stamp int64) string {
	return fmt.Sprintf("%s_%d", prefix, stamp)
}
