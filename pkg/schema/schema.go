// Package schema turns raw persisted documents into a core.AppState.
//
// Documents are decoded into a generic map first so that versioned, additive
// migrations can back-fill fields introduced after the blob was written.
// Only then is the map bound to the typed state.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/notenest/pkg/core"
)

// ErrInvalidBackup is returned when an imported document lacks required fields.
var ErrInvalidBackup = errors.New("invalid backup file")

// RequiredFields must be present (and non-null) in an imported document.
var RequiredFields = []string{"notes", "tasks", "settings"}

// Migration upgrades a raw document to Version.
type Migration struct {
	Version int
	Name    string
	Apply   func(doc map[string]any)
}

// Migrations is the ordered migration chain.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "backfill mind maps",
		Apply: func(doc map[string]any) {
			if v, ok := doc["mindMaps"]; !ok || v == nil {
				doc["mindMaps"] = []any{}
			}
		},
	},
}

// Version returns the schema version recorded in doc (0 when absent).
func Version(doc map[string]any) int {
	switch v := doc["version"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	}
	return 0
}

// Migrate applies every migration newer than the document's version, in
// order, and stamps the resulting version. It returns the names applied.
func Migrate(doc map[string]any) []string {
	var applied []string
	current := Version(doc)
	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		m.Apply(doc)
		applied = append(applied, m.Name)
		current = m.Version
	}
	doc["version"] = current
	return applied
}

// Validate checks that every required field is present.
func Validate(doc map[string]any) error {
	var missing []string
	for _, f := range RequiredFields {
		if v, ok := doc[f]; !ok || v == nil {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing %s", ErrInvalidBackup, strings.Join(missing, ", "))
	}
	return nil
}

// Decode migrates doc and binds it to an AppState. Settings absent from the
// document keep their defaults.
func Decode(doc map[string]any) (core.AppState, error) {
	if doc == nil {
		return core.DefaultState(), nil
	}
	Migrate(doc)

	data, err := json.Marshal(doc)
	if err != nil {
		return core.AppState{}, fmt.Errorf("failed to re-encode document: %w", err)
	}

	state := core.AppState{Settings: core.DefaultSettings()}
	if err := json.Unmarshal(data, &state); err != nil {
		return core.AppState{}, fmt.Errorf("failed to bind document: %w", err)
	}
	state = state.Normalize()
	state.Settings = state.Settings.Normalize()
	return state, nil
}

// DecodeBackup validates an imported document and decodes it.
func DecodeBackup(doc map[string]any) (core.AppState, error) {
	if doc == nil {
		return core.AppState{}, fmt.Errorf("%w: empty document", ErrInvalidBackup)
	}
	if err := Validate(doc); err != nil {
		return core.AppState{}, err
	}
	return Decode(doc)
}

// ParseJSON reads a JSON object into a raw document. Numbers are kept as
// json.Number so millisecond timestamps survive untouched.
func ParseJSON(data []byte) (map[string]any, error) {
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return doc, nil
}

// DecodeJSON is ParseJSON followed by Decode.
func DecodeJSON(data []byte) (core.AppState, error) {
	doc, err := ParseJSON(data)
	if err != nil {
		return core.AppState{}, err
	}
	return Decode(doc)
}
