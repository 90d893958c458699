package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/notenest/pkg/core"
	"github.com/aretw0/notenest/pkg/schema"
)

// Serializer defines how the state tree is written to and read from one file format.
type Serializer interface {
	// Encode converts the state to bytes.
	Encode(state core.AppState) ([]byte, error)
	// Decode parses bytes into a raw document for the schema package.
	Decode(data []byte) (map[string]any, error)
}

// DefaultSerializers returns the standard set of serializers keyed by extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(true),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// --- JSON Serializer ---

// JSONSerializer handles JSON blobs and backups.
type JSONSerializer struct {
	// Indent pretty-prints the output.
	Indent bool
}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer(indent bool) *JSONSerializer {
	return &JSONSerializer{Indent: indent}
}

func (s *JSONSerializer) Encode(state core.AppState) ([]byte, error) {
	var buf bytes.Buffer
	enc := jsonEncoder(&buf)
	if s.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *JSONSerializer) Decode(data []byte) (map[string]any, error) {
	return schema.ParseJSON(data)
}

// jsonEncoder leaves note markup unescaped.
func jsonEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// --- YAML Serializer ---

// YAMLSerializer handles YAML backups.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Encode(state core.AppState) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(state); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *YAMLSerializer) Decode(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return doc, nil
}

// serializerFor picks the serializer registered for path's extension.
func serializerFor(serializers map[string]Serializer, path string) (Serializer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if s, ok := serializers[ext]; ok {
		return s, nil
	}
	exts := make([]string, 0, len(serializers))
	for e := range serializers {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return nil, fmt.Errorf("unsupported file extension %q (supported: %s)", ext, strings.Join(exts, ", "))
}
