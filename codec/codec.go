// Package codec centralizes map document encoding and compression.
//
// Map files are self-describing by name: the extension selects the codec
// (".json", ".toml") and an optional trailing ".zst" or ".lz4" selects the
// compression, e.g. "world.json.zst".
package codec

import (
	"fmt"
	"path"
	"strings"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "toml":
		return TOML{}, true
	default:
		return nil, false
	}
}

// ForPath returns the codec for a file name, ignoring any compression
// suffix. JSON files use Default.
func ForPath(name string) (Codec, error) {
	base, _ := SplitCompression(name)
	switch ext := strings.ToLower(path.Ext(base)); ext {
	case ".json":
		return Default, nil
	case ".toml":
		return TOML{}, nil
	default:
		return nil, fmt.Errorf("codec: no codec for extension %q in %q", ext, name)
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
