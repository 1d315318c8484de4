package codec

import "github.com/pelletier/go-toml/v2"

// TOML is a codec backed by github.com/pelletier/go-toml/v2.
//
// A TOML map file holds the tiles as an array of tables:
//
//	[[List]]
//	Id = "forest"
//	X = 0.0
//	Y = 0.0
type TOML struct{}

// Marshal encodes the value to TOML.
func (TOML) Marshal(v any) ([]byte, error) { return toml.Marshal(v) }

// Unmarshal decodes the TOML data into v.
func (TOML) Unmarshal(data []byte, v any) error { return toml.Unmarshal(data, v) }

// Name returns the unique name of the codec ("toml").
func (TOML) Name() string { return "toml" }
