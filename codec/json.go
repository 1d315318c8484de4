package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// It is kept for callers that want the most portable option; Default is
// byte-for-byte compatible on the map documents kdmap reads.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used for ".json" map files.
var Default Codec = GoJSON{}
