package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// It is the most portable option; prefer it when saved setups must be
// readable by tooling outside this library.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used when none is configured.
//
// This affects newly-written files only. Saved setups record the codec
// name and are decoded by selecting the codec by name.
var Default Codec = GoJSON{}
