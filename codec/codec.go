// Package codec centralizes serialization of persisted payloads.
//
// Saved setups and JSON exports record the codec name next to the bytes,
// so a file written with one codec is always decoded with the same one.
package codec

import "fmt"

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
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests.
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
