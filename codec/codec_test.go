package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name   string             `json:"name"`
	Values []float64          `json:"values"`
	Bounds map[string]float64 `json:"bounds"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_Roundtrip(t *testing.T) {
	in := payload{
		Name:   "blend",
		Values: []float64{0.25, 0.5, 0.25},
		Bounds: map[string]float64{"min": 0.99, "max": 1.01},
	}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		data, err := c.Marshal(in)
		require.NoError(t, err, c.Name())

		var out payload
		require.NoError(t, c.Unmarshal(data, &out), c.Name())
		assert.Equal(t, in, out, c.Name())
	}
}

func TestGoJSON_MatchesStdlibWireFormat(t *testing.T) {
	in := payload{Name: "x", Values: []float64{0.1}}

	std := MustMarshal(JSON{}, in)
	fast := MustMarshal(GoJSON{}, in)
	assert.JSONEq(t, string(std), string(fast))
}
