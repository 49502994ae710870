package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bytewire/bitschema/codec"
	"github.com/bytewire/bitschema/config"
	"github.com/bytewire/bitschema/schema"
)

const readingHCL = `
schema "reading" {
  field "sensorID" {
    kind = "integer"
    bits = 12
  }
  field "celsius" {
    kind = "float32"
    min  = -40
    max  = 85
  }
  field "note" {
    kind     = "string"
    optional = true
  }
}
`

func TestLoadSource_DeclaresUsableSchema(t *testing.T) {
	table, err := config.LoadSource("reading.hcl", []byte(readingHCL))
	require.NoError(t, err)
	require.Contains(t, table, "reading")

	decl := table["reading"]
	require.Len(t, decl.Fields, 3)

	s, err := schema.Validate("reading", decl)
	require.NoError(t, err)
	c := codec.Compile(s)

	out, err := c.Encode(codec.Value{"sensorID": int64(7), "celsius": 21.5})
	require.NoError(t, err)

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, int64(7), decoded["sensorID"])
}

func TestLoadSource_UnknownKindRejected(t *testing.T) {
	_, err := config.LoadSource("bad.hcl", []byte(`
schema "bad" {
  field "x" {
    kind = "nonsense"
  }
}
`))
	require.Error(t, err)
}
