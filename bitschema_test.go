package bitschema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bytewire/bitschema"
)

func TestDefineSchemas_EncodeDecodeRoundTrip(t *testing.T) {
	schemas, err := bitschema.DefineSchemas(map[string]bitschema.Declaration{
		"reading": {
			Fields: []bitschema.NamedField{
				{Name: "sensorID", Field: bitschema.Integer(12)},
				{Name: "celsius", Field: bitschema.Float32(bitschema.WithMin(-40), bitschema.WithMax(85))},
				{Name: "note", Field: bitschema.String(bitschema.Optional())},
			},
		},
	})
	require.NoError(t, err)
	require.Contains(t, schemas, "reading")

	reading := schemas["reading"]

	buf, err := reading.Encode(bitschema.Value{"sensorID": int64(7), "celsius": 21.5})
	require.NoError(t, err)

	out, err := reading.DecodeBytes(buf)
	require.NoError(t, err)
	require.Equal(t, int64(7), out["sensorID"])
	require.InDelta(t, 21.5, out["celsius"], 1e-4)
	_, ok := out["note"]
	require.False(t, ok)
}

func TestDefineSchemas_InvalidDeclarationFailsWhole(t *testing.T) {
	_, err := bitschema.DefineSchemas(map[string]bitschema.Declaration{
		"bad": {
			Fields: []bitschema.NamedField{
				{Name: "n", Field: bitschema.Integer(0)}, // bits outside [1,53]
			},
		},
	})
	require.Error(t, err)
}
