package codec_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bytewire/bitschema/codec"
	"github.com/bytewire/bitschema/errs"
	"github.com/bytewire/bitschema/schema"
)

func compile(t *testing.T, name string, decl schema.Declaration) *codec.Compiled {
	t.Helper()
	s, err := schema.Validate(name, decl)
	require.NoError(t, err)

	return codec.Compile(s)
}

func TestEncodeDecode_ScalarRoundTrip(t *testing.T) {
	c := compile(t, "point", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "x", Field: schema.Integer(10, schema.Signed())},
			{Name: "y", Field: schema.Integer(10, schema.Signed())},
			{Name: "label", Field: schema.String()},
			{Name: "active", Field: schema.Boolean()},
		},
	})

	in := codec.Value{"x": int64(-5), "y": int64(300), "label": "origin", "active": true}
	out, err := c.Encode(in)
	require.NoError(t, err)

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, int64(-5), decoded["x"])
	require.Equal(t, int64(300), decoded["y"])
	require.Equal(t, "origin", decoded["label"])
	require.Equal(t, true, decoded["active"])
}

func TestEncode_IntegerOutOfRange(t *testing.T) {
	c := compile(t, "narrow", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "n", Field: schema.Integer(4)}, // unsigned, 0..15
		},
	})

	_, err := c.Encode(codec.Value{"n": int64(16)})
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestEncodeDecode_OptionalFieldAbsent(t *testing.T) {
	c := compile(t, "opt", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "id", Field: schema.Integer(8)},
			{Name: "note", Field: schema.String(schema.Optional())},
		},
	})

	out, err := c.Encode(codec.Value{"id": int64(7)})
	require.NoError(t, err)

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, int64(7), decoded["id"])
	_, ok := decoded["note"]
	require.False(t, ok)
}

func TestEncodeDecode_OptionalFieldPresent(t *testing.T) {
	c := compile(t, "opt2", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "id", Field: schema.Integer(8)},
			{Name: "note", Field: schema.String(schema.Optional())},
		},
	})

	out, err := c.Encode(codec.Value{"id": int64(7), "note": "hi"})
	require.NoError(t, err)

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, "hi", decoded["note"])
}

func TestEncodeDecode_DependencyGating(t *testing.T) {
	c := compile(t, "dep", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "f", Field: schema.Boolean()},
			{Name: "p", Field: schema.String(schema.DependsOn("f"))},
		},
	})

	out, err := c.Encode(codec.Value{"f": false})
	require.NoError(t, err)
	require.Equal(t, 1, len(out)) // a single boolean bit, realigned to one byte

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, false, decoded["f"])
	_, ok := decoded["p"]
	require.False(t, ok)

	out2, err := c.Encode(codec.Value{"f": true, "p": "active"})
	require.NoError(t, err)

	decoded2, err := c.DecodeBytes(out2)
	require.NoError(t, err)
	require.Equal(t, true, decoded2["f"])
	require.Equal(t, "active", decoded2["p"])
}

func TestEncode_DependencyOnNonBooleanRejectedAtValidation(t *testing.T) {
	_, err := schema.Validate("bad", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "n", Field: schema.Integer(8)},
			{Name: "p", Field: schema.String(schema.DependsOn("n"))},
		},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)
}

func TestEncodeDecode_DefaultSubstitution(t *testing.T) {
	c := compile(t, "def", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "level", Field: schema.Integer(8, schema.WithDefault(int64(3)))},
		},
	})

	out, err := c.Encode(codec.Value{})
	require.NoError(t, err)

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, int64(3), decoded["level"])
}

func TestEncode_RequiredFieldMissing(t *testing.T) {
	c := compile(t, "req", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "id", Field: schema.Integer(8)},
		},
	})

	_, err := c.Encode(codec.Value{})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrMalformed))
}

func TestEncodeDecode_ListField(t *testing.T) {
	c := compile(t, "lst", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "tags", Field: schema.String(schema.List())},
		},
	})

	out, err := c.Encode(codec.Value{"tags": []string{"a", "bb", "ccc"}})
	require.NoError(t, err)

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "bb", "ccc"}, decoded["tags"])
}

func TestEncodeDecode_EmptyList(t *testing.T) {
	c := compile(t, "lst2", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "vals", Field: schema.Integer(8, schema.List())},
		},
	})

	out, err := c.Encode(codec.Value{"vals": []int64{}})
	require.NoError(t, err)

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, []int64{}, decoded["vals"])
}

func TestEncodeDecode_StringPatternMismatch(t *testing.T) {
	c := compile(t, "pat", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "code", Field: schema.String(schema.WithPattern(`^[A-Z]{3}$`))},
		},
	})

	_, err := c.Encode(codec.Value{"code": "abc"})
	require.ErrorIs(t, err, errs.ErrMalformed)

	out, err := c.Encode(codec.Value{"code": "ABC"})
	require.NoError(t, err)
	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, "ABC", decoded["code"])
}

func TestEncodeDecode_BlobNoSizePrefixReadsRemainder(t *testing.T) {
	c := compile(t, "raw", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "prefix", Field: schema.Integer(8)},
			{Name: "payload", Field: schema.Blob(schema.WithIncludeSize(false))},
		},
	})

	out, err := c.Encode(codec.Value{"prefix": int64(1), "payload": []byte{0xAA, 0xBB, 0xCC}})
	require.NoError(t, err)

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC}, decoded["payload"])
}

func TestEncodeDecode_MetadataPrefixByte(t *testing.T) {
	tag := uint8(42)
	c := compile(t, "tagged", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "n", Field: schema.Integer(8)},
		},
		Metadata: schema.Metadata{Prefix: &tag},
	})

	out, err := c.Encode(codec.Value{"n": int64(5)})
	require.NoError(t, err)
	require.Equal(t, byte(42), out[0])

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.Equal(t, int64(5), decoded["n"])
}

func TestEncodeDecode_FloatRoundTrip(t *testing.T) {
	c := compile(t, "floats", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "a", Field: schema.Float32()},
			{Name: "b", Field: schema.Float64()},
		},
	})

	out, err := c.Encode(codec.Value{"a": 3.5, "b": 2.718281828})
	require.NoError(t, err)

	decoded, err := c.DecodeBytes(out)
	require.NoError(t, err)
	require.InDelta(t, 3.5, decoded["a"], 1e-6)
	require.InDelta(t, 2.718281828, decoded["b"], 1e-9)
}

func TestStaticBitLength_LowerBound(t *testing.T) {
	s, err := schema.Validate("bound", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "id", Field: schema.Integer(16)},
			{Name: "flag", Field: schema.Boolean()},
			{Name: "note", Field: schema.String(schema.Optional())},
		},
	})
	require.NoError(t, err)
	c := codec.Compile(s)

	out, err := c.Encode(codec.Value{"id": int64(1), "flag": true, "note": "x"})
	require.NoError(t, err)

	require.LessOrEqual(t, s.StaticBits, len(out)*8)
}
