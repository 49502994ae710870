package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bytewire/bitschema/schema"
)

func TestStaticBitLength_FixedFieldsOnly(t *testing.T) {
	s, err := schema.Validate("fixed", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "a", Field: schema.Integer(10)},
			{Name: "b", Field: schema.Boolean()},
			{Name: "c", Field: schema.Float64()},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 10+1+64, s.StaticBits)
}

func TestStaticBitLength_ListContributesOnlyLengthPrefix(t *testing.T) {
	s, err := schema.Validate("withlist", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "xs", Field: schema.Integer(32, schema.List())},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 16, s.StaticBits)
}

func TestStaticBitLength_OptionalContributesOnlyPresenceBit(t *testing.T) {
	s, err := schema.Validate("withopt", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "note", Field: schema.String(schema.Optional())},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, s.StaticBits)
}

func TestStaticBitLength_DependencyGatedFieldContributesNothing(t *testing.T) {
	s, err := schema.Validate("withdep", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "f", Field: schema.Boolean()},
			{Name: "p", Field: schema.String(schema.DependsOn("f"))},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, s.StaticBits) // only f's bit; p is conditional
}

func TestStaticBitLength_MetadataPrefixAddsByte(t *testing.T) {
	tag := uint8(1)
	s, err := schema.Validate("tagged", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "a", Field: schema.Boolean()},
		},
		Metadata: schema.Metadata{Prefix: &tag},
	})
	require.NoError(t, err)
	require.Equal(t, 8+1, s.StaticBits)
}

func TestStaticBitLength_StringWithoutIncludeSizeContributesNothing(t *testing.T) {
	s, err := schema.Validate("raw", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "s", Field: schema.String(schema.WithIncludeSize(false))},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 0, s.StaticBits)
}
