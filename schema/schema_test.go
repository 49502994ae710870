package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bytewire/bitschema/errs"
	"github.com/bytewire/bitschema/schema"
)

func TestValidate_DuplicateFieldName(t *testing.T) {
	_, err := schema.Validate("dup", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "a", Field: schema.Integer(8)},
			{Name: "a", Field: schema.Boolean()},
		},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)
}

func TestValidate_IntegerBitsOutOfRange(t *testing.T) {
	_, err := schema.Validate("bad", schema.Declaration{
		Fields: []schema.NamedField{{Name: "n", Field: schema.Integer(54)}},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)

	_, err = schema.Validate("bad2", schema.Declaration{
		Fields: []schema.NamedField{{Name: "n", Field: schema.Integer(0)}},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)
}

func TestValidate_DefaultOutsideDeclaredRange(t *testing.T) {
	_, err := schema.Validate("bad", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "n", Field: schema.Integer(8, schema.WithMin(0), schema.WithMax(10), schema.WithDefault(int64(20)))},
		},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)
}

func TestValidate_DependencyMustExist(t *testing.T) {
	_, err := schema.Validate("bad", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "p", Field: schema.String(schema.DependsOn("missing"))},
		},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)
}

func TestValidate_DependencyMustBeBoolean(t *testing.T) {
	_, err := schema.Validate("bad", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "n", Field: schema.Integer(8)},
			{Name: "p", Field: schema.String(schema.DependsOn("n"))},
		},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)
}

func TestValidate_CircularDependencyDetected(t *testing.T) {
	_, err := schema.Validate("cycle", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "a", Field: schema.Boolean(schema.DependsOn("b"))},
			{Name: "b", Field: schema.Boolean(schema.DependsOn("a"))},
		},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)
}

func TestValidate_TopologicalOrder(t *testing.T) {
	s, err := schema.Validate("order", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "p", Field: schema.String(schema.DependsOn("f"))},
			{Name: "f", Field: schema.Boolean()},
		},
	})
	require.NoError(t, err)
	require.Less(t, s.IndexOf("f"), s.IndexOf("p"))
}

func TestValidate_ListStringRequiresIncludeSize(t *testing.T) {
	_, err := schema.Validate("bad", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "tags", Field: schema.String(schema.List(), schema.WithIncludeSize(false))},
		},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)
}

func TestValidate_StringDefaultPatternMismatch(t *testing.T) {
	_, err := schema.Validate("bad", schema.Declaration{
		Fields: []schema.NamedField{
			{Name: "code", Field: schema.String(schema.WithPattern(`^[A-Z]+$`), schema.WithDefault("lower"))},
		},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)
}

func TestValidate_IncludeSizeDefaultsToTrue(t *testing.T) {
	s, err := schema.Validate("ok", schema.Declaration{
		Fields: []schema.NamedField{{Name: "s", Field: schema.String()}},
	})
	require.NoError(t, err)
	require.NotNil(t, s.Fields[0].Field.IncludeSize)
	require.True(t, *s.Fields[0].Field.IncludeSize)
}

func TestValidate_UnknownFieldKindRejected(t *testing.T) {
	_, err := schema.Validate("bad", schema.Declaration{
		Fields: []schema.NamedField{{Name: "n", Field: schema.Field{Kind: schema.Kind(99)}}},
	})
	require.ErrorIs(t, err, errs.ErrSchemaInvalid)
}
