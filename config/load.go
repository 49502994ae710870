package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/bytewire/bitschema/codec"
	"github.com/bytewire/bitschema/errs"
	"github.com/bytewire/bitschema/schema"
)

// LoadFile parses an HCL file into a table of schema declarations, suitable
// for passing directly to codec.DefineSchemas.
//
// Textual defaults are not supported by this loader: a field needing a
// default value must be added to the resulting Declaration in Go before
// compiling, since HCL's attribute types don't carry enough information to
// disambiguate, e.g., an int default from a float one.
func LoadFile(filename string) (map[string]schema.Declaration, error) {
	var r root
	if err := hclsimple.DecodeFile(filename, nil, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSchemaInvalid, err)
	}

	return toDeclarations(r)
}

// LoadSource parses HCL source held in memory, attributing diagnostics to
// name (used only for error messages, no file is read).
func LoadSource(name string, src []byte) (map[string]schema.Declaration, error) {
	var r root
	if err := hclsimple.Decode(name, src, nil, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSchemaInvalid, err)
	}

	return toDeclarations(r)
}

// DefineSchemasFromFile loads filename and compiles every schema it declares,
// in one call.
func DefineSchemasFromFile(filename string) (map[string]*codec.Compiled, error) {
	table, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}

	return codec.DefineSchemas(table)
}

func toDeclarations(r root) (map[string]schema.Declaration, error) {
	out := make(map[string]schema.Declaration, len(r.Schemas))

	for _, s := range r.Schemas {
		decl := schema.Declaration{}
		if s.Repeated != nil {
			decl.Metadata.Repeated = *s.Repeated
		}
		if s.Prefix != nil {
			p := uint8(*s.Prefix)
			decl.Metadata.Prefix = &p
		}

		decl.Fields = make([]schema.NamedField, 0, len(s.Fields))
		for _, fs := range s.Fields {
			f, err := toField(fs)
			if err != nil {
				return nil, fmt.Errorf("schema %q: %w", s.Name, err)
			}
			decl.Fields = append(decl.Fields, schema.NamedField{Name: fs.Name, Field: f})
		}

		out[s.Name] = decl
	}

	return out, nil
}

func toField(fs fieldSpec) (schema.Field, error) {
	var opts []schema.FieldOption

	if fs.Signed != nil && *fs.Signed {
		opts = append(opts, schema.Signed())
	}
	if fs.Min != nil {
		opts = append(opts, schema.WithMin(*fs.Min))
	}
	if fs.Max != nil {
		opts = append(opts, schema.WithMax(*fs.Max))
	}
	if fs.Pattern != nil {
		opts = append(opts, schema.WithPattern(*fs.Pattern))
	}
	if fs.MinLength != nil {
		opts = append(opts, schema.WithMinLength(*fs.MinLength))
	}
	if fs.MaxLength != nil {
		opts = append(opts, schema.WithMaxLength(*fs.MaxLength))
	}
	if fs.IncludeSize != nil {
		opts = append(opts, schema.WithIncludeSize(*fs.IncludeSize))
	}
	if fs.List != nil && *fs.List {
		opts = append(opts, schema.List())
	}
	if fs.Optional != nil && *fs.Optional {
		opts = append(opts, schema.Optional())
	}
	if len(fs.DependsOn) > 0 {
		opts = append(opts, schema.DependsOn(fs.DependsOn...))
	}

	switch strings.ToLower(fs.Kind) {
	case "integer":
		bits := 32
		if fs.Bits != nil {
			bits = *fs.Bits
		}

		return schema.Integer(bits, opts...), nil
	case "float16":
		return schema.Float16(opts...), nil
	case "float32":
		return schema.Float32(opts...), nil
	case "float64":
		return schema.Float64(opts...), nil
	case "boolean":
		return schema.Boolean(opts...), nil
	case "string":
		return schema.String(opts...), nil
	case "blob":
		return schema.Blob(opts...), nil
	default:
		return schema.Field{}, fmt.Errorf("%w: unknown field kind %q", errs.ErrSchemaInvalid, fs.Kind)
	}
}
