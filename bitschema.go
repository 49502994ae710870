// Package bitschema is a schema-driven binary serialization library: declare
// a set of named, typed fields once, compile the declaration, and get back a
// value that encodes records to a compact, non-byte-aligned wire format and
// decodes them back.
//
// # Basic usage
//
//	import "github.com/bytewire/bitschema"
//
//	schemas, err := bitschema.DefineSchemas(map[string]bitschema.Declaration{
//	    "reading": {
//	        Fields: []bitschema.NamedField{
//	            {Name: "sensorID", Field: bitschema.Integer(12)},
//	            {Name: "celsius", Field: bitschema.Float32(bitschema.WithMin(-40), bitschema.WithMax(85))},
//	            {Name: "note", Field: bitschema.String(bitschema.Optional())},
//	        },
//	    },
//	})
//
//	reading := schemas["reading"]
//	buf, err := reading.Encode(bitschema.Value{"sensorID": int64(7), "celsius": 21.5})
//	out, err := reading.DecodeBytes(buf)
//
// For streaming many records through a shared buffer, or batching them with
// package recordset, use EncodeInto/Decode directly against a *bitio.Writer
// or *bitio.Reader instead of the allocating Encode/DecodeBytes pair.
//
// # Package structure
//
// This package is a thin, convenient re-export of package schema (the field
// and declaration model, and the validator) and package codec (the compiler).
// Advanced callers needing direct access to the bit-level buffer primitive,
// static bit-length precomputation, or record batching should import
// package bitio, package schema, or package recordset directly.
package bitschema

import (
	"github.com/bytewire/bitschema/codec"
	"github.com/bytewire/bitschema/schema"
)

type (
	// Value is the dynamic record representation Encode/Decode work with.
	Value = codec.Value
	// Compiled is a validated schema paired with its compiled codec.
	Compiled = codec.Compiled

	// Field, Declaration, NamedField, and Metadata mirror package schema's
	// types, re-exported so single-import callers never need to import it.
	Field       = schema.Field
	FieldOption = schema.FieldOption
	Declaration = schema.Declaration
	NamedField  = schema.NamedField
	Metadata    = schema.Metadata
)

// DefineSchemas validates and compiles every declaration in table, keyed by
// the same name. The first invalid declaration aborts the whole call.
func DefineSchemas(table map[string]Declaration) (map[string]*Compiled, error) {
	return codec.DefineSchemas(table)
}

// Compile compiles an already-validated schema directly, bypassing
// DefineSchemas' validation step.
func Compile(s *schema.Schema) *Compiled { return codec.Compile(s) }

// Field constructors, re-exported from package schema.
var (
	Integer = schema.Integer
	Float16 = schema.Float16
	Float32 = schema.Float32
	Float64 = schema.Float64
	Boolean = schema.Boolean
	String  = schema.String
	Blob    = schema.Blob
)

// Field options, re-exported from package schema.
var (
	Signed          = schema.Signed
	WithMin         = schema.WithMin
	WithMax         = schema.WithMax
	WithDefault     = schema.WithDefault
	WithPattern     = schema.WithPattern
	WithMinLength   = schema.WithMinLength
	WithMaxLength   = schema.WithMaxLength
	WithIncludeSize = schema.WithIncludeSize
	List            = schema.List
	Optional        = schema.Optional
	DependsOn       = schema.DependsOn
)
