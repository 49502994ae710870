// Package config loads schema declarations from HCL source, an alternative
// to declaring schema.Declaration values directly in Go. It is grounded on
// ariga.io/atlas's schemahcl package, generalized from atlas's general
// block-decoding engine down to the handful of blocks this module's schema
// model needs, decoded via the plain struct-tag mapping of
// hashicorp/hcl/v2/gohcl instead of atlas's custom dynamic-block evaluator.
//
// # Example
//
//	schema "reading" {
//	  field "sensorID" {
//	    kind = "integer"
//	    bits = 12
//	  }
//	  field "celsius" {
//	    kind = "float32"
//	    min  = -40
//	    max  = 85
//	  }
//	  field "note" {
//	    kind     = "string"
//	    optional = true
//	  }
//	}
package config

// fieldSpec is one HCL `field` block inside a `schema` block.
type fieldSpec struct {
	Name string `hcl:"name,label"`
	Kind string `hcl:"kind"`

	Bits   *int  `hcl:"bits,optional"`
	Signed *bool `hcl:"signed,optional"`

	Min *float64 `hcl:"min,optional"`
	Max *float64 `hcl:"max,optional"`

	Pattern     *string `hcl:"pattern,optional"`
	MinLength   *int    `hcl:"min_length,optional"`
	MaxLength   *int    `hcl:"max_length,optional"`
	IncludeSize *bool   `hcl:"include_size,optional"`

	List      *bool    `hcl:"list,optional"`
	Optional  *bool    `hcl:"optional,optional"`
	DependsOn []string `hcl:"depends_on,optional"`
}

// schemaSpec is one HCL `schema` block.
type schemaSpec struct {
	Name     string      `hcl:"name,label"`
	Prefix   *int        `hcl:"prefix,optional"`
	Repeated *bool       `hcl:"repeated,optional"`
	Fields   []fieldSpec `hcl:"field,block"`
}

// root is the top-level shape gohcl.DecodeBody / hclsimple decode into.
type root struct {
	Schemas []schemaSpec `hcl:"schema,block"`
}
