package codec

import "github.com/bytewire/bitschema/schema"

// Value is the dynamic representation a Compiled encodes from and decodes
// into: one entry per present field, keyed by field name. Scalar field
// values are int64 (Integer), float64 (Float16/32/64), bool (Boolean),
// string (String), or []byte (Blob); list fields hold a slice of the
// corresponding element type ([]int64, []float64, []bool, []string,
// [][]byte).
type Value map[string]any

// Compiled is a schema.Schema frozen together with the per-field operation
// descriptors the encoder and decoder dispatch against, built once instead
// of at every call: no runtime code generation, just a precomputed
// descriptor vector and a tight loop.
type Compiled struct {
	Schema *schema.Schema
	ops    []fieldOp
}

// Compile builds a Compiled from an already-validated schema. DefineSchemas
// is the usual entry point; Compile is exposed directly for callers that
// already hold a *schema.Schema (e.g. after caching validation results).
func Compile(s *schema.Schema) *Compiled {
	return &Compiled{Schema: s, ops: buildOps(s)}
}

// DefineSchemas validates every declaration in table and compiles each into
// a ready-to-use Compiled, keyed by the same name. The first validation
// failure aborts the whole call; schema definition is all-or-nothing.
func DefineSchemas(table map[string]schema.Declaration) (map[string]*Compiled, error) {
	out := make(map[string]*Compiled, len(table))
	for name, decl := range table {
		s, err := schema.Validate(name, decl)
		if err != nil {
			return nil, err
		}
		out[name] = Compile(s)
	}

	return out, nil
}
