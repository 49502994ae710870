// Package codec is the codec compiler: it consumes a validated, ordered
// schema.Schema and emits a specialized encoder/decoder pair, a vector of
// per-field operation descriptors built once at DefineSchemas time and
// dispatched in a tight loop at every Encode/Decode call, in place of
// runtime code generation.
package codec

import (
	"regexp"

	"github.com/bytewire/bitschema/schema"
)

// fieldOp is one per-field operation descriptor: the kind and the
// constants needed to encode/decode it, precomputed once so the hot loop
// in Encode/Decode never re-derives them from the schema.
type fieldOp struct {
	name string
	kind schema.Kind

	bits   int
	signed bool

	includeSize bool
	list        bool
	optional    bool

	hasDefault bool
	defaultVal any

	dependencies []string

	hasMin, hasMax bool
	min, max       float64

	hasMinLength, hasMaxLength bool
	minLength, maxLength       int

	pattern *regexp.Regexp
}

func buildOps(s *schema.Schema) []fieldOp {
	ops := make([]fieldOp, len(s.Fields))
	for i, nf := range s.Fields {
		f := nf.Field
		op := fieldOp{
			name:         nf.Name,
			kind:         f.Kind,
			bits:         f.Bits,
			signed:       f.Signed,
			list:         f.List,
			optional:     f.Optional,
			hasDefault:   f.HasDefault,
			defaultVal:   f.Default,
			dependencies: f.Dependencies,
			hasMin:       f.HasMin,
			hasMax:       f.HasMax,
			min:          f.Min,
			max:          f.Max,
			hasMinLength: f.HasMinLength,
			hasMaxLength: f.HasMaxLength,
			minLength:    f.MinLength,
			maxLength:    f.MaxLength,
		}
		if f.IncludeSize != nil {
			op.includeSize = *f.IncludeSize
		}
		if f.Pattern != "" {
			op.pattern = regexp.MustCompile(f.Pattern)
		}
		ops[i] = op
	}

	return ops
}
