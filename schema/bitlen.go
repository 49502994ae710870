package schema

// StaticBitLength returns the lower bound on a schema's encoded size,
// computable without a value: the constant contribution of fields whose
// presence and size are statically known. Variable sizes (actual
// string/blob bytes, list element counts, conditionally-present fields)
// are added by the codec compiler at encode time. This is a pure function
// of the frozen schema.
func StaticBitLength(s *Schema) int {
	return staticBitLength(s)
}

func staticBitLength(s *Schema) int {
	bits := 0
	if s.Metadata.Prefix != nil {
		bits += 8
	}

	for _, nf := range s.Fields {
		f := &nf.Field

		if f.Optional {
			bits++ // presence bit
		}

		gated := f.Optional || len(f.Dependencies) > 0
		if gated {
			continue // conditional presence, added at encode time
		}

		if f.List {
			bits += 16 // length prefix

			continue // element bits are variable, added at encode time
		}

		switch f.Kind {
		case KindBoolean:
			bits++
		case KindInteger:
			bits += f.Bits
		case KindFloat16:
			bits += 16
		case KindFloat32:
			bits += 32
		case KindFloat64:
			bits += 64
		case KindString, KindBlob:
			if f.IncludeSize != nil && *f.IncludeSize {
				bits += 16
			}
			// the payload bytes themselves are variable-size
		}
	}

	return bits
}
