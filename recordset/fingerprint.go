package recordset

import (
	"strconv"
	"strings"

	"github.com/bytewire/bitschema/internal/hash"
	"github.com/bytewire/bitschema/schema"
)

// Fingerprint computes a stable xxHash64 digest of a schema's shape: field
// names, kinds, and modifiers in their validated (topologically sorted)
// order. A Reader compares this against the value stored in a recordset's
// header and refuses to decode on mismatch, so a batch written against one
// schema version is never silently misinterpreted against another.
//
// This is a fail-fast guard, not a schema-evolution mechanism: there is no
// attempt to decode across a fingerprint mismatch, migrate field layouts, or
// negotiate a common subset.
func Fingerprint(s *schema.Schema) uint64 {
	var b strings.Builder

	if s.Metadata.Prefix != nil {
		b.WriteString("prefix:")
		b.WriteString(strconv.Itoa(int(*s.Metadata.Prefix)))
		b.WriteByte(';')
	}

	for _, nf := range s.Fields {
		f := nf.Field
		b.WriteString(nf.Name)
		b.WriteByte(':')
		b.WriteString(f.Kind.String())
		if f.Kind == schema.KindInteger {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(f.Bits))
			if f.Signed {
				b.WriteString(":signed")
			}
		}
		if f.List {
			b.WriteString(":list")
		}
		if f.Optional {
			b.WriteString(":optional")
		}
		for _, dep := range f.Dependencies {
			b.WriteString(":dep=")
			b.WriteString(dep)
		}
		b.WriteByte(';')
	}

	return hash.ID(b.String())
}
