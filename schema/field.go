// Package schema is the schema model: a catalog of named field declarations
// plus the validator that freezes a declaration into an immutable,
// topologically-ordered Schema the codec package compiles against.
package schema

// Kind is the primitive family of a field, a small closed enum in the same
// style as format.CompressionType.
type Kind uint8

const (
	KindInteger Kind = iota + 1
	KindFloat16
	KindFloat32
	KindFloat64
	KindBoolean
	KindString
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindFloat16:
		return "Float16"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindBlob:
		return "Blob"
	default:
		return "Unknown"
	}
}

// Field is one declared slot of a schema: a Kind plus the kind-specific
// options and the common modifiers (list, optional, default, dependencies)
// every kind shares.
type Field struct {
	Kind Kind

	// Integer
	Bits   int
	Signed bool

	// Integer, Float16/32/64
	HasMin, HasMax bool
	Min, Max       float64

	// Boolean, Integer, Float16/32/64, String
	HasDefault bool
	Default    any

	// String
	Pattern string

	// String, Blob
	HasMinLength, HasMaxLength bool
	MinLength, MaxLength       int
	IncludeSize                *bool // nil until the validator fills in the default (true)

	// Common modifiers
	List         bool
	Optional     bool
	Dependencies []string
}

// FieldOption configures a Field at construction time. Options never fail;
// constraint violations surface uniformly and synchronously at DefineSchemas
// time via the validator.
type FieldOption func(*Field)

// Signed marks an Integer field as storing signed values.
func Signed() FieldOption { return func(f *Field) { f.Signed = true } }

// WithMin sets the field's inclusive lower bound (numeric kinds).
func WithMin(v float64) FieldOption {
	return func(f *Field) { f.HasMin, f.Min = true, v }
}

// WithMax sets the field's inclusive upper bound (numeric kinds).
func WithMax(v float64) FieldOption {
	return func(f *Field) { f.HasMax, f.Max = true, v }
}

// WithDefault sets the value substituted when the user's value is absent at
// encode time, and materialized on decode when the field was not written.
func WithDefault(v any) FieldOption {
	return func(f *Field) { f.HasDefault, f.Default = true, v }
}

// WithPattern sets a regular expression a String value must match.
func WithPattern(re string) FieldOption {
	return func(f *Field) { f.Pattern = re }
}

// WithMinLength sets the minimum length (characters for String, bytes for Blob).
func WithMinLength(n int) FieldOption {
	return func(f *Field) { f.HasMinLength, f.MinLength = true, n }
}

// WithMaxLength sets the maximum length (characters for String, bytes for Blob).
func WithMaxLength(n int) FieldOption {
	return func(f *Field) { f.HasMaxLength, f.MaxLength = true, n }
}

// WithIncludeSize explicitly sets whether a String/Blob field carries a
// uint16 length prefix. Defaults to true (and must be true when List is set).
func WithIncludeSize(include bool) FieldOption {
	return func(f *Field) { f.IncludeSize = &include }
}

// List marks the field as holding an ordered sequence of the kind's
// primitive values, prefixed on the wire by a uint16 count.
func List() FieldOption { return func(f *Field) { f.List = true } }

// Optional marks the field's presence as conditional, signaled on the wire
// by a single presence bit.
func Optional() FieldOption { return func(f *Field) { f.Optional = true } }

// DependsOn names other Boolean fields in the same schema; this field is
// present on the wire only when every named dependency resolves truthy.
func DependsOn(names ...string) FieldOption {
	return func(f *Field) { f.Dependencies = append(f.Dependencies, names...) }
}

// Integer declares an integer field of the given bit width (1..53).
func Integer(bits int, opts ...FieldOption) Field {
	f := Field{Kind: KindInteger, Bits: bits}
	apply(&f, opts)

	return f
}

// Float16 declares an IEEE-754-like half precision float field.
func Float16(opts ...FieldOption) Field { return kindField(KindFloat16, opts) }

// Float32 declares an IEEE-754 single precision float field.
func Float32(opts ...FieldOption) Field { return kindField(KindFloat32, opts) }

// Float64 declares an IEEE-754 double precision float field.
func Float64(opts ...FieldOption) Field { return kindField(KindFloat64, opts) }

// Boolean declares a single-bit boolean field.
func Boolean(opts ...FieldOption) Field { return kindField(KindBoolean, opts) }

// String declares a UTF-8 text field.
func String(opts ...FieldOption) Field { return kindField(KindString, opts) }

// Blob declares an opaque byte-sequence field.
func Blob(opts ...FieldOption) Field { return kindField(KindBlob, opts) }

func kindField(k Kind, opts []FieldOption) Field {
	f := Field{Kind: k}
	apply(&f, opts)

	return f
}

func apply(f *Field, opts []FieldOption) {
	for _, opt := range opts {
		opt(f)
	}
}
