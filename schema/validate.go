package schema

import (
	"fmt"
	"regexp"

	"github.com/bytewire/bitschema/errs"
)

// Validate freezes decl into a Schema: it checks every per-field constraint,
// fills in the default includeSize, resolves dependencies into a
// topological field order, detects dependency cycles, and precomputes the
// static bit length. Any violation is returned as errs.ErrSchemaInvalid.
func Validate(name string, decl Declaration) (*Schema, error) {
	byName := make(map[string]*Field, len(decl.Fields))
	for i := range decl.Fields {
		nf := &decl.Fields[i]
		if _, dup := byName[nf.Name]; dup {
			return nil, errs.Field(errs.ErrSchemaInvalid, nf.Name, "duplicate field name")
		}
		byName[nf.Name] = &nf.Field
	}

	for i := range decl.Fields {
		nf := &decl.Fields[i]
		if err := checkField(nf.Name, &nf.Field); err != nil {
			return nil, err
		}
		fillDefaultIncludeSize(&nf.Field)
	}

	for i := range decl.Fields {
		nf := &decl.Fields[i]
		for _, dep := range nf.Field.Dependencies {
			depField, ok := byName[dep]
			if !ok {
				return nil, errs.Field(errs.ErrSchemaInvalid, nf.Name, fmt.Sprintf("dependency %q does not exist", dep))
			}
			if depField.Kind != KindBoolean {
				return nil, errs.Field(errs.ErrSchemaInvalid, nf.Name, fmt.Sprintf("dependency %q is not Boolean", dep))
			}
		}
	}

	ordered, err := topoSort(decl.Fields)
	if err != nil {
		return nil, err
	}

	s := &Schema{
		Name:     name,
		Fields:   ordered,
		Metadata: decl.Metadata,
		index:    make(map[string]int, len(ordered)),
	}
	for i, nf := range ordered {
		s.index[nf.Name] = i
	}
	s.StaticBits = staticBitLength(s)

	return s, nil
}

func checkField(name string, f *Field) error {
	switch f.Kind {
	case KindInteger:
		if f.Bits < 1 || f.Bits > 53 {
			return errs.Field(errs.ErrSchemaInvalid, name, fmt.Sprintf("bits %d outside [1,53]", f.Bits))
		}
		if f.HasDefault {
			if err := checkNumericDefault(name, f); err != nil {
				return err
			}
		}
	case KindFloat16, KindFloat32, KindFloat64:
		if f.HasDefault {
			if err := checkNumericDefault(name, f); err != nil {
				return err
			}
		}
	case KindBoolean:
		if f.HasDefault {
			if _, ok := f.Default.(bool); !ok {
				return errs.Field(errs.ErrSchemaInvalid, name, "default is not a bool")
			}
		}
	case KindString:
		if f.List && (f.IncludeSize != nil && !*f.IncludeSize) {
			return errs.Field(errs.ErrSchemaInvalid, name, "list String fields must have includeSize true")
		}
		if f.Pattern != "" {
			if _, err := regexp.Compile(f.Pattern); err != nil {
				return errs.Field(errs.ErrSchemaInvalid, name, fmt.Sprintf("invalid pattern: %v", err))
			}
		}
		if f.HasDefault {
			if err := checkStringDefault(name, f); err != nil {
				return err
			}
		}
	case KindBlob:
		if f.List && (f.IncludeSize != nil && !*f.IncludeSize) {
			return errs.Field(errs.ErrSchemaInvalid, name, "list Blob fields must have includeSize true")
		}
		if f.HasDefault {
			b, ok := f.Default.([]byte)
			if !ok {
				return errs.Field(errs.ErrSchemaInvalid, name, "default is not a []byte")
			}
			if err := checkLength(name, len(b), f); err != nil {
				return err
			}
		}
	default:
		return errs.Field(errs.ErrSchemaInvalid, name, fmt.Sprintf("unknown kind %d", f.Kind))
	}

	return nil
}

func checkNumericDefault(name string, f *Field) error {
	v, ok := asFloat(f.Default)
	if !ok {
		return errs.Field(errs.ErrSchemaInvalid, name, "default is not numeric")
	}
	if f.HasMin && v < f.Min {
		return errs.Field(errs.ErrSchemaInvalid, name, fmt.Sprintf("default %v below min %v", v, f.Min))
	}
	if f.HasMax && v > f.Max {
		return errs.Field(errs.ErrSchemaInvalid, name, fmt.Sprintf("default %v above max %v", v, f.Max))
	}

	return nil
}

func checkStringDefault(name string, f *Field) error {
	s, ok := f.Default.(string)
	if !ok {
		return errs.Field(errs.ErrSchemaInvalid, name, "default is not a string")
	}
	if err := checkLength(name, len([]rune(s)), f); err != nil {
		return err
	}
	if f.Pattern != "" {
		re := regexp.MustCompile(f.Pattern)
		if !re.MatchString(s) {
			return errs.Field(errs.ErrSchemaInvalid, name, "default does not match pattern")
		}
	}

	return nil
}

func checkLength(name string, n int, f *Field) error {
	if f.HasMinLength && n < f.MinLength {
		return errs.Field(errs.ErrSchemaInvalid, name, fmt.Sprintf("default length %d below minLength %d", n, f.MinLength))
	}
	if f.HasMaxLength && n > f.MaxLength {
		return errs.Field(errs.ErrSchemaInvalid, name, fmt.Sprintf("default length %d above maxLength %d", n, f.MaxLength))
	}

	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func fillDefaultIncludeSize(f *Field) {
	if f.Kind != KindString && f.Kind != KindBlob {
		return
	}
	if f.IncludeSize == nil {
		t := true
		f.IncludeSize = &t
	}
}

// topoSort resolves the declared dependency edges into a linear field order
// such that every field follows all of its declared dependencies, via a
// depth-first traversal marking visiting/visited. A back edge (a cycle) is
// rejected here at validation time, so the codec never has to detect one
// during encode or decode.
func topoSort(fields []NamedField) ([]NamedField, error) {
	byName := make(map[string]*NamedField, len(fields))
	for i := range fields {
		byName[fields[i].Name] = &fields[i]
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(fields))
	ordered := make([]NamedField, 0, len(fields))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			return errs.Field(errs.ErrSchemaInvalid, name, "circular dependency involving "+name)
		}

		state[name] = visiting
		nf := byName[name]
		for _, dep := range nf.Field.Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = visited
		ordered = append(ordered, *nf)

		return nil
	}

	for i := range fields {
		if err := visit(fields[i].Name); err != nil {
			return nil, err
		}
	}

	return ordered, nil
}
