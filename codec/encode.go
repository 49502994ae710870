package codec

import (
	"fmt"

	"github.com/bytewire/bitschema/bitio"
	"github.com/bytewire/bitschema/endian"
	"github.com/bytewire/bitschema/errs"
	"github.com/bytewire/bitschema/schema"
)

// Encode compiles value into a freshly allocated byte slice, via an
// internal growable Writer. Use EncodeInto to write into a caller-owned
// Writer instead (e.g. one Writer reused across many records).
func (c *Compiled) Encode(value Value) ([]byte, error) {
	w := bitio.NewWriter(0, endian.GetLittleEndianEngine())
	defer w.Finish()

	if _, err := c.EncodeInto(value, w); err != nil {
		return nil, err
	}

	out := make([]byte, w.Len())
	copy(out, w.Bytes())

	return out, nil
}

// EncodeInto encodes value into w at its current cursor and returns the
// number of bytes the record occupied (including any partial trailing
// byte, matching w.Len()'s accounting).
func (c *Compiled) EncodeInto(value Value, w *bitio.Writer) (int, error) {
	start := w.Len()

	if c.Schema.Metadata.Prefix != nil {
		if err := w.WriteUint8(*c.Schema.Metadata.Prefix); err != nil {
			return 0, err
		}
	}

	resolved := make(map[string]bool, len(c.ops))

	for i := range c.ops {
		op := &c.ops[i]

		raw, present := value[op.name]

		depsTruthy := true
		for _, dep := range op.dependencies {
			if !resolved[dep] {
				depsTruthy = false

				break
			}
		}

		var write bool
		switch {
		case op.optional:
			if err := w.WriteBoolean(present, false); err != nil {
				return 0, err
			}
			write = present && depsTruthy
		case len(op.dependencies) > 0:
			write = depsTruthy
		default:
			write = true
		}

		var logical bool

		if write {
			actual := raw
			if !present {
				if !op.hasDefault {
					return 0, errs.Field(errs.ErrMalformed, op.name, "required value missing")
				}
				actual = op.defaultVal
			}

			if op.kind == schema.KindBoolean {
				b, ok := actual.(bool)
				if !ok {
					return 0, errs.Field(errs.ErrMalformed, op.name, "value is not a bool")
				}
				logical = b
			}

			if err := encodeField(w, op, actual); err != nil {
				return 0, fmt.Errorf("field %q: %w", op.name, err)
			}
		} else if op.hasDefault && op.kind == schema.KindBoolean {
			b, _ := op.defaultVal.(bool)
			logical = b
		}

		if op.kind == schema.KindBoolean {
			resolved[op.name] = logical
		}
	}

	return w.Len() - start, nil
}

func encodeField(w *bitio.Writer, op *fieldOp, value any) error {
	if !op.list {
		return encodeScalar(w, op, value)
	}

	elems, err := listElements(op, value)
	if err != nil {
		return err
	}
	if len(elems) > 0xFFFF {
		return fmt.Errorf("%w: list length %d exceeds uint16", errs.ErrOutOfRange, len(elems))
	}
	if err := w.WriteUint16(uint16(len(elems))); err != nil {
		return err
	}
	for _, e := range elems {
		if err := encodeScalar(w, op, e); err != nil {
			return err
		}
	}

	return nil
}

func listElements(op *fieldOp, value any) ([]any, error) {
	switch op.kind {
	case schema.KindInteger:
		v, ok := value.([]int64)
		if !ok {
			return nil, fmt.Errorf("%w: expected []int64", errs.ErrMalformed)
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}

		return out, nil
	case schema.KindFloat16, schema.KindFloat32, schema.KindFloat64:
		v, ok := value.([]float64)
		if !ok {
			return nil, fmt.Errorf("%w: expected []float64", errs.ErrMalformed)
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}

		return out, nil
	case schema.KindBoolean:
		v, ok := value.([]bool)
		if !ok {
			return nil, fmt.Errorf("%w: expected []bool", errs.ErrMalformed)
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}

		return out, nil
	case schema.KindString:
		v, ok := value.([]string)
		if !ok {
			return nil, fmt.Errorf("%w: expected []string", errs.ErrMalformed)
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}

		return out, nil
	case schema.KindBlob:
		v, ok := value.([][]byte)
		if !ok {
			return nil, fmt.Errorf("%w: expected [][]byte", errs.ErrMalformed)
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = e
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind", errs.ErrSchemaInvalid)
	}
}

func encodeScalar(w *bitio.Writer, op *fieldOp, value any) error {
	switch op.kind {
	case schema.KindInteger:
		n, ok := asInt64(value)
		if !ok {
			return fmt.Errorf("%w: value is not an integer", errs.ErrMalformed)
		}
		if err := checkNumericRange(op, float64(n)); err != nil {
			return err
		}

		return w.WriteBits(n, op.bits, op.signed)
	case schema.KindFloat16:
		f, ok := asFloat64(value)
		if !ok {
			return fmt.Errorf("%w: value is not numeric", errs.ErrMalformed)
		}
		if err := checkNumericRange(op, f); err != nil {
			return err
		}

		return w.WriteFloat16(f)
	case schema.KindFloat32:
		f, ok := asFloat64(value)
		if !ok {
			return fmt.Errorf("%w: value is not numeric", errs.ErrMalformed)
		}
		if err := checkNumericRange(op, f); err != nil {
			return err
		}

		return w.WriteFloat32(float32(f))
	case schema.KindFloat64:
		f, ok := asFloat64(value)
		if !ok {
			return fmt.Errorf("%w: value is not numeric", errs.ErrMalformed)
		}
		if err := checkNumericRange(op, f); err != nil {
			return err
		}

		return w.WriteFloat64(f)
	case schema.KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: value is not a bool", errs.ErrMalformed)
		}

		return w.WriteBoolean(b, false)
	case schema.KindString:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: value is not a string", errs.ErrMalformed)
		}
		if err := checkStringValue(op, s); err != nil {
			return err
		}

		return w.WriteString(s, op.includeSize)
	case schema.KindBlob:
		b, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("%w: value is not a []byte", errs.ErrMalformed)
		}
		if err := checkLengthRange(op, len(b)); err != nil {
			return err
		}

		return w.WriteBlob(b, op.includeSize)
	default:
		return fmt.Errorf("%w: unknown kind", errs.ErrSchemaInvalid)
	}
}

func checkNumericRange(op *fieldOp, v float64) error {
	if op.hasMin && v < op.min {
		return fmt.Errorf("%w: %v below min %v", errs.ErrOutOfRange, v, op.min)
	}
	if op.hasMax && v > op.max {
		return fmt.Errorf("%w: %v above max %v", errs.ErrOutOfRange, v, op.max)
	}

	return nil
}

func checkLengthRange(op *fieldOp, n int) error {
	if op.hasMinLength && n < op.minLength {
		return fmt.Errorf("%w: length %d below minLength %d", errs.ErrOutOfRange, n, op.minLength)
	}
	if op.hasMaxLength && n > op.maxLength {
		return fmt.Errorf("%w: length %d above maxLength %d", errs.ErrOutOfRange, n, op.maxLength)
	}

	return nil
}

func checkStringValue(op *fieldOp, s string) error {
	if err := checkLengthRange(op, len([]rune(s))); err != nil {
		return err
	}
	if op.pattern != nil && !op.pattern.MatchString(s) {
		return fmt.Errorf("%w: value does not match pattern", errs.ErrMalformed)
	}

	return nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case uint32:
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
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
