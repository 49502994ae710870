package codec

import (
	"fmt"

	"github.com/bytewire/bitschema/bitio"
	"github.com/bytewire/bitschema/endian"
	"github.com/bytewire/bitschema/errs"
	"github.com/bytewire/bitschema/schema"
)

// DecodeBytes wraps data in a Reader and decodes a single record from it.
func (c *Compiled) DecodeBytes(data []byte) (Value, error) {
	return c.Decode(bitio.NewReader(data, endian.GetLittleEndianEngine()))
}

// Decode reads one record from r at its current cursor. Fields gated off by
// an unset presence bit or an unmet dependency are absent from the result,
// except when the field declares a default, which is then filled in.
func (c *Compiled) Decode(r *bitio.Reader) (Value, error) {
	out := make(Value, len(c.ops))

	if c.Schema.Metadata.Prefix != nil {
		if _, err := r.ReadUint8(true); err != nil {
			return nil, err
		}
	}

	resolved := make(map[string]bool, len(c.ops))

	for i := range c.ops {
		op := &c.ops[i]

		depsTruthy := true
		for _, dep := range op.dependencies {
			if !resolved[dep] {
				depsTruthy = false

				break
			}
		}

		var read bool
		switch {
		case op.optional:
			presence, err := r.ReadBoolean(false, true)
			if err != nil {
				return nil, err
			}
			read = presence && depsTruthy
		case len(op.dependencies) > 0:
			read = depsTruthy
		default:
			read = true
		}

		var logical bool

		switch {
		case read:
			val, err := decodeField(r, op)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", op.name, err)
			}
			out[op.name] = val
			if op.kind == schema.KindBoolean {
				logical = val.(bool)
			}
		case op.hasDefault:
			out[op.name] = op.defaultVal
			if op.kind == schema.KindBoolean {
				b, _ := op.defaultVal.(bool)
				logical = b
			}
		}

		if op.kind == schema.KindBoolean {
			resolved[op.name] = logical
		}
	}

	return out, nil
}

// PeekPrefix reads a schema's multiplexing tag from r without consuming it,
// so a caller can pick which Compiled to decode with before calling Decode.
func PeekPrefix(r *bitio.Reader) (uint8, error) {
	return r.ReadUint8(false)
}

func decodeField(r *bitio.Reader, op *fieldOp) (any, error) {
	if !op.list {
		return decodeScalar(r, op)
	}

	n, err := r.ReadUint16(true)
	if err != nil {
		return nil, err
	}

	return decodeListElements(r, op, int(n))
}

func decodeListElements(r *bitio.Reader, op *fieldOp, n int) (any, error) {
	switch op.kind {
	case schema.KindInteger:
		out := make([]int64, n)
		for i := range out {
			v, err := decodeScalar(r, op)
			if err != nil {
				return nil, err
			}
			out[i] = v.(int64)
		}

		return out, nil
	case schema.KindFloat16, schema.KindFloat32, schema.KindFloat64:
		out := make([]float64, n)
		for i := range out {
			v, err := decodeScalar(r, op)
			if err != nil {
				return nil, err
			}
			out[i] = v.(float64)
		}

		return out, nil
	case schema.KindBoolean:
		out := make([]bool, n)
		for i := range out {
			v, err := decodeScalar(r, op)
			if err != nil {
				return nil, err
			}
			out[i] = v.(bool)
		}

		return out, nil
	case schema.KindString:
		out := make([]string, n)
		for i := range out {
			v, err := decodeScalar(r, op)
			if err != nil {
				return nil, err
			}
			out[i] = v.(string)
		}

		return out, nil
	case schema.KindBlob:
		out := make([][]byte, n)
		for i := range out {
			v, err := decodeScalar(r, op)
			if err != nil {
				return nil, err
			}
			out[i] = v.([]byte)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind", errs.ErrSchemaInvalid)
	}
}

func decodeScalar(r *bitio.Reader, op *fieldOp) (any, error) {
	switch op.kind {
	case schema.KindInteger:
		v, err := r.ReadBits(op.bits, op.signed, true)
		if err != nil {
			return nil, err
		}
		if err := checkNumericRange(op, float64(v)); err != nil {
			return nil, err
		}

		return v, nil
	case schema.KindFloat16:
		v, err := r.ReadFloat16(true)
		if err != nil {
			return nil, err
		}
		if err := checkNumericRange(op, v); err != nil {
			return nil, err
		}

		return v, nil
	case schema.KindFloat32:
		v, err := r.ReadFloat32(true)
		if err != nil {
			return nil, err
		}
		f := float64(v)
		if err := checkNumericRange(op, f); err != nil {
			return nil, err
		}

		return f, nil
	case schema.KindFloat64:
		v, err := r.ReadFloat64(true)
		if err != nil {
			return nil, err
		}
		if err := checkNumericRange(op, v); err != nil {
			return nil, err
		}

		return v, nil
	case schema.KindBoolean:
		v, err := r.ReadBoolean(false, true)
		if err != nil {
			return nil, err
		}

		return v, nil
	case schema.KindString:
		s, err := r.ReadString(op.includeSize, -1, true)
		if err != nil {
			return nil, err
		}
		if err := checkStringValue(op, s); err != nil {
			return nil, err
		}

		return s, nil
	case schema.KindBlob:
		b, err := r.ReadBlob(op.includeSize, -1, true)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(b))
		copy(out, b)
		if err := checkLengthRange(op, len(out)); err != nil {
			return nil, err
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind", errs.ErrSchemaInvalid)
	}
}
