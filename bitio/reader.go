package bitio

import (
	"fmt"
	"math"

	"github.com/bytewire/bitschema/endian"
	"github.com/bytewire/bitschema/errs"
)

// Reader is the bit-level buffer primitive for decoding. It holds a
// non-owning view over its backing bytes: the bytes must outlive the
// Reader, and mutating the backing store while the Reader is active is
// undefined.
type Reader struct {
	data   []byte
	engine endian.EndianEngine

	off      int
	bitByte  int
	bitIndex int
}

// NewReader creates a Reader over data using the specified endian engine.
// The engine must match the one the corresponding Writer used.
func NewReader(data []byte, engine endian.EndianEngine) *Reader {
	return &Reader{data: data, engine: engine}
}

// Len returns the total number of backing bytes.
func (r *Reader) Len() int { return len(r.data) }

// Pos returns the current byte-granular read position.
func (r *Reader) Pos() int { return r.off }

// Remaining returns the number of unread bytes from the current position.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// Seek moves the byte cursor to an absolute offset, realigning the bit
// cursor. Seeking past the end of the buffer is allowed; the next read
// will fail with ErrUnderflow.
func (r *Reader) Seek(offset int) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative seek offset %d", errs.ErrOutOfRange, offset)
	}
	r.off, r.bitByte, r.bitIndex = offset, offset, 0

	return nil
}

// Advance moves the byte cursor forward by delta bytes, realigning the bit
// cursor.
func (r *Reader) Advance(delta int) error {
	return r.Seek(r.off + delta)
}

// Reset rewinds the reader to the start of its backing bytes.
func (r *Reader) Reset() {
	r.off, r.bitByte, r.bitIndex = 0, 0, 0
}

// Clone returns an independent Reader over the same backing bytes with its
// own cursor state.
func (r *Reader) Clone() *Reader {
	return &Reader{data: r.data, engine: r.engine, off: r.off, bitByte: r.bitByte, bitIndex: r.bitIndex}
}

func (r *Reader) realign() {
	if r.bitIndex != 0 {
		r.bitByte++
		r.bitIndex = 0
	}
	r.off = r.bitByte
}

func (r *Reader) need(n int) error {
	if n > len(r.data) {
		return fmt.Errorf("%w: need %d bytes, have %d", errs.ErrUnderflow, n, len(r.data))
	}

	return nil
}

// --- Fixed-width integer and float reads ---
//
// Every reader accepts an advance flag; when false the read is a peek and
// the cursor is left unchanged.

func (r *Reader) ReadUint8(advance bool) (uint8, error) {
	r.realign()
	if err := r.need(r.off + 1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	if advance {
		r.off++
		r.bitByte = r.off
	}

	return v, nil
}

func (r *Reader) ReadInt8(advance bool) (int8, error) {
	v, err := r.ReadUint8(advance)

	return int8(v), err
}

func (r *Reader) ReadUint16(advance bool) (uint16, error) {
	r.realign()
	if err := r.need(r.off + 2); err != nil {
		return 0, err
	}
	v := r.engine.Uint16(r.data[r.off : r.off+2])
	if advance {
		r.off += 2
		r.bitByte = r.off
	}

	return v, nil
}

func (r *Reader) ReadInt16(advance bool) (int16, error) {
	v, err := r.ReadUint16(advance)

	return int16(v), err
}

func (r *Reader) ReadUint32(advance bool) (uint32, error) {
	r.realign()
	if err := r.need(r.off + 4); err != nil {
		return 0, err
	}
	v := r.engine.Uint32(r.data[r.off : r.off+4])
	if advance {
		r.off += 4
		r.bitByte = r.off
	}

	return v, nil
}

func (r *Reader) ReadInt32(advance bool) (int32, error) {
	v, err := r.ReadUint32(advance)

	return int32(v), err
}

func (r *Reader) ReadUint64(advance bool) (uint64, error) {
	r.realign()
	if err := r.need(r.off + 8); err != nil {
		return 0, err
	}
	v := r.engine.Uint64(r.data[r.off : r.off+8])
	if advance {
		r.off += 8
		r.bitByte = r.off
	}

	return v, nil
}

func (r *Reader) ReadInt64(advance bool) (int64, error) {
	v, err := r.ReadUint64(advance)

	return int64(v), err
}

func (r *Reader) ReadFloat16(advance bool) (float64, error) {
	bits, err := r.ReadUint16(advance)
	if err != nil {
		return 0, err
	}

	return float16BitsToFloat64(bits), nil
}

func (r *Reader) ReadFloat32(advance bool) (float32, error) {
	bits, err := r.ReadUint32(advance)
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(bits), nil
}

func (r *Reader) ReadFloat64(advance bool) (float64, error) {
	bits, err := r.ReadUint64(advance)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(bits), nil
}

// --- Bit-level reads ---

// ReadBoolean is the mirror of Writer.WriteBoolean.
func (r *Reader) ReadBoolean(byteMode bool, advance bool) (bool, error) {
	if byteMode {
		v, err := r.ReadUint8(advance)

		return v != 0, err
	}

	v, err := r.ReadBits(1, false, advance)

	return v != 0, err
}

// ReadBits is the exact inverse of Writer.WriteBits: it extracts the
// low-chunk-first bit-run, reassembles it by shift-and-OR, and shifts the
// unsigned result back by RangeMin(bits, signed) when signed is true.
func (r *Reader) ReadBits(bits int, signed bool, advance bool) (int64, error) {
	if bits < 1 || bits > MaxBits {
		return 0, fmt.Errorf("%w: bit width %d outside [1,%d]", errs.ErrOutOfRange, bits, MaxBits)
	}

	if r.bitIndex == 0 {
		switch bits {
		case 8:
			v, err := r.ReadUint8(advance)
			if err != nil {
				return 0, err
			}

			return int64(v) + RangeMin(bits, signed), nil
		case 16:
			v, err := r.ReadUint16(advance)
			if err != nil {
				return 0, err
			}

			return int64(v) + RangeMin(bits, signed), nil
		case 32:
			v, err := r.ReadUint32(advance)
			if err != nil {
				return 0, err
			}

			return int64(v) + RangeMin(bits, signed), nil
		}
	}

	bitByte, bitIndex := r.bitByte, r.bitIndex
	var uval uint64
	shift := uint(0)
	remaining := bits

	for remaining > 0 {
		if err := r.need(bitByte + 1); err != nil {
			return 0, err
		}

		free := 8 - bitIndex
		chunk := remaining
		if chunk > free {
			chunk = free
		}

		mask := byte(uint64(1)<<uint(chunk) - 1)
		piece := (r.data[bitByte] >> uint(bitIndex)) & mask
		uval |= uint64(piece) << shift
		shift += uint(chunk)

		bitIndex += chunk
		remaining -= chunk
		if bitIndex == 8 {
			bitIndex = 0
			bitByte++
		}
	}

	if advance {
		r.bitByte, r.bitIndex = bitByte, bitIndex
		if bitIndex == 0 {
			r.off = bitByte
		}
	}

	return int64(uval) + RangeMin(bits, signed), nil
}

// --- Variable-length and blob/string reads ---

// maxVarintBytes bounds the number of continuation bytes read by
// ReadUint/ReadInt, honoring the documented 53-bit range end to end
// (ceil(53/7) = 8) instead of looping unboundedly.
const maxVarintBytes = 8

func (r *Reader) ReadUint(advance bool) (uint64, error) {
	save := *r
	r.realign()

	var result uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		b, err := r.ReadUint8(true)
		if err != nil {
			*r = save

			return 0, err
		}

		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			if !advance {
				*r = save
			}

			return result, nil
		}
		shift += 7
	}

	*r = save

	return 0, fmt.Errorf("%w: varint exceeds %d continuation bytes", errs.ErrMalformed, maxVarintBytes)
}

func (r *Reader) ReadInt(advance bool) (int64, error) {
	uval, err := r.ReadUint(advance)
	if err != nil {
		return 0, err
	}

	return int64(uval>>1) ^ -int64(uval&1), nil
}

// ReadBlob reads a byte slice. When includeSize is true it consumes a
// uint16 length prefix; otherwise n bytes are read if n >= 0, or the rest
// of the buffer if n < 0. The returned slice aliases the Reader's backing
// array and must not be modified by the caller.
func (r *Reader) ReadBlob(includeSize bool, n int, advance bool) ([]byte, error) {
	save := *r

	length := n
	if includeSize {
		l, err := r.ReadUint16(true)
		if err != nil {
			*r = save

			return nil, err
		}
		length = int(l)
	} else {
		r.realign()
		if length < 0 {
			length = len(r.data) - r.off
		}
	}

	if err := r.need(r.off + length); err != nil {
		*r = save

		return nil, err
	}

	out := r.data[r.off : r.off+length]
	r.off += length
	r.bitByte = r.off

	if !advance {
		*r = save
	}

	return out, nil
}

// ReadString reads bytes exactly as ReadBlob and decodes them as UTF-8.
// Invalid UTF-8 is reported as ErrMalformed.
func (r *Reader) ReadString(includeSize bool, n int, advance bool) (string, error) {
	data, err := r.ReadBlob(includeSize, n, advance)
	if err != nil {
		return "", err
	}

	if !isValidUTF8(data) {
		return "", fmt.Errorf("%w: invalid UTF-8 string", errs.ErrMalformed)
	}

	return string(data), nil
}
