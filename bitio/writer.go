// Package bitio is the bit-level buffer primitive the codec compiler is
// built on: a byte array with a byte cursor and a bit cursor, supporting
// non-aligned integer writes/reads, fixed-width floats, length-prefixed
// strings and blobs, and variable-length integer codecs.
//
// The bit-accumulation technique (peel the low chunk of a value, OR it into
// the current byte, advance on a full byte) is the same shift-and-mask
// approach a Gorilla-style float encoder uses for its bitstream, generalized
// here from a 64-bit shift register to an addressable byte array so that
// bit-runs and byte-aligned fixed-width writes can interleave at arbitrary
// offsets.
package bitio

import (
	"fmt"
	"math"

	"github.com/bytewire/bitschema/endian"
	"github.com/bytewire/bitschema/errs"
	"github.com/bytewire/bitschema/internal/pool"
)

// MaxBits is the widest single bit-run writeBits/readBits supports.
const MaxBits = 53

// Writer is the bit-level buffer primitive for encoding. It owns its
// backing byte array exclusively; passing the same Writer to overlapping
// encoders is undefined, the same single-owner contract pool.ByteBuffer
// documents for in-flight buffers.
type Writer struct {
	buf       *pool.ByteBuffer
	pooled    bool // true if buf was obtained from the shared pool and must be returned on Finish
	resizable bool
	engine    endian.EndianEngine

	off      int // next byte-granular write position (== len(buf.B) once realigned)
	bitByte  int // byte index where the current bit-run lives
	bitIndex int // 0..7, bit position within bitByte
}

// NewWriter creates a Writer using the specified endian engine.
//
// If size is 0 the writer is growable (backed by the shared byte-buffer
// pool, amortized growth per internal/pool.ByteBuffer.Grow). If size is
// positive the writer is fixed-capacity: once size bytes are used, further
// writes fail with errs.ErrOverflow instead of growing.
func NewWriter(size int, engine endian.EndianEngine) *Writer {
	if size <= 0 {
		return &Writer{
			buf:       pool.GetBlobBuffer(),
			pooled:    true,
			resizable: true,
			engine:    engine,
		}
	}

	return &Writer{
		buf:       pool.NewByteBuffer(size),
		resizable: false,
		engine:    engine,
	}
}

// WrapSlice creates a fixed-capacity Writer over buf. If clone is true the
// slice's contents are copied into a private backing array (so the caller's
// slice is never mutated); otherwise the Writer writes directly into buf's
// backing array starting at offset 0.
func WrapSlice(buf []byte, clone bool, engine endian.EndianEngine) *Writer {
	if clone {
		owned := make([]byte, len(buf), cap(buf))
		copy(owned, buf)
		buf = owned
	}

	return &Writer{
		buf:       &pool.ByteBuffer{B: buf[:0]},
		resizable: false,
		engine:    engine,
	}
}

// Bytes returns the bytes written so far. The returned slice shares the
// Writer's backing array and must not be retained across further writes.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far (the byte-granular cursor,
// including any partially-filled trailing byte from an in-progress bit run).
func (w *Writer) Len() int {
	if w.bitIndex != 0 {
		return w.bitByte + 1
	}

	return w.off
}

// Cap returns the writer's current backing capacity.
func (w *Writer) Cap() int { return w.buf.Cap() }

// Resizable reports whether the writer grows its backing array on demand.
func (w *Writer) Resizable() bool { return w.resizable }

// Seek moves the byte cursor to an absolute offset, realigning the bit
// cursor to that position. It never shrinks the logical length; writing
// past the previous end leaves a zero-filled gap.
func (w *Writer) Seek(offset int) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative seek offset %d", errs.ErrOutOfRange, offset)
	}

	if err := w.ensureLen(offset); err != nil {
		return err
	}

	w.off, w.bitByte, w.bitIndex = offset, offset, 0

	return nil
}

// Advance moves the byte cursor forward by delta bytes, realigning the bit
// cursor, zero-filling as needed.
func (w *Writer) Advance(delta int) error {
	return w.Seek(w.Len() + delta)
}

// Reset clears the writer back to an empty, zero-cursor state. The backing
// capacity is retained for reuse.
func (w *Writer) Reset() {
	w.buf.Reset()
	w.off, w.bitByte, w.bitIndex = 0, 0, 0
}

// Clone returns an independent copy of the writer, including its own
// backing array; mutating one does not affect the other.
func (w *Writer) Clone() *Writer {
	owned := make([]byte, len(w.buf.B))
	copy(owned, w.buf.B)

	return &Writer{
		buf:       &pool.ByteBuffer{B: owned},
		resizable: w.resizable,
		engine:    w.engine,
		off:       w.off,
		bitByte:   w.bitByte,
		bitIndex:  w.bitIndex,
	}
}

// Finish returns pooled backing storage to the shared pool. After Finish
// the Writer must not be reused; construct a new one instead.
func (w *Writer) Finish() {
	if w.pooled && w.buf != nil {
		pool.PutBlobBuffer(w.buf)
	}
	w.buf = nil
}

// Expand grows the writer's capacity by delta bytes, copying existing bytes
// into the new allocation. It is a no-op if the writer is not resizable and
// already has sufficient spare capacity.
func (w *Writer) Expand(delta int) error {
	if delta <= 0 {
		return nil
	}

	if !w.resizable && w.buf.Cap()-w.buf.Len() < delta {
		return errs.ErrOverflow
	}

	w.buf.Grow(delta)

	return nil
}

// Shrink reduces the writer's logical length by delta bytes, realigning the
// cursor. It never reallocates; the backing capacity is unchanged.
func (w *Writer) Shrink(delta int) error {
	n := w.Len() - delta
	if n < 0 {
		return fmt.Errorf("%w: shrink below zero", errs.ErrOutOfRange)
	}
	w.buf.SetLength(n)
	w.off, w.bitByte, w.bitIndex = n, n, 0

	return nil
}

// ensureLen grows the backing array, if permitted, so that len(buf.B) >= n,
// zero-filling the newly exposed region. Pooled buffers may carry stale
// bytes from a prior tenant, and ByteBuffer.Grow only reserves capacity while
// SetLength re-exposes whatever bytes the backing array already holds, so
// this zero-fill is required here: writeBits ORs into a byte rather than
// overwriting it.
func (w *Writer) ensureLen(n int) error {
	cur := len(w.buf.B)
	if cur >= n {
		return nil
	}

	need := n - cur
	if w.buf.Cap()-cur < need {
		if !w.resizable {
			return errs.ErrOverflow
		}
		w.buf.Grow(need)
	}

	w.buf.SetLength(n)
	for i := cur; i < n; i++ {
		w.buf.B[i] = 0
	}

	return nil
}

// realign abandons any unused bits of a partially-filled trailing byte and
// resumes byte-granular writes at the next whole byte. Per the wire-format
// policy, this is the only place unused trailing bits are discarded; two
// contiguous bit-runs instead continue sharing the same byte.
func (w *Writer) realign() {
	if w.bitIndex != 0 {
		w.bitByte++
		w.bitIndex = 0
	}
	w.off = w.bitByte
}

// --- Fixed-width integer and float writes ---

func (w *Writer) WriteUint8(v uint8) error {
	w.realign()
	if err := w.ensureLen(w.off + 1); err != nil {
		return err
	}
	w.buf.B[w.off] = v
	w.off++
	w.bitByte = w.off

	return nil
}

func (w *Writer) WriteInt8(v int8) error { return w.WriteUint8(uint8(v)) }

func (w *Writer) WriteUint16(v uint16) error {
	w.realign()
	if err := w.ensureLen(w.off + 2); err != nil {
		return err
	}
	w.engine.PutUint16(w.buf.B[w.off:w.off+2], v)
	w.off += 2
	w.bitByte = w.off

	return nil
}

func (w *Writer) WriteInt16(v int16) error { return w.WriteUint16(uint16(v)) }

func (w *Writer) WriteUint32(v uint32) error {
	w.realign()
	if err := w.ensureLen(w.off + 4); err != nil {
		return err
	}
	w.engine.PutUint32(w.buf.B[w.off:w.off+4], v)
	w.off += 4
	w.bitByte = w.off

	return nil
}

func (w *Writer) WriteInt32(v int32) error { return w.WriteUint32(uint32(v)) }

func (w *Writer) WriteUint64(v uint64) error {
	w.realign()
	if err := w.ensureLen(w.off + 8); err != nil {
		return err
	}
	w.engine.PutUint64(w.buf.B[w.off:w.off+8], v)
	w.off += 8
	w.bitByte = w.off

	return nil
}

func (w *Writer) WriteInt64(v int64) error { return w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat16(v float64) error {
	return w.WriteUint16(float64ToFloat16Bits(v))
}

func (w *Writer) WriteFloat32(v float32) error {
	return w.WriteUint32(math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) error {
	return w.WriteUint64(math.Float64bits(v))
}

// --- Bit-level writes ---

// WriteBoolean writes a single boolean. When byteMode is true it writes a
// full byte (0 or 1); otherwise it writes a single bit at the bit cursor.
// Bit-mode is what the schema codec uses for non-list Boolean fields.
func (w *Writer) WriteBoolean(value bool, byteMode bool) error {
	if byteMode {
		if value {
			return w.WriteUint8(1)
		}

		return w.WriteUint8(0)
	}

	var bit int64
	if value {
		bit = 1
	}

	return w.WriteBits(bit, 1, false)
}

// WriteBits writes the `bits`-wide representation of value at the bit
// cursor. value is the field's logical signed-or-unsigned integer; when
// signed is true the stored bit pattern is value - RangeMin(bits, true), so
// the wire bytes are always an unsigned code. Range errors are ErrOutOfRange.
//
// A fast path delegates to the fixed-width writers when the cursor is
// already byte-aligned and bits is 8, 16, or 32 — those emit byte-identical
// output to the corresponding WriteUintN call (spec requirement).
func (w *Writer) WriteBits(value int64, bits int, signed bool) error {
	if bits < 1 || bits > MaxBits {
		return fmt.Errorf("%w: bit width %d outside [1,%d]", errs.ErrOutOfRange, bits, MaxBits)
	}

	lo, hi := RangeMin(bits, signed), RangeMax(bits, signed)
	if value < lo || value > hi {
		return fmt.Errorf("%w: value %d outside [%d,%d] for %d-bit field", errs.ErrOutOfRange, value, lo, hi, bits)
	}

	uval := uint64(value - lo)

	if w.bitIndex == 0 {
		switch bits {
		case 8:
			return w.WriteUint8(uint8(uval))
		case 16:
			return w.WriteUint16(uint16(uval))
		case 32:
			return w.WriteUint32(uint32(uval))
		}
	}

	remaining := bits
	for remaining > 0 {
		if err := w.ensureLen(w.bitByte + 1); err != nil {
			return err
		}

		free := 8 - w.bitIndex
		chunk := remaining
		if chunk > free {
			chunk = free
		}

		mask := uint64(1)<<uint(chunk) - 1
		piece := uval & mask
		uval >>= uint(chunk)

		w.buf.B[w.bitByte] |= byte(piece << uint(w.bitIndex))
		w.bitIndex += chunk
		remaining -= chunk

		if w.bitIndex == 8 {
			w.bitIndex = 0
			w.bitByte++
			w.off = w.bitByte
		}
	}

	return nil
}

// --- Variable-length and blob/string writes ---

// WriteUint writes n as an unsigned LEB128 variable-length integer.
func (w *Writer) WriteUint(n uint64) error {
	w.realign()
	for n >= 0x80 {
		if err := w.WriteUint8(byte(n) | 0x80); err != nil {
			return err
		}
		n >>= 7
	}

	return w.WriteUint8(byte(n))
}

// WriteInt writes n as a zigzag-mapped LEB128 variable-length integer.
func (w *Writer) WriteInt(n int64) error {
	uval := uint64(n<<1) ^ uint64(n>>63)

	return w.WriteUint(uval)
}

// WriteBlob writes bytes, preceded by a uint16 length prefix when
// includeSize is true. The length must fit uint16 (0..65535); a longer
// blob is ErrOutOfRange.
func (w *Writer) WriteBlob(data []byte, includeSize bool) error {
	if includeSize {
		if len(data) > math.MaxUint16 {
			return fmt.Errorf("%w: blob length %d exceeds uint16", errs.ErrOutOfRange, len(data))
		}
		if err := w.WriteUint16(uint16(len(data))); err != nil {
			return err
		}
	}

	w.realign()
	if err := w.ensureLen(w.off + len(data)); err != nil {
		return err
	}
	copy(w.buf.B[w.off:], data)
	w.off += len(data)
	w.bitByte = w.off

	return nil
}

// WriteString UTF-8-encodes text and writes it as a blob.
func (w *Writer) WriteString(text string, includeSize bool) error {
	return w.WriteBlob([]byte(text), includeSize)
}
