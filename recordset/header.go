// Package recordset batches many records encoded by one codec.Compiled into
// a single blob: a fixed header carrying a schema fingerprint, an index of
// per-record offsets into the payload, and the payload itself, optionally
// compressed as one block via package compress.
//
// This is the domain stack's answer to "many small records, compressed
// together instead of each alone": the single-record wire format from
// package codec is never altered by compression or batching, so a record's
// byte-exactness guarantees hold whether it travels alone or inside a
// recordset.
package recordset

import (
	"fmt"

	"github.com/bytewire/bitschema/endian"
	"github.com/bytewire/bitschema/errs"
	"github.com/bytewire/bitschema/format"
)

var byteOrder = endian.GetLittleEndianEngine()

// magic identifies a recordset blob: the ASCII bytes "BSK1".
const magic uint32 = 0x314B5342

// version is the header layout version this package writes and reads.
const version uint8 = 1

// headerSize is the fixed, byte-aligned header length in bytes:
// magic(4) + version(1) + compression(1) + fingerprint(8) + count(4).
const headerSize = 4 + 1 + 1 + 8 + 4

// indexEntrySize is the byte width of one index entry: offset(4) + length(4),
// both relative to the decompressed payload.
const indexEntrySize = 4 + 4

type header struct {
	compression format.CompressionType
	fingerprint uint64
	count       uint32
}

func (h header) encode() []byte {
	buf := make([]byte, headerSize)
	byteOrder.PutUint32(buf[0:4], magic)
	buf[4] = version
	buf[5] = byte(h.compression)
	byteOrder.PutUint64(buf[6:14], h.fingerprint)
	byteOrder.PutUint32(buf[14:18], h.count)

	return buf
}

func decodeHeader(data []byte) (header, error) {
	if len(data) < headerSize {
		return header{}, fmt.Errorf("%w: recordset header truncated", errs.ErrUnderflow)
	}

	got := byteOrder.Uint32(data[0:4])
	if got != magic {
		return header{}, fmt.Errorf("%w: bad recordset magic %x", errs.ErrMalformed, got)
	}

	if data[4] != version {
		return header{}, fmt.Errorf("%w: unsupported recordset version %d", errs.ErrMalformed, data[4])
	}

	return header{
		compression: format.CompressionType(data[5]),
		fingerprint: byteOrder.Uint64(data[6:14]),
		count:       byteOrder.Uint32(data[14:18]),
	}, nil
}

type indexEntry struct {
	offset uint32
	length uint32
}

func encodeIndex(entries []indexEntry) []byte {
	buf := make([]byte, len(entries)*indexEntrySize)
	for i, e := range entries {
		off := i * indexEntrySize
		byteOrder.PutUint32(buf[off:off+4], e.offset)
		byteOrder.PutUint32(buf[off+4:off+8], e.length)
	}

	return buf
}

func decodeIndex(data []byte, count uint32) ([]indexEntry, error) {
	need := int(count) * indexEntrySize
	if len(data) < need {
		return nil, fmt.Errorf("%w: recordset index truncated", errs.ErrUnderflow)
	}

	entries := make([]indexEntry, count)
	for i := range entries {
		off := i * indexEntrySize
		entries[i] = indexEntry{
			offset: byteOrder.Uint32(data[off : off+4]),
			length: byteOrder.Uint32(data[off+4 : off+8]),
		}
	}

	return entries, nil
}
