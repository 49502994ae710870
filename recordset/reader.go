package recordset

import (
	"fmt"
	"iter"

	"github.com/bytewire/bitschema/codec"
	"github.com/bytewire/bitschema/compress"
	"github.com/bytewire/bitschema/errs"
)

// Reader decodes a recordset blob previously produced by a Writer against
// the same schema.
type Reader struct {
	compiled *codec.Compiled
	entries  []indexEntry
	payload  []byte
}

// NewReader parses a recordset blob's header and index, verifies its schema
// fingerprint against compiled, and decompresses its payload.
//
// A fingerprint mismatch is reported as errs.ErrSchemaInvalid: this is a
// fail-fast guard against decoding a batch with the wrong schema, not an
// attempt at cross-version compatibility.
func NewReader(compiled *codec.Compiled, data []byte) (*Reader, error) {
	h, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	want := Fingerprint(compiled.Schema)
	if h.fingerprint != want {
		return nil, fmt.Errorf("%w: recordset schema fingerprint %x does not match %q (%x)",
			errs.ErrSchemaInvalid, h.fingerprint, compiled.Schema.Name, want)
	}

	rest := data[headerSize:]
	idxBytes := int(h.count) * indexEntrySize
	if len(rest) < idxBytes {
		return nil, fmt.Errorf("%w: recordset index truncated", errs.ErrUnderflow)
	}

	entries, err := decodeIndex(rest, h.count)
	if err != nil {
		return nil, err
	}

	c, err := compress.CreateCodec(h.compression, "recordset payload")
	if err != nil {
		return nil, err
	}

	payload, err := c.Decompress(rest[idxBytes:])
	if err != nil {
		return nil, err
	}

	return &Reader{compiled: compiled, entries: entries, payload: payload}, nil
}

// Len returns the number of records in the batch.
func (r *Reader) Len() int { return len(r.entries) }

// RecordBytes returns the raw encoded bytes of record i, without decoding
// them. The returned slice aliases the Reader's decompressed payload and
// must not be modified.
func (r *Reader) RecordBytes(i int) ([]byte, error) {
	if i < 0 || i >= len(r.entries) {
		return nil, fmt.Errorf("%w: record index %d out of range [0,%d)", errs.ErrOutOfRange, i, len(r.entries))
	}

	e := r.entries[i]
	end := int(e.offset) + int(e.length)
	if end > len(r.payload) {
		return nil, fmt.Errorf("%w: record %d payload truncated", errs.ErrUnderflow, i)
	}

	return r.payload[e.offset:end], nil
}

// Record decodes record i with the Reader's Compiled codec.
func (r *Reader) Record(i int) (codec.Value, error) {
	b, err := r.RecordBytes(i)
	if err != nil {
		return nil, err
	}

	return r.compiled.DecodeBytes(b)
}

// All iterates every record in the batch in order, decoding lazily. The
// iteration stops early, without decoding the remainder, if the consumer's
// yield function returns false.
func (r *Reader) All() iter.Seq2[int, codec.Value] {
	return func(yield func(int, codec.Value) bool) {
		for i := range r.entries {
			v, err := r.Record(i)
			if err != nil {
				return
			}
			if !yield(i, v) {
				return
			}
		}
	}
}
