package recordset

import (
	"fmt"

	"github.com/bytewire/bitschema/codec"
	"github.com/bytewire/bitschema/compress"
	"github.com/bytewire/bitschema/errs"
	"github.com/bytewire/bitschema/format"
	"github.com/bytewire/bitschema/internal/options"
	"github.com/bytewire/bitschema/internal/pool"
)

// WriterOption configures a Writer. Unlike schema.FieldOption (which can
// never fail), a WriterOption may reject its argument eagerly, at
// NewWriter time, rather than deferring the failure to Finish.
type WriterOption = options.Option[*Writer]

// WithCompression selects the whole-payload compression algorithm. The
// default is format.CompressionNone. Rejects an unsupported compression
// type immediately instead of waiting for Finish to discover it.
func WithCompression(c format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		if _, err := compress.GetCodec(c); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrSchemaInvalid, err)
		}
		w.compression = c

		return nil
	})
}

// Writer accumulates encoded records for one schema into a single batch.
// Each Add call encodes value with the Writer's Compiled codec and appends
// the result to the payload; Finish concatenates header, index, and
// (optionally compressed) payload into one blob.
type Writer struct {
	compiled    *codec.Compiled
	compression format.CompressionType

	entries []indexEntry
	payload *pool.ByteBuffer
	done    bool
}

// NewWriter creates a Writer for compiled, initially holding zero records.
// The uncompressed payload accumulates in a buffer drawn from the shared
// blob-set pool (sized for whole-batch accumulation rather than the
// per-record bitio.Writer pool), returned to the pool once Finish consumes it.
func NewWriter(compiled *codec.Compiled, opts ...WriterOption) (*Writer, error) {
	w := &Writer{compiled: compiled, compression: format.CompressionNone, payload: pool.GetBlobSetBuffer()}
	if err := options.Apply(w, opts...); err != nil {
		pool.PutBlobSetBuffer(w.payload)
		return nil, err
	}

	return w, nil
}

// Add encodes value and appends it to the batch.
func (w *Writer) Add(value codec.Value) error {
	buf, err := w.compiled.Encode(value)
	if err != nil {
		return err
	}

	w.entries = append(w.entries, indexEntry{offset: uint32(w.payload.Len()), length: uint32(len(buf))})
	w.payload.MustWrite(buf)

	return nil
}

// Len returns the number of records added so far.
func (w *Writer) Len() int { return len(w.entries) }

// Finish compresses the accumulated payload (if a codec other than
// CompressionNone was selected) and returns the complete recordset blob:
// header, index, then the payload block. The Writer must not be reused
// after Finish; its scratch buffer is returned to the shared pool.
func (w *Writer) Finish() ([]byte, error) {
	if w.done {
		return nil, fmt.Errorf("%w: Finish called twice on the same Writer", errs.ErrOverflow)
	}
	w.done = true
	defer pool.PutBlobSetBuffer(w.payload)

	c, err := compress.CreateCodec(w.compression, "recordset payload")
	if err != nil {
		return nil, err
	}

	compressed, err := c.Compress(w.payload.Bytes())
	if err != nil {
		return nil, err
	}

	h := header{
		compression: w.compression,
		fingerprint: Fingerprint(w.compiled.Schema),
		count:       uint32(len(w.entries)),
	}

	out := make([]byte, 0, headerSize+len(w.entries)*indexEntrySize+len(compressed))
	out = append(out, h.encode()...)
	out = append(out, encodeIndex(w.entries)...)
	out = append(out, compressed...)

	return out, nil
}
