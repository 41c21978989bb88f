package volume

import (
	"bytes"
	"io"

	"github.com/ssargent/fsbx/pkg/codec"
)

var tableTerminator = []byte{codec.FieldSeparator, '\n'}

// Decoder walks the frames of a decompressed record stream. It holds a single
// cursor and must be driven from one goroutine; the records it returns only
// reference the underlying buffer and may be handed to other goroutines.
type Decoder struct {
	buf    []byte
	offset int
	index  int
	err    error
}

// NewDecoder returns a decoder positioned at the start of buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Next decodes and verifies the next record. It returns io.EOF once the
// stream is exhausted. Any error is terminal: later calls return it again.
func (d *Decoder) Next() (codec.Record, error) {
	if d.err != nil {
		return nil, d.err
	}
	rec, err := d.next()
	if err != nil {
		d.err = err
		return nil, err
	}
	d.index++
	return rec, nil
}

func (d *Decoder) next() (codec.Record, error) {
	if d.offset >= len(d.buf) {
		return nil, io.EOF
	}
	start := d.offset

	eol := bytes.IndexByte(d.buf[start:], '\n')
	if eol < 0 {
		return nil, d.formatError(codec.Truncated, start, "header line has no newline")
	}
	h, err := codec.ParseHeader(d.buf[start : start+eol])
	if err != nil {
		if fe, ok := err.(*codec.FormatError); ok {
			return nil, fe.At(int64(start), d.index)
		}
		return nil, err
	}
	payloadStart := start + eol + 1

	var payload []byte
	var digestStart int
	switch h.Kind {
	case codec.KindFile:
		remaining := uint64(len(d.buf) - payloadStart)
		if h.File.Size > remaining {
			return nil, d.formatError(codec.Truncated, payloadStart,
				"file %q declares %d bytes, %d left", h.Name, h.File.Size, remaining)
		}
		end := payloadStart + int(h.File.Size)
		payload = d.buf[payloadStart:end:end]
		digestStart = end

	case codec.KindTable:
		n := bytes.Index(d.buf[payloadStart:], tableTerminator)
		if n < 0 {
			return nil, d.formatError(codec.Truncated, payloadStart, "table %q has no terminator", h.Name)
		}
		end := payloadStart + n
		payload = d.buf[payloadStart:end:end]
		digestStart = end + len(tableTerminator)
	}

	if len(d.buf)-digestStart < codec.DigestSize {
		return nil, d.formatError(codec.Truncated, digestStart,
			"digest of %q needs %d bytes, %d left", h.Name, codec.DigestSize, len(d.buf)-digestStart)
	}
	digest, err := codec.ParseDigest(d.buf[digestStart : digestStart+codec.DigestSize])
	if err != nil {
		return nil, err
	}

	rec, err := codec.NewRecord(h, payload, digest)
	if err != nil {
		if fe, ok := err.(*codec.FormatError); ok {
			return nil, fe.At(int64(start), d.index)
		}
		return nil, err
	}
	if actual := rec.Checksum(); actual != digest {
		return nil, &codec.IntegrityError{
			Index:    d.index,
			Offset:   int64(start),
			Name:     h.Name,
			Expected: digest,
			Actual:   actual,
		}
	}

	d.offset = digestStart + codec.DigestSize
	return rec, nil
}

func (d *Decoder) formatError(kind codec.FormatErrorKind, offset int, format string, args ...any) error {
	return codec.NewFormatError(kind, format, args...).At(int64(offset), d.index)
}

// Offset is the byte position of the next frame
func (d *Decoder) Offset() int64 {
	return int64(d.offset)
}

// Index is the number of records decoded so far
func (d *Decoder) Index() int {
	return d.index
}

// Err returns the terminal error, or nil while decoding can continue or
// after a clean end of stream.
func (d *Decoder) Err() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

// All decodes every remaining record. Payloads still point into the buffer.
func (d *Decoder) All() ([]codec.Record, error) {
	var out []codec.Record
	for {
		rec, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// Iterator wraps the decoder in the Next/Record/Err idiom.
func (d *Decoder) Iterator() RecordIterator {
	return &decoderIterator{dec: d}
}

// Filtered returns an iterator that yields only records matching f.
func (d *Decoder) Filtered(f Filter) RecordIterator {
	return &decoderIterator{dec: d, filter: f}
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() codec.Record
	Err() error
	Close() error
}

type decoderIterator struct {
	dec    *Decoder
	filter Filter
	record codec.Record
}

func (it *decoderIterator) Next() bool {
	for {
		rec, err := it.dec.Next()
		if err != nil {
			it.record = nil
			return false
		}
		if it.filter.Match(rec) {
			it.record = rec
			return true
		}
	}
}

func (it *decoderIterator) Record() codec.Record {
	return it.record
}

func (it *decoderIterator) Err() error {
	return it.dec.Err()
}

func (it *decoderIterator) Close() error {
	// the decoder owns no resources
	return nil
}
