// Package volumetest builds synthetic backup volumes for tests.
package volumetest

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/ssargent/fsbx/pkg/codec"
)

// DefaultHeader is the header text used when Builder.Header is empty
const DefaultHeader = "ForeScout backup volume vX\n"

// Builder accumulates frames and renders them as a volume.
type Builder struct {
	Header   string
	Elements []string

	stream bytes.Buffer
}

// New returns a builder with the default header
func New() *Builder {
	return &Builder{Header: DefaultHeader}
}

// AddFile appends a file frame. meta.Size is set from the payload.
func (b *Builder) AddFile(name, category string, meta codec.FileMeta, payload []byte) *Builder {
	meta.Size = uint64(len(payload))
	h := codec.Header{Kind: codec.KindFile, Name: name, Category: category, File: &meta}
	b.AddRaw(h.Bytes(), payload, nil, codec.Checksum(payload))
	return b
}

// AddTable appends a table frame.
func (b *Builder) AddTable(name, category string, payload []byte) *Builder {
	h := codec.Header{Kind: codec.KindTable, Name: name, Category: category}
	b.AddRaw(h.Bytes(), payload, []byte{codec.FieldSeparator, '\n'}, codec.Checksum(payload))
	return b
}

// AddRaw appends an arbitrary frame, for building malformed streams.
func (b *Builder) AddRaw(header, payload, terminator []byte, digest codec.Digest) *Builder {
	b.stream.Write(header)
	b.stream.WriteByte('\n')
	b.stream.Write(payload)
	b.stream.Write(terminator)
	b.stream.Write(digest[:])
	return b
}

// AddBytes appends raw bytes to the record stream.
func (b *Builder) AddBytes(p []byte) *Builder {
	b.stream.Write(p)
	return b
}

// Stream returns the uncompressed record stream built so far
func (b *Builder) Stream() []byte {
	return bytes.Clone(b.stream.Bytes())
}

// Envelope renders the header and element blocks followed by payload, which
// is written as is.
func (b *Builder) Envelope(payload []byte) []byte {
	var out bytes.Buffer
	out.WriteString(b.Header)
	out.WriteString("End_of_header\n")
	for _, e := range b.Elements {
		out.WriteString(e)
		out.WriteByte('\n')
	}
	out.WriteString("End_of_elem\n")
	out.Write(payload)
	return out.Bytes()
}

// Bytes renders the complete volume with a gzip payload.
func (b *Builder) Bytes() ([]byte, error) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write(b.stream.Bytes()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return b.Envelope(gz.Bytes()), nil
}

// MustBytes is Bytes for tests.
func (b *Builder) MustBytes(tb testing.TB) []byte {
	tb.Helper()
	raw, err := b.Bytes()
	if err != nil {
		tb.Fatalf("building volume: %v", err)
	}
	return raw
}
