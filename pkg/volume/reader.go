package volume

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/ssargent/fsbx/pkg/codec"
)

// Envelope markers of a backup volume
const (
	Magic      = "ForeScout backup volume"
	HeaderEnd  = "End_of_header\n"
	ElementEnd = "End_of_elem\n"
)

// Volume is a parsed container: its header text, the element list block and
// the decompressed record stream. The stream is never modified after Parse
// returns, so records decoded from it may be shared between goroutines.
type Volume struct {
	header        []byte
	elements      []byte
	data          []byte
	compressedLen int
}

// Open reads and parses the volume at path.
func Open(path string) (*Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read parses a volume from r. The whole input is buffered because record
// framing needs random lookahead.
func Read(r io.Reader) (*Volume, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read volume: %w", err)
	}
	return Parse(raw)
}

// Parse validates the envelope of raw and decompresses its payload. raw is
// not retained.
func Parse(raw []byte) (*Volume, error) {
	// magic first: a foreign file must never reach the decompressor
	if !bytes.HasPrefix(raw, []byte(Magic)) {
		n := len(Magic)
		if len(raw) < n {
			n = len(raw)
		}
		return nil, codec.NewFormatError(codec.BadMagic, "header starts with %q", raw[:n]).At(0, -1)
	}

	headerEnd := bytes.Index(raw, []byte(HeaderEnd))
	if headerEnd < 0 {
		return nil, codec.NewFormatError(codec.Truncated, "missing %q marker", HeaderEnd).At(int64(len(raw)), -1)
	}
	elemStart := headerEnd + len(HeaderEnd)

	elemLen := bytes.Index(raw[elemStart:], []byte(ElementEnd))
	if elemLen < 0 {
		return nil, codec.NewFormatError(codec.Truncated, "missing %q marker", ElementEnd).At(int64(len(raw)), -1)
	}
	payloadStart := elemStart + elemLen + len(ElementEnd)

	data, err := decompress(raw[payloadStart:])
	if err != nil {
		return nil, codec.NewFormatError(codec.Decompression, "%v", err).At(int64(payloadStart), -1)
	}

	return &Volume{
		header:        bytes.Clone(raw[:headerEnd]),
		elements:      bytes.Clone(raw[elemStart : elemStart+elemLen]),
		data:          data,
		compressedLen: len(raw) - payloadStart,
	}, nil
}

func decompress(payload []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Header returns the plaintext header, without the End_of_header marker.
func (v *Volume) Header() string {
	return string(v.header)
}

// ElementBlock returns a copy of the raw element list. The decoder does not use it.
func (v *Volume) ElementBlock() []byte {
	return bytes.Clone(v.elements)
}

// Elements splits the element list into its non-empty lines.
func (v *Volume) Elements() []string {
	var out []string
	for _, line := range strings.Split(string(v.elements), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Bytes returns the decompressed record stream. Callers must not modify it.
func (v *Volume) Bytes() []byte {
	return v.data
}

// Len is the size of the decompressed record stream
func (v *Volume) Len() int {
	return len(v.data)
}

// CompressedLen is the size of the gzip payload in the container
func (v *Volume) CompressedLen() int {
	return v.compressedLen
}

// Records returns a new decoder positioned at the start of the stream. Each
// decoder is single-pass; call Records again to decode the volume anew.
func (v *Volume) Records() *Decoder {
	return NewDecoder(v.data)
}
