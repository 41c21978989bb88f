package codec

import (
	"fmt"
)

// Record is one decoded frame. It is implemented only by *FileRecord and
// *TableRecord; use a type switch to reach the variant-specific data.
//
// Payload returns a view into the owning volume's buffer. It must not be
// modified and is valid only while the volume is alive.
type Record interface {
	Kind() Kind
	Name() string
	Category() string
	Payload() []byte
	// Digest is the checksum stored in the stream after the payload.
	Digest() Digest
	// Checksum recomputes the digest over Payload.
	Checksum() Digest
	// Validate returns an *IntegrityError when Checksum differs from Digest.
	Validate() error
	String() string

	isRecord()
}

type frame struct {
	name     string
	category string
	payload  []byte
	digest   Digest
}

func (f *frame) Name() string     { return f.name }
func (f *frame) Category() string { return f.category }
func (f *frame) Payload() []byte  { return f.payload }
func (f *frame) Digest() Digest   { return f.digest }
func (f *frame) Checksum() Digest { return Checksum(f.payload) }
func (f *frame) isRecord()        {}

func (f *frame) Validate() error {
	if actual := f.Checksum(); actual != f.digest {
		return &IntegrityError{Index: -1, Offset: -1, Name: f.name, Expected: f.digest, Actual: actual}
	}
	return nil
}

// FileRecord is a record whose payload length is declared in its header.
type FileRecord struct {
	frame
	Meta FileMeta
}

// Kind always returns KindFile
func (r *FileRecord) Kind() Kind { return KindFile }

func (r *FileRecord) String() string {
	return fmt.Sprintf("%s %s %s", KindFile, r.name, r.category)
}

// TableRecord is a record whose payload ends at the NUL,'\n' terminator.
type TableRecord struct {
	frame
}

// Kind always returns KindTable
func (r *TableRecord) Kind() Kind { return KindTable }

func (r *TableRecord) String() string {
	return fmt.Sprintf("%s %s %s", KindTable, r.name, r.category)
}

// NewRecord builds the record variant matching h. For file records the
// payload length must equal the declared size.
func NewRecord(h Header, payload []byte, digest Digest) (Record, error) {
	f := frame{name: h.Name, category: h.Category, payload: payload, digest: digest}
	switch h.Kind {
	case KindFile:
		if h.File == nil {
			return nil, NewFormatError(MalformedHeader, "file record %q without metadata", h.Name)
		}
		if uint64(len(payload)) != h.File.Size {
			return nil, NewFormatError(MalformedHeader,
				"file record %q declares %d bytes, payload has %d", h.Name, h.File.Size, len(payload))
		}
		return &FileRecord{frame: f, Meta: *h.File}, nil
	case KindTable:
		return &TableRecord{frame: f}, nil
	}
	return nil, NewFormatError(UnknownRecordKind, "%q", string(h.Kind))
}

// HeaderOf reconstructs the header a record was decoded from.
func HeaderOf(r Record) Header {
	h := Header{Kind: r.Kind(), Name: r.Name(), Category: r.Category()}
	if fr, ok := r.(*FileRecord); ok {
		meta := fr.Meta
		h.File = &meta
	}
	return h
}
