package codec

import (
	"fmt"
)

// FormatErrorKind classifies a malformed container.
type FormatErrorKind int

const (
	// BadMagic means the header does not start with the volume magic.
	BadMagic FormatErrorKind = iota + 1
	// Decompression means the gzip payload is corrupt, truncated or not gzip at all.
	Decompression
	// UnknownRecordKind means a header line names a kind other than file or table.
	UnknownRecordKind
	// Truncated means a delimiter, payload or digest runs past the end of the data.
	Truncated
	// MalformedHeader means a header line has the wrong field count or a
	// non-decimal numeric field.
	MalformedHeader
)

func (k FormatErrorKind) String() string {
	switch k {
	case BadMagic:
		return "bad magic"
	case Decompression:
		return "decompression failed"
	case UnknownRecordKind:
		return "unknown record kind"
	case Truncated:
		return "truncated"
	case MalformedHeader:
		return "malformed header"
	default:
		return fmt.Sprintf("format error(%d)", int(k))
	}
}

// FormatError reports a malformed container. Offset is a byte offset into the
// decompressed record stream (or the raw file for envelope errors) and Index is
// the zero-based record number; both are -1 when they do not apply.
type FormatError struct {
	Kind   FormatErrorKind
	Offset int64
	Index  int
	Err    error
}

// Errors matchable with errors.Is regardless of offset or cause
var (
	ErrBadMagic          = &FormatError{Kind: BadMagic}
	ErrDecompression     = &FormatError{Kind: Decompression}
	ErrUnknownRecordKind = &FormatError{Kind: UnknownRecordKind}
	ErrTruncated         = &FormatError{Kind: Truncated}
	ErrMalformedHeader   = &FormatError{Kind: MalformedHeader}
)

// NewFormatError builds a FormatError without position information; callers
// that know the position use At.
func NewFormatError(kind FormatErrorKind, format string, args ...any) *FormatError {
	return &FormatError{Kind: kind, Offset: -1, Index: -1, Err: fmt.Errorf(format, args...)}
}

// At returns a copy of e annotated with a stream offset and record index.
func (e *FormatError) At(offset int64, index int) *FormatError {
	cp := *e
	cp.Offset = offset
	cp.Index = index
	return &cp
}

func (e *FormatError) Error() string {
	msg := "fsb: " + e.Kind.String()
	if e.Index >= 0 {
		msg += fmt.Sprintf(" in record %d", e.Index)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is matches any FormatError of the same kind.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && t.Kind == e.Kind
}

// IntegrityError is returned when a payload does not hash to its stored digest.
type IntegrityError struct {
	Index    int
	Offset   int64
	Name     string
	Expected Digest
	Actual   Digest
}

// ErrChecksumMismatch matches every IntegrityError.
var ErrChecksumMismatch = &IntegrityError{Index: -1, Offset: -1}

func (e *IntegrityError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("fsb: checksum mismatch for %q: %s expected %s", e.Name, e.Actual, e.Expected)
	}
	return fmt.Sprintf("fsb: checksum mismatch in record %d (%q) at offset %d: %s expected %s",
		e.Index, e.Name, e.Offset, e.Actual, e.Expected)
}

// Is matches any IntegrityError.
func (e *IntegrityError) Is(target error) bool {
	_, ok := target.(*IntegrityError)
	return ok
}
