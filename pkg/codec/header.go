package codec

import (
	"bytes"
	"os"
	"strconv"
	"time"
)

// Kind is the record type discriminator, the first field of a header line.
type Kind string

// Record kinds known to the volume format
const (
	KindFile  Kind = "file"
	KindTable Kind = "table"
)

// Field counts per kind, including the kind field itself
const (
	fileFieldCount  = 9
	tableFieldCount = 3
)

// FieldSeparator splits the fields of a header line.
const FieldSeparator = 0x00

// FileMeta holds the metadata carried only by file records.
type FileMeta struct {
	Size  uint64 // Payload length in bytes
	Perm  uint64 // Mode bits as stored (decimal text in the header)
	Atime uint64 // Access time, unix seconds
	Mtime uint64 // Modification time, unix seconds
	UID   uint64
	GID   uint64
}

// Mode converts the stored mode value to an os.FileMode, keeping only the
// permission, setuid, setgid and sticky bits.
func (m FileMeta) Mode() os.FileMode {
	mode := os.FileMode(m.Perm & 0o777)
	if m.Perm&0o4000 != 0 {
		mode |= os.ModeSetuid
	}
	if m.Perm&0o2000 != 0 {
		mode |= os.ModeSetgid
	}
	if m.Perm&0o1000 != 0 {
		mode |= os.ModeSticky
	}
	return mode
}

// maxTimestamp is 9999-12-31T23:59:59Z. Larger stored times are clamped to it.
const maxTimestamp = 253402300799

// AccessTime returns Atime as a time.Time
func (m FileMeta) AccessTime() time.Time {
	return unixTime(m.Atime)
}

// ModTime returns Mtime as a time.Time
func (m FileMeta) ModTime() time.Time {
	return unixTime(m.Mtime)
}

func unixTime(sec uint64) time.Time {
	if sec > maxTimestamp {
		sec = maxTimestamp
	}
	return time.Unix(int64(sec), 0)
}

// Header is a validated header line. File is non-nil exactly when Kind is KindFile.
type Header struct {
	Kind     Kind
	Name     string
	Category string
	File     *FileMeta
}

// ParseHeader parses one header line (without its trailing newline).
//
// Name and category are always text; the six file metadata fields must be
// non-empty runs of decimal digits.
func ParseHeader(line []byte) (Header, error) {
	fields := bytes.Split(line, []byte{FieldSeparator})
	kind := Kind(fields[0])

	switch kind {
	case KindFile:
		if len(fields) != fileFieldCount {
			return Header{}, NewFormatError(MalformedHeader,
				"file record has %d fields, want %d", len(fields), fileFieldCount)
		}
		var nums [fileFieldCount - 3]uint64
		for i := range nums {
			n, err := parseDecimal(fields[3+i])
			if err != nil {
				return Header{}, NewFormatError(MalformedHeader, "field %d: %v", 3+i, err)
			}
			nums[i] = n
		}
		return Header{
			Kind:     kind,
			Name:     string(fields[1]),
			Category: string(fields[2]),
			File: &FileMeta{
				Size:  nums[0],
				Perm:  nums[1],
				Atime: nums[2],
				Mtime: nums[3],
				UID:   nums[4],
				GID:   nums[5],
			},
		}, nil

	case KindTable:
		if len(fields) != tableFieldCount {
			return Header{}, NewFormatError(MalformedHeader,
				"table record has %d fields, want %d", len(fields), tableFieldCount)
		}
		return Header{
			Kind:     kind,
			Name:     string(fields[1]),
			Category: string(fields[2]),
		}, nil
	}

	return Header{}, NewFormatError(UnknownRecordKind, "%q", fields[0])
}

// isDigits reports whether b is a non-empty run of ASCII decimal digits
func isDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseDecimal(b []byte) (uint64, error) {
	if !isDigits(b) {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(string(b), 10, 64)
}

// Bytes renders the header line in wire form, without the trailing newline.
func (h Header) Bytes() []byte {
	fields := [][]byte{[]byte(h.Kind), []byte(h.Name), []byte(h.Category)}
	if h.File != nil {
		for _, n := range []uint64{h.File.Size, h.File.Perm, h.File.Atime, h.File.Mtime, h.File.UID, h.File.GID} {
			fields = append(fields, strconv.AppendUint(nil, n, 10))
		}
	}
	return bytes.Join(fields, []byte{FieldSeparator})
}
