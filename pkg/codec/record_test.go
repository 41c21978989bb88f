package codec

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerLine(fields ...string) []byte {
	return []byte(strings.Join(fields, "\x00"))
}

func TestParseHeader_File(t *testing.T) {
	h, err := ParseHeader(headerLine("file", "etc/hosts", "os", "5", "33188", "1600000000", "1600000001", "0", "20"))
	require.NoError(t, err)

	assert.Equal(t, KindFile, h.Kind)
	assert.Equal(t, "etc/hosts", h.Name)
	assert.Equal(t, "os", h.Category)
	require.NotNil(t, h.File)
	assert.Equal(t, FileMeta{Size: 5, Perm: 33188, Atime: 1600000000, Mtime: 1600000001, UID: 0, GID: 20}, *h.File)
	assert.Equal(t, os.FileMode(0o644), h.File.Mode())
	assert.Equal(t, int64(1600000001), h.File.ModTime().Unix())
}

func TestParseHeader_Table(t *testing.T) {
	h, err := ParseHeader(headerLine("table", "users", "config"))
	require.NoError(t, err)

	assert.Equal(t, KindTable, h.Kind)
	assert.Equal(t, "users", h.Name)
	assert.Equal(t, "config", h.Category)
	assert.Nil(t, h.File)
}

func TestParseHeader_NumericLookingNameStaysText(t *testing.T) {
	h, err := ParseHeader(headerLine("table", "1234", "42"))
	require.NoError(t, err)
	assert.Equal(t, "1234", h.Name)
	assert.Equal(t, "42", h.Category)
}

func TestParseHeader_Errors(t *testing.T) {
	tests := []struct {
		name string
		line []byte
		want error
	}{
		{"empty line", []byte{}, ErrUnknownRecordKind},
		{"unknown kind", headerLine("link", "a", "b"), ErrUnknownRecordKind},
		{"kind is case sensitive", headerLine("FILE", "a", "b", "0", "0", "0", "0", "0", "0"), ErrUnknownRecordKind},
		{"file too few fields", headerLine("file", "a", "b", "1"), ErrMalformedHeader},
		{"file too many fields", headerLine("file", "a", "b", "0", "0", "0", "0", "0", "0", "0"), ErrMalformedHeader},
		{"table with metadata", headerLine("table", "a", "b", "3"), ErrMalformedHeader},
		{"table too few fields", headerLine("table", "a"), ErrMalformedHeader},
		{"negative size", headerLine("file", "a", "b", "-1", "0", "0", "0", "0", "0"), ErrMalformedHeader},
		{"empty size", headerLine("file", "a", "b", "", "0", "0", "0", "0", "0"), ErrMalformedHeader},
		{"hex perm", headerLine("file", "a", "b", "1", "0x1ff", "0", "0", "0", "0"), ErrMalformedHeader},
		{"overflow", headerLine("file", "a", "b", "99999999999999999999999", "0", "0", "0", "0", "0"), ErrMalformedHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestHeader_BytesRoundTrip(t *testing.T) {
	line := headerLine("file", "a.txt", "cfg", "5", "644", "0", "0", "0", "0")
	h, err := ParseHeader(line)
	require.NoError(t, err)
	assert.Equal(t, line, h.Bytes())

	line = headerLine("table", "t", "plugin")
	h, err = ParseHeader(line)
	require.NoError(t, err)
	assert.Equal(t, line, h.Bytes())
}

func TestFileMeta_Mode(t *testing.T) {
	tests := []struct {
		perm uint64
		want os.FileMode
	}{
		{0o644, 0o644},
		{0o100755, 0o755},
		{0o4755, 0o755 | os.ModeSetuid},
		{0o2750, 0o750 | os.ModeSetgid},
		{0o1777, 0o777 | os.ModeSticky},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileMeta{Perm: tt.perm}.Mode(), "perm %o", tt.perm)
	}
}

func TestFileMeta_Times(t *testing.T) {
	meta := FileMeta{Atime: 1500000000, Mtime: 1600000000}
	assert.Equal(t, int64(1500000000), meta.AccessTime().Unix())
	assert.Equal(t, int64(1600000000), meta.ModTime().Unix())

	// values beyond year 9999 clamp instead of wrapping negative
	huge := FileMeta{Atime: math.MaxUint64, Mtime: 1 << 63}
	limit := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	assert.True(t, huge.AccessTime().Equal(limit), huge.AccessTime().String())
	assert.True(t, huge.ModTime().Equal(limit), huge.ModTime().String())
}

func TestNewRecord_File(t *testing.T) {
	payload := []byte("hello")
	h := Header{Kind: KindFile, Name: "a.txt", Category: "cfg", File: &FileMeta{Size: 5, Perm: 420}}

	rec, err := NewRecord(h, payload, Checksum(payload))
	require.NoError(t, err)

	fr, ok := rec.(*FileRecord)
	require.True(t, ok)
	assert.Equal(t, KindFile, fr.Kind())
	assert.Equal(t, "a.txt", fr.Name())
	assert.Equal(t, "cfg", fr.Category())
	assert.Equal(t, uint64(5), fr.Meta.Size)
	assert.Equal(t, payload, fr.Payload())
	assert.Equal(t, "file a.txt cfg", fr.String())
	assert.NoError(t, fr.Validate())
	assert.Equal(t, h, HeaderOf(rec))
}

func TestNewRecord_Table(t *testing.T) {
	rec, err := NewRecord(Header{Kind: KindTable, Name: "users", Category: "config"}, nil, Checksum(nil))
	require.NoError(t, err)

	_, ok := rec.(*TableRecord)
	require.True(t, ok)
	assert.Equal(t, KindTable, rec.Kind())
	assert.Empty(t, rec.Payload())
	assert.NoError(t, rec.Validate())
	assert.Equal(t, "table users config", rec.String())
}

func TestNewRecord_SizeMismatch(t *testing.T) {
	h := Header{Kind: KindFile, Name: "a", Category: "b", File: &FileMeta{Size: 10}}
	_, err := NewRecord(h, []byte("short"), Digest{})
	assert.True(t, errors.Is(err, ErrMalformedHeader))

	_, err = NewRecord(Header{Kind: KindFile, Name: "a"}, nil, Digest{})
	assert.True(t, errors.Is(err, ErrMalformedHeader))

	_, err = NewRecord(Header{Kind: "dir"}, nil, Digest{})
	assert.True(t, errors.Is(err, ErrUnknownRecordKind))
}

func TestRecord_ValidateDetectsCorruption(t *testing.T) {
	payload := []byte("hello")
	digest := Checksum(payload)

	for i := range payload {
		corrupted := append([]byte(nil), payload...)
		corrupted[i] ^= 0x01

		rec, err := NewRecord(Header{Kind: KindFile, Name: "a", Category: "b", File: &FileMeta{Size: 5}}, corrupted, digest)
		require.NoError(t, err)

		err = rec.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrChecksumMismatch))

		var ie *IntegrityError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, digest, ie.Expected)
		assert.Equal(t, Checksum(corrupted), ie.Actual)
	}
}

func TestFormatError_Formatting(t *testing.T) {
	err := NewFormatError(Truncated, "no newline").At(128, 3)
	assert.Equal(t, "fsb: truncated in record 3 at offset 128: no newline", err.Error())
	assert.True(t, errors.Is(err, ErrTruncated))
	assert.False(t, errors.Is(err, ErrBadMagic))
	assert.False(t, errors.Is(err, ErrChecksumMismatch))

	bare := NewFormatError(BadMagic, "got %q", "Foo")
	assert.Equal(t, `fsb: bad magic: got "Foo"`, bare.Error())
}
