package codec

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum_KnownVectors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"hello", "5d41402abc4b2a76b9719d911017c592"},
		{"The quick brown fox jumps over the lazy dog", "9e107d9d372bb6826bd81d3542a419d6"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := Checksum([]byte(tt.input))
			assert.Equal(t, tt.want, d.String())
			assert.Len(t, d, DigestSize)
		})
	}
}

func TestParseDigest(t *testing.T) {
	raw, err := hex.DecodeString("5d41402abc4b2a76b9719d911017c592")
	require.NoError(t, err)

	d, err := ParseDigest(raw)
	require.NoError(t, err)
	assert.True(t, d.Equal(Checksum([]byte("hello"))))

	_, err = ParseDigest(raw[:15])
	assert.Error(t, err)

	_, err = ParseDigest(append(raw, 0))
	assert.Error(t, err)
}
