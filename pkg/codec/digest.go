package codec

import (
	"crypto/md5" //nolint:gosec // the volume format mandates MD5
	"encoding/hex"
	"fmt"
)

// DigestSize is the length of the checksum trailing every frame.
const DigestSize = md5.Size

// Digest is the 16-byte MD5 checksum stored after each record payload.
type Digest [DigestSize]byte

// Checksum computes the digest of a record payload
func Checksum(payload []byte) Digest {
	return Digest(md5.Sum(payload)) //nolint:gosec
}

// ParseDigest copies a raw digest out of b, which must be exactly DigestSize bytes
func ParseDigest(b []byte) (Digest, error) {
	var d Digest
	if len(b) != DigestSize {
		return d, fmt.Errorf("digest must be %d bytes, got %d", DigestSize, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Equal reports whether two digests are identical
func (d Digest) Equal(other Digest) bool {
	return d == other
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
