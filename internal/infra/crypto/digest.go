package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the lower-case hex digest of input (64 characters).
func SHA256Hex(input []byte) string {
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:])
}

// ChainDigest computes the digest of one chain event: the previous event's
// digest (empty string at genesis) concatenated with the canonical payload.
func ChainDigest(prevDigest string, canonicalPayload []byte) string {
	buf := make([]byte, 0, len(prevDigest)+len(canonicalPayload))
	buf = append(buf, prevDigest...)
	buf = append(buf, canonicalPayload...)
	return SHA256Hex(buf)
}
