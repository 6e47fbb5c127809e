package domain

import "time"

// FingerprintAlgorithm is fixed; the digest format (lower-case hex, 64
// chars) is externally visible and must stay stable.
const FingerprintAlgorithm = "sha256"

// Fingerprint is the authoritative content digest of one (document, version)
// pair. Re-hashing the same version flips the previous row to non-current
// instead of deleting it, so the full history stays available for forensic
// comparison.
type Fingerprint struct {
	ID         string
	DocumentID string
	Version    int
	Algorithm  string
	DigestHex  string
	Current    bool
	CreatedBy  string
	CreatedAt  time.Time
}
