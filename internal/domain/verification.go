package domain

import "time"

// ChainDigest is the externally re-verifiable portion of one chain event.
type ChainDigest struct {
	Seq       int64
	EventType ChainEventType
	Digest    string
}

// VerificationResult is the public answer to "is this seal valid, and does
// this document still match its recorded fingerprint?". ContentMatches is
// nil when no document bytes were supplied.
type VerificationResult struct {
	SealCode       string
	SignerIdentity string
	SignerRole     string
	SignedAt       time.Time
	AuthorizedRole string
	Algorithm      string
	DigestHex      string
	ContentMatches *bool
	Chain          []ChainDigest
}
