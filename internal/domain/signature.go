package domain

import "time"

// Signature is one irrevocable advanced signature bound to an exact
// fingerprint row. No update or delete operation exists for this entity.
type Signature struct {
	ID             string
	DocumentID     string
	FingerprintID  string
	SignerID       string
	SignerEmail    string
	RoleAtSign     string
	ConsentText    string
	NetworkAddress string
	UserAgent      string
	SessionID      string
	SignatureHash  string
	SignedAt       time.Time
}
