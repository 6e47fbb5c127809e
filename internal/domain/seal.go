package domain

import "time"

// Seal is an institutional attestation applied after signing. The code is a
// display label (collisions tolerated); the verification token is the real
// identifier and must be unguessable.
type Seal struct {
	ID                string
	FingerprintID     string
	Code              string
	AuthorizedRole    string
	VerificationToken string
	Active            bool
	CreatedAt         time.Time
}
