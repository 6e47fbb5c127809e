package domain

import "time"

type ChainEventType string

const (
	ChainEventHashCreated    ChainEventType = "HASH_CREATED"
	ChainEventDocumentSigned ChainEventType = "DOCUMENT_SIGNED"
	ChainEventDocumentLocked ChainEventType = "DOCUMENT_LOCKED"
	ChainEventSealApplied    ChainEventType = "SEAL_APPLIED"
)

// PrevDigestKey is the payload field carrying the previous event digest.
// It is stored for human readability but excluded from digest computation.
const PrevDigestKey = "previous_event_hash"

// ChainEvent is one entry in the per-document, hash-linked, append-only
// audit log. Digest == SHA256(previous event digest + canonical payload
// without PrevDigestKey); the previous digest of the first event is the
// empty string.
type ChainEvent struct {
	ID         string
	DocumentID string
	Seq        int64
	EventType  ChainEventType
	Payload    []byte
	Digest     string
	CreatedAt  time.Time
}
