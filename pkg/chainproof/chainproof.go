// Package chainproof lets external integrators recompute document
// fingerprints and replay a document's event chain without talking to the
// service. The digests here must stay byte-compatible with what the server
// stores.
package chainproof

import (
	"encoding/json"
	"errors"
	"fmt"

	"custodia/internal/domain"
	cryptoinfra "custodia/internal/infra/crypto"
)

// Fingerprint is a client-side document fingerprint.
type Fingerprint struct {
	Algorithm string `json:"algorithm"`
	DigestHex string `json:"digest"`
}

// Event is one exported chain entry, as returned by the document chain
// endpoint.
type Event struct {
	Seq       int64           `json:"seq"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Digest    string          `json:"digest"`
}

// ComputeFingerprint hashes raw document bytes the same way the server does.
func ComputeFingerprint(input []byte) (Fingerprint, error) {
	if len(input) == 0 {
		return Fingerprint{}, errors.New("document bytes are empty")
	}
	return Fingerprint{
		Algorithm: domain.FingerprintAlgorithm,
		DigestHex: cryptoinfra.SHA256Hex(input),
	}, nil
}

// VerifyEvents replays the chain from its genesis event and fails on the
// first digest or linkage divergence.
func VerifyEvents(events []Event) error {
	prevDigest := ""
	expectedSeq := int64(1)
	for _, event := range events {
		if event.Seq != expectedSeq {
			return fmt.Errorf("chain seq mismatch: expected %d got %d", expectedSeq, event.Seq)
		}
		var fields map[string]any
		if err := json.Unmarshal(event.Payload, &fields); err != nil {
			return fmt.Errorf("chain payload decode failed at seq %d: %w", event.Seq, err)
		}
		recorded := ""
		if raw, ok := fields[domain.PrevDigestKey]; ok {
			value, ok := raw.(string)
			if !ok {
				return fmt.Errorf("previous_event_hash must be a string at seq %d", event.Seq)
			}
			recorded = value
			delete(fields, domain.PrevDigestKey)
		}
		if recorded != prevDigest {
			return fmt.Errorf("chain prev digest mismatch at seq %d", event.Seq)
		}
		canonical, err := cryptoinfra.CanonicalizeAny(fields)
		if err != nil {
			return fmt.Errorf("chain payload canonicalize failed at seq %d: %w", event.Seq, err)
		}
		if got := cryptoinfra.ChainDigest(prevDigest, canonical); got != event.Digest {
			return fmt.Errorf("chain digest mismatch at seq %d", event.Seq)
		}
		prevDigest = event.Digest
		expectedSeq++
	}
	return nil
}
