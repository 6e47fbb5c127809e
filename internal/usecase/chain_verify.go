package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"custodia/internal/domain"
	cryptoinfra "custodia/internal/infra/crypto"
)

// VerifyDocumentChain recomputes every digest in the document's event log
// and fails on the first divergence. This is the tamper-evidence check the
// subsystem exists to provide.
func VerifyDocumentChain(ctx context.Context, repo ChainRepository, documentID string) error {
	if repo == nil {
		return errors.New("chain repository required")
	}
	if documentID == "" {
		return domain.ErrDocumentNotFound
	}
	events, err := repo.ListByDocument(ctx, documentID)
	if err != nil {
		return err
	}

	prevDigest := ""
	expectedSeq := int64(1)
	for _, event := range events {
		if event.Seq != expectedSeq {
			return fmt.Errorf("chain seq mismatch: expected %d got %d", expectedSeq, event.Seq)
		}
		canonical, recorded, err := splitChainPayload(event.Payload)
		if err != nil {
			return fmt.Errorf("chain payload decode failed at seq %d: %w", event.Seq, err)
		}
		if recorded != prevDigest {
			return fmt.Errorf("chain prev digest mismatch at seq %d", event.Seq)
		}
		if got := cryptoinfra.ChainDigest(prevDigest, canonical); got != event.Digest {
			return fmt.Errorf("chain digest mismatch at seq %d", event.Seq)
		}
		prevDigest = event.Digest
		expectedSeq++
	}
	return nil
}

// splitChainPayload strips the stored previous_event_hash field and returns
// the canonical payload bytes used for digest computation plus the recorded
// previous digest.
func splitChainPayload(payload []byte) ([]byte, string, error) {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, "", err
	}
	recorded := ""
	if raw, ok := fields[domain.PrevDigestKey]; ok {
		value, ok := raw.(string)
		if !ok {
			return nil, "", errors.New("previous_event_hash must be a string")
		}
		recorded = value
		delete(fields, domain.PrevDigestKey)
	}
	canonical, err := cryptoinfra.CanonicalizeAny(fields)
	if err != nil {
		return nil, "", err
	}
	return canonical, recorded, nil
}
