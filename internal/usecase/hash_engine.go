package usecase

import (
	"context"
	"errors"
	"time"

	"custodia/internal/domain"
	cryptoinfra "custodia/internal/infra/crypto"

	"github.com/google/uuid"
)

// HashEngine computes and stores the authoritative fingerprint of one
// document version. It participates in the caller's unit of work: every
// write goes through the supplied RepositorySet.
type HashEngine struct {
	Clock Clock
}

type ComputeFingerprintRequest struct {
	DocumentID string
	Bytes      []byte
	Version    int
	ActorID    string
}

func (e *HashEngine) ComputeAndStore(ctx context.Context, tx RepositorySet, req ComputeFingerprintRequest) (*domain.Fingerprint, error) {
	if len(req.Bytes) == 0 {
		return nil, domain.ErrInvalidInput
	}

	doc, err := tx.Documents().GetByID(ctx, req.DocumentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	version := req.Version
	if version <= 0 {
		version = doc.CurrentVersion
	}

	// The current pointer only moves forward; superseded fingerprints stay
	// behind as history.
	previous, err := tx.Fingerprints().GetCurrent(ctx, doc.ID, version)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if previous != nil {
		if err := tx.Fingerprints().ClearCurrent(ctx, doc.ID, version); err != nil {
			return nil, err
		}
	}

	fp := domain.Fingerprint{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Version:    version,
		Algorithm:  domain.FingerprintAlgorithm,
		DigestHex:  cryptoinfra.SHA256Hex(req.Bytes),
		Current:    true,
		CreatedBy:  req.ActorID,
		CreatedAt:  e.now(),
	}
	if err := tx.Fingerprints().Create(ctx, fp); err != nil {
		return nil, err
	}

	_, err = tx.Chain().Append(ctx, doc.ID, domain.ChainEventHashCreated, map[string]any{
		"digest":    fp.DigestHex,
		"algorithm": fp.Algorithm,
		"version":   version,
		"actor_id":  req.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return &fp, nil
}

func (e *HashEngine) now() time.Time {
	if e != nil && e.Clock != nil {
		return e.Clock().UTC()
	}
	return time.Now().UTC()
}
