package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"custodia/internal/domain"

	"github.com/google/uuid"
)

const defaultSealCodePrefix = "SPI"

// SealIssuer issues one institutional seal per signed fingerprint and mints
// the public verification token. It does not check that a signature exists;
// the orchestrator sequences seal issuance strictly after signing.
type SealIssuer struct {
	CodePrefix string
	Policy     SealPolicy
	Clock      Clock
}

func (s *SealIssuer) ApplySeal(ctx context.Context, tx RepositorySet, fp domain.Fingerprint, authorizedRole string) (*domain.Seal, error) {
	if authorizedRole == "" {
		return nil, domain.ErrAuthorizationRoleRequired
	}
	if s.Policy != nil {
		allowed, err := s.Policy.Allow(ctx, authorizedRole)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, domain.ErrSealRoleNotAllowed
		}
	}

	if _, err := tx.Seals().GetActiveByFingerprint(ctx, fp.ID); err == nil {
		return nil, domain.ErrDuplicateSeal
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	seal := domain.Seal{
		ID:                uuid.NewString(),
		FingerprintID:     fp.ID,
		Code:              s.sealCode(),
		AuthorizedRole:    authorizedRole,
		VerificationToken: uuid.NewString(),
		Active:            true,
		CreatedAt:         s.now(),
	}
	if err := tx.Seals().Create(ctx, seal); err != nil {
		return nil, err
	}

	_, err := tx.Chain().Append(ctx, fp.DocumentID, domain.ChainEventSealApplied, map[string]any{
		"seal_code":       seal.Code,
		"fingerprint_id":  fp.ID,
		"authorized_role": authorizedRole,
	})
	if err != nil {
		return nil, err
	}
	return &seal, nil
}

// sealCode builds the display label, e.g. SPI-2025-ADV-1234. The random
// sequence is not checked for collisions; the verification token is the
// unique identifier.
func (s *SealIssuer) sealCode() string {
	prefix := s.CodePrefix
	if prefix == "" {
		prefix = defaultSealCodePrefix
	}
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	seq := int64(0)
	if err == nil {
		seq = n.Int64()
	}
	return fmt.Sprintf("%s-%d-ADV-%04d", prefix, s.now().Year(), seq)
}

func (s *SealIssuer) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}
