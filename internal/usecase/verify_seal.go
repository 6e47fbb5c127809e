package usecase

import (
	"context"
	"errors"
	"strings"

	"custodia/internal/domain"
	cryptoinfra "custodia/internal/infra/crypto"
)

// VerifySeal answers the public verification question without trusting any
// client input beyond the token and the optional document bytes. It never
// mutates state.
type VerifySeal struct {
	Seals        SealRepository
	Fingerprints FingerprintRepository
	Signatures   SignatureRepository
	Chain        ChainRepository

	// MaskIdentity controls whether the signer email is masked in results.
	// Enabled by default at the HTTP boundary.
	MaskIdentity bool
}

func (uc *VerifySeal) Execute(ctx context.Context, token string, documentBytes []byte) (*domain.VerificationResult, error) {
	if token == "" {
		return nil, domain.ErrTokenNotFound
	}
	seal, err := uc.Seals.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	if !seal.Active {
		return nil, domain.ErrTokenNotFound
	}

	fp, err := uc.Fingerprints.GetByID(ctx, seal.FingerprintID)
	if err != nil {
		return nil, err
	}
	sig, err := uc.Signatures.GetByFingerprint(ctx, fp.ID)
	if err != nil {
		return nil, err
	}

	result := &domain.VerificationResult{
		SealCode:       seal.Code,
		SignerIdentity: uc.signerIdentity(*sig),
		SignerRole:     sig.RoleAtSign,
		SignedAt:       sig.SignedAt,
		AuthorizedRole: seal.AuthorizedRole,
		Algorithm:      fp.Algorithm,
		DigestHex:      fp.DigestHex,
	}

	if documentBytes != nil {
		matches := cryptoinfra.SHA256Hex(documentBytes) == fp.DigestHex
		result.ContentMatches = &matches
	}

	events, err := uc.Chain.ListByDocument(ctx, fp.DocumentID)
	if err != nil {
		return nil, err
	}
	result.Chain = make([]domain.ChainDigest, 0, len(events))
	for _, event := range events {
		result.Chain = append(result.Chain, domain.ChainDigest{
			Seq:       event.Seq,
			EventType: event.EventType,
			Digest:    event.Digest,
		})
	}
	return result, nil
}

func (uc *VerifySeal) signerIdentity(sig domain.Signature) string {
	if !uc.MaskIdentity {
		if sig.SignerEmail != "" {
			return sig.SignerEmail
		}
		return sig.SignerID
	}
	return maskEmail(sig.SignerEmail)
}

// maskEmail keeps the first rune of the local part: "jperez@spi.gob" becomes
// "j***@spi.gob". Falls back to "***" when there is nothing to mask.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	local := []rune(email[:at])
	return string(local[0]) + "***" + email[at:]
}
