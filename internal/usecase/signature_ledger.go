package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"custodia/internal/domain"
	cryptoinfra "custodia/internal/infra/crypto"

	"github.com/google/uuid"
)

// SignatureLedger records one irrevocable advanced signature per document
// version and locks the document against further mutation. Like HashEngine
// it participates in the caller's unit of work.
type SignatureLedger struct {
	Clock Clock
}

type SignRequest struct {
	Fingerprint domain.Fingerprint
	Signer      domain.Identity
	ConsentText string
	RoleAtSign  string
	Meta        domain.RequestMeta
}

func (l *SignatureLedger) Sign(ctx context.Context, tx RepositorySet, req SignRequest) (*domain.Signature, error) {
	if req.Signer.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	consent := strings.TrimSpace(req.ConsentText)
	if consent == "" {
		return nil, domain.ErrConsentRequired
	}
	if req.Meta.SessionID == "" {
		return nil, domain.ErrTraceabilityRequired
	}

	doc, err := tx.Documents().GetByID(ctx, req.Fingerprint.DocumentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.Locked() {
		return nil, domain.ErrDocumentLocked
	}

	if _, err := tx.Signatures().GetByFingerprint(ctx, req.Fingerprint.ID); err == nil {
		return nil, domain.ErrDuplicateSignature
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	signedAt := l.now()
	role := req.RoleAtSign
	if role == "" {
		role = req.Signer.Role
	}
	sig := domain.Signature{
		ID:             uuid.NewString(),
		DocumentID:     doc.ID,
		FingerprintID:  req.Fingerprint.ID,
		SignerID:       req.Signer.ID,
		SignerEmail:    req.Signer.Email,
		RoleAtSign:     role,
		ConsentText:    consent,
		NetworkAddress: req.Meta.NetworkAddress,
		UserAgent:      req.Meta.UserAgent,
		SessionID:      req.Meta.SessionID,
		SignatureHash:  signatureHash(req.Fingerprint.DigestHex, req.Signer.ID, signedAt, req.Meta.SessionID),
		SignedAt:       signedAt,
	}
	if err := tx.Signatures().Create(ctx, sig); err != nil {
		return nil, err
	}

	_, err = tx.Chain().Append(ctx, doc.ID, domain.ChainEventDocumentSigned, map[string]any{
		"signer_id":      sig.SignerID,
		"role":           sig.RoleAtSign,
		"consent":        sig.ConsentText,
		"fingerprint_id": sig.FingerprintID,
		"signed_at":      signedAt.Format(time.RFC3339),
		"signature_hash": sig.SignatureHash,
	})
	if err != nil {
		return nil, err
	}

	// Locking is recorded as its own event so a verifier can distinguish
	// "signature recorded" from "document became immutable".
	if err := tx.Documents().SetState(ctx, doc.ID, domain.DocumentStateLocked); err != nil {
		return nil, err
	}
	_, err = tx.Chain().Append(ctx, doc.ID, domain.ChainEventDocumentLocked, map[string]any{
		"reason":    "advanced_signature",
		"signer_id": sig.SignerID,
	})
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

// signatureHash is a compact proof binding identity, time, and content:
// SHA256(fingerprintDigest + signerID + RFC3339 timestamp + sessionID).
func signatureHash(digestHex, signerID string, signedAt time.Time, sessionID string) string {
	return cryptoinfra.SHA256Hex([]byte(digestHex + signerID + signedAt.Format(time.RFC3339) + sessionID))
}

func (l *SignatureLedger) now() time.Time {
	if l != nil && l.Clock != nil {
		return l.Clock().UTC()
	}
	return time.Now().UTC()
}
