package usecase

import (
	"context"

	"custodia/internal/domain"
)

// SignDocument is the one atomic signing operation: fingerprint, signature,
// lock, and seal all land inside a single unit of work, or none of them do.
type SignDocument struct {
	UoW    UnitOfWork
	Hash   *HashEngine
	Ledger *SignatureLedger
	Seals  *SealIssuer
}

type SignDocumentRequest struct {
	DocumentID  string
	Bytes       []byte
	Version     int
	Signer      domain.Identity
	ConsentText string
	RoleAtSign  string
	SealRole    string
	Meta        domain.RequestMeta
}

type SignDocumentResponse struct {
	Fingerprint domain.Fingerprint
	Signature   domain.Signature
	Seal        domain.Seal
}

func (uc *SignDocument) Execute(ctx context.Context, req SignDocumentRequest) (*SignDocumentResponse, error) {
	if req.Signer.ID == "" {
		return nil, domain.ErrUnauthenticated
	}

	var out SignDocumentResponse
	err := uc.UoW.WithinTx(ctx, func(tx RepositorySet) error {
		fp, err := uc.Hash.ComputeAndStore(ctx, tx, ComputeFingerprintRequest{
			DocumentID: req.DocumentID,
			Bytes:      req.Bytes,
			Version:    req.Version,
			ActorID:    req.Signer.ID,
		})
		if err != nil {
			return err
		}

		sig, err := uc.Ledger.Sign(ctx, tx, SignRequest{
			Fingerprint: *fp,
			Signer:      req.Signer,
			ConsentText: req.ConsentText,
			RoleAtSign:  req.RoleAtSign,
			Meta:        req.Meta,
		})
		if err != nil {
			return err
		}

		sealRole := req.SealRole
		if sealRole == "" {
			sealRole = sig.RoleAtSign
		}
		seal, err := uc.Seals.ApplySeal(ctx, tx, *fp, sealRole)
		if err != nil {
			return err
		}

		out = SignDocumentResponse{Fingerprint: *fp, Signature: *sig, Seal: *seal}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
