package db

import (
	"context"
	"errors"

	"custodia/internal/domain"

	"gorm.io/gorm"
)

type SignatureRepository struct {
	db *gorm.DB
}

func NewSignatureRepository(db *gorm.DB) *SignatureRepository {
	return &SignatureRepository{db: db}
}

func (r *SignatureRepository) GetByFingerprint(ctx context.Context, fingerprintID string) (*domain.Signature, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model SignatureModel
	err := r.db.WithContext(ctx).
		Where("fingerprint_id = ?", fingerprintID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	sig := signatureFromModel(model)
	return &sig, nil
}

func (r *SignatureRepository) Create(ctx context.Context, sig domain.Signature) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := SignatureModel{
		ID:             sig.ID,
		DocumentID:     sig.DocumentID,
		FingerprintID:  sig.FingerprintID,
		SignerID:       sig.SignerID,
		SignerEmail:    sig.SignerEmail,
		RoleAtSign:     sig.RoleAtSign,
		ConsentText:    sig.ConsentText,
		NetworkAddress: sig.NetworkAddress,
		UserAgent:      sig.UserAgent,
		SessionID:      sig.SessionID,
		SignatureHash:  sig.SignatureHash,
		SignedAt:       sig.SignedAt.UTC(),
	}
	err := r.db.WithContext(ctx).Create(&model).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateSignature
	}
	return err
}

func signatureFromModel(model SignatureModel) domain.Signature {
	return domain.Signature{
		ID:             model.ID,
		DocumentID:     model.DocumentID,
		FingerprintID:  model.FingerprintID,
		SignerID:       model.SignerID,
		SignerEmail:    model.SignerEmail,
		RoleAtSign:     model.RoleAtSign,
		ConsentText:    model.ConsentText,
		NetworkAddress: model.NetworkAddress,
		UserAgent:      model.UserAgent,
		SessionID:      model.SessionID,
		SignatureHash:  model.SignatureHash,
		SignedAt:       model.SignedAt.UTC(),
	}
}
