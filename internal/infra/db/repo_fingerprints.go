package db

import (
	"context"
	"errors"

	"custodia/internal/domain"

	"gorm.io/gorm"
)

type FingerprintRepository struct {
	db *gorm.DB
}

func NewFingerprintRepository(db *gorm.DB) *FingerprintRepository {
	return &FingerprintRepository{db: db}
}

func (r *FingerprintRepository) GetByID(ctx context.Context, fingerprintID string) (*domain.Fingerprint, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model FingerprintModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", fingerprintID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	fp := fingerprintFromModel(model)
	return &fp, nil
}

func (r *FingerprintRepository) GetCurrent(ctx context.Context, documentID string, version int) (*domain.Fingerprint, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model FingerprintModel
	err := r.db.WithContext(ctx).
		Where("document_id = ? AND version = ? AND current", documentID, version).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	fp := fingerprintFromModel(model)
	return &fp, nil
}

func (r *FingerprintRepository) ClearCurrent(ctx context.Context, documentID string, version int) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Model(&FingerprintModel{}).
		Where("document_id = ? AND version = ? AND current", documentID, version).
		Update("current", false).Error
}

func (r *FingerprintRepository) Create(ctx context.Context, fp domain.Fingerprint) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := FingerprintModel{
		ID:         fp.ID,
		DocumentID: fp.DocumentID,
		Version:    fp.Version,
		Algorithm:  fp.Algorithm,
		DigestHex:  fp.DigestHex,
		Current:    fp.Current,
		CreatedBy:  fp.CreatedBy,
		CreatedAt:  fp.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func fingerprintFromModel(model FingerprintModel) domain.Fingerprint {
	return domain.Fingerprint{
		ID:         model.ID,
		DocumentID: model.DocumentID,
		Version:    model.Version,
		Algorithm:  model.Algorithm,
		DigestHex:  model.DigestHex,
		Current:    model.Current,
		CreatedBy:  model.CreatedBy,
		CreatedAt:  model.CreatedAt.UTC(),
	}
}
