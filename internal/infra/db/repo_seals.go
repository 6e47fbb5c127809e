package db

import (
	"context"
	"errors"

	"custodia/internal/domain"

	"gorm.io/gorm"
)

type SealRepository struct {
	db *gorm.DB
}

func NewSealRepository(db *gorm.DB) *SealRepository {
	return &SealRepository{db: db}
}

func (r *SealRepository) GetActiveByFingerprint(ctx context.Context, fingerprintID string) (*domain.Seal, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model SealModel
	err := r.db.WithContext(ctx).
		Where("fingerprint_id = ? AND active", fingerprintID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	seal := sealFromModel(model)
	return &seal, nil
}

func (r *SealRepository) GetByToken(ctx context.Context, token string) (*domain.Seal, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model SealModel
	err := r.db.WithContext(ctx).
		Where("verification_token = ?", token).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	seal := sealFromModel(model)
	return &seal, nil
}

func (r *SealRepository) Create(ctx context.Context, seal domain.Seal) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := SealModel{
		ID:                seal.ID,
		FingerprintID:     seal.FingerprintID,
		Code:              seal.Code,
		AuthorizedRole:    seal.AuthorizedRole,
		VerificationToken: seal.VerificationToken,
		Active:            seal.Active,
		CreatedAt:         seal.CreatedAt.UTC(),
	}
	err := r.db.WithContext(ctx).Create(&model).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateSeal
	}
	return err
}

func sealFromModel(model SealModel) domain.Seal {
	return domain.Seal{
		ID:                model.ID,
		FingerprintID:     model.FingerprintID,
		Code:              model.Code,
		AuthorizedRole:    model.AuthorizedRole,
		VerificationToken: model.VerificationToken,
		Active:            model.Active,
		CreatedAt:         model.CreatedAt.UTC(),
	}
}
