package db

import (
	"context"
	"errors"
	"time"

	"custodia/internal/domain"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) GetByID(ctx context.Context, documentID string) (*domain.Document, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model DocumentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", documentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	doc := documentFromModel(model)
	return &doc, nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc domain.Document) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := DocumentModel{
		ID:             doc.ID,
		Reference:      doc.Reference,
		CurrentVersion: doc.CurrentVersion,
		State:          string(doc.State),
		CreatedAt:      doc.CreatedAt.UTC(),
		UpdatedAt:      doc.UpdatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *DocumentRepository) SetState(ctx context.Context, documentID string, state domain.DocumentState) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&DocumentModel{}).
		Where("id = ?", documentID).
		Updates(map[string]any{
			"state":      string(state),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func documentFromModel(model DocumentModel) domain.Document {
	return domain.Document{
		ID:             model.ID,
		Reference:      model.Reference,
		CurrentVersion: model.CurrentVersion,
		State:          domain.DocumentState(model.State),
		CreatedAt:      model.CreatedAt.UTC(),
		UpdatedAt:      model.UpdatedAt.UTC(),
	}
}
