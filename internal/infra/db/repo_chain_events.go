package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"custodia/internal/domain"
	cryptoinfra "custodia/internal/infra/crypto"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChainEventRepository struct {
	db *gorm.DB
}

func NewChainEventRepository(db *gorm.DB) *ChainEventRepository {
	return &ChainEventRepository{db: db}
}

// Append writes one hash-linked event. The per-document row in
// document_chain_seq is locked FOR UPDATE before the previous digest is
// read, so two concurrent appends for the same document serialize instead
// of forking the chain. Appends for different documents do not contend.
func (r *ChainEventRepository) Append(ctx context.Context, documentID string, eventType domain.ChainEventType, payload map[string]any) (domain.ChainEvent, error) {
	if r.db == nil {
		return domain.ChainEvent{}, errDBUnavailable
	}
	if documentID == "" {
		return domain.ChainEvent{}, errors.New("document_id is required")
	}
	if eventType == "" {
		return domain.ChainEvent{}, errors.New("event_type is required")
	}
	if payload == nil {
		payload = map[string]any{}
	}

	fields := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		if k == domain.PrevDigestKey {
			continue
		}
		fields[k] = v
	}

	var out domain.ChainEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, prevDigest, err := nextChainSeq(ctx, tx, documentID)
		if err != nil {
			return err
		}

		canonical, err := cryptoinfra.CanonicalizeAny(fields)
		if err != nil {
			return err
		}
		digest := cryptoinfra.ChainDigest(prevDigest, canonical)

		fields[domain.PrevDigestKey] = prevDigest
		stored, err := cryptoinfra.CanonicalizeAny(fields)
		if err != nil {
			return err
		}

		model := ChainEventModel{
			ID:          uuid.NewString(),
			DocumentID:  documentID,
			Seq:         seq,
			EventType:   string(eventType),
			PayloadJSON: stored,
			Digest:      digest,
			CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		out = chainEventFromModel(model)
		return nil
	})
	if err != nil {
		return domain.ChainEvent{}, err
	}
	return out, nil
}

func (r *ChainEventRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.ChainEvent, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []ChainEventModel
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC, seq ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ChainEvent, 0, len(models))
	for _, model := range models {
		out = append(out, chainEventFromModel(model))
	}
	return out, nil
}

func chainEventFromModel(model ChainEventModel) domain.ChainEvent {
	return domain.ChainEvent{
		ID:         model.ID,
		DocumentID: model.DocumentID,
		Seq:        model.Seq,
		EventType:  domain.ChainEventType(model.EventType),
		Payload:    model.PayloadJSON,
		Digest:     model.Digest,
		CreatedAt:  model.CreatedAt.UTC(),
	}
}

// nextChainSeq bumps the per-document sequence under a row lock and returns
// the previous event's digest, or the empty string for the genesis event.
func nextChainSeq(ctx context.Context, tx *gorm.DB, documentID string) (int64, string, error) {
	if err := tx.WithContext(ctx).Exec(
		"INSERT INTO document_chain_seq (document_id, seq, updated_at) VALUES (?, 0, NOW()) ON CONFLICT (document_id) DO NOTHING",
		documentID,
	).Error; err != nil {
		return 0, "", err
	}

	var currentSeq int64
	if err := tx.WithContext(ctx).Raw(
		"SELECT seq FROM document_chain_seq WHERE document_id = ? FOR UPDATE",
		documentID,
	).Scan(&currentSeq).Error; err != nil {
		return 0, "", err
	}
	nextSeq := currentSeq + 1
	if err := tx.WithContext(ctx).Exec(
		"UPDATE document_chain_seq SET seq = ?, updated_at = NOW() WHERE document_id = ?",
		nextSeq,
		documentID,
	).Error; err != nil {
		return 0, "", err
	}

	prevDigest := ""
	if currentSeq > 0 {
		var prev ChainEventModel
		if err := tx.WithContext(ctx).
			Where("document_id = ? AND seq = ?", documentID, currentSeq).
			Take(&prev).Error; err != nil {
			return 0, "", err
		}
		if prev.Digest == "" {
			return 0, "", fmt.Errorf("missing digest for document %s seq %d", documentID, currentSeq)
		}
		prevDigest = prev.Digest
	}
	return nextSeq, prevDigest, nil
}
