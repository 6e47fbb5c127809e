package usecase

import (
	"context"
	"fmt"
	"time"

	"custodia/internal/domain"
	cryptoinfra "custodia/internal/infra/crypto"
)

// memStore is an in-memory RepositorySet whose chain append mirrors the
// database implementation: payloads are canonicalized, linked to the
// previous digest, and stored with previous_event_hash embedded.
type memStore struct {
	docs   map[string]domain.Document
	fps    map[string]domain.Fingerprint
	sigs   map[string]domain.Signature
	seals  map[string]domain.Seal
	events map[string][]domain.ChainEvent
}

func newMemStore() *memStore {
	return &memStore{
		docs:   map[string]domain.Document{},
		fps:    map[string]domain.Fingerprint{},
		sigs:   map[string]domain.Signature{},
		seals:  map[string]domain.Seal{},
		events: map[string][]domain.ChainEvent{},
	}
}

func (m *memStore) Documents() DocumentRepository       { return (*memDocs)(m) }
func (m *memStore) Fingerprints() FingerprintRepository { return (*memFingerprints)(m) }
func (m *memStore) Signatures() SignatureRepository     { return (*memSignatures)(m) }
func (m *memStore) Seals() SealRepository               { return (*memSeals)(m) }
func (m *memStore) Chain() ChainRepository              { return (*memChain)(m) }

func (m *memStore) addDocument(id string, state domain.DocumentState) {
	m.docs[id] = domain.Document{
		ID:             id,
		Reference:      "EXP-" + id,
		CurrentVersion: 1,
		State:          state,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}

func (m *memStore) snapshot() *memStore {
	clone := newMemStore()
	for k, v := range m.docs {
		clone.docs[k] = v
	}
	for k, v := range m.fps {
		clone.fps[k] = v
	}
	for k, v := range m.sigs {
		clone.sigs[k] = v
	}
	for k, v := range m.seals {
		clone.seals[k] = v
	}
	for k, v := range m.events {
		clone.events[k] = append([]domain.ChainEvent(nil), v...)
	}
	return clone
}

func (m *memStore) restore(snap *memStore) {
	m.docs = snap.docs
	m.fps = snap.fps
	m.sigs = snap.sigs
	m.seals = snap.seals
	m.events = snap.events
}

// memUoW rolls the store back to its pre-transaction snapshot when fn
// fails, matching the database unit of work.
type memUoW struct {
	store *memStore
}

func (u *memUoW) WithinTx(_ context.Context, fn func(tx RepositorySet) error) error {
	snap := u.store.snapshot()
	if err := fn(u.store); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}

type memDocs memStore

func (m *memDocs) GetByID(_ context.Context, documentID string) (*domain.Document, error) {
	doc, ok := m.docs[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *memDocs) Create(_ context.Context, doc domain.Document) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memDocs) SetState(_ context.Context, documentID string, state domain.DocumentState) error {
	doc, ok := m.docs[documentID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.State = state
	doc.UpdatedAt = time.Now().UTC()
	m.docs[documentID] = doc
	return nil
}

type memFingerprints memStore

func (m *memFingerprints) GetByID(_ context.Context, fingerprintID string) (*domain.Fingerprint, error) {
	fp, ok := m.fps[fingerprintID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &fp, nil
}

func (m *memFingerprints) GetCurrent(_ context.Context, documentID string, version int) (*domain.Fingerprint, error) {
	for _, fp := range m.fps {
		if fp.DocumentID == documentID && fp.Version == version && fp.Current {
			out := fp
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memFingerprints) ClearCurrent(_ context.Context, documentID string, version int) error {
	for id, fp := range m.fps {
		if fp.DocumentID == documentID && fp.Version == version && fp.Current {
			fp.Current = false
			m.fps[id] = fp
		}
	}
	return nil
}

func (m *memFingerprints) Create(_ context.Context, fp domain.Fingerprint) error {
	m.fps[fp.ID] = fp
	return nil
}

type memSignatures memStore

func (m *memSignatures) GetByFingerprint(_ context.Context, fingerprintID string) (*domain.Signature, error) {
	sig, ok := m.sigs[fingerprintID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sig, nil
}

func (m *memSignatures) Create(_ context.Context, sig domain.Signature) error {
	if _, ok := m.sigs[sig.FingerprintID]; ok {
		return domain.ErrDuplicateSignature
	}
	m.sigs[sig.FingerprintID] = sig
	return nil
}

type memSeals memStore

func (m *memSeals) GetActiveByFingerprint(_ context.Context, fingerprintID string) (*domain.Seal, error) {
	for _, seal := range m.seals {
		if seal.FingerprintID == fingerprintID && seal.Active {
			out := seal
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memSeals) GetByToken(_ context.Context, token string) (*domain.Seal, error) {
	for _, seal := range m.seals {
		if seal.VerificationToken == token {
			out := seal
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memSeals) Create(_ context.Context, seal domain.Seal) error {
	m.seals[seal.ID] = seal
	return nil
}

type memChain memStore

func (m *memChain) Append(_ context.Context, documentID string, eventType domain.ChainEventType, payload map[string]any) (domain.ChainEvent, error) {
	fields := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		if k == domain.PrevDigestKey {
			continue
		}
		fields[k] = v
	}

	existing := m.events[documentID]
	prevDigest := ""
	if len(existing) > 0 {
		prevDigest = existing[len(existing)-1].Digest
	}

	canonical, err := cryptoinfra.CanonicalizeAny(fields)
	if err != nil {
		return domain.ChainEvent{}, err
	}
	digest := cryptoinfra.ChainDigest(prevDigest, canonical)

	fields[domain.PrevDigestKey] = prevDigest
	stored, err := cryptoinfra.CanonicalizeAny(fields)
	if err != nil {
		return domain.ChainEvent{}, err
	}

	event := domain.ChainEvent{
		ID:         fmt.Sprintf("event-%s-%d", documentID, len(existing)+1),
		DocumentID: documentID,
		Seq:        int64(len(existing) + 1),
		EventType:  eventType,
		Payload:    stored,
		Digest:     digest,
		CreatedAt:  time.Now().UTC(),
	}
	m.events[documentID] = append(existing, event)
	return event, nil
}

func (m *memChain) ListByDocument(_ context.Context, documentID string) ([]domain.ChainEvent, error) {
	return append([]domain.ChainEvent(nil), m.events[documentID]...), nil
}

type allowAllPolicy struct{}

func (allowAllPolicy) Allow(context.Context, string) (bool, error) { return true, nil }

type denyAllPolicy struct{}

func (denyAllPolicy) Allow(context.Context, string) (bool, error) { return false, nil }

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
