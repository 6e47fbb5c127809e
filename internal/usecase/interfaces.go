package usecase

import (
	"context"
	"time"

	"custodia/internal/domain"
)

// Clock lets tests pin signing timestamps.
type Clock func() time.Time

// UnitOfWork scopes a group of repository calls to one database
// transaction. Any error returned by fn rolls back every write performed
// through the RepositorySet it received.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx RepositorySet) error) error
}

// RepositorySet is the transactional capability handed to components that
// participate in a caller-owned unit of work.
type RepositorySet interface {
	Documents() DocumentRepository
	Fingerprints() FingerprintRepository
	Signatures() SignatureRepository
	Seals() SealRepository
	Chain() ChainRepository
}

type DocumentRepository interface {
	GetByID(ctx context.Context, documentID string) (*domain.Document, error)
	Create(ctx context.Context, doc domain.Document) error
	SetState(ctx context.Context, documentID string, state domain.DocumentState) error
}

type FingerprintRepository interface {
	GetByID(ctx context.Context, fingerprintID string) (*domain.Fingerprint, error)
	GetCurrent(ctx context.Context, documentID string, version int) (*domain.Fingerprint, error)
	ClearCurrent(ctx context.Context, documentID string, version int) error
	Create(ctx context.Context, fp domain.Fingerprint) error
}

type SignatureRepository interface {
	GetByFingerprint(ctx context.Context, fingerprintID string) (*domain.Signature, error)
	Create(ctx context.Context, sig domain.Signature) error
}

type SealRepository interface {
	GetActiveByFingerprint(ctx context.Context, fingerprintID string) (*domain.Seal, error)
	GetByToken(ctx context.Context, token string) (*domain.Seal, error)
	Create(ctx context.Context, seal domain.Seal) error
}

// ChainRepository appends to and reads the per-document hash-linked log.
// Append must serialize concurrent appends for the same document; the db
// implementation does this with a per-document row lock held until commit.
type ChainRepository interface {
	Append(ctx context.Context, documentID string, eventType domain.ChainEventType, payload map[string]any) (domain.ChainEvent, error)
	ListByDocument(ctx context.Context, documentID string) ([]domain.ChainEvent, error)
}

// SealPolicy decides whether an institutional role may authorize a seal.
type SealPolicy interface {
	Allow(ctx context.Context, role string) (bool, error)
}
