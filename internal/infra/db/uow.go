package db

import (
	"context"

	"custodia/internal/usecase"

	"gorm.io/gorm"
)

// UnitOfWork runs a group of repository calls inside one gorm transaction.
// The RepositorySet handed to fn is bound to that transaction; any error
// rolls back every write, including chain events and fingerprints.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(tx usecase.RepositorySet) error) error {
	if u.db == nil {
		return errDBUnavailable
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositorySet(tx))
	})
}

type repositorySet struct {
	documents    *DocumentRepository
	fingerprints *FingerprintRepository
	signatures   *SignatureRepository
	seals        *SealRepository
	chain        *ChainEventRepository
}

// NewRepositorySet binds all repositories to one db handle, which may be a
// live transaction.
func NewRepositorySet(db *gorm.DB) usecase.RepositorySet {
	return &repositorySet{
		documents:    NewDocumentRepository(db),
		fingerprints: NewFingerprintRepository(db),
		signatures:   NewSignatureRepository(db),
		seals:        NewSealRepository(db),
		chain:        NewChainEventRepository(db),
	}
}

func (s *repositorySet) Documents() usecase.DocumentRepository       { return s.documents }
func (s *repositorySet) Fingerprints() usecase.FingerprintRepository { return s.fingerprints }
func (s *repositorySet) Signatures() usecase.SignatureRepository     { return s.signatures }
func (s *repositorySet) Seals() usecase.SealRepository               { return s.seals }
func (s *repositorySet) Chain() usecase.ChainRepository              { return s.chain }
