package db

import "time"

type DocumentModel struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	Reference      string    `gorm:"uniqueIndex;not null"`
	CurrentVersion int       `gorm:"not null;default:1"`
	State          string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (DocumentModel) TableName() string {
	return "documents"
}

type FingerprintModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	DocumentID string    `gorm:"type:uuid;index:idx_fingerprints_doc_version;not null"`
	Version    int       `gorm:"index:idx_fingerprints_doc_version;not null"`
	Algorithm  string    `gorm:"not null"`
	DigestHex  string    `gorm:"index;not null"`
	Current    bool      `gorm:"not null"`
	CreatedBy  string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (FingerprintModel) TableName() string {
	return "document_fingerprints"
}

type SignatureModel struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	DocumentID     string    `gorm:"type:uuid;uniqueIndex:ux_signatures_doc_fp;not null"`
	FingerprintID  string    `gorm:"type:uuid;uniqueIndex:ux_signatures_doc_fp;not null"`
	SignerID       string    `gorm:"not null"`
	SignerEmail    string    `gorm:"not null"`
	RoleAtSign     string    `gorm:"not null"`
	ConsentText    string    `gorm:"type:text;not null"`
	NetworkAddress string    `gorm:"not null"`
	UserAgent      string    `gorm:"type:text"`
	SessionID      string    `gorm:"not null"`
	SignatureHash  string    `gorm:"not null"`
	SignedAt       time.Time `gorm:"not null"`
}

func (SignatureModel) TableName() string {
	return "advanced_signatures"
}

type SealModel struct {
	ID                string    `gorm:"type:uuid;primaryKey"`
	FingerprintID     string    `gorm:"type:uuid;index;not null"`
	Code              string    `gorm:"not null"`
	AuthorizedRole    string    `gorm:"not null"`
	VerificationToken string    `gorm:"type:uuid;uniqueIndex;not null"`
	Active            bool      `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null"`
}

func (SealModel) TableName() string {
	return "digital_seals"
}

type ChainEventModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	DocumentID  string    `gorm:"type:uuid;uniqueIndex:ux_chain_events_doc_seq;not null"`
	Seq         int64     `gorm:"uniqueIndex:ux_chain_events_doc_seq;not null"`
	EventType   string    `gorm:"column:event_type;not null"`
	PayloadJSON []byte    `gorm:"type:jsonb;not null"`
	Digest      string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"column:created_at;index;not null"`
}

func (ChainEventModel) TableName() string {
	return "chain_events"
}

type ChainSeqModel struct {
	DocumentID string    `gorm:"type:uuid;primaryKey"`
	Seq        int64     `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (ChainSeqModel) TableName() string {
	return "document_chain_seq"
}
