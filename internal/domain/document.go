package domain

import "time"

type DocumentState string

const (
	DocumentStateDraft  DocumentState = "draft"
	DocumentStateSigned DocumentState = "signed"
	DocumentStateLocked DocumentState = "locked"
)

// Document is one logical document whose byte content is versioned by the
// owning workflow. Once the state reaches Locked, no further signature may
// target any version of the document.
type Document struct {
	ID             string
	Reference      string
	CurrentVersion int
	State          DocumentState
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d Document) Locked() bool {
	return d.State == DocumentStateLocked
}
