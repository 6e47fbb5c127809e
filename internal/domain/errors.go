package domain

import "errors"

var (
	ErrUnauthenticated           = errors.New("signer identity required")
	ErrConsentRequired           = errors.New("explicit consent required")
	ErrTraceabilityRequired      = errors.New("session id required")
	ErrInvalidInput              = errors.New("invalid document payload")
	ErrDocumentNotFound          = errors.New("document not found")
	ErrDocumentLocked            = errors.New("document locked")
	ErrDuplicateSignature        = errors.New("signature already exists")
	ErrDuplicateSeal             = errors.New("active seal already exists")
	ErrAuthorizationRoleRequired = errors.New("authorizing role required")
	ErrSealRoleNotAllowed        = errors.New("role not allowed to seal")
	ErrTokenNotFound             = errors.New("verification token not found")
	ErrNotFound                  = errors.New("not found")
)
