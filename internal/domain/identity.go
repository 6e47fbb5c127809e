package domain

// Identity is the authenticated caller as supplied by the upstream gateway.
type Identity struct {
	ID    string
	Email string
	Role  string
}

// RequestMeta is the request metadata recorded alongside a signature for
// traceability.
type RequestMeta struct {
	NetworkAddress string
	UserAgent      string
	SessionID      string
}
