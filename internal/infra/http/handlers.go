package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"custodia/internal/domain"
	"custodia/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type adminCreateDocumentRequest struct {
	Reference string `json:"reference"`
	Version   int    `json:"version,omitempty"`
}

type signRequest struct {
	BytesBase64     string `json:"bytes_base64"`
	Version         int    `json:"version,omitempty"`
	ConsentAccepted bool   `json:"consent_accepted"`
	ConsentText     string `json:"consent_text"`
	Role            string `json:"role,omitempty"`
	SealRole        string `json:"seal_role,omitempty"`
	SessionID       string `json:"session_id,omitempty"`
}

type fingerprintResponse struct {
	ID        string `json:"id"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	Version   int    `json:"version"`
}

type signatureResponse struct {
	ID            string `json:"id"`
	SignerRole    string `json:"signer_role"`
	SignedAt      string `json:"signed_at"`
	SignatureHash string `json:"signature_hash"`
}

type sealResponse struct {
	Code              string `json:"code"`
	AuthorizedRole    string `json:"authorized_role"`
	VerificationToken string `json:"verification_token"`
	VerificationURL   string `json:"verification_url"`
	QRPNGBase64       string `json:"qr_png_base64,omitempty"`
}

type signResponse struct {
	DocumentID  string              `json:"document_id"`
	State       string              `json:"state"`
	Fingerprint fingerprintResponse `json:"fingerprint"`
	Signature   signatureResponse   `json:"signature"`
	Seal        sealResponse        `json:"seal"`
}

type verifyBody struct {
	BytesBase64 string `json:"bytes_base64,omitempty"`
}

type chainDigestResponse struct {
	Seq       int64  `json:"seq"`
	EventType string `json:"event_type"`
	Digest    string `json:"digest"`
}

type verifyResponse struct {
	SealCode       string                `json:"seal_code"`
	Signer         string                `json:"signer"`
	SignerRole     string                `json:"signer_role"`
	SignedAt       string                `json:"signed_at"`
	AuthorizedRole string                `json:"authorized_role"`
	Algorithm      string                `json:"algorithm"`
	Digest         string                `json:"digest"`
	ContentMatches *bool                 `json:"content_matches,omitempty"`
	Chain          []chainDigestResponse `json:"chain"`
}

type chainEventResponse struct {
	Seq       int64           `json:"seq"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Digest    string          `json:"digest"`
	CreatedAt string          `json:"created_at"`
}

type chainResponse struct {
	DocumentID string               `json:"document_id"`
	Verified   bool                 `json:"verified"`
	Events     []chainEventResponse `json:"events"`
}

func (s *Server) handleAdminCreateDocument(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.docs == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var req adminCreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if strings.TrimSpace(req.Reference) == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "reference is required")
		return
	}
	version := req.Version
	if version <= 0 {
		version = 1
	}
	now := time.Now().UTC()
	doc := domain.Document{
		ID:             uuid.NewString(),
		Reference:      req.Reference,
		CurrentVersion: version,
		State:          domain.DocumentStateDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.docs.Create(c.Request.Context(), doc); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"document_id": doc.ID,
		"reference":   doc.Reference,
		"version":     doc.CurrentVersion,
		"state":       string(doc.State),
	})
}

func (s *Server) handleSignDocument(c *gin.Context) {
	signer, ok := s.requireIdentity(c)
	if !ok {
		return
	}
	if s.signUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var req signRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if !req.ConsentAccepted {
		writeError(c, domain.ErrConsentRequired)
		return
	}
	if req.BytesBase64 == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "bytes_base64 is required")
		return
	}
	docBytes, err := base64.StdEncoding.DecodeString(req.BytesBase64)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid document encoding")
		return
	}

	role := req.Role
	if role == "" {
		role = signer.Role
	}
	sessionID := strings.TrimSpace(c.GetHeader("X-Session-Id"))
	if sessionID == "" {
		sessionID = req.SessionID
	}

	resp, err := s.signUC.Execute(c.Request.Context(), usecase.SignDocumentRequest{
		DocumentID:  c.Param("document_id"),
		Bytes:       docBytes,
		Version:     req.Version,
		Signer:      signer,
		ConsentText: req.ConsentText,
		RoleAtSign:  role,
		SealRole:    req.SealRole,
		Meta: domain.RequestMeta{
			NetworkAddress: c.ClientIP(),
			UserAgent:      c.Request.UserAgent(),
			SessionID:      sessionID,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}

	verificationURL := s.verificationURL(resp.Seal.VerificationToken)
	out := signResponse{
		DocumentID: resp.Fingerprint.DocumentID,
		State:      string(domain.DocumentStateLocked),
		Fingerprint: fingerprintResponse{
			ID:        resp.Fingerprint.ID,
			Algorithm: resp.Fingerprint.Algorithm,
			Digest:    resp.Fingerprint.DigestHex,
			Version:   resp.Fingerprint.Version,
		},
		Signature: signatureResponse{
			ID:            resp.Signature.ID,
			SignerRole:    resp.Signature.RoleAtSign,
			SignedAt:      resp.Signature.SignedAt.UTC().Format(time.RFC3339),
			SignatureHash: resp.Signature.SignatureHash,
		},
		Seal: sealResponse{
			Code:              resp.Seal.Code,
			AuthorizedRole:    resp.Seal.AuthorizedRole,
			VerificationToken: resp.Seal.VerificationToken,
			VerificationURL:   verificationURL,
			QRPNGBase64:       encodeQR(verificationURL),
		},
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleVerify(c *gin.Context) {
	if s.verifyUC == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	token := c.Param("token")

	var documentBytes []byte
	if c.Request.Method == http.MethodPost {
		var body verifyBody
		if err := c.ShouldBindJSON(&body); err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
			return
		}
		if body.BytesBase64 != "" {
			decoded, err := base64.StdEncoding.DecodeString(body.BytesBase64)
			if err != nil {
				writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "invalid document encoding")
				return
			}
			documentBytes = decoded
		}
	}

	result, err := s.verifyUC.Execute(c.Request.Context(), token, documentBytes)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			log.Printf("verify: unknown or inactive token from %s", c.ClientIP())
			writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "verification token not found")
			return
		}
		writeError(c, err)
		return
	}

	out := verifyResponse{
		SealCode:       result.SealCode,
		Signer:         result.SignerIdentity,
		SignerRole:     result.SignerRole,
		SignedAt:       result.SignedAt.UTC().Format(time.RFC3339),
		AuthorizedRole: result.AuthorizedRole,
		Algorithm:      result.Algorithm,
		Digest:         result.DigestHex,
		ContentMatches: result.ContentMatches,
		Chain:          make([]chainDigestResponse, 0, len(result.Chain)),
	}
	for _, link := range result.Chain {
		out.Chain = append(out.Chain, chainDigestResponse{
			Seq:       link.Seq,
			EventType: string(link.EventType),
			Digest:    link.Digest,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleDocumentChain(c *gin.Context) {
	if _, ok := s.requireIdentity(c); !ok {
		return
	}
	if s.chain == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	documentID := c.Param("document_id")
	events, err := s.chain.ListByDocument(c.Request.Context(), documentID)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(events) == 0 {
		writeError(c, domain.ErrDocumentNotFound)
		return
	}
	verified := usecase.VerifyDocumentChain(c.Request.Context(), s.chain, documentID) == nil

	out := chainResponse{
		DocumentID: documentID,
		Verified:   verified,
		Events:     make([]chainEventResponse, 0, len(events)),
	}
	for _, event := range events {
		out.Events = append(out.Events, chainEventResponse{
			Seq:       event.Seq,
			EventType: string(event.EventType),
			Payload:   json.RawMessage(event.Payload),
			Digest:    event.Digest,
			CreatedAt: event.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) verificationURL(token string) string {
	base := strings.TrimRight(s.cfg.VerifyBaseURL, "/")
	if base == "" {
		base = "/v1/verify"
	}
	return base + "/" + token
}

// encodeQR renders the verification URL as a PNG. QR generation is best
// effort; the URL itself is always returned.
func encodeQR(url string) string {
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		log.Printf("qr encode failed: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(png)
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, domain.ErrConsentRequired):
		status, code = http.StatusBadRequest, "CONSENT_REQUIRED"
	case errors.Is(err, domain.ErrTraceabilityRequired):
		status, code = http.StatusBadRequest, "TRACEABILITY_REQUIRED"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrAuthorizationRoleRequired):
		status, code = http.StatusBadRequest, "AUTHORIZATION_ROLE_REQUIRED"
	case errors.Is(err, domain.ErrDocumentNotFound):
		status, code = http.StatusNotFound, "DOCUMENT_NOT_FOUND"
	case errors.Is(err, domain.ErrDocumentLocked):
		status, code = http.StatusConflict, "DOCUMENT_LOCKED"
	case errors.Is(err, domain.ErrDuplicateSignature):
		status, code = http.StatusConflict, "DUPLICATE_SIGNATURE"
	case errors.Is(err, domain.ErrDuplicateSeal):
		status, code = http.StatusConflict, "DUPLICATE_SEAL"
	case errors.Is(err, domain.ErrSealRoleNotAllowed):
		status, code = http.StatusForbidden, "SEAL_ROLE_NOT_ALLOWED"
	case errors.Is(err, domain.ErrTokenNotFound), errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
