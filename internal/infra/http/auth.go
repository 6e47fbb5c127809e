package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"custodia/internal/domain"

	"github.com/gin-gonic/gin"
)

// The service sits behind an authenticating gateway that injects the caller
// identity as headers. When GATEWAY_SECRET is set, the gateway must also
// prove itself via X-Gateway-Secret; otherwise the headers are trusted as-is
// (private network deployments).
func (s *Server) requireIdentity(c *gin.Context) (domain.Identity, bool) {
	if s.gatewaySecret != "" {
		secret := strings.TrimSpace(c.GetHeader("X-Gateway-Secret"))
		if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.gatewaySecret)) != 1 {
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "gateway secret required")
			return domain.Identity{}, false
		}
	}
	identity := domain.Identity{
		ID:    strings.TrimSpace(c.GetHeader("X-User-Id")),
		Email: strings.TrimSpace(c.GetHeader("X-User-Email")),
		Role:  strings.TrimSpace(c.GetHeader("X-User-Role")),
	}
	if identity.ID == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "authenticated user required")
		return domain.Identity{}, false
	}
	return identity, true
}

func (s *Server) requireAdmin(c *gin.Context) bool {
	if s.adminAPIKey == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "admin key required")
		return false
	}
	key := c.GetHeader("X-Admin-Key")
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) != 1 {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin key")
		return false
	}
	return true
}
