package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"web-store/internal/domain"
)

const (
	// sessionCookieName is the cookie carrying the session token.
	sessionCookieName = "jwt_token"

	principalKey = "principal"
	requestIDKey = "request_id"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:3000")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// requireAuth extracts the session token from the cookie, verifies it, and
// stores the resulting principal in the request context. It is the single
// authentication chokepoint: every protected route goes through here.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(sessionCookieName)
		if err != nil || tokenString == "" {
			h.unauthorized(c, errTokenCookieMissing)
			return
		}

		principal, err := h.tokens.Verify(tokenString)
		if err != nil {
			h.unauthorized(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// requireAdmin rejects non-admin principals. Must run after requireAuth.
func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFrom(c)
		if !ok {
			h.unauthorized(c, errTokenCookieMissing)
			return
		}
		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := v.(domain.Principal)
	return principal, ok
}

// setSessionCookie attaches the token as an HTTP-only strict-same-site cookie
// whose lifetime matches the token TTL.
func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookieName, token, int(h.tokens.TTL().Seconds()), "/", "", h.cookieSecure, true)
}

// clearSessionCookie expires the cookie. The token itself stays valid until
// its natural expiry; logout is client-side only.
func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", h.cookieSecure, true)
}
