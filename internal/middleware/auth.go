package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/followups/pkg/auth"
	"github.com/jwalitptl/followups/pkg/httputil"
)

const (
	ContextIdentity = "identity"
	CookieAccess    = "access_token"
)

// TokenVerifier turns a bearer credential into a staff identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	loginURL string
}

func NewAuthMiddleware(verifier TokenVerifier, loginURL string) *AuthMiddleware {
	if loginURL == "" {
		loginURL = "/login/"
	}
	return &AuthMiddleware{verifier: verifier, loginURL: loginURL}
}

// Authenticate verifies the staff token from the Authorization header or the
// access_token cookie. JSON clients get 401; browsers are sent to sign in.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := credential(c)
		if raw == "" {
			m.reject(c, "missing credentials")
			return
		}

		identity, err := m.verifier.Verify(raw)
		if err != nil {
			log.Ctx(c.Request.Context()).Debug().Err(err).Msg("rejected staff token")
			m.reject(c, "invalid token")
			return
		}

		c.Set(ContextIdentity, identity)
		c.Next()
	}
}

func credential(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(CookieAccess); err == nil {
		return cookie
	}
	return ""
}

func (m *AuthMiddleware) reject(c *gin.Context, reason string) {
	if wantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse(reason))
		return
	}

	target := m.loginURL + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

func wantsJSON(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") ||
		c.GetHeader("Authorization") != ""
}

// IdentityFrom returns the identity set by Authenticate, or the zero
// identity when the request was not authenticated.
func IdentityFrom(c *gin.Context) auth.Identity {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return auth.Identity{}
	}
	id, _ := v.(auth.Identity)
	return id
}
