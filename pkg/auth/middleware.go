package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"notesapp/pkg/tokenstore"
)

// Reason is the machine readable cause of a rejected request.
type Reason string

const (
	ReasonTokenRequired Reason = "token_required"
	ReasonTokenRevoked  Reason = "token_revoked"
	ReasonTokenExpired  Reason = "token_expired"
	ReasonTokenInvalid  Reason = "token_invalid"
)

var reasonMessages = map[Reason]string{
	ReasonTokenRequired: "Unauthorized: token required",
	ReasonTokenRevoked:  "Unauthorized: token revoked",
	ReasonTokenExpired:  "Unauthorized: token expired",
	ReasonTokenInvalid:  "Unauthorized: invalid token",
}

// Message is the human readable text sent with a rejection.
func (r Reason) Message() string { return reasonMessages[r] }

const (
	identityKey = "auth.identity"
	tokenKey    = "auth.token"
)

// RevocationChecker is the read side of the token store.
type RevocationChecker interface {
	Lookup(token string) tokenstore.Status
}

// MiddlewareOption customises Middleware.
type MiddlewareOption func(*middleware)

// OnReject registers a callback invoked once per rejected request.
func OnReject(f func(Reason)) MiddlewareOption {
	return func(m *middleware) { m.onReject = f }
}

type middleware struct {
	tokens   *Tokens
	revoked  RevocationChecker
	onReject func(Reason)
}

// Middleware rejects requests without a valid, unrevoked, unexpired bearer
// token and attaches the caller's Identity otherwise. It never writes to the
// token store.
func Middleware(tokens *Tokens, revoked RevocationChecker, opts ...MiddlewareOption) gin.HandlerFunc {
	m := &middleware{tokens: tokens, revoked: revoked}
	for _, opt := range opts {
		opt(m)
	}
	return m.handle
}

func (m *middleware) handle(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		m.reject(c, ReasonTokenRequired)
		return
	}
	if m.revoked.Lookup(token) == tokenstore.Revoked {
		m.reject(c, ReasonTokenRevoked)
		return
	}
	claims, err := m.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			m.reject(c, ReasonTokenExpired)
		} else {
			m.reject(c, ReasonTokenInvalid)
		}
		return
	}
	c.Set(identityKey, Identity{UserID: claims.UserID, Email: claims.Email})
	c.Set(tokenKey, token)
	c.Next()
}

func (m *middleware) reject(c *gin.Context, reason Reason) {
	if m.onReject != nil {
		m.onReject(reason)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": reason.Message(), "reason": string(reason)})
}

// bearerToken extracts the credential of a "Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	rest, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token := strings.TrimSpace(rest)
	return token, token != ""
}

// IdentityFrom returns the identity attached by Middleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// TokenFrom returns the raw bearer token accepted by Middleware.
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}
