// Package auth guards the cache invalidation endpoint.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

const (
	SecretHeader      = "X-Revalidate-Secret"
	SecretQueryParam  = "secret"
	bearerAuthPrefix  = "bearer "
	authorizationName = "Authorization"
)

// RevalidateAuthorizerConfig describes the shared secret and token settings.
type RevalidateAuthorizerConfig struct {
	Secret string
	Issuer string
	Clock  func() time.Time
}

// RevalidateAuthorizer accepts either the shared secret or a token signed with it.
type RevalidateAuthorizer struct {
	secret []byte
	issuer string
	clock  func() time.Time
}

// NewRevalidateAuthorizer builds an authorizer. A blank secret is allowed here and
// reported by Authorize as ErrSecretNotConfigured.
func NewRevalidateAuthorizer(cfg RevalidateAuthorizerConfig) *RevalidateAuthorizer {
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = DefaultIssuer
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &RevalidateAuthorizer{
		secret: []byte(strings.TrimSpace(cfg.Secret)),
		issuer: issuer,
		clock:  clock,
	}
}

// Configured reports whether a secret is set.
func (a *RevalidateAuthorizer) Configured() bool {
	return len(a.secret) > 0
}

// Authorize checks the request credentials. The secret header takes precedence over
// the query parameter; a bearer token is tried when neither is present.
func (a *RevalidateAuthorizer) Authorize(r *http.Request) error {
	if !a.Configured() {
		return ErrSecretNotConfigured
	}
	if r == nil {
		return ErrMissingCredential
	}

	presented := r.Header.Get(SecretHeader)
	if presented == "" {
		presented = r.URL.Query().Get(SecretQueryParam)
	}
	if presented != "" {
		if subtle.ConstantTimeCompare([]byte(presented), a.secret) != 1 {
			return ErrInvalidCredential
		}
		return nil
	}

	header := r.Header.Get(authorizationName)
	if len(header) > len(bearerAuthPrefix) && strings.EqualFold(header[:len(bearerAuthPrefix)], bearerAuthPrefix) {
		return a.ValidateToken(header[len(bearerAuthPrefix):])
	}
	return ErrMissingCredential
}
