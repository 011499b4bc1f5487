package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultIssuer   = "aexsite-revalidate"
	DefaultTokenTTL = 24 * time.Hour

	revalidateSubject = "revalidate"
)

var (
	ErrSecretNotConfigured = errors.New("revalidate authorizer: secret not configured")
	ErrMissingCredential   = errors.New("revalidate authorizer: credential required")
	ErrInvalidCredential   = errors.New("revalidate authorizer: invalid credential")
	ErrExpiredToken        = errors.New("revalidate authorizer: token expired")
)

// IssueToken mints an HS256 token a webhook can present instead of the raw secret.
// A non-positive ttl uses DefaultTokenTTL.
func (a *RevalidateAuthorizer) IssueToken(ttl time.Duration) (string, time.Time, error) {
	if len(a.secret) == 0 {
		return "", time.Time{}, ErrSecretNotConfigured
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := a.clock().UTC()
	expiresAt := now.Add(ttl)
	registered := jwt.RegisteredClaims{
		Subject:   revalidateSubject,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, registered)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken checks signature, issuer and expiry of a revalidation token.
func (a *RevalidateAuthorizer) ValidateToken(tokenString string) error {
	if len(a.secret) == 0 {
		return ErrSecretNotConfigured
	}
	token := strings.TrimSpace(tokenString)
	if token == "" {
		return ErrMissingCredential
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("%w: unexpected signing algorithm %s", ErrInvalidCredential, t.Method.Alg())
			}
			return a.secret, nil
		},
		jwt.WithIssuer(a.issuer),
		jwt.WithSubject(revalidateSubject),
		jwt.WithTimeFunc(a.clock),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if parsed == nil || !parsed.Valid {
		return ErrInvalidCredential
	}
	return nil
}
