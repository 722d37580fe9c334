// Package auth provides password hashing, session tokens and the session middleware.
//
// SESSION FLOW:
//  1. POST /login verifies the password and calls TokenService.Generate(username)
//  2. The signed token goes into the HttpOnly "session" cookie
//  3. Later requests pass through Session(), which validates the cookie and
//     puts the username into the request context
//  4. POST /logout expires the cookie
//
// The token is a capability: whoever holds it is that user until it expires.
// There is no server-side session table, so the lifetime (SessionTTL in the
// config) is the only revocation mechanism.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "showtracker"

// DefaultTTL is used when the config leaves the session lifetime unset.
const DefaultTTL = 24 * time.Hour

// ErrTokenExpired is returned by Validate for a well-formed token past its expiry.
var ErrTokenExpired = errors.New("auth: token expired")

// TokenService issues and validates HS256-signed session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters; a zero or negative ttl falls back to DefaultTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime given to new tokens. Handlers use it as the cookie Max-Age.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate creates a signed token whose subject is username.
//
// Each token gets a unique xid as its "jti" so two logins in the same second
// still produce distinct tokens (and log lines can tell them apart).
func (s *TokenService) Generate(username string) (string, error) {
	now := s.now()

	c := jwt.RegisteredClaims{
		ID:        xid.New().String(),
		Subject:   username,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, issuer, algorithm and expiry and returns the username.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		// Pinning the method blocks "alg":"none" and RS/HS confusion.
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("auth: invalid token")
	}
	if c.Subject == "" {
		return "", errors.New("auth: token has no subject")
	}

	return c.Subject, nil
}
