// Package token inspects access-token claims on the client side. Tokens are
// parsed without signature verification: the server is the only party that
// validates them, this package exists for display and logging only and must
// never feed an authorization decision.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims are the JWT claims the backend embeds in access tokens.
type Claims struct {
	Subject   string
	Email     string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type wireClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Inspect decodes a raw access token without verifying its signature.
func Inspect(raw string) (*Claims, error) {
	var wire wireClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &wire); err != nil {
		return nil, errors.Wrap(err, "[token.Inspect] parse")
	}
	claims := &Claims{
		Subject: wire.Subject,
		Email:   wire.Email,
		Roles:   wire.Roles,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	if wire.ExpiresAt != nil {
		claims.ExpiresAt = wire.ExpiresAt.Time
	}
	return claims, nil
}

// Expired reports whether the token's exp claim is in the past. A token
// without an exp claim never reads as expired here; the server still has the
// final say either way.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return now.After(c.ExpiresAt)
}
