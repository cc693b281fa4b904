package credential

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Claims are the registered JWT claims the client cares about.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Inspect decodes the access token as a JWT without verifying its
// signature. The server owns validation; the client only reads the
// subject and expiry for display and pre-flight checks.
func Inspect(tok *oauth2.Token) (Claims, error) {
	if tok == nil || tok.AccessToken == "" {
		return Claims{}, ErrNotSignedIn
	}
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, &rc); err != nil {
		return Claims{}, fmt.Errorf("access token is not a JWT: %w", err)
	}
	var c Claims
	c.Subject = rc.Subject
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	return c, nil
}

// WithExpiry copies the JWT exp claim into tok.Expiry when the token
// response carried no expires_in. Opaque tokens are returned unchanged.
func WithExpiry(tok *oauth2.Token) *oauth2.Token {
	if tok == nil || !tok.Expiry.IsZero() {
		return tok
	}
	c, err := Inspect(tok)
	if err != nil || c.ExpiresAt.IsZero() {
		return tok
	}
	out := *tok
	out.Expiry = c.ExpiresAt
	return &out
}
