// Package auth mints and verifies the bearer tokens that guard
// admin-only operations: the notification feed, the legacy reply
// path, and reply suggestions.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers expired, malformed, or mis-signed tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

const adminRole = "admin"

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Mint issues an HS256 admin token for the given subject.
func Mint(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: adminRole,
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns its subject. Any failure,
// including a non-admin role claim, maps to ErrInvalidToken.
func Verify(secret, raw string) (string, error) {
	var parsed claims
	token, err := jwt.ParseWithClaims(raw, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if parsed.Role != adminRole {
		return "", ErrInvalidToken
	}
	return parsed.Subject, nil
}
