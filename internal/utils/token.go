// Package utils provides helper functions for password hashing and session
// token creation.
package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionToken is a signed JWT identifying an authenticated caller. The
// Token field holds the serialized JWT; Exp is its UTC expiration time. The
// token travels in an HTTP-only cookie and is valid for the configured
// number of days (7 by default).
type SessionToken struct {
	Token string
	Exp   time.Time
}

// ErrInvalidToken is returned when a session token is malformed, expired,
// or signed with the wrong key.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT for a user. Claims: subject
// (sub) holds the user ID, plus exp and iat.
func NewSessionToken(secret string, userID uint64, ttlDays int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken validates a session token and returns the user ID it
// carries. Expired, malformed, or wrongly signed tokens all map to
// ErrInvalidToken; callers treat that as the guest state, not a failure.
func ParseSessionToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	switch sub := claims["sub"].(type) {
	case float64:
		return uint64(sub), nil
	case string:
		if n, err := strconv.ParseUint(sub, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, ErrInvalidToken
}
