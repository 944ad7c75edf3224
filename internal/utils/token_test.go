package utils

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	tok, err := NewSessionToken("s3cret", 42, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("empty token")
	}
	if remaining := time.Until(tok.Exp); remaining < 6*24*time.Hour {
		t.Fatalf("expected roughly 7 days of validity, got %v", remaining)
	}

	uid, err := ParseSessionToken("s3cret", tok.Token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected user 42, got %d", uid)
	}
}

func TestSessionToken_WrongSecret(t *testing.T) {
	tok, err := NewSessionToken("s3cret", 42, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if _, err := ParseSessionToken("other", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionToken_Tampered(t *testing.T) {
	tok, err := NewSessionToken("s3cret", 42, 7)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	parts := strings.Split(tok.Token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok.Token)
	}
	// Swap the payload for the header; the signature no longer matches.
	forged := parts[0] + "." + parts[0] + "." + parts[2]
	if _, err := ParseSessionToken("s3cret", forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionToken_Expired(t *testing.T) {
	tok, err := NewSessionToken("s3cret", 42, -1)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if _, err := ParseSessionToken("s3cret", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestSessionToken_Garbage(t *testing.T) {
	if _, err := ParseSessionToken("s3cret", "definitely.not.ajwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
