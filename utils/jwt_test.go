package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", 0)

	token, err := svc.Issue("u1", "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if got := time.Duration(claims.ExpiresAt-claims.IssuedAt) * time.Second; got != DefaultTokenTTL {
		t.Fatalf("expected ttl %v, got %v", DefaultTokenTTL, got)
	}
}

func TestTokenExpiry(t *testing.T) {
	svc := NewTokenService("secret", 0)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return issued }

	token, err := svc.Issue("u1", "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.Now = func() time.Time { return issued.Add(7*24*time.Hour - time.Second) }
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("expected token valid just before expiry, got %v", err)
	}

	svc.Now = func() time.Time { return issued.Add(7*24*time.Hour + time.Second) }
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after 7 days, got %v", err)
	}
}

func TestTokenRejected(t *testing.T) {
	svc := NewTokenService("secret", 0)
	token, err := svc.Issue("u1", "a@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other, err := NewTokenService("other-secret", 0).Issue("u1", "a@example.com")
	if err != nil {
		t.Fatalf("issue other: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:         "u1",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := map[string]string{
		"empty":        "",
		"malformed":    "not-a-token",
		"tampered":     tampered,
		"wrong secret": other,
		"alg none":     unsigned,
		"no user":      noUser,
	}
	for name, tok := range cases {
		if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
