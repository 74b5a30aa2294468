package auth

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewHMACStrategy_DefaultTTL(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.opts.TTL != defaultTTL {
		t.Fatalf("unexpected ttl: %s", strategy.opts.TTL)
	}
}

func TestHMACStrategy_IssueAndParse(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken(42)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if token != url.QueryEscape(token) {
		t.Fatalf("expected url safe token, got %q", token)
	}
	userID, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if userID != 42 {
		t.Fatalf("unexpected user id: %d", userID)
	}
}

func TestHMACStrategy_ParseRejects(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	valid, _ := strategy.IssueToken(7)
	encoded, _, _ := strings.Cut(valid, ".")

	other, _ := NewHMACStrategy("other", Options{}).IssueToken(7)

	cases := map[string]string{
		"empty":          "",
		"no signature":   encoded,
		"bad base64":     "***." + strategy.sign("x"),
		"tampered":       encoded + ".tampered",
		"foreign secret": other,
		"bad user id":    encode("abc.9999999999") + "." + strategy.sign("abc.9999999999"),
		"bad expiry":     encode("10.soon") + "." + strategy.sign("10.soon"),
		"missing expiry": encode("10") + "." + strategy.sign("10"),
	}
	for name, token := range cases {
		if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestHMACStrategy_ParseExpired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := NewHMACStrategy("secret", Options{TTL: time.Hour, Now: fixedClock(issued)})
	token, _ := issuer.IssueToken(10)

	later := NewHMACStrategy("secret", Options{TTL: time.Hour, Now: fixedClock(issued.Add(2 * time.Hour))})
	if _, err := later.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := issuer.ParseToken(token); err != nil {
		t.Fatalf("expected token valid at issue time, got %v", err)
	}
}

func TestHMACStrategy_Name(t *testing.T) {
	if name := NewHMACStrategy("secret", Options{}).Name(); name != "hmac" {
		t.Fatalf("unexpected name: %s", name)
	}
}
