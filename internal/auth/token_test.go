package auth

import (
	"errors"
	"testing"
	"time"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	token, err := Mint("secret", "admin@salon", time.Hour)
	if err != nil {
		t.Fatalf("Mint err: %v", err)
	}

	subject, err := Verify("secret", token)
	if err != nil {
		t.Fatalf("Verify err: %v", err)
	}
	if subject != "admin@salon" {
		t.Fatalf("unexpected subject %q", subject)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := Mint("secret", "admin@salon", time.Hour)
	if err != nil {
		t.Fatalf("Mint err: %v", err)
	}

	if _, err := Verify("other-secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	token, err := Mint("secret", "admin@salon", -time.Minute)
	if err != nil {
		t.Fatalf("Mint err: %v", err)
	}

	if _, err := Verify("secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := Verify("secret", "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
