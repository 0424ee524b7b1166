package auth

import (
	"testing"
	"time"
)

func TestIssueAndValidateToken(t *testing.T) {
	a := NewAdapter("test-secret")

	token, err := a.IssueToken("user-123", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %s", claims.Subject)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	a := NewAdapter("test-secret")

	token, err := a.IssueToken("user-123", -time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := a.ValidateToken(token); err == nil {
		t.Fatal("expected an error for an expired token")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewAdapter("secret-one")
	verifier := NewAdapter("secret-two")

	token, err := issuer.IssueToken("user-123", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("expected an error when validating with a different secret")
	}
}

func TestValidateToken_Malformed(t *testing.T) {
	a := NewAdapter("test-secret")

	if _, err := a.ValidateToken("not-a-jwt"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}

func TestNewAdapter_DerivesDistinctKeysFromDifferentSecrets(t *testing.T) {
	a := NewAdapter("secret-a")
	b := NewAdapter("secret-b")

	token, err := a.IssueToken("user-123", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := b.ValidateToken(token); err == nil {
		t.Fatal("expected different secrets to derive different signing keys")
	}
}
