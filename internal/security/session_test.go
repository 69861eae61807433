package security

import (
	"testing"
	"time"
)

func TestScopeTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := MintScopeToken(secret, "t1", time.Hour)
	if err != nil {
		t.Fatalf("MintScopeToken failed: %v", err)
	}

	teacherID, err := ParseScopeToken(secret, token)
	if err != nil {
		t.Fatalf("ParseScopeToken failed: %v", err)
	}
	if teacherID != "t1" {
		t.Errorf("teacherID = %v, want t1", teacherID)
	}
}

func TestScopeTokenEmptyScopeIsValid(t *testing.T) {
	secret := []byte("test-secret")

	token, err := MintScopeToken(secret, "", time.Hour)
	if err != nil {
		t.Fatalf("MintScopeToken failed: %v", err)
	}

	teacherID, err := ParseScopeToken(secret, token)
	if err != nil {
		t.Fatalf("ParseScopeToken failed: %v", err)
	}
	if teacherID != "" {
		t.Errorf("teacherID = %q, want empty scope", teacherID)
	}
}

func TestScopeTokenRejectsWrongSecret(t *testing.T) {
	token, err := MintScopeToken([]byte("right"), "t1", time.Hour)
	if err != nil {
		t.Fatalf("MintScopeToken failed: %v", err)
	}

	if _, err := ParseScopeToken([]byte("wrong"), token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestScopeTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")

	token, err := MintScopeToken(secret, "t1", -time.Minute)
	if err != nil {
		t.Fatalf("MintScopeToken failed: %v", err)
	}

	if _, err := ParseScopeToken(secret, token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestPINHashing(t *testing.T) {
	hash, err := HashPIN("1234")
	if err != nil {
		t.Fatalf("HashPIN failed: %v", err)
	}
	if hash == "1234" {
		t.Error("HashPIN returned the plain pin")
	}

	if !CheckPIN(hash, "1234") {
		t.Error("CheckPIN rejected the correct pin")
	}
	if CheckPIN(hash, "4321") {
		t.Error("CheckPIN accepted a wrong pin")
	}
}
