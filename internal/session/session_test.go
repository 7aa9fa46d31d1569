package session

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := makeToken("test-secret", "jti-1", "acc-1", "jane@university.edu", time.Hour)
	if err != nil {
		t.Fatalf("makeToken: %v", err)
	}

	claims, err := parseToken("test-secret", token)
	if err != nil {
		t.Fatalf("parseToken: %v", err)
	}
	if claims.ID != "jti-1" {
		t.Errorf("jti = %q, want jti-1", claims.ID)
	}
	if claims.Subject != "acc-1" {
		t.Errorf("subject = %q, want acc-1", claims.Subject)
	}
	if claims.Email != "jane@university.edu" {
		t.Errorf("email = %q", claims.Email)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := makeToken("secret-a", "jti-1", "acc-1", "jane@university.edu", time.Hour)
	if err != nil {
		t.Fatalf("makeToken: %v", err)
	}

	if _, err := parseToken("secret-b", token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := makeToken("test-secret", "jti-1", "acc-1", "jane@university.edu", -time.Minute)
	if err != nil {
		t.Fatalf("makeToken: %v", err)
	}

	if _, err := parseToken("test-secret", token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := parseToken("test-secret", "not-a-jwt"); err == nil {
		t.Fatal("garbage token must not parse")
	}
}
