package app

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	cfg := TokenConfig{
		SecretKey: "user-secret",
		Expiry:    time.Hour,
		Issuer:    "test-issuer",
	}
	tm := NewTokenManager(cfg)

	token, err := tm.Generate(1001, "alice", "10.0.0.1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UID != 1001 || claims.Nickname != "alice" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.Issuer != "test-issuer" {
		t.Errorf("Expected issuer test-issuer, got %s", claims.Issuer)
	}

	// 错误的密钥
	other := NewTokenManager(TokenConfig{SecretKey: "wrong-secret"})
	if _, err := other.Parse(token); err == nil {
		t.Error("Expected error when parsing token with wrong secret key, but got nil")
	}

	// 篡改后的 Token
	if err := tm.Validate(token + "tampered"); err == nil {
		t.Error("Expected error for tampered token, but got nil")
	}
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(TokenConfig{SecretKey: "user-secret", Expiry: time.Hour}).(*tokenManager)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := tm.Generate(7, "bob", "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := tm.Parse(token); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

func TestParseTokenWithKey_RejectsNone(t *testing.T) {
	claims := &UserEntity{UID: 1}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	if _, err := ParseTokenWithKey(raw, "user-secret"); err == nil {
		t.Error("Expected alg=none token to be rejected")
	}
}
