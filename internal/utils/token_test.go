package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testSecret = "campusbuddy_test_jwt_secret_key_123456"
	testUserID = "6f1c2a9e-3b7d-4e58-9a0c-1d2e3f405162"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	manager, err := NewTokenManager(testSecret, "campusbuddy-api", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return manager
}

func TestNewTokenManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewTokenManager("short", "campusbuddy-api", time.Hour); err == nil {
		t.Fatalf("expected error for short secret")
	}
	if _, err := NewTokenManager(testSecret, "campusbuddy-api", 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := newTestManager(t)

	token, err := manager.GenerateToken(testUserID, "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != testUserID || claims.Role != "admin" || claims.Subject != testUserID {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestGenerateTokenRejectsInvalidUserID(t *testing.T) {
	manager := newTestManager(t)
	if _, err := manager.GenerateToken("42", "student"); err == nil {
		t.Fatalf("expected error for non-uuid user id")
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	manager := newTestManager(t)
	token, _ := manager.GenerateToken(testUserID, "student")

	other, _ := NewTokenManager(strings.Repeat("x", 40), "campusbuddy-api", time.Hour)
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("expected signature error for foreign secret")
	}

	wrongIssuer, _ := NewTokenManager(testSecret, "someone-else", time.Hour)
	if _, err := wrongIssuer.ValidateToken(token); err == nil {
		t.Fatalf("expected issuer error")
	}

	if _, err := manager.ValidateToken(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	manager := newTestManager(t)
	issuedAt := time.Now().Add(-2 * time.Hour)
	manager.now = func() time.Time { return issuedAt }
	token, _ := manager.GenerateToken(testUserID, "student")

	manager.now = time.Now
	if _, err := manager.ValidateToken(token); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	manager := newTestManager(t)
	claims := Claims{
		UserID: testUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testUserID,
			Issuer:    "campusbuddy-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	if _, err := manager.ValidateToken(token); err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}
}
