package utils

import (
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	password := "secret"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !CheckPassword(password, hash) {
		t.Errorf("Expected password check to pass")
	}

	if CheckPassword("wrongpassword", hash) {
		t.Errorf("Expected password check to fail")
	}
}

func TestPasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		want     int
	}{
		{"abc", 0},
		{"abcdefgh", 1},
		{"Abcdefgh", 2},
		{"Abcdefg1", 3},
		{"Abcdef1!", 4},
	}

	for _, tc := range cases {
		if got := PasswordStrength(tc.password); got != tc.want {
			t.Errorf("PasswordStrength(%q) = %d, want %d", tc.password, got, tc.want)
		}
	}
}

func TestGeneratePassword(t *testing.T) {
	first, err := GeneratePassword(12)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(first) != 12 {
		t.Fatalf("Expected length 12, got %d", len(first))
	}

	second, err := GeneratePassword(12)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if first == second {
		t.Errorf("Expected two generated passwords to differ")
	}

	short, err := GeneratePassword(3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(short) < 8 {
		t.Errorf("Expected minimum length 8, got %d", len(short))
	}
}

func TestJWT(t *testing.T) {
	secret := "supersecret"
	userID := "123"
	role := "parent"

	token, tokenID, err := GenerateToken(userID, role, secret, time.Hour)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tokenID == "" {
		t.Fatal("Expected a token id")
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("Expected UserID %s, got %s", userID, claims.UserID)
	}
	if claims.Role != role {
		t.Errorf("Expected Role %s, got %s", role, claims.Role)
	}
	if claims.ID != tokenID {
		t.Errorf("Expected token id %s, got %s", tokenID, claims.ID)
	}

	_, err = ValidateToken(token, "wrongsecret")
	if err == nil {
		t.Errorf("Expected error with wrong secret")
	}
}

func TestJWTExpiry(t *testing.T) {
	token, _, err := GenerateToken("1", "parent", "supersecret", -time.Minute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := ValidateToken(token, "supersecret"); err == nil {
		t.Errorf("Expected error for expired token")
	}
}
