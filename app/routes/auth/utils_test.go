package auth

import (
	"testing"

	"github.com/bkorir-git/Student-finance-management-system/app/models"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-passw0rd")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-passw0rd" {
		t.Fatal("hash equals plaintext password")
	}
	if !CheckPasswordHash("s3cret-passw0rd", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	user := &models.User{
		ID:       "4f9b0f3e-0000-0000-0000-000000000001",
		Username: "accountant1",
		FullName: "Jane Wanjiru",
		Role:     models.RoleAccountant,
	}

	token, err := GenerateJWT(user)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", claims.UserID, user.ID)
	}
	if claims.Username != user.Username {
		t.Errorf("Username = %q, want %q", claims.Username, user.Username)
	}
	if claims.Role != models.RoleAccountant {
		t.Errorf("Role = %q, want %q", claims.Role, models.RoleAccountant)
	}
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	if _, err := ValidateJWT("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
	if _, err := ValidateJWT(""); err == nil {
		t.Error("expected error for empty token")
	}
}
