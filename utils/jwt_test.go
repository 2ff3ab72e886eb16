package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/models"
)

func TestMain(m *testing.M) {
	os.Setenv("ACCESS_TOKEN_SECRET", "test-access-secret")
	os.Setenv("REFRESH_TOKEN_SECRET", "test-refresh-secret")
	os.Exit(m.Run())
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := CreateAccessToken(42, models.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	claims, err := ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("Role = %q, want %q", claims.Role, models.RoleAdmin)
	}
}

func TestAccessTokenRejectedByRefreshSecret(t *testing.T) {
	token, err := CreateAccessToken(1, models.RoleCustomer)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}
	if _, err := ValidateRefreshToken(token); err == nil {
		t.Fatal("access token validated against refresh secret")
	}
}

func TestExpiredAccessToken(t *testing.T) {
	claims := &Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := signToken(claims, accessSecret())
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}

	_, err = ValidateAccessToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

// Back-to-back refresh tokens must differ even inside one second, or rotation
// could re-issue the string it is meant to supersede.
func TestRefreshTokensAreUnique(t *testing.T) {
	a, err := CreateRefreshToken(1)
	if err != nil {
		t.Fatalf("CreateRefreshToken: %v", err)
	}
	b, err := CreateRefreshToken(1)
	if err != nil {
		t.Fatalf("CreateRefreshToken: %v", err)
	}
	if a == b {
		t.Fatal("two refresh tokens for the same user are identical")
	}
}

func TestMalformedToken(t *testing.T) {
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ValidateAccessToken(tok); err == nil {
			t.Errorf("token %q validated", tok)
		}
	}
}

func TestGenerateTokenPairPersistsRefreshToken(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	user := models.User{UserName: "alice", FullName: "Alice", Email: "alice@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	access, refresh, err := GenerateTokenPair(db, &user)
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("empty token returned")
	}

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.RefreshToken != refresh {
		t.Errorf("stored refresh token does not match issued token")
	}

	// A second pair supersedes the first.
	_, refresh2, err := GenerateTokenPair(db, &user)
	if err != nil {
		t.Fatalf("second GenerateTokenPair: %v", err)
	}
	if refresh2 == refresh {
		t.Error("rotation re-issued the same refresh token")
	}
	db.First(&stored, user.ID)
	if stored.RefreshToken != refresh2 {
		t.Errorf("stored refresh token not rotated")
	}
}
