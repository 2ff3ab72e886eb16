package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/models"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
)

var (
	ErrTokenExpired = jwt.ErrTokenExpired
	ErrTokenInvalid = errors.New("invalid token")
)

type Claims struct {
	UserID uint        `json:"userId"`
	Role   models.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func accessSecret() []byte  { return []byte(os.Getenv("ACCESS_TOKEN_SECRET")) }
func refreshSecret() []byte { return []byte(os.Getenv("REFRESH_TOKEN_SECRET")) }

func signToken(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func CreateAccessToken(userID uint, role models.Role) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return signToken(claims, accessSecret())
}

// CreateRefreshToken carries a unique jti: the exp/iat claims have second
// precision, so without it two tokens minted in the same second would be
// byte-identical and rotation would not supersede anything.
func CreateRefreshToken(userID uint) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return signToken(claims, refreshSecret())
}

func parseToken(tokenStr string, secret []byte) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ValidateAccessToken parses an access token. An expired-but-otherwise-valid
// token returns an error matching ErrTokenExpired so callers can fall back to
// the refresh flow.
func ValidateAccessToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, accessSecret())
}

func ValidateRefreshToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, refreshSecret())
}

// GenerateTokenPair signs an access and a refresh token for the user and
// persists the refresh token onto the user row, superseding any earlier one.
// Either both tokens come back or neither does.
func GenerateTokenPair(db *gorm.DB, user *models.User) (accessToken, refreshToken string, err error) {
	accessToken, err = CreateAccessToken(user.ID, user.Role)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = CreateRefreshToken(user.ID)
	if err != nil {
		return "", "", err
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("refresh_token", refreshToken).Error; err != nil {
		return "", "", err
	}
	user.RefreshToken = refreshToken

	return accessToken, refreshToken, nil
}
