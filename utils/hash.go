package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// TemporaryTokenTTL bounds email-verification and password-reset tokens.
const TemporaryTokenTTL = 20 * time.Minute

// HashPassword hashes a raw password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

// CheckPasswordHash compares a raw password and a hashed password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateTemporaryToken returns the raw token to mail out, the bcrypt hash
// to store, and the expiry. Only the hash ever touches the database.
func GenerateTemporaryToken() (token, hashed string, expiry time.Time, err error) {
	b := make([]byte, 20)
	if _, err = rand.Read(b); err != nil {
		return "", "", time.Time{}, err
	}
	token = hex.EncodeToString(b)

	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", "", time.Time{}, err
	}

	return token, string(h), time.Now().Add(TemporaryTokenTTL), nil
}

// CheckTemporaryToken compares a raw token against its stored bcrypt hash.
func CheckTemporaryToken(token, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
