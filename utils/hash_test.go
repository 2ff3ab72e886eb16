package utils

import (
	"testing"
	"time"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("password stored in plain text")
	}
	if !CheckPasswordHash("s3cret-pass", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong-pass", hash) {
		t.Error("wrong password accepted")
	}
}

func TestTemporaryToken(t *testing.T) {
	token, hashed, expiry, err := GenerateTemporaryToken()
	if err != nil {
		t.Fatalf("GenerateTemporaryToken: %v", err)
	}
	if token == "" || hashed == "" {
		t.Fatal("empty token or hash")
	}
	if token == hashed {
		t.Fatal("raw token equals stored hash")
	}
	if !CheckTemporaryToken(token, hashed) {
		t.Error("valid token rejected")
	}
	if CheckTemporaryToken("deadbeef", hashed) {
		t.Error("bogus token accepted")
	}

	until := time.Until(expiry)
	if until <= 0 || until > TemporaryTokenTTL+time.Minute {
		t.Errorf("expiry %v outside expected window", until)
	}
}
