package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stickclash/stickclash-backend/config"
)

func newTestService(secret string) *Service {
	return NewService(nil, config.Config{JWTSecret: secret})
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestService("test-secret")
	userID := uuid.New()

	token, err := s.issueToken(userID, "alice")
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	identity, err := s.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if identity.UserID != userID || identity.Username != "alice" {
		t.Fatalf("identity = %+v", identity)
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	s := newTestService("test-secret")

	wrongSecret, _ := newTestService("other-secret").issueToken(uuid.New(), "mallory")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  uuid.New().String(),
		"username": "alice",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	})
	expiredToken, _ := expired.SignedString([]byte("test-secret"))

	noIdentity := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noIdentityToken, _ := noIdentity.SignedString([]byte("test-secret"))

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", wrongSecret},
		{"expired", expiredToken},
		{"missing identity claims", noIdentityToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.VerifyToken(tc.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("want ErrInvalidToken, got %v", err)
			}
		})
	}
}
