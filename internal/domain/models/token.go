package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
}

type CustomClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}
