package auth

import (
	"fmt"
	"time"

	"goldsure-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// RememberTTL is the lifetime of a "remember me" session.
	RememberTTL = 30 * 24 * time.Hour
	// SessionTTL bounds a browser-session login on the server side.
	SessionTTL = 12 * time.Hour
)

type SessionClaims struct {
	UserID uint            `json:"user_id"`
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, user *models.User, ttl time.Duration, now time.Time) (string, error) {
	claims := &SessionClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired session: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !claims.Role.Valid() {
		return nil, fmt.Errorf("session claims could not be read")
	}
	return claims, nil
}
