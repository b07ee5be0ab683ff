package utils

import (
	"time"

	"vaultpay/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken signs a JWT for the given user. Used by ops tooling and
// tests; the API itself only validates tokens.
func GenerateToken(userID uint, role, secret string, ttl time.Duration) (string, error) {
	claims := &models.UserClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
