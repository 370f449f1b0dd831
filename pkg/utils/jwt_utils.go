package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SyncTokenTTL    = 5 * time.Minute
	SyncTokenIssuer = "martctl"
)

// SyncClaims identifies the client session pushing or pulling snapshots.
type SyncClaims struct {
	StoreName string `json:"store_name,omitempty"`
	jwt.RegisteredClaims
}

// GenerateSyncToken signs a short-lived HS256 token with the shared secret.
func GenerateSyncToken(secret []byte, storeName string, now time.Time) (string, error) {
	claims := &SyncClaims{
		StoreName: storeName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SyncTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    SyncTokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign sync token: %w", err)
	}
	return tokenString, nil
}

// ValidateSyncToken parses and validates a sync token string.
func ValidateSyncToken(secret []byte, tokenString string) (*SyncClaims, error) {
	claims := &SyncClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(SyncTokenIssuer))

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
