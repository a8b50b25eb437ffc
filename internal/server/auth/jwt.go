// Package auth issues and verifies the bearer tokens handed out on login.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the credential the
// token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	CredentialID string `json:"cid"`
}

// GenerateToken signs an HS256 token for credentialID that expires at
// issuedAt+validity. The expiry is returned so it can be echoed to the client.
func GenerateToken(credentialID string, secretKey []byte, issuedAt time.Time, validity time.Duration) (string, time.Time, error) {
	expiresAt := issuedAt.Add(validity)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   credentialID,
		},
		CredentialID: credentialID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// GetCredentialIDFromToken validates tokenString and returns its credential
// id. Expired tokens yield common.ErrTokenExpired, anything else that fails
// validation yields common.ErrInvalidToken.
func GetCredentialIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.CredentialID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.CredentialID, nil
}
