// Package auth mints and verifies the HS256 bearer tokens that guard the
// diagnostic routes when an admin secret is configured.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/siegesync/internal/common"
)

// AdminSubject is the subject every admin token must carry.
const AdminSubject = "admin"

// Claims holds the standard registered claims of an admin token.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateAdminToken signs a token for the admin subject valid for validity.
func GenerateAdminToken(secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   AdminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
	})

	return token.SignedString(secretKey)
}

// VerifyAdminToken checks signature, expiry and subject. Any failure is
// reported as common.ErrInvalidToken.
func VerifyAdminToken(tokenString string, secretKey []byte) error {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject != AdminSubject {
		return common.ErrInvalidToken
	}

	return nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
