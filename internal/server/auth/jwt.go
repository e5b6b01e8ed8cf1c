// Package auth issues and verifies the HS256 tokens used by the server:
// access tokens for API calls and share tokens embedded in mailed links.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const shareSubject = "share"

// Claims carries the authenticated user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// ShareClaims grants read access to one moment.
type ShareClaims struct {
	jwt.RegisteredClaims
	ShareID  string `json:"sid"`
	MomentID string `json:"mid"`
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})
	return token.SignedString(secretKey)
}

// GetUserIDFromToken validates an access token. Expired tokens yield
// common.ErrTokenExpired, anything else that fails common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}
	if err := parse(tokenString, claims, secretKey); err != nil {
		return "", err
	}
	if claims.UserID == "" || claims.Subject == shareSubject {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}

func GenerateShareToken(shareID, momentID string, secretKey []byte, validityDuration time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(validityDuration)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ShareClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   shareSubject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		ShareID:  shareID,
		MomentID: momentID,
	})
	s, err := token.SignedString(secretKey)
	return s, exp, err
}

func ParseShareToken(tokenString string, secretKey []byte) (*ShareClaims, error) {
	claims := &ShareClaims{}
	if err := parse(tokenString, claims, secretKey); err != nil {
		return nil, err
	}
	if claims.Subject != shareSubject || claims.ShareID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func parse(tokenString string, claims jwt.Claims, secretKey []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
