// Package auth issues and verifies operator tokens. A token identifies the
// operator (who becomes the applicator of committed records) and the clinic
// the operator works for.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/vetintake/internal/common"
)

// Claims are the registered claims plus the operator's user and clinic ids.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	ClinicID string `json:"cid,omitempty"`
}

// Operator is the identity carried by a verified token.
type Operator struct {
	UserID   string
	ClinicID string
}

func GenerateToken(op Operator, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			Subject:   op.UserID,
		},
		UserID:   op.UserID,
		ClinicID: op.ClinicID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies tokenString and returns the operator it names.
// Expired tokens yield common.ErrTokenExpired, every other failure
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (Operator, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Operator{}, common.ErrTokenExpired
		}
		return Operator{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return Operator{}, common.ErrInvalidToken
	}

	return Operator{UserID: claims.UserID, ClinicID: claims.ClinicID}, nil
}
