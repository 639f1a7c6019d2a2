package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JwtSecret is set from configuration at startup.
var JwtSecret = []byte("wikenfarma-dev-secret")

type Claims struct {
	UserId        int64  `json:"user_id"`
	Username      string `json:"username"`
	UserType      string `json:"user_type"`
	InformatoreId *int64 `json:"informatore_id,omitempty"`
	jwt.RegisteredClaims
}

func GenerateToken(userID int64, username, userType string, informatoreID *int64, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &Claims{
		UserId:        userID,
		Username:      username,
		UserType:      userType,
		InformatoreId: informatoreID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   username,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(JwtSecret)
	return s, exp, err
}

func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return JwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("Invalid Token")
}
