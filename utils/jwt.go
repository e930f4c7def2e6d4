package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotAccessType = errors.New("not an access token")
	ErrNoSubject     = errors.New("token has no user_id")
)

// UserID accepts both numeric and string user ids.
type UserID string

func (u *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*u = UserID(n.String())
	return nil
}

// JWTClaim is the storefront's access token.
type JWTClaim struct {
	UserID    UserID `json:"user_id"`
	TokenType string `json:"token_type,omitempty"`
	jwt.StandardClaims
}

func (c *JWTClaim) Valid() error {
	if err := c.StandardClaims.Valid(); err != nil {
		return err
	}
	if c.TokenType != "" && c.TokenType != "access" {
		return ErrNotAccessType
	}
	if c.UserID == "" {
		return ErrNoSubject
	}
	return nil
}

// GenerateToken issues an access token the same way the storefront does.
func GenerateToken(userID string, key []byte, ttl time.Duration) (string, error) {
	claims := &JWTClaim{
		UserID:    UserID(userID),
		TokenType: "access",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateToken checks the HS256 signature and expiry. With an empty key the
// signature is not checked and only the claims are read.
func ValidateToken(signedToken string, key []byte) (*JWTClaim, error) {
	claims := &JWTClaim{}

	if len(key) == 0 {
		if _, _, err := new(jwt.Parser).ParseUnverified(signedToken, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if err := claims.Valid(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return claims, nil
	}

	token, err := jwt.ParseWithClaims(signedToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
