// Package jwt is the identity resolver boundary: it turns a bearer token
// issued by the external identity provider into a stable external user ID
// plus the profile attributes used for lazy profile creation.
package jwt

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims carried by an identity token.
type Claims struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
	jwt.RegisteredClaims
}

// Resolver verifies identity tokens against a shared secret.
type Resolver struct {
	secret    []byte
	expireDur time.Duration
}

// NewResolver creates a resolver. expireHours applies to tokens issued by
// IssueToken.
func NewResolver(secret string, expireHours int) *Resolver {
	return &Resolver{
		secret:    []byte(secret),
		expireDur: time.Duration(expireHours) * time.Hour,
	}
}

// IssueToken mints a token for the given identity. Production deployments
// receive tokens from the identity provider; this is used by development
// setups and tests.
func (r *Resolver) IssueToken(userID, name, email, imageURL string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Name:     name,
		Email:    email,
		ImageURL: imageURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(r.expireDur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(r.secret)
}

// Resolve parses and verifies a token, returning its claims.
func (r *Resolver) Resolve(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return r.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
