package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every token the server refuses to trust:
// malformed, bad signature, or expired. Callers treat all three as
// unauthenticated and never need to distinguish them.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the identity baked into a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// IssueToken signs an HS256 token carrying the user's id and email,
// expiring after ttl.
func IssueToken(userID, email string, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UserID: userID,
		Email:  email,
	})

	return token.SignedString(secret)
}

// ParseToken verifies signature and expiry and returns the embedded
// claims. Any failure comes back as ErrInvalidToken; possession of a
// valid, unexpired token is the sole proof of identity.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
