package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mediabank/internal/constants"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// TokenIssuer signs and validates session tokens. Tokens are stateless;
// validation never consults the credential store.
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenIssuer creates an issuer with the given HMAC key and TTL.
func NewTokenIssuer(signingKey string, ttlHours int) *TokenIssuer {
	return &TokenIssuer{
		signingKey: []byte(signingKey),
		ttl:        time.Duration(ttlHours) * time.Hour,
	}
}

// Issue signs a token for the given identity with an absolute expiry.
func (t *TokenIssuer) Issue(accountID int64, username, role string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		AccountID: accountID,
		Username:  username,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.signingKey)
}

// Validate parses and verifies a token string. Any failure (bad
// signature, expiry, malformed input, wrong algorithm) yields
// ErrInvalidToken; an empty string yields ErrMissingToken.
func (t *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.signingKey, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
