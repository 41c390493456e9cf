// Package tokens owns the signing primitive: minting and verifying the
// HS256 access and refresh tokens and the {id, email, role} claim set
// embedded in both.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/smarttransit/backend/internal/models"
)

const refreshType = "refresh"

var ErrInvalidToken = errors.New("invalid token")

// Payload is the identity projection carried by every token. It is never
// persisted; it is rebuilt from verified claims on each request.
type Payload struct {
	ID    uuid.UUID   `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	Typ   string `json:"typ,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Payload() (Payload, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Payload{}, ErrInvalidToken
	}
	return Payload{ID: id, Email: c.Email, Role: models.Role(c.Role)}, nil
}

func newClaims(p Payload, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		Email: p.Email,
		Role:  string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func SignAccess(p Payload, secret []byte, ttl time.Duration) (string, error) {
	claims := newClaims(p, ttl)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func SignRefresh(p Payload, secret []byte, ttl time.Duration) (string, error) {
	claims := newClaims(p, ttl)
	claims.Typ = refreshType
	claims.ID = uuid.NewString()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func keyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}
}

// Parse verifies the signature and the standard claims, expiry included.
func Parse(tokenStr string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc(secret))
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// ParseRefresh is Parse plus the refresh-type check.
func ParseRefresh(tokenStr string, secret []byte) (*Claims, error) {
	claims, err := Parse(tokenStr, secret)
	if err != nil {
		return nil, err
	}
	if claims.Typ != refreshType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Decode verifies the signature but skips claim validation, so an expired
// token can still be read. The issuer uses this to learn the expiry of a
// stored refresh token.
func Decode(tokenStr string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc(secret), jwt.WithoutClaimsValidation())
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
