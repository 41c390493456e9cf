// Package auth holds the request-authentication boundary: cookie-based
// access and refresh guards plus the role predicate middleware. Handlers
// behind these guards receive already-verified claims from the context.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/models"
	"github.com/smarttransit/backend/internal/tokens"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"

	userContextKey         = "user"
	refreshPayloadKey      = "refreshPayload"
	refreshTokenContextKey = "refreshToken"
)

// AccessGuard verifies the access-token cookie and stores the parsed token
// under the "user" context key.
func AccessGuard(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningMethod: "HS256",
		SigningKey:    secret,
		ContextKey:    userContextKey,
		TokenLookup:   "cookie:" + accessCookie,
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return new(tokens.Claims) },
		ErrorHandler: func(c echo.Context, err error) error {
			return apperr.Authentication("invalid or missing access token")
		},
	})
}

// RefreshGuard verifies the refresh-token cookie (signature, expiry and
// refresh type) and stores both the claims and the raw token so the
// session facade can match it against the stored one.
func RefreshGuard(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(refreshCookie)
			if err != nil || cookie.Value == "" {
				return apperr.Authentication("invalid or missing refresh token")
			}
			claims, err := tokens.ParseRefresh(cookie.Value, secret)
			if err != nil {
				return apperr.Authentication("invalid or missing refresh token")
			}
			payload, err := claims.Payload()
			if err != nil {
				return apperr.Authentication("invalid or missing refresh token")
			}
			c.Set(refreshPayloadKey, payload)
			c.Set(refreshTokenContextKey, cookie.Value)
			return next(c)
		}
	}
}

// RequireRoles runs after AccessGuard and admits the request only when the
// authenticated role is one of the required ones.
func RequireRoles(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			payload, err := PayloadFromContext(c)
			if err != nil {
				return err
			}
			for _, role := range roles {
				if payload.Role == role {
					return next(c)
				}
			}
			return apperr.Authorization("")
		}
	}
}

// PayloadFromContext returns the access-token claims placed by AccessGuard.
func PayloadFromContext(c echo.Context) (tokens.Payload, error) {
	tkn, ok := c.Get(userContextKey).(*jwt.Token)
	if !ok {
		return tokens.Payload{}, apperr.Authentication("invalid or missing access token")
	}
	claims, ok := tkn.Claims.(*tokens.Claims)
	if !ok {
		return tokens.Payload{}, apperr.Authentication("invalid or missing access token")
	}
	payload, err := claims.Payload()
	if err != nil {
		return tokens.Payload{}, apperr.Authentication("invalid or missing access token")
	}
	return payload, nil
}

// RefreshFromContext returns the claims and raw token placed by RefreshGuard.
func RefreshFromContext(c echo.Context) (tokens.Payload, string, error) {
	payload, ok := c.Get(refreshPayloadKey).(tokens.Payload)
	if !ok {
		return tokens.Payload{}, "", apperr.Authentication("invalid or missing refresh token")
	}
	raw, ok := c.Get(refreshTokenContextKey).(string)
	if !ok {
		return tokens.Payload{}, "", apperr.Authentication("invalid or missing refresh token")
	}
	return payload, raw, nil
}
