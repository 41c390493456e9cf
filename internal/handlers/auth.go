package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smarttransit/backend/internal/apperr"
	"github.com/smarttransit/backend/internal/events"
	"github.com/smarttransit/backend/internal/logging"
	mwauth "github.com/smarttransit/backend/internal/middleware/auth"
	"github.com/smarttransit/backend/internal/service/auth"
	"github.com/smarttransit/backend/internal/tokens"
)

type AuthHandler struct {
	Auth     *auth.Service
	Producer *events.Producer

	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

func (h *AuthHandler) setTokenCookies(c echo.Context, pair *auth.TokenPair) {
	c.SetCookie(CreateCookie("accessToken", pair.AccessToken, h.AccessExpiry))
	c.SetCookie(CreateCookie("refreshToken", pair.RefreshToken, h.RefreshExpiry))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation(map[string]string{"body": "malformed request body"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := c.Request().Context()
	payload, err := h.Auth.Verify(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	if payload == nil {
		return apperr.Authentication("invalid email or password")
	}

	pair, err := h.Auth.Login(ctx, *payload)
	if err != nil {
		return err
	}
	h.setTokenCookies(c, pair)

	h.publish(c, "user_logged_in", *payload)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login success",
		"user":    payload,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	payload, presented, err := mwauth.RefreshFromContext(c)
	if err != nil {
		return err
	}

	pair, err := h.Auth.RefreshSession(c.Request().Context(), payload, presented)
	if err != nil {
		return err
	}
	h.setTokenCookies(c, pair)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Token refreshed successfully!",
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	payload, err := mwauth.PayloadFromContext(c)
	if err != nil {
		return err
	}

	if err := h.Auth.Logout(c.Request().Context(), payload.ID); err != nil {
		return err
	}

	c.SetCookie(DeleteCookie("accessToken"))
	c.SetCookie(DeleteCookie("refreshToken"))

	h.publish(c, "user_logged_out", payload)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logout successful",
	})
}

func (h *AuthHandler) publish(c echo.Context, eventType string, p tokens.Payload) {
	ctx := c.Request().Context()
	event := map[string]any{
		"type":   eventType,
		"userID": p.ID.String(),
		"email":  p.Email,
	}
	if err := h.Producer.Publish(ctx, p.ID.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "type", eventType, "error", err)
	}
}
