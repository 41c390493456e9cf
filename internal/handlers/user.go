package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/smarttransit/backend/internal/apperr"
	mwauth "github.com/smarttransit/backend/internal/middleware/auth"
	"github.com/smarttransit/backend/internal/models"
	"github.com/smarttransit/backend/internal/service/user"
	"github.com/smarttransit/backend/internal/tokens"
)

type UserHandler struct {
	Users *user.Service

	// AccessSecret lets registration check the caller's access cookie when
	// an admin account is being created; the route itself stays public.
	AccessSecret []byte
}

func (h *UserHandler) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation(map[string]string{"body": "malformed request body"})
	}
	if err := req.Validate(); err != nil {
		return err
	}

	role := models.Role(req.Role)
	if role == models.RoleAdmin {
		if !h.callerIsAdmin(c) {
			return apperr.Authentication("you cannot create this user")
		}
	} else {
		// only admins may pick a role; everyone else registers as commuter
		role = ""
	}

	created, err := h.Users.Create(c.Request().Context(), user.CreateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Password:    req.Password,
		Age:         req.Age,
		Role:        role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Profile(c echo.Context) error {
	payload, err := mwauth.PayloadFromContext(c)
	if err != nil {
		return err
	}
	found, err := h.Users.Get(c.Request().Context(), payload.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, found)
}

func (h *UserHandler) Get(c echo.Context) error {
	payload, id, err := h.payloadAndParamID(c)
	if err != nil {
		return err
	}
	if payload.Role != models.RoleAdmin && payload.ID != id {
		return apperr.Authorization("you are not authorized to view this")
	}
	found, err := h.Users.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, found)
}

func (h *UserHandler) Update(c echo.Context) error {
	payload, id, err := h.payloadAndParamID(c)
	if err != nil {
		return err
	}
	if payload.Role != models.RoleAdmin && payload.ID != id {
		return apperr.Authorization("you are not authorized to edit this")
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation(map[string]string{"body": "malformed request body"})
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Role != nil && payload.Role != models.RoleAdmin {
		return apperr.Authorization("you are not authorized to edit this")
	}

	in := user.UpdateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Password:    req.Password,
		Age:         req.Age,
		IsActive:    req.IsActive,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		in.Role = &role
	}

	updated, err := h.Users.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation(map[string]string{"id": "id must be a uuid"})
	}
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted"})
}

func (h *UserHandler) payloadAndParamID(c echo.Context) (tokens.Payload, uuid.UUID, error) {
	payload, err := mwauth.PayloadFromContext(c)
	if err != nil {
		return tokens.Payload{}, uuid.Nil, err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return tokens.Payload{}, uuid.Nil, apperr.Validation(map[string]string{"id": "id must be a uuid"})
	}
	return payload, id, nil
}

func (h *UserHandler) callerIsAdmin(c echo.Context) bool {
	cookie, err := c.Cookie("accessToken")
	if err != nil || cookie.Value == "" {
		return false
	}
	claims, err := tokens.Parse(cookie.Value, h.AccessSecret)
	if err != nil {
		return false
	}
	return models.Role(claims.Role) == models.RoleAdmin
}
