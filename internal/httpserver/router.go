package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/smarttransit/backend/internal/handlers"
	mwauth "github.com/smarttransit/backend/internal/middleware/auth"
	"github.com/smarttransit/backend/internal/models"
)

type Deps struct {
	AuthHandler   *handlers.AuthHandler
	UserHandler   *handlers.UserHandler
	SearchHandler *handlers.SearchHandler

	AccessSecret  []byte
	RefreshSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	accessGuard := mwauth.AccessGuard(d.AccessSecret)
	refreshGuard := mwauth.RefreshGuard(d.RefreshSecret)
	adminOnly := mwauth.RequireRoles(models.RoleAdmin)

	v1 := e.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.GET("/refresh", d.AuthHandler.Refresh, refreshGuard)
	authGroup.GET("/logout", d.AuthHandler.Logout, accessGuard, refreshGuard)

	users := v1.Group("/users")
	users.POST("", d.UserHandler.Create)
	users.GET("", d.UserHandler.List, accessGuard, adminOnly)
	users.GET("/search", d.SearchHandler.Search, accessGuard, adminOnly)
	users.GET("/profile", d.UserHandler.Profile, accessGuard)
	users.GET("/:id", d.UserHandler.Get, accessGuard)
	users.PATCH("/:id", d.UserHandler.Update, accessGuard)
	users.DELETE("/:id", d.UserHandler.Delete, accessGuard, adminOnly)
}
