package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/handlers"
)

// New creates and configures the Echo app instance.
func New(auth *handlers.AuthHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	authGroup := e.Group("/auth")
	authGroup.POST("/magic-link", auth.RequestMagicLink)
	authGroup.GET("/verify", auth.VerifyMagicLink)
	return e
}
