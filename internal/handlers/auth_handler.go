package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/service"
)

// AuthHandler exposes the two magic-link endpoints.
type AuthHandler struct {
	AuthService service.Authenticator
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.Authenticator) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

type requestMagicLinkBody struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RequestMagicLink issues a sign-in link and emails it. The response is 202
// whether or not the address was known before, so the endpoint cannot be
// used to probe for registered emails.
func (h *AuthHandler) RequestMagicLink(c echo.Context) error {
	var body requestMagicLinkBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if body.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}

	if err := h.AuthService.RequestMagicLink(c.Request().Context(), body.Email, body.Name); err != nil {
		log.Error().Err(err).Msg("Failed to issue magic link")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send sign-in link")
	}
	return c.NoContent(http.StatusAccepted)
}

// VerifyMagicLink consumes the link token and returns the minted session
// credential. Invalid, used and expired tokens all answer 401.
func (h *AuthHandler) VerifyMagicLink(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Token is required")
	}

	result, err := h.AuthService.VerifyMagicLink(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredLink) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired sign-in link")
		}
		log.Error().Err(err).Msg("Failed to verify magic link")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify sign-in link")
	}
	return c.JSON(http.StatusOK, result)
}
