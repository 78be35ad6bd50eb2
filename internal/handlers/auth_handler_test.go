package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/handlers"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/mocks"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/service"
)

type authHandlerTestDeps struct {
	mockAuth *mocks.MockAuthenticator
	handler  *handlers.AuthHandler
	echo     *echo.Echo
}

func setupAuthHandlerTest(t *testing.T) authHandlerTestDeps {
	t.Helper()
	deps := authHandlerTestDeps{
		mockAuth: new(mocks.MockAuthenticator),
	}
	deps.handler = handlers.NewAuthHandler(deps.mockAuth)
	deps.echo = echo.New()
	deps.echo.POST("/auth/magic-link", deps.handler.RequestMagicLink)
	deps.echo.GET("/auth/verify", deps.handler.VerifyMagicLink)
	return deps
}

func performRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_RequestMagicLink(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		deps := setupAuthHandlerTest(t)
		deps.mockAuth.On("RequestMagicLink", mock.Anything, "alice@example.com", "Alice").Return(nil).Once()

		rec := performRequest(deps.echo, http.MethodPost, "/auth/magic-link",
			`{"email":"alice@example.com","name":"Alice"}`)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		deps.mockAuth.AssertExpectations(t)
	})

	t.Run("MissingEmail", func(t *testing.T) {
		deps := setupAuthHandlerTest(t)

		rec := performRequest(deps.echo, http.MethodPost, "/auth/magic-link", `{"name":"Alice"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		deps.mockAuth.AssertNotCalled(t, "RequestMagicLink", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ServiceFailure", func(t *testing.T) {
		deps := setupAuthHandlerTest(t)
		deps.mockAuth.On("RequestMagicLink", mock.Anything, "alice@example.com", "").
			Return(errors.New("smtp unreachable")).Once()

		rec := performRequest(deps.echo, http.MethodPost, "/auth/magic-link", `{"email":"alice@example.com"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAuthHandler_VerifyMagicLink(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		deps := setupAuthHandlerTest(t)
		result := &models.SignInResult{
			SessionToken: "session-jwt",
			ExpiresAt:    time.Now().Add(time.Hour).UTC(),
			User:         &models.User{ID: "user-1", Email: "alice@example.com"},
		}
		deps.mockAuth.On("VerifyMagicLink", mock.Anything, "good-token").Return(result, nil).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/auth/verify?token=good-token", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got models.SignInResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "session-jwt", got.SessionToken)
		assert.Equal(t, "user-1", got.User.ID)
	})

	t.Run("MissingToken", func(t *testing.T) {
		deps := setupAuthHandlerTest(t)

		rec := performRequest(deps.echo, http.MethodGet, "/auth/verify", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvalidLink", func(t *testing.T) {
		deps := setupAuthHandlerTest(t)
		deps.mockAuth.On("VerifyMagicLink", mock.Anything, "bad-token").
			Return(nil, service.ErrInvalidOrExpiredLink).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/auth/verify?token=bad-token", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("BackendFailure", func(t *testing.T) {
		deps := setupAuthHandlerTest(t)
		deps.mockAuth.On("VerifyMagicLink", mock.Anything, "good-token").
			Return(nil, errors.New("query failed")).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/auth/verify?token=good-token", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
