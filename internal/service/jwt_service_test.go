package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

const testJWTSecret = "test-secret-key"

func testUser() *models.User {
	return &models.User{ID: "user-1", Email: "alice@example.com"}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService(testJWTSecret, time.Hour)

	tokenString, exp, err := svc.GenerateToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
}

func TestJWTService_DefaultDurationIsSevenDays(t *testing.T) {
	svc := NewJWTService(testJWTSecret, 0)

	_, exp, err := svc.GenerateToken(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, 5*time.Second)
}

func TestJWTService_ValidateFailureReasons(t *testing.T) {
	svc := NewJWTService(testJWTSecret, time.Hour)

	t.Run("Malformed", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		require.ErrorIs(t, err, ErrSessionTokenMalformed)
	})

	t.Run("SignatureMismatch", func(t *testing.T) {
		other := NewJWTService("a-different-secret", time.Hour)
		tokenString, _, err := other.GenerateToken(testUser())
		require.NoError(t, err)

		_, err = svc.ValidateToken(tokenString)
		require.ErrorIs(t, err, ErrSessionTokenSignature)
	})

	t.Run("Expired", func(t *testing.T) {
		short := NewJWTService(testJWTSecret, time.Nanosecond)
		tokenString, _, err := short.GenerateToken(testUser())
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		_, err = svc.ValidateToken(tokenString)
		require.ErrorIs(t, err, ErrSessionTokenExpired)
	})
}
