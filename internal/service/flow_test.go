package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/db"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/repository/sqldb"
)

// Full sign-in flows against a real in-memory gateway, with only the email
// delivery replaced by the log sender.
type flowDeps struct {
	users  *sqldb.UserRepository
	links  *sqldb.MagicLinkRepository
	tokens *sqldb.TokenRepository
	auth   *AuthService
	link   *MagicLinkService
	token  *TokenService
	jwt    *JWTService
}

func setupFlow(t *testing.T) flowDeps {
	t.Helper()
	gw, err := db.Open(context.Background(), db.ModeTest, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })

	deps := flowDeps{
		users:  sqldb.NewUserRepository(gw),
		links:  sqldb.NewMagicLinkRepository(gw),
		tokens: sqldb.NewTokenRepository(gw),
		jwt:    NewJWTService("flow-test-secret", 0),
	}
	deps.link = NewMagicLinkService(deps.users, deps.links, 15*time.Minute)
	deps.token = NewTokenService(deps.tokens)
	deps.auth = NewAuthService(deps.link, deps.jwt, NewLogEmailService(), "https://auth.example.com", 15*time.Minute)
	return deps
}

func TestSignInFlow_VerifyOnce(t *testing.T) {
	ctx := context.Background()
	deps := setupFlow(t)

	issued, err := deps.link.CreateForEmail(ctx, "Alice@Example.com", "Alice")
	require.NoError(t, err)
	assert.False(t, issued.User.IsEmailVerified)

	result, err := deps.auth.VerifyMagicLink(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.True(t, result.User.IsEmailVerified)
	require.NotNil(t, result.User.LastLogin)

	claims, err := deps.jwt.ValidateToken(result.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	// The link is single use; replaying it must fail identically to an
	// unknown token.
	_, err = deps.auth.VerifyMagicLink(ctx, issued.Token)
	require.ErrorIs(t, err, ErrInvalidOrExpiredLink)
}

func TestSignInFlow_ExpiredLinkStaysUnused(t *testing.T) {
	ctx := context.Background()
	deps := setupFlow(t)

	user, err := deps.users.FindOrCreate(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)

	issued, err := deps.link.Create(ctx, user.ID, time.Second)
	require.NoError(t, err)

	// NowUTC truncates to whole seconds, so a one second TTL is already in
	// the comparable past.
	time.Sleep(1100 * time.Millisecond)

	_, err = deps.auth.VerifyMagicLink(ctx, issued.Token)
	require.ErrorIs(t, err, ErrInvalidOrExpiredLink)

	// Expiry must not consume the link; it stays unused on disk.
	stored, err := deps.links.FindByToken(ctx, issued.Token, true)
	require.NoError(t, err)
	assert.False(t, stored.IsUsed)

	refreshed, err := deps.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, refreshed.IsEmailVerified)
}

func TestSignInFlow_RefreshTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	deps := setupFlow(t)

	user, err := deps.users.FindOrCreate(ctx, "carol@example.com", "Carol")
	require.NoError(t, err)

	refresh, err := deps.token.Create(ctx, CreateTokenParams{
		UserID:   user.ID,
		Type:     "refresh",
		TTL:      24 * time.Hour,
		Metadata: map[string]any{"device": "pixel-9"},
	})
	require.NoError(t, err)

	verification, err := deps.token.Create(ctx, CreateTokenParams{
		UserID: user.ID,
		Type:   "verification",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	assert.True(t, deps.token.IsValid(ctx, refresh.Token, "refresh"))
	assert.False(t, deps.token.IsValid(ctx, refresh.Token, "verification"))

	found, err := deps.token.FindByToken(ctx, refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, "pixel-9", found.Metadata["device"])

	// Revoking every refresh token must leave the verification token alone.
	count, err := deps.token.RevokeAllForUser(ctx, user.ID, "refresh")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.False(t, deps.token.IsValid(ctx, refresh.Token, ""))
	assert.True(t, deps.token.IsValid(ctx, verification.Token, "verification"))

	_, err = deps.token.FindByToken(ctx, refresh.Token)
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}
