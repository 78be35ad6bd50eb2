package sqldb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/db"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/repository"
)

type tokenFixture struct {
	gw     *db.Gateway
	tokens *TokenRepository
	user   *models.User
}

func newTokenFixture(t *testing.T) tokenFixture {
	t.Helper()
	gw := newTestGateway(t)
	user, err := NewUserRepository(gw).Create(context.Background(), "holder@example.com", "")
	require.NoError(t, err)
	return tokenFixture{gw: gw, tokens: NewTokenRepository(gw), user: user}
}

func (f tokenFixture) create(t *testing.T, value, tokenType string, expiresAt time.Time, metadata map[string]any) *models.Token {
	t.Helper()
	token, err := f.tokens.Create(context.Background(), repository.NewTokenParams{
		UserID:    f.user.ID,
		Token:     value,
		Type:      tokenType,
		ExpiresAt: expiresAt,
		Metadata:  metadata,
	})
	require.NoError(t, err)
	return token
}

func TestTokenRepository_CreateAndFindRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	expiresAt := f.gw.Now().Add(7 * 24 * time.Hour)

	created := f.create(t, "tok-rt", "refresh", expiresAt, map[string]any{"device": "laptop"})

	found, err := f.tokens.FindByToken(ctx, "tok-rt")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, f.user.ID, found.UserID)
	assert.Equal(t, "refresh", found.Type)
	assert.False(t, found.IsRevoked)
	assert.True(t, expiresAt.Equal(found.ExpiresAt))
	assert.Equal(t, map[string]any{"device": "laptop"}, found.Metadata)

	_, err = f.tokens.FindByToken(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrTokenNotFound)
}

func TestTokenRepository_RevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	f.create(t, "tok-revoke", "refresh", f.gw.Now().Add(time.Hour), nil)

	affected, err := f.tokens.Revoke(ctx, "tok-revoke")
	require.NoError(t, err)
	assert.True(t, affected)

	affected, err = f.tokens.Revoke(ctx, "tok-revoke")
	require.NoError(t, err)
	assert.False(t, affected)

	found, err := f.tokens.FindByToken(ctx, "tok-revoke")
	require.NoError(t, err)
	assert.True(t, found.IsRevoked)
}

func TestTokenRepository_RevokeAllForUserScopedByType(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	expiresAt := f.gw.Now().Add(time.Hour)

	f.create(t, "tok-r1", "refresh", expiresAt, nil)
	f.create(t, "tok-r2", "refresh", expiresAt, nil)
	f.create(t, "tok-v1", "verification", expiresAt, nil)

	count, err := f.tokens.RevokeAllForUser(ctx, f.user.ID, "refresh")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Verification token is untouched.
	found, err := f.tokens.FindByToken(ctx, "tok-v1")
	require.NoError(t, err)
	assert.False(t, found.IsRevoked)

	// Empty type revokes whatever is left, and already-revoked rows are
	// not counted again.
	count, err = f.tokens.RevokeAllForUser(ctx, f.user.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	now := f.gw.Now()

	f.create(t, "tok-stale", "refresh", now.Add(-time.Minute), nil)
	f.create(t, "tok-fresh", "refresh", now.Add(time.Hour), nil)

	removed, err := f.tokens.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = f.tokens.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = f.tokens.FindByToken(ctx, "tok-fresh")
	require.NoError(t, err)
}
