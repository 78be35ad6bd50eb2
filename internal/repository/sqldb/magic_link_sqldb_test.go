package sqldb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/db"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/repository"
)

type linkFixture struct {
	gw    *db.Gateway
	users *UserRepository
	links *MagicLinkRepository
	user  *models.User
}

func newLinkFixture(t *testing.T) linkFixture {
	t.Helper()
	gw := newTestGateway(t)
	users := NewUserRepository(gw)
	user, err := users.Create(context.Background(), "owner@example.com", "Owner")
	require.NoError(t, err)
	return linkFixture{gw: gw, users: users, links: NewMagicLinkRepository(gw), user: user}
}

func TestMagicLinkRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)
	expiresAt := f.gw.Now().Add(15 * time.Minute)

	created, err := f.links.Create(ctx, f.user.ID, "tok-find", expiresAt)
	require.NoError(t, err)
	assert.False(t, created.IsUsed)

	found, err := f.links.FindByToken(ctx, "tok-find", false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, f.user.ID, found.UserID)
	assert.False(t, found.IsUsed)
	assert.True(t, expiresAt.Equal(found.ExpiresAt))

	_, err = f.links.FindByToken(ctx, "no-such-token", false)
	require.ErrorIs(t, err, repository.ErrMagicLinkNotFound)
}

func TestMagicLinkRepository_ExpiredLinksAreHiddenByDefault(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	_, err := f.links.Create(ctx, f.user.ID, "tok-expired", f.gw.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = f.links.FindByToken(ctx, "tok-expired", false)
	require.ErrorIs(t, err, repository.ErrMagicLinkNotFound)

	found, err := f.links.FindByToken(ctx, "tok-expired", true)
	require.NoError(t, err)
	assert.False(t, found.IsUsed)
}

func TestMagicLinkRepository_MarkUsedIsConditional(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	_, err := f.links.Create(ctx, f.user.ID, "tok-used", f.gw.Now().Add(time.Hour))
	require.NoError(t, err)

	affected, err := f.links.MarkUsed(ctx, "tok-used")
	require.NoError(t, err)
	assert.True(t, affected)

	// Second consumption is a no-op, not an error.
	affected, err = f.links.MarkUsed(ctx, "tok-used")
	require.NoError(t, err)
	assert.False(t, affected)

	// A consumed link is no longer findable, even with includeExpired.
	_, err = f.links.FindByToken(ctx, "tok-used", true)
	require.ErrorIs(t, err, repository.ErrMagicLinkNotFound)
}

func TestMagicLinkRepository_ConcurrentMarkUsedHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	_, err := f.links.Create(ctx, f.user.ID, "tok-race", f.gw.Now().Add(time.Hour))
	require.NoError(t, err)

	const attempts = 16
	var wg sync.WaitGroup
	wins := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := f.links.MarkUsed(ctx, "tok-race")
			assert.NoError(t, err)
			wins <- affected
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestMagicLinkRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)
	now := f.gw.Now()

	_, err := f.links.Create(ctx, f.user.ID, "tok-old-1", now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = f.links.Create(ctx, f.user.ID, "tok-old-2", now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = f.links.Create(ctx, f.user.ID, "tok-live", now.Add(time.Hour))
	require.NoError(t, err)

	removed, err := f.links.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// Unexpired links are untouched, and a second sweep removes nothing.
	_, err = f.links.FindByToken(ctx, "tok-live", false)
	require.NoError(t, err)

	removed, err = f.links.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestMagicLinkRepository_CascadeOnUserDelete(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(t)

	_, err := f.links.Create(ctx, f.user.ID, "tok-cascade", f.gw.Now().Add(time.Hour))
	require.NoError(t, err)

	existed, err := f.users.Delete(ctx, f.user.ID)
	require.NoError(t, err)
	require.True(t, existed)

	// A deleted row reads as absence, not an error.
	_, err = f.links.FindByToken(ctx, "tok-cascade", true)
	require.ErrorIs(t, err, repository.ErrMagicLinkNotFound)
}
