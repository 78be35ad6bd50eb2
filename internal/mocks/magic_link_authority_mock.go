package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

type MockMagicLinkAuthority struct {
	mock.Mock
}

func (m *MockMagicLinkAuthority) Create(ctx context.Context, userID string, ttl time.Duration) (*models.IssuedMagicLink, error) {
	args := m.Called(ctx, userID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssuedMagicLink), args.Error(1)
}

func (m *MockMagicLinkAuthority) CreateForEmail(ctx context.Context, email, name string) (*models.IssuedMagicLink, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssuedMagicLink), args.Error(1)
}

func (m *MockMagicLinkAuthority) FindByToken(ctx context.Context, token string, includeExpired bool) (*models.MagicLink, error) {
	args := m.Called(ctx, token, includeExpired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MagicLink), args.Error(1)
}

func (m *MockMagicLinkAuthority) MarkUsed(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockMagicLinkAuthority) Verify(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockMagicLinkAuthority) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
