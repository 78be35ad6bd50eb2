package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

type MockMagicLinkRepository struct {
	mock.Mock
}

func (m *MockMagicLinkRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.MagicLink, error) {
	args := m.Called(ctx, userID, token, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MagicLink), args.Error(1)
}

func (m *MockMagicLinkRepository) FindByToken(ctx context.Context, token string, includeExpired bool) (*models.MagicLink, error) {
	args := m.Called(ctx, token, includeExpired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MagicLink), args.Error(1)
}

func (m *MockMagicLinkRepository) MarkUsed(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockMagicLinkRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
