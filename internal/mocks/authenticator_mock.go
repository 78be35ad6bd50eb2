package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) RequestMagicLink(ctx context.Context, email, name string) error {
	args := m.Called(ctx, email, name)
	return args.Error(0)
}

func (m *MockAuthenticator) VerifyMagicLink(ctx context.Context, rawToken string) (*models.SignInResult, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SignInResult), args.Error(1)
}
