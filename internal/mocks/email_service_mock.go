package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendMagicLinkEmail(ctx context.Context, toEmail, link string, ttl time.Duration) error {
	args := m.Called(ctx, toEmail, link, ttl)
	return args.Error(0)
}
