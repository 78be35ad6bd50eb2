package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
)

type MockSessionIssuer struct {
	mock.Mock
}

func (m *MockSessionIssuer) GenerateToken(user *models.User) (string, time.Time, error) {
	args := m.Called(user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockSessionIssuer) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionClaims), args.Error(1)
}
