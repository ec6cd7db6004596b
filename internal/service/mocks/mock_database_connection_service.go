package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"podapi/internal/model"
	"podapi/internal/service"
)

type MockDatabaseConnectionService struct {
	mock.Mock
}

func (m *MockDatabaseConnectionService) Register(ctx context.Context, in service.DatabaseConnectionInput) (*model.DatabaseConnection, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DatabaseConnection), args.Error(1)
}
