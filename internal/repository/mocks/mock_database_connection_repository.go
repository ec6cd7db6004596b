package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"podapi/internal/model"
)

type MockDatabaseConnectionRepository struct {
	mock.Mock
}

func (m *MockDatabaseConnectionRepository) Create(ctx context.Context, c *model.DatabaseConnection) (*model.DatabaseConnection, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DatabaseConnection), args.Error(1)
}

func (m *MockDatabaseConnectionRepository) ExistsBySystemID(ctx context.Context, systemID string) (bool, error) {
	args := m.Called(ctx, systemID)
	return args.Bool(0), args.Error(1)
}
