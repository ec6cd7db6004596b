package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"podapi/internal/model"
)

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, user *model.User) ([]model.Notification, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationService) Create(ctx context.Context, user *model.User, text string, relatedURL *string) (*model.Notification, error) {
	args := m.Called(ctx, user, text, relatedURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func (m *MockNotificationService) Notify(ctx context.Context, userID int64, text string, relatedURL *string) error {
	args := m.Called(ctx, userID, text, relatedURL)
	return args.Error(0)
}
